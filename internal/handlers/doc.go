// Package handlers implements the HTTP API of the transpiler.
//
// Handlers parse and validate request parameters, delegate to the services
// layer and map errors to status codes. Every endpoint lives under /api/v1:
//
//	┌────────┬────────────────┬──────────────────────────────────────────┐
//	│ Method │ Endpoint       │ Description                              │
//	├────────┼────────────────┼──────────────────────────────────────────┤
//	│ GET    │ /health        │ Liveness                                 │
//	│ GET    │ /compile       │ Compile one query                        │
//	│ POST   │ /compile/batch │ Compile several queries on the pool      │
//	│ GET    │ /tail          │ Compile a live tail query                │
//	│ GET    │ /history       │ List recent compile calls                │
//	└────────┴────────────────┴──────────────────────────────────────────┘
//
// GET /compile accepts query, start, end, step, direction and limit:
//
//	/api/v1/compile?query={app="web"}|="error"&start=1700000000&direction=forward
//
// Response:
//
//	{
//	    "query": "WITH sel_a AS (...) SELECT * FROM sel_a ORDER BY ...",
//	    "matrix": false,
//	    "duration": 1000,
//	    "stream": ["line_format"]
//	}
//
// stream names the transforms the caller must run over the returned rows.
//
// POST /compile/batch takes {"queries": [<compile request>...]} and answers
// {"results": [{"result": {...}} | {"error": "..."}]} in request order. A
// failing query never fails the batch; a batch larger than the configured
// maximum is rejected with 400.
//
// # Error Handling
//
//	{ "error": "error message" }
//
// Errors caused by the query (grammar, unsupported constructs and operators,
// macros, invalid durations or times) map to 400. Anything else maps to 500
// and is logged.
package handlers
