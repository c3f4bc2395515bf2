// Package transpiler compiles LogQL queries into ClickHouse SQL.
//
// A query is parsed, dispatched on its top-level form and folded into a
// query.Request by the operator registries:
//
//	aggregation_operator   sum by (app) (rate({app="api"}[5m]))
//	unwrap_function        avg_over_time({app="api"} | logfmt | unwrap took [1m])
//	log_range_aggregation  count_over_time({app="api"}[5m])
//	log_stream_selector    {app="api"} |= "error"
//
// Windowed forms align the time range to their bucket width and produce a
// matrix. Plain selectors are wrapped into the sel_a sub-query and ordered
// by series. A trailing comparison such as "> 10" filters the samples of the
// compiled aggregation.
//
// Stages that cannot be expressed in SQL, such as line_format, are returned
// as client-side transforms in Result.Stream. Every stage after such a
// transform runs client-side as well.
//
// TranspileTail compiles a live tail of a plain selector. It rejects macros
// and aggregations.
package transpiler
