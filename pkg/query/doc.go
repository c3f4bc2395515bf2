// Package query holds the structured request model the compiler builds and
// the renderer that turns it into ClickHouse query text.
//
// A Request mirrors a single SELECT statement: projection, source, joins,
// WHERE/HAVING clauses, grouping, ordering, limits and named sub-queries
// (WITH). A request with Requests set is a UNION ALL of its members and every
// other field is ignored.
//
// Rendering is done with squirrel's SelectBuilder:
//
//	WITH a AS (...), b AS (...) SELECT [DISTINCT] cols FROM src
//	LEFT JOIN x ON cond WHERE cond GROUP BY ... HAVING cond
//	ORDER BY name order, ... LIMIT n OFFSET n FINAL
//
// Stages the backend cannot express are collected as Transforms and applied
// to the returned rows by the caller.
package query
