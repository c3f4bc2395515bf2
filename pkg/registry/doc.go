// Package registry holds the operator tables the LogQL compiler dispatches to.
//
// Each Registry maps a grammar token value (an operator such as "=~" or a
// function name such as "count_over_time") to a Transform that extends a
// query.Request. A missing key is reported as an UnsupportedOperatorError
// naming the registry kind, so adding an operator never touches the compiler.
//
//	┌────────────────────────┬───────────────────────────────────────────────┐
//	│ Registry               │ Keys                                          │
//	├────────────────────────┼───────────────────────────────────────────────┤
//	│ StreamSelector         │ = != =~ !~                                    │
//	│ LineFilter             │ |= != |~ !~                                   │
//	│ Parser                 │ json logfmt regexp                            │
//	│ NumberOperator         │ == = != > >= < <=                             │
//	│ Unwrap                 │ rate sum/avg/max/min/first/last_over_time     │
//	│                        │ stddev_over_time stdvar_over_time             │
//	│ RangeAggregation       │ count_over_time rate bytes_over_time          │
//	│                        │ bytes_rate absent_over_time                   │
//	│ HighLevelAggregation   │ sum min max avg count stddev stdvar           │
//	│ LineFormat             │ line_format                                   │
//	└────────────────────────┴───────────────────────────────────────────────┘
//
// Windowed aggregations wrap the request they receive into a named sub-query
// (rate_a, uw_rate_a, agg_a, cmp_a) and read from it, hoisting the sub-queries
// the inner request already had.
//
// Once a request carries a client-side transform (line_format), line filters,
// label filters and parsers are compiled into further transforms so they
// observe the rewritten line.
package registry
