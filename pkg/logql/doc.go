// Package logql parses LogQL queries into a tree of named rule nodes.
//
// # Grammar
//
//	--- PARSER RULES ---
//
//	root                        : query EOL ;
//	query                       : user_macro | compared_agg_statement | agg_statement | log_stream_selector ;
//
//	user_macro                  : IDENTIFIER "(" [ macro_arg ( "," macro_arg )* ] ")" ;
//	macro_arg                   : STRING | NUMBER | DURATION | IDENTIFIER ;
//
//	compared_agg_statement      : agg_statement compared_agg_statement_cmp ;
//	compared_agg_statement_cmp  : number_operator NUMBER ;
//
//	agg_statement               : aggregation_operator | unwrap_function | log_range_aggregation ;
//	aggregation_operator        : aggregation_operator_fn [ req_by_without ] "(" range_fn ")" [ req_by_without ] ;
//	range_fn                    : log_range_aggregation | unwrap_function ;
//	log_range_aggregation       : log_range_aggregation_fn "(" log_stream_selector "[" DURATION "]" ")" ;
//	unwrap_function             : unwrap_fn "(" unwrap_expression "[" DURATION "]" ")" [ req_by_without_unwrap ] ;
//	unwrap_expression           : log_stream_selector unwrap_statement ;
//	unwrap_statement            : "|" "unwrap" IDENTIFIER ;
//	req_by_without              : ( "by" | "without" ) "(" [ IDENTIFIER ( "," IDENTIFIER )* ] ")" ;
//
//	log_stream_selector         : "{" log_stream_selector_rule ( "," log_stream_selector_rule )* "}" log_pipeline* ;
//	log_stream_selector_rule    : IDENTIFIER OPERATOR STRING ;
//
//	log_pipeline                : line_filter_expression
//	                            | "|" parser_expression
//	                            | "|" line_format_expression
//	                            | "|" labels_format_expression
//	                            | "|" label_filter_pipeline ;
//	line_filter_expression      : ( "|=" | "|~" | OPERATOR ) STRING ;
//	parser_expression           : ( "json" | "logfmt" | "regexp" ) [ parser_param ( "," parser_param )* ] ;
//	parser_param                : IDENTIFIER [ "=" STRING ] | STRING ;
//	line_format_expression      : "line_format" STRING ;
//	labels_format_expression    : "label_format" IDENTIFIER "=" ( STRING | IDENTIFIER ) ( "," ... )* ;
//	label_filter_pipeline       : label_filter_expression ( ( "," | "and" | "or" ) label_filter_expression )* ;
//	label_filter_expression     : IDENTIFIER OPERATOR STRING       // string_label_filter_expression
//	                            | IDENTIFIER OPERATOR ( NUMBER | DURATION ) ;  // number_label_filter_expression
//
//	--- LEXER RULES ---
//
//	IDENTIFIER  : [a-zA-Z_][a-zA-Z0-9_]* ;
//	OPERATOR    : [=!~<>]+ ;
//	STRING      : "\"" (escaped chars) "\"" | "`" (raw chars) "`" ;
//	NUMBER      : "-"? [0-9]+ ( "." [0-9]+ )? ;
//	DURATION    : [0-9]+ ( [a-zA-Z]+ [0-9]* )+ ;
//
//	Operators are lexed generically. Whether "=~" is allowed in a stream
//	selector or "<" in a label filter is decided by the compiler, so an
//	unknown operator surfaces as an unsupported operator and not as a syntax
//	error.
//
//	Every node carries its rule name, its source position and its source text.
//	Leaf nodes also carry the decoded token value, so a quoted_str node holds
//	the unquoted string.
package logql
