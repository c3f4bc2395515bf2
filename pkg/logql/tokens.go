package logql

type Token int

const (
	illegal Token = iota
	eol
	lbrace
	rbrace
	lparen
	rparen
	lbracket
	rbracket
	comma
	pipe
	operator
	lineFilter
	identifier
	stringLit
	number
	duration
)

var tokenNames = map[Token]string{
	illegal:    "illegal",
	eol:        "eol",
	lbrace:     "lbrace",
	rbrace:     "rbrace",
	lparen:     "lparen",
	rparen:     "rparen",
	lbracket:   "lbracket",
	rbracket:   "rbracket",
	comma:      "comma",
	pipe:       "pipe",
	operator:   "operator",
	lineFilter: "lineFilter",
	identifier: "identifier",
	stringLit:  "stringLit",
	number:     "number",
	duration:   "duration",
}

func (t Token) String() string {
	return tokenNames[t]
}

// Rule names of the nodes produced by the parser. The compiler looks nodes up
// by these names only.
const (
	RuleRoot                        = "root"
	RuleUserMacro                   = "user_macro"
	RuleMacroArg                    = "macro_arg"
	RuleAggStatement                = "agg_statement"
	RuleComparedAggStatement        = "compared_agg_statement"
	RuleComparedAggStatementCmp     = "compared_agg_statement_cmp"
	RuleAggregationOperator         = "aggregation_operator"
	RuleAggregationOperatorFn       = "aggregation_operator_fn"
	RuleReqByWithout                = "req_by_without"
	RuleReqByWithoutUnwrap          = "req_by_without_unwrap"
	RuleByWithout                   = "by_without"
	RuleLogRangeAggregation         = "log_range_aggregation"
	RuleLogRangeAggregationFn       = "log_range_aggregation_fn"
	RuleUnwrapFunction              = "unwrap_function"
	RuleUnwrapFn                    = "unwrap_fn"
	RuleUnwrapExpression            = "unwrap_expression"
	RuleUnwrapStatement             = "unwrap_statement"
	RuleDurationValue               = "duration_value"
	RuleLogStreamSelector           = "log_stream_selector"
	RuleLogStreamSelectorRule       = "log_stream_selector_rule"
	RuleLabel                       = "label"
	RuleOperator                    = "operator"
	RuleNumberOperator              = "number_operator"
	RuleQuotedStr                   = "quoted_str"
	RuleNumberValue                 = "number_value"
	RuleLogPipeline                 = "log_pipeline"
	RuleLineFilterExpression        = "line_filter_expression"
	RuleLineFilterOperator          = "line_filter_operator"
	RuleParserExpression            = "parser_expression"
	RuleParserFnName                = "parser_fn_name"
	RuleParserParam                 = "parser_param"
	RuleLineFormatExpression        = "line_format_expression"
	RuleLineFormatFn                = "line_format_fn"
	RuleLabelsFormatExpression      = "labels_format_expression"
	RuleLabelFilterPipeline         = "label_filter_pipeline"
	RuleLabelFilterExpression       = "label_filter_expression"
	RuleStringLabelFilterExpression = "string_label_filter_expression"
	RuleNumberLabelFilterExpression = "number_label_filter_expression"
	RuleLabelFilterOr               = "label_filter_or"
)

// IsRule reports whether name is one of the rule names above.
func IsRule(name string) bool {
	_, ok := ruleNames[name]
	return ok
}

var ruleNames = map[string]struct{}{
	RuleRoot:                        {},
	RuleUserMacro:                   {},
	RuleMacroArg:                    {},
	RuleAggStatement:                {},
	RuleComparedAggStatement:        {},
	RuleComparedAggStatementCmp:     {},
	RuleAggregationOperator:         {},
	RuleAggregationOperatorFn:       {},
	RuleReqByWithout:                {},
	RuleReqByWithoutUnwrap:          {},
	RuleByWithout:                   {},
	RuleLogRangeAggregation:         {},
	RuleLogRangeAggregationFn:       {},
	RuleUnwrapFunction:              {},
	RuleUnwrapFn:                    {},
	RuleUnwrapExpression:            {},
	RuleUnwrapStatement:             {},
	RuleDurationValue:               {},
	RuleLogStreamSelector:           {},
	RuleLogStreamSelectorRule:       {},
	RuleLabel:                       {},
	RuleOperator:                    {},
	RuleNumberOperator:              {},
	RuleQuotedStr:                   {},
	RuleNumberValue:                 {},
	RuleLogPipeline:                 {},
	RuleLineFilterExpression:        {},
	RuleLineFilterOperator:          {},
	RuleParserExpression:            {},
	RuleParserFnName:                {},
	RuleParserParam:                 {},
	RuleLineFormatExpression:        {},
	RuleLineFormatFn:                {},
	RuleLabelsFormatExpression:      {},
	RuleLabelFilterPipeline:         {},
	RuleLabelFilterExpression:       {},
	RuleStringLabelFilterExpression: {},
	RuleNumberLabelFilterExpression: {},
	RuleLabelFilterOr:               {},
}

var (
	aggregationOperatorFns = []string{"sum", "min", "max", "avg", "count", "stddev", "stdvar"}
	logRangeAggregationFns = []string{"count_over_time", "rate", "bytes_over_time", "bytes_rate", "absent_over_time"}
	unwrapFns              = []string{
		"rate", "sum_over_time", "avg_over_time", "max_over_time", "min_over_time",
		"first_over_time", "last_over_time", "stddev_over_time", "stdvar_over_time",
	}
	parserFns = []string{"json", "logfmt", "regexp"}
)
