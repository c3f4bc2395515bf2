package logql

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Parser", func() {
	Context("Valid queries", func() {
		type testCase struct {
			input  string
			output string
		}

		sel := `(log_stream_selector_rule (label app) (operator =) (quoted_str a))`

		tests := []testCase{
			// ===== STREAM SELECTORS =====
			{input: `{app="a"}`, output: `(root (log_stream_selector ` + sel + `))`},
			{
				input:  `{app="a", env!~"dev.*"}`,
				output: `(root (log_stream_selector ` + sel + ` (log_stream_selector_rule (label env) (operator !~) (quoted_str dev.*))))`,
			},
			{input: ` { app = "a" } `, output: `(root (log_stream_selector ` + sel + `))`},

			// ===== LINE FILTERS =====
			{
				input:  `{app="a"} |= "err"`,
				output: `(root (log_stream_selector ` + sel + ` (log_pipeline (line_filter_expression (line_filter_operator |=) (quoted_str err)))))`,
			},
			{
				input:  `{app="a"} != "debug" |~ "5.."`,
				output: `(root (log_stream_selector ` + sel + ` (log_pipeline (line_filter_expression (line_filter_operator !=) (quoted_str debug))) (log_pipeline (line_filter_expression (line_filter_operator |~) (quoted_str 5..)))))`,
			},

			// ===== PARSERS =====
			{
				input:  `{app="a"} | json`,
				output: `(root (log_stream_selector ` + sel + ` (log_pipeline (parser_expression (parser_fn_name json)))))`,
			},
			{
				input:  `{app="a"} | json lvl="level", msg="m.text"`,
				output: `(root (log_stream_selector ` + sel + ` (log_pipeline (parser_expression (parser_fn_name json) (parser_param (label lvl) (quoted_str level)) (parser_param (label msg) (quoted_str m.text))))))`,
			},
			{
				input:  `{app="a"} | regexp "(?P<code>\\d+)"`,
				output: `(root (log_stream_selector ` + sel + ` (log_pipeline (parser_expression (parser_fn_name regexp) (parser_param (quoted_str (?P<code>\d+)))))))`,
			},

			// ===== LABEL FILTERS =====
			{
				input:  `{app="a"} | logfmt | level="error"`,
				output: `(root (log_stream_selector ` + sel + ` (log_pipeline (parser_expression (parser_fn_name logfmt))) (log_pipeline (label_filter_pipeline (label_filter_expression (string_label_filter_expression (label level) (operator =) (quoted_str error)))))))`,
			},
			{
				input:  `{app="a"} | status >= 500`,
				output: `(root (log_stream_selector ` + sel + ` (log_pipeline (label_filter_pipeline (label_filter_expression (number_label_filter_expression (label status) (number_operator >=) (number_value 500)))))))`,
			},
			{
				input:  `{app="a"} | latency > 250ms`,
				output: `(root (log_stream_selector ` + sel + ` (log_pipeline (label_filter_pipeline (label_filter_expression (number_label_filter_expression (label latency) (number_operator >) (duration_value 250ms)))))))`,
			},
			{
				input:  `{app="a"} | x="1", y=~"2" and z > 3`,
				output: `(root (log_stream_selector ` + sel + ` (log_pipeline (label_filter_pipeline (label_filter_expression (string_label_filter_expression (label x) (operator =) (quoted_str 1))) (label_filter_expression (string_label_filter_expression (label y) (operator =~) (quoted_str 2))) (label_filter_expression (number_label_filter_expression (label z) (number_operator >) (number_value 3)))))))`,
			},
			{
				input:  `{app="a"} | x="1" or y="2"`,
				output: `(root (log_stream_selector ` + sel + ` (log_pipeline (label_filter_pipeline (label_filter_expression (string_label_filter_expression (label x) (operator =) (quoted_str 1))) (label_filter_or or) (label_filter_expression (string_label_filter_expression (label y) (operator =) (quoted_str 2)))))))`,
			},
			{
				input:  `{app="a"} | json="x"`,
				output: `(root (log_stream_selector ` + sel + ` (log_pipeline (label_filter_pipeline (label_filter_expression (string_label_filter_expression (label json) (operator =) (quoted_str x)))))))`,
			},

			// ===== FORMATTING =====
			{
				input:  `{app="a"} | line_format "{{.app}}"`,
				output: `(root (log_stream_selector ` + sel + ` (log_pipeline (line_format_expression (line_format_fn line_format) (quoted_str {{.app}})))))`,
			},
			{
				input:  `{app="a"} | label_format x="y"`,
				output: `(root (log_stream_selector ` + sel + ` (log_pipeline (labels_format_expression (label x) (quoted_str y)))))`,
			},

			// ===== RANGE AGGREGATIONS =====
			{
				input:  `rate({app="a"}[5m])`,
				output: `(root (agg_statement (log_range_aggregation (log_range_aggregation_fn rate) (log_stream_selector ` + sel + `) (duration_value 5m))))`,
			},
			{
				input:  `count_over_time({app="a"} |= "x" [1h30m])`,
				output: `(root (agg_statement (log_range_aggregation (log_range_aggregation_fn count_over_time) (log_stream_selector ` + sel + ` (log_pipeline (line_filter_expression (line_filter_operator |=) (quoted_str x)))) (duration_value 1h30m))))`,
			},

			// ===== UNWRAP FUNCTIONS =====
			{
				input:  `sum_over_time({app="a"} | unwrap bytes [1m])`,
				output: `(root (agg_statement (unwrap_function (unwrap_fn sum_over_time) (unwrap_expression (log_stream_selector ` + sel + `) (unwrap_statement (label bytes))) (duration_value 1m))))`,
			},
			{
				input:  `max_over_time({app="a"} | json | unwrap latency [1m]) by (host)`,
				output: `(root (agg_statement (unwrap_function (unwrap_fn max_over_time) (unwrap_expression (log_stream_selector ` + sel + ` (log_pipeline (parser_expression (parser_fn_name json)))) (unwrap_statement (label latency))) (duration_value 1m) (req_by_without_unwrap (by_without by) (label host)))))`,
			},

			// ===== AGGREGATION OPERATORS =====
			{
				input:  `sum by (app) (count_over_time({app="a"}[1m]))`,
				output: `(root (agg_statement (aggregation_operator (aggregation_operator_fn sum) (req_by_without (by_without by) (label app)) (log_range_aggregation (log_range_aggregation_fn count_over_time) (log_stream_selector ` + sel + `) (duration_value 1m)))))`,
			},
			{
				input:  `avg(rate({app="a"}[1m])) without (pod, node)`,
				output: `(root (agg_statement (aggregation_operator (aggregation_operator_fn avg) (log_range_aggregation (log_range_aggregation_fn rate) (log_stream_selector ` + sel + `) (duration_value 1m)) (req_by_without (by_without without) (label pod) (label node)))))`,
			},

			// ===== COMPARISONS =====
			{
				input:  `rate({app="a"}[1m]) > 10`,
				output: `(root (compared_agg_statement (agg_statement (log_range_aggregation (log_range_aggregation_fn rate) (log_stream_selector ` + sel + `) (duration_value 1m))) (compared_agg_statement_cmp (number_operator >) (number_value 10))))`,
			},

			// ===== MACROS =====
			{input: `errors("nginx", 5m)`, output: `(root (user_macro (errors (macro_arg nginx) (macro_arg 5m))))`},
			{input: `everything()`, output: `(root (user_macro (everything everything)))`},
		}

		for _, test := range tests {
			test := test // capture range variable
			It("should parse: "+test.input, func() {
				tree, err := Parse(test.input)
				Expect(err).ToNot(HaveOccurred())
				Expect(tree.Root.Dump()).To(Equal(test.output))
			})
		}
	})

	Context("Source text", func() {
		It("should keep the text of composite nodes", func() {
			tree, err := Parse(`rate({app="a"} |= "x" [5m])`)
			Expect(err).ToNot(HaveOccurred())
			Expect(tree.Root.Child(RuleLogStreamSelector).Text).To(Equal(`{app="a"} |= "x"`))
			Expect(tree.Root.Child(RuleLogRangeAggregation).Text).To(Equal(`rate({app="a"} |= "x" [5m])`))
			Expect(tree.Root.Child(RuleQuotedStr).Text).To(Equal(`"a"`))
			Expect(tree.Root.Child(RuleQuotedStr).Value).To(Equal("a"))
		})

		It("should not include the unwrap stage in the selector text", func() {
			tree, err := Parse(`sum_over_time({app="a"} | json | unwrap b [1m])`)
			Expect(err).ToNot(HaveOccurred())
			Expect(tree.Root.Child(RuleLogStreamSelector).Text).To(Equal(`{app="a"} | json`))
			Expect(tree.Root.Child(RuleUnwrapExpression).Text).To(Equal(`{app="a"} | json | unwrap b`))
		})

		It("should find nested rules depth first", func() {
			tree, err := Parse(`{app="a", env="b"} | x > 1 | y > 2`)
			Expect(err).ToNot(HaveOccurred())
			Expect(tree.Root.Child(RuleLabel).Value).To(Equal("app"))
			Expect(tree.Root.Children(RuleLabel)).To(HaveLen(4))
			Expect(tree.Root.Children(RuleNumberValue)).To(HaveLen(2))
			Expect(tree.Root.Has(RuleLogStreamSelector)).To(BeTrue())
			Expect(tree.Root.Has(RuleLabel)).To(BeFalse())
		})
	})

	Context("Invalid queries", func() {
		inputs := []string{
			"",
			"   ",
			"{}",
			`{app="a"`,
			`{app=}`,
			`{app "a"}`,
			`{app="a"} | unwrap x`,
			`{app="a"} |= 5`,
			`{app="a"} | x = `,
			`rate({app="a"})`,
			`rate({app="a"}[5])`,
			`count_over_time({app="a"} | unwrap x [1m])`,
			`sum_over_time({app="a"}[1m])`,
			`sum({app="a"})`,
			`sum by (x) (rate({app="a"}[1m])) by (y)`,
			`rate({app="a"}[1m]) >`,
			`{app="a"} extra`,
			`macro("a"`,
			`{app="a"} ; `,
		}

		for _, input := range inputs {
			input := input
			It("should return ParseError for: "+input, func() {
				_, err := Parse(input)
				Expect(err).To(HaveOccurred())
				var pe ParseError
				Expect(errors.As(err, &pe)).To(BeTrue())
			})
		}
	})
})
