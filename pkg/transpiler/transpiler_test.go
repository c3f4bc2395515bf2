package transpiler_test

import (
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	srvErrors "github.com/kubev2v/logql-transpiler/pkg/errors"
	"github.com/kubev2v/logql-transpiler/pkg/macros"
	"github.com/kubev2v/logql-transpiler/pkg/query"
	"github.com/kubev2v/logql-transpiler/pkg/transpiler"
)

const (
	baseColumns = "SELECT DISTINCT time_series.labels as labels, samples.string as string, " +
		"time_series.fingerprint as fingerprint, samples.timestamp_ms as timestamp_ms " +
		"FROM cloki.samples LEFT JOIN cloki.time_series ON samples.fingerprint = time_series.fingerprint"
	nowMs = int64(1700000000000)
)

var now = time.UnixMilli(nowMs)

func newTranspiler(opts ...transpiler.Option) *transpiler.Transpiler {
	opts = append([]transpiler.Option{transpiler.WithClock(func() time.Time { return now })}, opts...)
	return transpiler.New(opts...)
}

var _ = Describe("Transpiler", func() {
	var t *transpiler.Transpiler

	BeforeEach(func() {
		t = newTranspiler()
	})

	Context("InitQuery", func() {
		It("should read the newest samples with their labels", func() {
			sql, err := query.Render(t.InitQuery())
			Expect(err).ToNot(HaveOccurred())
			Expect(sql).To(Equal(baseColumns + " ORDER BY timestamp_ms desc, labels desc LIMIT 1000"))
		})

		It("should use the configured database and limit", func() {
			t = newTranspiler(transpiler.WithDatabase("logs"), transpiler.WithDefaultLimit(20))
			sql, err := query.Render(t.InitQuery())
			Expect(err).ToNot(HaveOccurred())
			Expect(sql).To(HavePrefix("SELECT DISTINCT"))
			Expect(sql).To(ContainSubstring("FROM logs.samples LEFT JOIN logs.time_series ON"))
			Expect(sql).To(HaveSuffix("LIMIT 20"))
		})
	})

	Context("plain selectors", func() {
		It("should wrap the selector into sel_a", func() {
			res, err := t.Transpile(transpiler.Params{Query: `{app="foo"} |= "err"`})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Matrix).To(BeFalse())
			Expect(res.Duration).To(Equal(int64(1000)))
			Expect(res.Stream).To(BeEmpty())
			Expect(res.Query).To(Equal(
				"WITH sel_a AS (" + baseColumns +
					" WHERE JSONExtractString(labels, 'app') = 'foo' AND position(string, 'err') != 0" +
					" AND timestamp_ms >= 1699996400000 AND timestamp_ms <= 1700000000000" +
					" ORDER BY timestamp_ms desc, labels desc LIMIT 1000)" +
					" SELECT * FROM sel_a ORDER BY labels desc, timestamp_ms desc"))
		})

		type testCase struct {
			direction transpiler.Direction
			order     string
		}

		tests := []testCase{
			{direction: transpiler.Forward, order: "asc"},
			{direction: transpiler.Backward, order: "desc"},
			{direction: "", order: "desc"},
			{direction: "sideways", order: "desc"},
		}

		for _, test := range tests {
			test := test
			It("should order by direction: "+string(test.direction), func() {
				res, err := t.Transpile(transpiler.Params{Query: `{app="foo"}`, Direction: test.direction})
				Expect(err).ToNot(HaveOccurred())
				Expect(res.Query).To(ContainSubstring("ORDER BY timestamp_ms " + test.order + ", labels " + test.order + " LIMIT"))
				Expect(res.Query).To(HaveSuffix("SELECT * FROM sel_a ORDER BY labels " + test.order + ", timestamp_ms " + test.order))
			})
		}

		It("should use the requested time range and limit", func() {
			res, err := t.Transpile(transpiler.Params{
				Query: `{app="foo"}`,
				Start: time.UnixMilli(1000),
				End:   time.UnixMilli(2000),
				Limit: 50,
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Query).To(ContainSubstring("timestamp_ms >= 1000 AND timestamp_ms <= 2000"))
			Expect(res.Query).To(ContainSubstring("LIMIT 50)"))
		})

		It("should apply every label filter of a pipeline", func() {
			res, err := t.Transpile(transpiler.Params{Query: `{app="foo"} | env="prod", status >= 500 and path=~"/api.*"`})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Query).To(ContainSubstring(
				"JSONExtractString(labels, 'app') = 'foo' AND JSONExtractString(labels, 'env') = 'prod'" +
					" AND toFloat64OrNull(JSONExtractString(labels, 'status')) >= 500" +
					" AND match(JSONExtractString(labels, 'path'), '^(?:/api.*)$')"))
		})

		It("should compile stages in source order", func() {
			parsed, err := t.Transpile(transpiler.Params{Query: `{app="foo"} | json | level="error"`})
			Expect(err).ToNot(HaveOccurred())
			filtered, err := t.Transpile(transpiler.Params{Query: `{app="foo"} | level="error" | json`})
			Expect(err).ToNot(HaveOccurred())

			Expect(parsed.Query).To(ContainSubstring(
				"if(mapContains(extra_labels, 'level'), extra_labels['level'], JSONExtractString(labels, 'level')) = 'error'"))
			Expect(filtered.Query).To(ContainSubstring("JSONExtractString(labels, 'level') = 'error'"))
			Expect(filtered.Query).ToNot(ContainSubstring("mapContains"))
			Expect(parsed.Query).ToNot(Equal(filtered.Query))
		})

		It("should return client-side stages", func() {
			res, err := t.Transpile(transpiler.Params{Query: `{app="foo"} |= "a" | line_format "{{.app}}" |= "foo"`})
			Expect(err).ToNot(HaveOccurred())
			Expect(query.StageNames(res.Stream)).To(Equal([]string{"line_format", "line_filter"}))
			Expect(res.Query).To(ContainSubstring("position(string, 'a') != 0"))
			Expect(res.Query).ToNot(ContainSubstring("'foo') != 0"))

			rows := query.ApplyTransforms([]query.Row{
				{Labels: map[string]string{"app": "foo"}, Line: "a"},
				{Labels: map[string]string{"app": "bar"}, Line: "a"},
			}, res.Stream)
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].Line).To(Equal("foo"))
		})
	})

	Context("parsed labels", func() {
		It("should hand extracted labels to later client-side stages", func() {
			res, err := t.Transpile(transpiler.Params{Query: `{app="x"} | json | line_format "{{.level}}" | level="error"`})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Query).To(ContainSubstring("as extra_labels"))
			Expect(query.StageNames(res.Stream)).To(Equal([]string{"line_format", "label_filter"}))

			rows := query.ApplyTransforms([]query.Row{
				{Labels: map[string]string{"app": "x"}, Extracted: map[string]string{"level": "error"}, Line: `{"level":"error"}`},
				{Labels: map[string]string{"app": "x"}, Extracted: map[string]string{"level": "info"}, Line: `{"level":"info"}`},
			}, res.Stream)
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].Line).To(Equal("error"))
			Expect(rows[0].Labels).To(HaveKeyWithValue("level", "error"))
		})
	})

	Context("windowed forms", func() {
		It("should align count_over_time to its range", func() {
			res, err := t.Transpile(transpiler.Params{
				Query: `count_over_time({app="foo"}[5m])`,
				Start: time.UnixMilli(1700000000500),
				End:   time.UnixMilli(1700000001500),
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Matrix).To(BeTrue())
			Expect(res.Duration).To(Equal(int64(300000)))
			Expect(res.Query).To(Equal(
				"WITH rate_a AS (" + baseColumns +
					" WHERE timestamp_ms >= 1699999800000 AND timestamp_ms <= 1700000100000" +
					" AND JSONExtractString(labels, 'app') = 'foo')" +
					" SELECT rate_a.labels as labels, intDiv(rate_a.timestamp_ms, 300000) * 300000 as timestamp_ms," +
					" toFloat64(count(1)) as value FROM rate_a GROUP BY labels, timestamp_ms" +
					" ORDER BY labels asc, timestamp_ms asc"))
			Expect(res.Query).ToNot(ContainSubstring("sel_a"))
		})

		It("should widen buckets to the step", func() {
			res, err := t.Transpile(transpiler.Params{Query: `rate({app="foo"}[1m])`, Step: 5 * time.Minute})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Duration).To(Equal(int64(300000)))
			Expect(res.Query).To(ContainSubstring("toFloat64(count(1)) / 300 as value"))
		})

		It("should compile unwrap functions", func() {
			res, err := t.Transpile(transpiler.Params{Query: `avg_over_time({app="foo"} | logfmt | unwrap took [1m]) by (host)`})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Matrix).To(BeTrue())
			Expect(res.Duration).To(Equal(int64(60000)))
			Expect(res.Query).To(HavePrefix("WITH uw_rate_a AS ("))
			Expect(res.Query).To(ContainSubstring("extractKeyValuePairs(string, '=', ' ', '\"') as extra_labels"))
			Expect(res.Query).To(ContainSubstring("unwrapped IS NOT NULL"))
			Expect(res.Query).To(ContainSubstring("avg(uw_rate_a.unwrapped) as value"))
		})

		It("should compile high level aggregations without the step", func() {
			res, err := t.Transpile(transpiler.Params{
				Query: `sum by (app) (rate({app="foo"}[1m]))`,
				Step:  5 * time.Minute,
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Matrix).To(BeTrue())
			Expect(res.Duration).To(Equal(int64(60000)))
			Expect(res.Query).To(HavePrefix("WITH rate_a AS ("))
			Expect(res.Query).To(ContainSubstring("), agg_a AS (SELECT rate_a.labels as labels"))
			Expect(res.Query).To(ContainSubstring("sum(agg_a.value) as value FROM agg_a"))
		})

		It("should compile aggregations of unwrap functions", func() {
			res, err := t.Transpile(transpiler.Params{Query: `max(max_over_time({app="foo"} | unwrap bytes [1m]))`})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Query).To(HavePrefix("WITH uw_rate_a AS ("))
			Expect(res.Query).To(ContainSubstring("'{}' as labels"))
			Expect(res.Query).To(ContainSubstring("max(agg_a.value) as value"))
		})

		It("should filter compared aggregations", func() {
			res, err := t.Transpile(transpiler.Params{Query: `count_over_time({app="foo"}[5m]) > 10`})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Matrix).To(BeTrue())
			Expect(res.Duration).To(Equal(int64(300000)))
			Expect(res.Query).To(HavePrefix("WITH rate_a AS ("))
			Expect(res.Query).To(ContainSubstring("), cmp_a AS (SELECT rate_a.labels as labels"))
			Expect(res.Query).To(HaveSuffix("SELECT * FROM cmp_a WHERE value > 10 ORDER BY labels asc, timestamp_ms asc"))
		})

		It("should ignore number label filters when looking for the comparison", func() {
			res, err := t.Transpile(transpiler.Params{Query: `sum(rate({app="foo"} | status > 499 [1m])) == 3`})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Query).To(ContainSubstring("toFloat64OrNull(JSONExtractString(labels, 'status')) > 499"))
			Expect(res.Query).To(ContainSubstring("WHERE value = 3"))
		})
	})

	Context("macros", func() {
		BeforeEach(func() {
			errorsOf, err := macros.NewTemplateMacro("errors_of", `{app="{{ index .Args 0 }}"} |= "error"`)
			Expect(err).ToNot(HaveOccurred())
			loop, err := macros.NewTemplateMacro("loop", `errors_of("api")`)
			Expect(err).ToNot(HaveOccurred())
			r, err := macros.NewRegistry(errorsOf, loop)
			Expect(err).ToNot(HaveOccurred())
			t = newTranspiler(transpiler.WithMacros(r))
		})

		It("should compile the expanded query", func() {
			expanded, err := t.Transpile(transpiler.Params{Query: `errors_of("api")`})
			Expect(err).ToNot(HaveOccurred())
			direct, err := t.Transpile(transpiler.Params{Query: `{app="api"} |= "error"`})
			Expect(err).ToNot(HaveOccurred())
			Expect(expanded.Query).To(Equal(direct.Query))
		})

		It("should fail for unknown macros", func() {
			_, err := t.Transpile(transpiler.Params{Query: `unknown()`})
			Expect(srvErrors.IsMacroResolutionError(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("unknown"))
		})

		It("should expand a single level", func() {
			_, err := t.Transpile(transpiler.Params{Query: `loop()`})
			Expect(srvErrors.IsMacroResolutionError(err)).To(BeTrue())
		})

		It("should fail without a macro registry", func() {
			_, err := newTranspiler().Transpile(transpiler.Params{Query: `errors_of("api")`})
			Expect(srvErrors.IsMacroResolutionError(err)).To(BeTrue())
		})
	})

	Context("errors", func() {
		type testCase struct {
			input string
			check func(error) bool
		}

		tests := []testCase{
			{input: `{app<>"foo"}`, check: srvErrors.IsUnsupportedOperatorError},
			{input: `{app="foo"} | xml`, check: srvErrors.IsParseError},
			{input: `{app="foo"} | label_format a="b"`, check: srvErrors.IsUnsupportedConstructError},
			{input: `{app="foo"} | a="1" or b="2"`, check: srvErrors.IsUnsupportedConstructError},
			{input: `{app="foo"} |~ "("`, check: srvErrors.IsInvalidExpressionError},
			{input: `count_over_time({app="foo"} | line_format "{{.a}}" [5m])`, check: srvErrors.IsUnsupportedConstructError},
			{input: `sum_over_time({app="foo"} | line_format "{{.a}}" | unwrap x [5m])`, check: srvErrors.IsUnsupportedConstructError},
			{input: `{app="foo"`, check: srvErrors.IsParseError},
		}

		for _, test := range tests {
			test := test
			It("should reject: "+test.input, func() {
				res, err := t.Transpile(transpiler.Params{Query: test.input})
				Expect(err).To(HaveOccurred())
				Expect(test.check(err)).To(BeTrue(), err.Error())
				Expect(res.Query).To(BeEmpty())
			})
		}

		It("should reject a range that ends before it starts", func() {
			_, err := t.Transpile(transpiler.Params{
				Query: `{app="foo"}`,
				Start: time.UnixMilli(2000),
				End:   time.UnixMilli(1000),
			})
			Expect(srvErrors.IsInvalidExpressionError(err)).To(BeTrue())
		})
	})

	Context("TranspileTail", func() {
		It("should read the last seconds in ascending order", func() {
			res, err := t.TranspileTail(`{app="foo"} |= "err"`)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Stream).To(BeEmpty())
			Expect(res.Query).To(Equal(baseColumns +
				" WHERE timestamp_ms >= (toUnixTimestamp(now()) - 5) * 1000" +
				" AND JSONExtractString(labels, 'app') = 'foo' AND position(string, 'err') != 0" +
				" ORDER BY timestamp_ms asc"))
		})

		It("should return client-side stages", func() {
			res, err := t.TranspileTail(`{app="foo"} | line_format "{{.app}}"`)
			Expect(err).ToNot(HaveOccurred())
			Expect(query.StageNames(res.Stream)).To(Equal([]string{"line_format"}))
		})

		type testCase struct {
			input string
			rule  string
		}

		tests := []testCase{
			{input: `sum by (app) (count_over_time({app="foo"}[1m]))`, rule: "aggregation_operator"},
			{input: `count_over_time({app="foo"}[1m])`, rule: "log_range_aggregation"},
			{input: `rate({app="foo"} | unwrap x [1m])`, rule: "unwrap_function"},
			{input: `errors_of("api")`, rule: "user_macro"},
		}

		for _, test := range tests {
			test := test
			It("should reject: "+test.input, func() {
				_, err := t.TranspileTail(test.input)
				Expect(srvErrors.IsUnsupportedConstructError(err)).To(BeTrue())
				Expect(err).To(MatchError(test.rule + " is not supported. Only raw logs are supported"))
			})
		}
	})

	It("should compile concurrently", func() {
		queries := []string{
			`{app="foo"} |= "err"`,
			`count_over_time({app="foo"}[5m])`,
			`sum by (app) (rate({app="foo"} | json | level="error" [1m]))`,
		}
		expected := make([]string, len(queries))
		for i, q := range queries {
			res, err := t.Transpile(transpiler.Params{Query: q})
			Expect(err).ToNot(HaveOccurred())
			expected[i] = res.Query
		}

		var wg sync.WaitGroup
		results := make([][]string, 8)
		for w := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for _, q := range queries {
					res, err := t.Transpile(transpiler.Params{Query: q})
					if err == nil {
						results[w] = append(results[w], res.Query)
					}
				}
			}()
		}
		wg.Wait()

		for _, r := range results {
			Expect(r).To(Equal(expected))
		}
	})
})
