package registry

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/oj"

	"github.com/kubev2v/logql-transpiler/pkg/errors"
	"github.com/kubev2v/logql-transpiler/pkg/logql"
	"github.com/kubev2v/logql-transpiler/pkg/query"
)

const rangeAlias = "rate_a"

func rangeAggregations() map[string]Transform {
	count := "toFloat64(count(1))"
	bytes := fmt.Sprintf("toFloat64(sum(length(%s.string)))", rangeAlias)
	return map[string]Transform{
		"count_over_time": rangeAggregation(func(int64) string { return count }),
		"rate": rangeAggregation(func(bucket int64) string {
			return count + " / " + seconds(bucket)
		}),
		"bytes_over_time": rangeAggregation(func(int64) string { return bytes }),
		"bytes_rate": rangeAggregation(func(bucket int64) string {
			return bytes + " / " + seconds(bucket)
		}),
		"absent_over_time": absentOverTime,
	}
}

func rangeAggregation(value func(bucket int64) string) Transform {
	return func(node *logql.Node, req query.Request) (query.Request, error) {
		bucket, err := bucketMs(node, req)
		if err != nil {
			return req, err
		}
		labels := grouping(nil, rangeAlias, req.Extracted != "", rangeAlias+".labels")
		return window(rangeAlias, req, bucket, labels, value(bucket)), nil
	}
}

// absentOverTime emits a sample with value 1 for every bucket of the range
// that has no matching log line. The series carries the equality matchers of
// the selector as labels.
func absentOverTime(node *logql.Node, req query.Request) (query.Request, error) {
	if req.Ctx == nil {
		return req, errors.NewUnsupportedConstructError(node.Rule, "absent_over_time requires a time range")
	}
	bucket, err := bucketMs(node, req)
	if err != nil {
		return req, err
	}

	b := strconv.FormatInt(bucket, 10)
	first := req.Ctx.Start / bucket * bucket
	buckets := fmt.Sprintf("(SELECT arrayJoin(range(toUInt64(%d), toUInt64(%d), toUInt64(%s))) as timestamp_ms)",
		first, req.Ctx.End+1, b)

	out := outerSelect(rangeAlias, req, Quote(matcherLabels(node))+" as labels", "timestamp_ms", "toFloat64(1) as value")
	out.From = buckets
	out = out.AndWhere(query.Literal(fmt.Sprintf("timestamp_ms NOT IN (SELECT intDiv(timestamp_ms, %s) * %s FROM %s)", b, b, rangeAlias)))
	out.Matrix = true

	ctx := *req.Ctx
	ctx.Duration = bucket
	return out.WithCtx(ctx).SetOrderBy(query.Asc, "labels", "timestamp_ms"), nil
}

// matcherLabels renders the equality matchers of the selector under node as
// a JSON object with sorted keys.
func matcherLabels(node *logql.Node) string {
	labels := map[string]string{}
	for _, rule := range node.Children(logql.RuleLogStreamSelectorRule) {
		if rule.Child(logql.RuleOperator).Value == "=" {
			labels[rule.Child(logql.RuleLabel).Value] = rule.Child(logql.RuleQuotedStr).Value
		}
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, oj.JSON(k)+":"+oj.JSON(labels[k]))
	}
	return "{" + strings.Join(pairs, ",") + "}"
}
