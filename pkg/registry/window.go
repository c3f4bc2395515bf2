package registry

import (
	"fmt"
	"strconv"

	"github.com/kubev2v/logql-transpiler/pkg/logql"
	"github.com/kubev2v/logql-transpiler/pkg/query"
)

// bucketMs returns the width of the time buckets of a windowed aggregation:
// the range duration or the step, whichever is larger.
func bucketMs(node *logql.Node, req query.Request) (int64, error) {
	d, err := DurationMs(node.Child(logql.RuleDurationValue).Value)
	if err != nil {
		return 0, err
	}
	if req.Ctx != nil && req.Ctx.Step > d {
		return req.Ctx.Step, nil
	}
	return d, nil
}

// window groups the rows of req into time buckets per label set.
func window(alias string, req query.Request, bucket int64, labels, value string) query.Request {
	b := strconv.FormatInt(bucket, 10)
	out := outerSelect(alias, req,
		labels+" as labels",
		fmt.Sprintf("intDiv(%s.timestamp_ms, %s) * %s as timestamp_ms", alias, b, b),
		value+" as value",
	)
	out.GroupBy = []string{"labels", "timestamp_ms"}
	out.Matrix = true

	ctx := query.Context{}
	if req.Ctx != nil {
		ctx = *req.Ctx
	}
	ctx.Duration = bucket
	return out.WithCtx(ctx).SetOrderBy(query.Asc, "labels", "timestamp_ms")
}
