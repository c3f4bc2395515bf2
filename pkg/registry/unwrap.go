package registry

import (
	"fmt"

	"github.com/kubev2v/logql-transpiler/pkg/errors"
	"github.com/kubev2v/logql-transpiler/pkg/logql"
	"github.com/kubev2v/logql-transpiler/pkg/query"
)

const unwrapAlias = "uw_rate_a"

// unwrapStatement exposes a label as the numeric column the unwrap
// functions aggregate.
func unwrapStatement(node *logql.Node, req query.Request) (query.Request, error) {
	if streaming(req) {
		return req, errors.NewUnsupportedConstructError(logql.RuleUnwrapStatement, "unwrap is not supported after line_format")
	}
	label := node.Child(logql.RuleLabel).Value
	req = req.AddSelect(fmt.Sprintf("toFloat64OrNull(%s) as %s", labelExpr(req, label), unwrappedColumn))
	return req.AndWhere(query.Literal(unwrappedColumn + " IS NOT NULL")), nil
}

func unwrapFunctions() map[string]Transform {
	col := unwrapAlias + "." + unwrappedColumn
	ts := unwrapAlias + ".timestamp_ms"
	return map[string]Transform{
		"rate": unwrapFunction(func(bucket int64) string {
			return fmt.Sprintf("sum(%s) / %s", col, seconds(bucket))
		}),
		"sum_over_time":    unwrapAggregate("sum(" + col + ")"),
		"avg_over_time":    unwrapAggregate("avg(" + col + ")"),
		"max_over_time":    unwrapAggregate("max(" + col + ")"),
		"min_over_time":    unwrapAggregate("min(" + col + ")"),
		"first_over_time":  unwrapAggregate(fmt.Sprintf("argMin(%s, %s)", col, ts)),
		"last_over_time":   unwrapAggregate(fmt.Sprintf("argMax(%s, %s)", col, ts)),
		"stddev_over_time": unwrapAggregate("stddevPop(" + col + ")"),
		"stdvar_over_time": unwrapAggregate("varPop(" + col + ")"),
	}
}

func unwrapAggregate(value string) Transform {
	return unwrapFunction(func(int64) string { return value })
}

func unwrapFunction(value func(bucket int64) string) Transform {
	return func(node *logql.Node, req query.Request) (query.Request, error) {
		if streaming(req) {
			return req, errors.NewUnsupportedConstructError(node.Rule, "unwrap functions are not supported after line_format")
		}
		bucket, err := bucketMs(node, req)
		if err != nil {
			return req, err
		}
		labels := grouping(node.Child(logql.RuleReqByWithoutUnwrap), unwrapAlias, req.Extracted != "", unwrapAlias+".labels")
		return window(unwrapAlias, req, bucket, labels, value(bucket)), nil
	}
}
