package registry

import (
	"github.com/kubev2v/logql-transpiler/pkg/logql"
	"github.com/kubev2v/logql-transpiler/pkg/query"
)

const aggAlias = "agg_a"

func highLevelAggregations() map[string]Transform {
	v := aggAlias + ".value"
	return map[string]Transform{
		"sum":    highLevelAggregation("sum(" + v + ")"),
		"min":    highLevelAggregation("min(" + v + ")"),
		"max":    highLevelAggregation("max(" + v + ")"),
		"avg":    highLevelAggregation("avg(" + v + ")"),
		"count":  highLevelAggregation("toFloat64(count(1))"),
		"stddev": highLevelAggregation("stddevPop(" + v + ")"),
		"stdvar": highLevelAggregation("varPop(" + v + ")"),
	}
}

// highLevelAggregation combines the series produced by a range or unwrap
// aggregation. Without a by/without clause every series collapses into one.
func highLevelAggregation(value string) Transform {
	return func(node *logql.Node, req query.Request) (query.Request, error) {
		labels := grouping(node.Child(logql.RuleReqByWithout), aggAlias, false, "'{}'")
		out := outerSelect(aggAlias, req,
			labels+" as labels",
			aggAlias+".timestamp_ms as timestamp_ms",
			value+" as value",
		)
		out.GroupBy = []string{"labels", "timestamp_ms"}
		out.Matrix = true
		return out.SetOrderBy(query.Asc, "labels", "timestamp_ms"), nil
	}
}
