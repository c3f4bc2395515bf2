package registry

import (
	"fmt"
	"strconv"

	"github.com/kubev2v/logql-transpiler/pkg/errors"
	"github.com/kubev2v/logql-transpiler/pkg/logql"
	"github.com/kubev2v/logql-transpiler/pkg/query"
)

type comparison struct {
	sql string
	cmp func(a, b float64) bool
}

func numberOperators() map[string]Transform {
	eq := comparison{"=", func(a, b float64) bool { return a == b }}
	return map[string]Transform{
		"==": numberOperator(eq),
		"=":  numberOperator(eq),
		"!=": numberOperator(comparison{"!=", func(a, b float64) bool { return a != b }}),
		">":  numberOperator(comparison{">", func(a, b float64) bool { return a > b }}),
		">=": numberOperator(comparison{">=", func(a, b float64) bool { return a >= b }}),
		"<":  numberOperator(comparison{"<", func(a, b float64) bool { return a < b }}),
		"<=": numberOperator(comparison{"<=", func(a, b float64) bool { return a <= b }}),
	}
}

// numberOperator filters either samples of an aggregation, when node is a
// compared_agg_statement, or rows by a numeric label value.
func numberOperator(c comparison) Transform {
	return func(node *logql.Node, req query.Request) (query.Request, error) {
		switch node.Rule {
		case logql.RuleComparedAggStatement:
			return compareSamples(c, node, req)
		case logql.RuleNumberLabelFilterExpression:
			return compareLabel(c, node, req)
		default:
			return req, errors.NewUnsupportedConstructError(node.Rule, fmt.Sprintf("number operator cannot be applied to %s", node.Rule))
		}
	}
}

func compareSamples(c comparison, node *logql.Node, req query.Request) (query.Request, error) {
	v, err := parseNumber(node.Child(logql.RuleComparedAggStatementCmp).Child(logql.RuleNumberValue).Value)
	if err != nil {
		return req, err
	}
	out := outerSelect("cmp_a", req, "*").
		AndWhere(query.Literal(fmt.Sprintf("value %s %s", c.sql, formatNumber(v))))
	return out.SetOrderBy(query.Asc, "labels", "timestamp_ms"), nil
}

func compareLabel(c comparison, node *logql.Node, req query.Request) (query.Request, error) {
	label := node.Child(logql.RuleLabel).Value
	v, err := labelThreshold(node)
	if err != nil {
		return req, err
	}

	if streaming(req) {
		return req.AddStream(query.Transform{
			Stage: "label_filter",
			Apply: func(row query.Row) (query.Row, bool) {
				f, err := strconv.ParseFloat(row.Labels[label], 64)
				if err != nil {
					return row, false
				}
				return row, c.cmp(f, v)
			},
		}), nil
	}

	return req.AndWhere(query.Literal(fmt.Sprintf("toFloat64OrNull(%s) %s %s", labelExpr(req, label), c.sql, formatNumber(v)))), nil
}

// labelThreshold returns the value a label is compared with. A duration is
// taken in seconds, so label values are expected in seconds too.
func labelThreshold(node *logql.Node) (float64, error) {
	if d := node.Child(logql.RuleDurationValue); d != nil {
		ms, err := DurationMs(d.Value)
		if err != nil {
			return 0, err
		}
		return float64(ms) / 1000, nil
	}
	return parseNumber(node.Child(logql.RuleNumberValue).Value)
}
