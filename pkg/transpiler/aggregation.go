package transpiler

import (
	"fmt"

	"github.com/kubev2v/logql-transpiler/pkg/errors"
	"github.com/kubev2v/logql-transpiler/pkg/logql"
	"github.com/kubev2v/logql-transpiler/pkg/query"
)

func (t *Transpiler) aggregationOperator(agg *logql.Node, req query.Request) (query.Request, error) {
	var err error
	if fn := agg.Child(logql.RuleLogRangeAggregation); fn != nil {
		req, err = t.logRangeAggregation(fn, req)
	} else if fn := agg.Child(logql.RuleUnwrapFunction); fn != nil {
		req, err = t.unwrapFunction(fn, req)
	}
	if err != nil {
		return req, err
	}
	return t.registries.HighLevelAggregation.Apply(agg.Child(logql.RuleAggregationOperatorFn).Value, agg, req)
}

func (t *Transpiler) logRangeAggregation(fn *logql.Node, req query.Request) (query.Request, error) {
	req, err := t.selector(fn.Child(logql.RuleLogStreamSelector), req)
	if err != nil {
		return req, err
	}
	name := fn.Child(logql.RuleLogRangeAggregationFn).Value
	if len(req.Stream) > 0 {
		return req, errors.NewUnsupportedConstructError(fn.Rule,
			fmt.Sprintf("%s is not supported after %s", name, req.Stream[len(req.Stream)-1].Stage))
	}
	return t.registries.RangeAggregation.Apply(name, fn, req)
}

// unwrapFunction compiles the selector first, then the unwrap statement that
// reads from it, then the function over the unwrapped values.
func (t *Transpiler) unwrapFunction(fn *logql.Node, req query.Request) (query.Request, error) {
	expr := fn.Child(logql.RuleUnwrapExpression)
	req, err := t.selector(expr.Child(logql.RuleLogStreamSelector), req)
	if err != nil {
		return req, err
	}
	if req, err = t.registries.UnwrapStatement(expr.Child(logql.RuleUnwrapStatement), req); err != nil {
		return req, err
	}
	return t.registries.Unwrap.Apply(fn.Child(logql.RuleUnwrapFn).Value, fn, req)
}
