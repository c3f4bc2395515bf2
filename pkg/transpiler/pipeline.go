package transpiler

import (
	"github.com/kubev2v/logql-transpiler/pkg/errors"
	"github.com/kubev2v/logql-transpiler/pkg/logql"
	"github.com/kubev2v/logql-transpiler/pkg/query"
)

// selector applies the label matchers of sel and then every pipeline stage
// in source order. Stages see the result of the stages before them, so the
// fold must stay sequential.
func (t *Transpiler) selector(sel *logql.Node, req query.Request) (query.Request, error) {
	if sel == nil {
		return req, errors.NewUnsupportedConstructError(logql.RuleLogStreamSelector, "query has no stream selector")
	}

	var err error
	for _, rule := range sel.Children(logql.RuleLogStreamSelectorRule) {
		req, err = t.registries.StreamSelector.Apply(rule.Child(logql.RuleOperator).Value, rule, req)
		if err != nil {
			return req, err
		}
	}

	for _, pipeline := range sel.Children(logql.RuleLogPipeline) {
		if req, err = t.stage(pipeline, req); err != nil {
			return req, err
		}
	}
	return req, nil
}

func (t *Transpiler) stage(pipeline *logql.Node, req query.Request) (query.Request, error) {
	if len(pipeline.Nodes) == 0 {
		return req, nil
	}

	stage := pipeline.Nodes[0]
	switch stage.Rule {
	case logql.RuleLineFilterExpression:
		return t.registries.LineFilter.Apply(stage.Child(logql.RuleLineFilterOperator).Value, stage, req)
	case logql.RuleParserExpression:
		return t.registries.Parser.Apply(stage.Child(logql.RuleParserFnName).Value, stage, req)
	case logql.RuleLabelFilterPipeline:
		return t.labelFilters(stage, req)
	case logql.RuleLineFormatExpression:
		return t.registries.LineFormat.Apply(stage.Child(logql.RuleLineFormatFn).Value, stage, req)
	case logql.RuleLabelsFormatExpression:
		return req, errors.NewUnsupportedConstructError(stage.Rule, "")
	default:
		return req, errors.NewUnsupportedConstructError(stage.Rule, "")
	}
}

// labelFilters dispatches every filter of the pipeline on its own, string
// filters to the stream selector operators and number filters to the number
// operators.
func (t *Transpiler) labelFilters(pipeline *logql.Node, req query.Request) (query.Request, error) {
	var err error
	for _, entry := range pipeline.Nodes {
		switch entry.Rule {
		case logql.RuleLabelFilterOr:
			return req, errors.NewUnsupportedConstructError(entry.Rule, "or is not supported in label filters")
		case logql.RuleLabelFilterExpression:
			if filter := entry.Child(logql.RuleStringLabelFilterExpression); filter != nil {
				req, err = t.registries.StreamSelector.Apply(filter.Child(logql.RuleOperator).Value, filter, req)
			} else if filter := entry.Child(logql.RuleNumberLabelFilterExpression); filter != nil {
				req, err = t.registries.NumberOperator.Apply(filter.Child(logql.RuleNumberOperator).Value, filter, req)
			}
			if err != nil {
				return req, err
			}
		}
	}
	return req, nil
}
