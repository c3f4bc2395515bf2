package registry

import (
	"fmt"

	"github.com/kubev2v/logql-transpiler/pkg/logql"
	"github.com/kubev2v/logql-transpiler/pkg/query"
)

// streamSelectorOperators handle both stream selector matchers and string
// label filters. Both node kinds carry a label, an operator and a quoted_str.
func streamSelectorOperators() map[string]Transform {
	return map[string]Transform{
		"=":  labelMatcher(equalMatcher(false)),
		"!=": labelMatcher(equalMatcher(true)),
		"=~": labelMatcher(regexpMatcher(false)),
		"!~": labelMatcher(regexpMatcher(true)),
	}
}

type matcher struct {
	sql   func(expr, value string) string
	match func(value string) bool
}

type matcherFactory func(value string) (matcher, error)

func equalMatcher(negate bool) matcherFactory {
	return func(value string) (matcher, error) {
		op := "="
		if negate {
			op = "!="
		}
		return matcher{
			sql: func(expr, value string) string {
				return fmt.Sprintf("%s %s %s", expr, op, Quote(value))
			},
			match: func(v string) bool {
				return (v == value) != negate
			},
		}, nil
	}
}

func regexpMatcher(negate bool) matcherFactory {
	return func(value string) (matcher, error) {
		re, err := compileRegexp(anchored(value))
		if err != nil {
			return matcher{}, err
		}
		return matcher{
			sql: func(expr, value string) string {
				m := fmt.Sprintf("match(%s, %s)", expr, Quote(anchored(value)))
				if negate {
					return "NOT " + m
				}
				return m
			},
			match: func(v string) bool {
				return re.MatchString(v) != negate
			},
		}, nil
	}
}

func labelMatcher(factory matcherFactory) Transform {
	return func(node *logql.Node, req query.Request) (query.Request, error) {
		label := node.Child(logql.RuleLabel).Value
		value := node.Child(logql.RuleQuotedStr).Value

		m, err := factory(value)
		if err != nil {
			return req, err
		}

		if streaming(req) {
			return req.AddStream(query.Transform{
				Stage: "label_filter",
				Apply: func(row query.Row) (query.Row, bool) {
					return row, m.match(row.Labels[label])
				},
			}), nil
		}

		return req.AndWhere(query.Literal(m.sql(labelExpr(req, label), value))), nil
	}
}
