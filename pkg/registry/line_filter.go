package registry

import (
	"fmt"
	"strings"

	"github.com/kubev2v/logql-transpiler/pkg/logql"
	"github.com/kubev2v/logql-transpiler/pkg/query"
)

func lineFilterOperators() map[string]Transform {
	return map[string]Transform{
		"|=": containsFilter(false),
		"!=": containsFilter(true),
		"|~": regexpFilter(false),
		"!~": regexpFilter(true),
	}
}

func containsFilter(negate bool) Transform {
	return func(node *logql.Node, req query.Request) (query.Request, error) {
		needle := node.Child(logql.RuleQuotedStr).Value

		if streaming(req) {
			return req.AddStream(query.Transform{
				Stage: "line_filter",
				Apply: func(row query.Row) (query.Row, bool) {
					return row, strings.Contains(row.Line, needle) != negate
				},
			}), nil
		}

		op := "!="
		if negate {
			op = "="
		}
		return req.AndWhere(query.Literal(fmt.Sprintf("position(string, %s) %s 0", Quote(needle), op))), nil
	}
}

func regexpFilter(negate bool) Transform {
	return func(node *logql.Node, req query.Request) (query.Request, error) {
		pattern := node.Child(logql.RuleQuotedStr).Value
		re, err := compileRegexp(pattern)
		if err != nil {
			return req, err
		}

		if streaming(req) {
			return req.AddStream(query.Transform{
				Stage: "line_filter",
				Apply: func(row query.Row) (query.Row, bool) {
					return row, re.MatchString(row.Line) != negate
				},
			}), nil
		}

		m := fmt.Sprintf("match(string, %s)", Quote(pattern))
		if negate {
			m = "NOT " + m
		}
		return req.AndWhere(query.Literal(m)), nil
	}
}
