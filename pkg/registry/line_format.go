package registry

import (
	"bytes"
	"regexp"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/kubev2v/logql-transpiler/pkg/errors"
	"github.com/kubev2v/logql-transpiler/pkg/logql"
	"github.com/kubev2v/logql-transpiler/pkg/query"
)

const errTemplateFormat = "TemplateFormatErr"

// functionMap is the sprig text function set plus the capitalized names
// older line templates still use.
var functionMap = func() template.FuncMap {
	funcs := sprig.TxtFuncMap()
	legacy := template.FuncMap{
		"ToLower":    strings.ToLower,
		"ToUpper":    strings.ToUpper,
		"Replace":    strings.Replace,
		"Trim":       strings.Trim,
		"TrimLeft":   strings.TrimLeft,
		"TrimRight":  strings.TrimRight,
		"TrimPrefix": strings.TrimPrefix,
		"TrimSuffix": strings.TrimSuffix,
		"TrimSpace":  strings.TrimSpace,
		"regexReplaceAllLiteral": func(regex string, s string, repl string) string {
			r := regexp.MustCompile(regex)
			return r.ReplaceAllLiteralString(s, repl)
		},
	}
	for name, fn := range legacy {
		funcs[name] = fn
	}
	return funcs
}()

// lineFormat rewrites every line from a text template evaluated against the
// row labels. It always runs client-side.
func lineFormat(node *logql.Node, req query.Request) (query.Request, error) {
	text := node.Child(logql.RuleQuotedStr).Value
	tmpl, err := template.New("line").Option("missingkey=zero").Funcs(functionMap).Parse(text)
	if err != nil {
		return req, errors.NewInvalidExpressionError("line template", text, err)
	}

	return req.AddStream(query.Transform{
		Stage: "line_format",
		Apply: func(row query.Row) (query.Row, bool) {
			var buf bytes.Buffer
			if err := tmpl.Execute(&buf, row.Labels); err != nil {
				row.Labels[ErrorLabel] = errTemplateFormat
				return row, true
			}
			row.Line = buf.String()
			return row, true
		},
	}), nil
}
