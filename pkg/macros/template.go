package macros

import (
	"bytes"
	"fmt"
	"regexp"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/kubev2v/logql-transpiler/pkg/errors"
	"github.com/kubev2v/logql-transpiler/pkg/logql"
)

var macroName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// TemplateMacro expands a call by executing a text template. The template
// sees the call name as .Name and the arguments as .Args, with string
// arguments already unquoted:
//
//	errors_of("api") -> {app="{{ index .Args 0 }}"} |= "error"
type TemplateMacro struct {
	name string
	tmpl *template.Template
}

type templateData struct {
	Name string
	Args []string
}

func NewTemplateMacro(name, body string) (*TemplateMacro, error) {
	if !macroName.MatchString(name) {
		return nil, errors.NewInvalidExpressionError("macro name", name, nil)
	}
	if logql.IsBuiltinFunction(name) {
		return nil, errors.NewInvalidExpressionError("macro name", name, fmt.Errorf("shadows a builtin function"))
	}
	if logql.IsRule(name) {
		return nil, errors.NewInvalidExpressionError("macro name", name, fmt.Errorf("collides with a grammar rule"))
	}

	tmpl, err := template.New(name).Option("missingkey=error").Funcs(sprig.TxtFuncMap()).Parse(body)
	if err != nil {
		return nil, errors.NewInvalidExpressionError("macro template", body, err)
	}
	return &TemplateMacro{name: name, tmpl: tmpl}, nil
}

func (m *TemplateMacro) RuleName() string {
	return m.name
}

func (m *TemplateMacro) Stringify(node *logql.Node) (string, error) {
	call := node
	if call == nil || call.Rule != m.name {
		call = node.Child(m.name)
	}
	if call == nil {
		return "", errors.NewMacroResolutionError(m.name, "call not found")
	}

	data := templateData{Name: m.name}
	for _, arg := range call.Children(logql.RuleMacroArg) {
		data.Args = append(data.Args, arg.Value)
	}

	var buf bytes.Buffer
	if err := m.tmpl.Execute(&buf, data); err != nil {
		return "", errors.NewMacroResolutionError(m.name, err.Error())
	}
	return buf.String(), nil
}
