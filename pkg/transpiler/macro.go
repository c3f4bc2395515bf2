package transpiler

import (
	"github.com/kubev2v/logql-transpiler/pkg/errors"
	"github.com/kubev2v/logql-transpiler/pkg/logql"
)

// expand renders a user_macro call back to query text.
func (t *Transpiler) expand(call *logql.Node) (string, error) {
	m, ok := t.macros.Find(call)
	if !ok {
		return "", errors.NewMacroResolutionError(macroName(call), "no macro is registered under this name")
	}
	text, err := m.Stringify(call)
	if err != nil {
		if errors.IsMacroResolutionError(err) {
			return "", err
		}
		return "", errors.NewMacroResolutionError(macroName(call), err.Error())
	}
	return text, nil
}

func macroName(call *logql.Node) string {
	if len(call.Nodes) == 0 {
		return call.Text
	}
	return call.Nodes[0].Rule
}
