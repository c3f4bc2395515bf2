package macros

import (
	"fmt"
	"sync"

	"github.com/kubev2v/logql-transpiler/pkg/logql"
)

// Macro rewrites a user_macro call into plain query text.
type Macro interface {
	// RuleName is the name of the call the macro recognizes.
	RuleName() string
	// Stringify renders the user_macro subtree as query text.
	Stringify(node *logql.Node) (string, error)
}

// Registry holds the macros known to the compiler in registration order.
// It is filled at startup; Find is safe to call concurrently with it.
type Registry struct {
	mu     sync.RWMutex
	macros []Macro
}

func NewRegistry(macros ...Macro) (*Registry, error) {
	r := &Registry{}
	for _, m := range macros {
		if err := r.Register(m); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(m Macro) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.macros {
		if existing.RuleName() == m.RuleName() {
			return fmt.Errorf("macro %q is already registered", m.RuleName())
		}
	}
	r.macros = append(r.macros, m)
	return nil
}

// Find returns the first macro whose rule matches a node under the
// user_macro subtree.
func (r *Registry) Find(node *logql.Node) (Macro, bool) {
	if r == nil || node == nil {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.macros {
		if node.Child(m.RuleName()) != nil {
			return m, true
		}
	}
	return nil, false
}

// Names returns the rule names of the registered macros.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.macros))
	for _, m := range r.macros {
		names = append(names, m.RuleName())
	}
	return names
}
