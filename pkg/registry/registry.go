package registry

import (
	"maps"
	"slices"
	"sync"

	"github.com/kubev2v/logql-transpiler/pkg/errors"
	"github.com/kubev2v/logql-transpiler/pkg/logql"
	"github.com/kubev2v/logql-transpiler/pkg/query"
)

// Transform extends req with the semantics of node.
type Transform func(node *logql.Node, req query.Request) (query.Request, error)

// Registry maps operator or function names to transforms.
type Registry struct {
	kind    string
	entries map[string]Transform
}

func New(kind string, entries map[string]Transform) *Registry {
	return &Registry{kind: kind, entries: maps.Clone(entries)}
}

func (r *Registry) Kind() string {
	return r.kind
}

// Lookup returns the transform registered under name or an
// UnsupportedOperatorError naming the registry kind.
func (r *Registry) Lookup(name string) (Transform, error) {
	t, ok := r.entries[name]
	if !ok {
		return nil, errors.NewUnsupportedOperatorError(r.kind, name)
	}
	return t, nil
}

func (r *Registry) Apply(name string, node *logql.Node, req query.Request) (query.Request, error) {
	t, err := r.Lookup(name)
	if err != nil {
		return req, err
	}
	return t(node, req)
}

// Names returns the registered keys in sorted order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.entries))
}

const (
	KindStreamSelector       = "stream selector operator"
	KindLineFilter           = "line filter operator"
	KindParser               = "parser"
	KindNumberOperator       = "number operator"
	KindUnwrap               = "unwrap function"
	KindRangeAggregation     = "range aggregation"
	KindHighLevelAggregation = "aggregation operator"
	KindLineFormat           = "line format"
)

// Set bundles every registry the compiler dispatches to.
type Set struct {
	StreamSelector       *Registry
	LineFilter           *Registry
	Parser               *Registry
	NumberOperator       *Registry
	Unwrap               *Registry
	RangeAggregation     *Registry
	HighLevelAggregation *Registry
	LineFormat           *Registry
	UnwrapStatement      Transform
}

// NewSet builds the ClickHouse operator set.
func NewSet() *Set {
	return &Set{
		StreamSelector:       New(KindStreamSelector, streamSelectorOperators()),
		LineFilter:           New(KindLineFilter, lineFilterOperators()),
		Parser:               New(KindParser, parsers()),
		NumberOperator:       New(KindNumberOperator, numberOperators()),
		Unwrap:               New(KindUnwrap, unwrapFunctions()),
		RangeAggregation:     New(KindRangeAggregation, rangeAggregations()),
		HighLevelAggregation: New(KindHighLevelAggregation, highLevelAggregations()),
		LineFormat:           New(KindLineFormat, map[string]Transform{"line_format": lineFormat}),
		UnwrapStatement:      unwrapStatement,
	}
}

var (
	builtinSet  *Set
	builtinOnce sync.Once
)

// Builtin returns the process-wide operator set. It is built on first use and
// never modified afterwards.
func Builtin() *Set {
	builtinOnce.Do(func() {
		builtinSet = NewSet()
	})
	return builtinSet
}
