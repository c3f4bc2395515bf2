package transpiler

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kubev2v/logql-transpiler/pkg/errors"
	"github.com/kubev2v/logql-transpiler/pkg/logql"
	"github.com/kubev2v/logql-transpiler/pkg/macros"
	"github.com/kubev2v/logql-transpiler/pkg/query"
	"github.com/kubev2v/logql-transpiler/pkg/registry"
)

const (
	DefaultDatabase = "cloki"
	DefaultLimit    = 1000

	// defaultDuration is reported for results that carry no bucket width.
	defaultDuration = 1000
	defaultRange    = time.Hour

	selectorAlias = "sel_a"
	tailBound     = "timestamp_ms >= (toUnixTimestamp(now()) - 5) * 1000"
)

type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
)

// Params is one compile request. Zero times default to the last hour and a
// zero Limit to the configured default.
type Params struct {
	Query     string
	Start     time.Time
	End       time.Time
	Step      time.Duration
	Direction Direction
	Limit     uint64
}

type Result struct {
	Query  string
	Matrix bool
	// Duration is the bucket width in milliseconds.
	Duration int64
	Stream   []query.Transform
}

type TailResult struct {
	Query  string
	Stream []query.Transform
}

// Transpiler compiles LogQL into ClickHouse queries. It holds no per-call
// state and is safe for concurrent use.
type Transpiler struct {
	database     string
	registries   *registry.Set
	macros       *macros.Registry
	now          func() time.Time
	defaultLimit uint64
	logger       *zap.SugaredLogger
}

type Option func(*Transpiler)

func WithDatabase(name string) Option {
	return func(t *Transpiler) {
		t.database = name
	}
}

func WithRegistries(set *registry.Set) Option {
	return func(t *Transpiler) {
		t.registries = set
	}
}

func WithMacros(r *macros.Registry) Option {
	return func(t *Transpiler) {
		t.macros = r
	}
}

// WithClock replaces time.Now, which resolves missing time bounds.
func WithClock(now func() time.Time) Option {
	return func(t *Transpiler) {
		t.now = now
	}
}

func WithDefaultLimit(limit uint64) Option {
	return func(t *Transpiler) {
		t.defaultLimit = limit
	}
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(t *Transpiler) {
		t.logger = logger
	}
}

func New(opts ...Option) *Transpiler {
	t := &Transpiler{
		database:     DefaultDatabase,
		registries:   registry.Builtin(),
		now:          time.Now,
		defaultLimit: DefaultLimit,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = zap.S().Named("transpiler")
	}
	return t
}

// InitQuery returns the base request every compilation starts from: the
// newest log lines joined with their stream labels.
func (t *Transpiler) InitQuery() query.Request {
	req := query.Request{
		Select: []string{
			"time_series.labels as labels",
			"samples.string as string",
			"time_series.fingerprint as fingerprint",
			"samples.timestamp_ms as timestamp_ms",
		},
		From: t.database + ".samples",
		LeftJoin: []query.Join{{
			Name: t.database + ".time_series",
			On:   query.NewClause(query.OpAnd, query.Literal("samples.fingerprint = time_series.fingerprint")),
		}},
		Distinct: true,
	}
	return req.SetLimit(t.defaultLimit).SetOrderBy(query.Desc, "timestamp_ms", "labels")
}

func (t *Transpiler) Transpile(p Params) (Result, error) {
	return t.transpile(p, false)
}

func (t *Transpiler) transpile(p Params, expanded bool) (Result, error) {
	tree, err := logql.Parse(strings.TrimSpace(p.Query))
	if err != nil {
		return Result{}, err
	}
	root := tree.Root

	if call := root.Child(logql.RuleUserMacro); call != nil {
		if expanded {
			return Result{}, errors.NewMacroResolutionError(macroName(call), "macro expands into another macro")
		}
		text, err := t.expand(call)
		if err != nil {
			return Result{}, err
		}
		t.logger.Debugw("macro expanded", "macro", macroName(call), "query", text)
		p.Query = text
		return t.transpile(p, true)
	}

	start, end, err := t.timeRange(p)
	if err != nil {
		return Result{}, err
	}
	step := p.Step.Milliseconds()

	req := t.InitQuery()
	if p.Limit > 0 {
		req = req.SetLimit(p.Limit)
	}
	order := query.Desc
	if p.Direction == Forward {
		order = query.Asc
	}
	req = req.SetOrderBy(order, req.OrderBy.Name...)

	switch {
	case root.Child(logql.RuleAggregationOperator) != nil:
		agg := root.Child(logql.RuleAggregationOperator)
		if start, end, err = alignTo(root, start, end); err != nil {
			return Result{}, err
		}
		req = timeBound(req.WithCtx(query.Context{Start: start, End: end}), start, end)
		req, err = t.aggregationOperator(agg, req)
	case root.Child(logql.RuleUnwrapFunction) != nil:
		fn := root.Child(logql.RuleUnwrapFunction)
		if start, end, err = alignTo(fn, start, end); err != nil {
			return Result{}, err
		}
		req = timeBound(req.WithCtx(query.Context{Start: start, End: end, Step: step}), start, end)
		req, err = t.unwrapFunction(fn, req)
	case root.Child(logql.RuleLogRangeAggregation) != nil:
		fn := root.Child(logql.RuleLogRangeAggregation)
		if start, end, err = alignTo(fn, start, end); err != nil {
			return Result{}, err
		}
		req = timeBound(req.WithCtx(query.Context{Start: start, End: end, Step: step}), start, end)
		req, err = t.logRangeAggregation(fn, req)
	default:
		req, err = t.selector(root.Child(logql.RuleLogStreamSelector), req)
		if err == nil {
			req = wrapSelector(timeBound(req, start, end))
		}
	}
	if err != nil {
		return Result{}, err
	}

	if compared := root.Child(logql.RuleComparedAggStatement); compared != nil {
		op := compared.Child(logql.RuleComparedAggStatementCmp).Child(logql.RuleNumberOperator).Value
		if req, err = t.registries.NumberOperator.Apply(op, compared, req); err != nil {
			return Result{}, err
		}
	}

	sql, err := query.Render(req)
	if err != nil {
		return Result{}, err
	}

	duration := int64(defaultDuration)
	if req.Ctx != nil && req.Ctx.Duration > 0 {
		duration = req.Ctx.Duration
	}

	t.logger.Debugw("query compiled", "query", p.Query, "sql", sql, "matrix", req.Matrix,
		"duration", duration, "stream", query.StageNames(req.Stream))

	return Result{
		Query:    sql,
		Matrix:   req.Matrix,
		Duration: duration,
		Stream:   req.Stream,
	}, nil
}

// TranspileTail compiles a live tail query. Only plain selectors are
// accepted; the result reads the last five seconds in ascending order.
func (t *Transpiler) TranspileTail(q string) (TailResult, error) {
	tree, err := logql.Parse(strings.TrimSpace(q))
	if err != nil {
		return TailResult{}, err
	}

	for _, rule := range []string{
		logql.RuleUserMacro,
		logql.RuleAggregationOperator,
		logql.RuleUnwrapFunction,
		logql.RuleLogRangeAggregation,
	} {
		if tree.Root.Child(rule) != nil {
			return TailResult{}, errors.NewTailNotSupportedError(rule)
		}
	}

	req := t.InitQuery().AndWhere(query.Literal(tailBound))
	req, err = t.selector(tree.Root.Child(logql.RuleLogStreamSelector), req)
	if err != nil {
		return TailResult{}, err
	}
	req = req.SetOrderBy(query.Asc, "timestamp_ms")
	req.Limit = nil

	sql, err := query.Render(req)
	if err != nil {
		return TailResult{}, err
	}

	t.logger.Debugw("tail query compiled", "query", q, "sql", sql, "stream", query.StageNames(req.Stream))

	return TailResult{Query: sql, Stream: req.Stream}, nil
}

func (t *Transpiler) timeRange(p Params) (int64, int64, error) {
	now := t.now()
	start, end := p.Start, p.End
	if end.IsZero() {
		end = now
	}
	if start.IsZero() {
		start = now.Add(-defaultRange)
	}
	if start.After(end) {
		return 0, 0, errors.NewInvalidExpressionError("time range",
			fmt.Sprintf("%s..%s", start.Format(time.RFC3339Nano), end.Format(time.RFC3339Nano)),
			fmt.Errorf("start is after end"))
	}
	return start.UnixMilli(), end.UnixMilli(), nil
}

// alignTo snaps the range to the first duration found under node.
func alignTo(node *logql.Node, start, end int64) (int64, int64, error) {
	d, err := registry.DurationMs(node.Child(logql.RuleDurationValue).Value)
	if err != nil {
		return 0, 0, err
	}
	start, end = Align(start, end, d)
	return start, end, nil
}

func timeBound(req query.Request, start, end int64) query.Request {
	return req.AndWhere(
		query.Literal(fmt.Sprintf("timestamp_ms >= %d", start)),
		query.Literal(fmt.Sprintf("timestamp_ms <= %d", end)),
	)
}

// wrapSelector moves a compiled selector into the sel_a sub-query and orders
// the outer query by series.
func wrapSelector(req query.Request) query.Request {
	out := query.Request{
		Select: []string{"*"},
		From:   selectorAlias,
		Ctx:    req.Ctx,
		Stream: req.Stream,
	}
	out.With = append(out.With, req.With...)
	out = out.AddWith(selectorAlias, req.Inner(false))
	return out.SetOrderBy(req.OrderBy.Order, "labels", "timestamp_ms")
}
