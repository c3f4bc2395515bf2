package query

import "slices"

type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Context carries the time range a request was compiled for. All values are
// unix milliseconds except Step and Duration which are milliseconds.
type Context struct {
	Start    int64
	End      int64
	Step     int64
	Duration int64
}

type Join struct {
	Name string
	On   *Clause
}

type OrderBy struct {
	Name  []string
	Order Order
}

// NamedRequest is a common table expression. A nil Request is skipped when
// rendering.
type NamedRequest struct {
	Alias   string
	Request *Request
}

// Request is the structured form of a backend query. It is threaded through
// the compiler by value; every helper returns a modified copy and never
// mutates the receiver's slices.
type Request struct {
	Select   []string
	From     string
	LeftJoin []Join
	Where    *Clause
	GroupBy  []string
	Having   *Clause
	OrderBy  *OrderBy
	Limit    *uint64
	Offset   *uint64
	Distinct bool
	Final    bool
	With     []NamedRequest
	Requests []Request

	Matrix bool
	Ctx    *Context
	Stream []Transform

	// Extracted is the SQL expression of the labels produced by parser stages.
	// It is empty until a parser runs.
	Extracted string
}

// Clone returns a copy of r that shares no slices with it.
func (r Request) Clone() Request {
	r.Select = slices.Clone(r.Select)
	r.LeftJoin = slices.Clone(r.LeftJoin)
	r.GroupBy = slices.Clone(r.GroupBy)
	r.With = slices.Clone(r.With)
	r.Requests = slices.Clone(r.Requests)
	r.Stream = slices.Clone(r.Stream)
	if r.OrderBy != nil {
		o := *r.OrderBy
		o.Name = slices.Clone(o.Name)
		r.OrderBy = &o
	}
	if r.Ctx != nil {
		c := *r.Ctx
		r.Ctx = &c
	}
	return r
}

// AndWhere returns r with preds added to its WHERE clause.
func (r Request) AndWhere(preds ...Predicate) Request {
	r.Where = And(r.Where, preds...)
	return r
}

// AndHaving returns r with preds added to its HAVING clause.
func (r Request) AndHaving(preds ...Predicate) Request {
	r.Having = And(r.Having, preds...)
	return r
}

// AddSelect returns r with columns appended to the projection.
func (r Request) AddSelect(columns ...string) Request {
	r.Select = append(slices.Clone(r.Select), columns...)
	return r
}

// ReplaceSelect returns r with the first column equal to old replaced by
// column. The column is appended when old is not present.
func (r Request) ReplaceSelect(old, column string) Request {
	sel := slices.Clone(r.Select)
	if i := slices.Index(sel, old); i >= 0 {
		sel[i] = column
	} else {
		sel = append(sel, column)
	}
	r.Select = sel
	return r
}

// AddWith returns r with a common table expression appended.
func (r Request) AddWith(alias string, req *Request) Request {
	r.With = append(slices.Clone(r.With), NamedRequest{Alias: alias, Request: req})
	return r
}

// AddStream returns r with transforms appended to its client-side stream.
func (r Request) AddStream(transforms ...Transform) Request {
	r.Stream = append(slices.Clone(r.Stream), transforms...)
	return r
}

func (r Request) SetOrderBy(order Order, names ...string) Request {
	r.OrderBy = &OrderBy{Name: slices.Clone(names), Order: order}
	return r
}

func (r Request) SetLimit(limit uint64) Request {
	r.Limit = &limit
	return r
}

// WithCtx returns r with the given context copied in.
func (r Request) WithCtx(ctx Context) Request {
	r.Ctx = &ctx
	return r
}

// Inner returns r stripped of everything that belongs to the outer query:
// context, stream, common table expressions and, when unordered is set,
// its order and limit. The result is suitable as a WITH body.
func (r Request) Inner(unordered bool) *Request {
	inner := r.Clone()
	inner.Ctx = nil
	inner.Stream = nil
	inner.With = nil
	inner.Matrix = false
	inner.Extracted = ""
	if unordered {
		inner.OrderBy = nil
		inner.Limit = nil
		inner.Offset = nil
	}
	return &inner
}
