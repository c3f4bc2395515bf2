package query

import (
	"slices"
	"strings"
)

const (
	OpAnd = "AND"
	OpOr  = "OR"
)

// Predicate is either a Literal or a nested *Clause.
type Predicate interface {
	predicate()
}

// Literal is a SQL condition rendered verbatim.
type Literal string

func (Literal) predicate() {}

// Clause is a boolean combination of predicates. An absent clause is nil and
// never an empty Clause.
type Clause struct {
	Op       string
	Operands []Predicate
}

func (*Clause) predicate() {}

// NewClause builds a clause from predicates, dropping nil ones.
func NewClause(op string, preds ...Predicate) *Clause {
	c := &Clause{Op: op}
	for _, p := range preds {
		if p == nil {
			continue
		}
		if cl, ok := p.(*Clause); ok && cl == nil {
			continue
		}
		c.Operands = append(c.Operands, p)
	}
	return c
}

// And appends preds to where when it is already an AND clause, otherwise it
// wraps where and preds into a new AND clause. where is never modified.
func And(where *Clause, preds ...Predicate) *Clause {
	if len(preds) == 0 {
		return where
	}
	if where == nil || len(where.Operands) == 0 {
		return NewClause(OpAnd, preds...)
	}
	if where.Op == OpAnd {
		return NewClause(OpAnd, append(slices.Clone(where.Operands), preds...)...)
	}
	return NewClause(OpAnd, append([]Predicate{where}, preds...)...)
}

// RenderClause joins the operands of c with its operator. Nested clauses are
// parenthesized.
func RenderClause(c *Clause) string {
	if c == nil {
		return ""
	}
	parts := make([]string, 0, len(c.Operands))
	for _, p := range c.Operands {
		switch v := p.(type) {
		case Literal:
			parts = append(parts, string(v))
		case *Clause:
			if v == nil || len(v.Operands) == 0 {
				continue
			}
			parts = append(parts, "("+RenderClause(v)+")")
		}
	}
	return strings.Join(parts, " "+c.Op+" ")
}
