package query

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Render turns r into query text. It is pure: rendering the same request
// twice yields the same string.
func Render(r Request) (string, error) {
	if len(r.Requests) > 0 {
		parts := make([]string, 0, len(r.Requests))
		for _, sub := range r.Requests {
			s, err := Render(sub)
			if err != nil {
				return "", err
			}
			parts = append(parts, "("+s+")")
		}
		return strings.Join(parts, " UNION ALL "), nil
	}

	builder, err := selectBuilder(r)
	if err != nil {
		return "", err
	}

	query, _, err := builder.ToSql()
	if err != nil {
		return "", err
	}
	return query, nil
}

func selectBuilder(r Request) (sq.SelectBuilder, error) {
	builder := sq.Select(r.Select...)

	with, err := renderWith(r.With)
	if err != nil {
		return builder, err
	}
	if with != "" {
		builder = builder.Prefix("WITH " + with)
	}
	if r.Distinct {
		builder = builder.Distinct()
	}
	if r.From != "" {
		builder = builder.From(r.From)
	}
	for _, join := range r.LeftJoin {
		on := RenderClause(join.On)
		if on == "" {
			builder = builder.LeftJoin(join.Name)
			continue
		}
		builder = builder.LeftJoin(join.Name + " ON " + on)
	}
	if where := RenderClause(r.Where); where != "" {
		builder = builder.Where(where)
	}
	if len(r.GroupBy) > 0 {
		builder = builder.GroupBy(r.GroupBy...)
	}
	if having := RenderClause(r.Having); having != "" {
		builder = builder.Having(having)
	}
	if r.OrderBy != nil && len(r.OrderBy.Name) > 0 {
		names := make([]string, 0, len(r.OrderBy.Name))
		for _, n := range r.OrderBy.Name {
			names = append(names, n+" "+string(r.OrderBy.Order))
		}
		builder = builder.OrderBy(names...)
	}
	if r.Limit != nil {
		builder = builder.Limit(*r.Limit)
	}
	if r.Offset != nil {
		builder = builder.Offset(*r.Offset)
	}
	if r.Final {
		builder = builder.Suffix("FINAL")
	}

	return builder, nil
}

func renderWith(with []NamedRequest) (string, error) {
	parts := make([]string, 0, len(with))
	for _, w := range with {
		if w.Request == nil {
			continue
		}
		s, err := Render(*w.Request)
		if err != nil {
			return "", err
		}
		parts = append(parts, w.Alias+" AS ("+s+")")
	}
	return strings.Join(parts, ", "), nil
}
