package v1

import (
	"time"

	"github.com/kubev2v/logql-transpiler/internal/models"
	"github.com/kubev2v/logql-transpiler/pkg/transpiler"
)

// ToParams converts the request into compile parameters. Missing times are
// left zero so the transpiler applies its default range.
func (r CompileRequest) ToParams() (transpiler.Params, error) {
	start, err := transpiler.ParseTimeOrDefault(r.Start, time.Time{})
	if err != nil {
		return transpiler.Params{}, err
	}
	end, err := transpiler.ParseTimeOrDefault(r.End, time.Time{})
	if err != nil {
		return transpiler.Params{}, err
	}
	step, err := transpiler.ParseStep(r.Step)
	if err != nil {
		return transpiler.Params{}, err
	}

	direction := transpiler.Backward
	if r.Direction == Forward {
		direction = transpiler.Forward
	}

	return transpiler.Params{
		Query:     r.Query,
		Start:     start,
		End:       end,
		Step:      step,
		Direction: direction,
		Limit:     r.Limit,
	}, nil
}

func NewCompileResponse(q models.CompiledQuery) CompileResponse {
	return CompileResponse{
		Query:    q.Query,
		Matrix:   q.Matrix,
		Duration: q.Duration,
		Stream:   nonNil(q.Stages),
	}
}

func NewTailResponse(q models.TailQuery) TailResponse {
	return TailResponse{
		Query:  q.Query,
		Stream: nonNil(q.Stages),
	}
}

func NewBatchCompileItem(r models.BatchResult) BatchCompileItem {
	if r.Err != nil {
		e := r.Err.Error()
		return BatchCompileItem{Error: &e}
	}
	if r.Query == nil {
		return BatchCompileItem{}
	}
	resp := NewCompileResponse(*r.Query)
	return BatchCompileItem{Result: &resp}
}

func NewHistoryEntry(e models.HistoryEntry) HistoryEntry {
	entry := HistoryEntry{
		Id:        e.ID,
		Kind:      string(e.Kind),
		Query:     e.Query,
		Matrix:    e.Matrix,
		CreatedAt: e.CreatedAt,
	}
	if e.SQL != "" {
		sql := e.SQL
		entry.Sql = &sql
	}
	if e.Error != "" {
		msg := e.Error
		entry.Error = &msg
	}
	return entry
}

func NewHistoryResponse(entries []models.HistoryEntry) HistoryResponse {
	resp := HistoryResponse{Entries: make([]HistoryEntry, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, NewHistoryEntry(e))
	}
	return resp
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
