package models

import "time"

type QueryKind string

const (
	QueryKindCompile QueryKind = "compile"
	QueryKindTail    QueryKind = "tail"
)

func ParseQueryKind(s string) (QueryKind, bool) {
	switch QueryKind(s) {
	case QueryKindCompile, QueryKindTail:
		return QueryKind(s), true
	default:
		return "", false
	}
}

// HistoryEntry records one compile or tail call. SQL is empty when the call
// failed and Error holds the reason.
type HistoryEntry struct {
	ID        string
	Kind      QueryKind
	Query     string
	SQL       string
	Matrix    bool
	Error     string
	CreatedAt time.Time
}

type HistoryFilter struct {
	Kind       QueryKind
	FailedOnly bool
	Limit      uint64
}
