package models

// CompiledQuery is a LogQL query compiled to ClickHouse SQL.
type CompiledQuery struct {
	Query  string
	Matrix bool
	// Duration is the bucket width in milliseconds.
	Duration int64
	// Stages names the client-side transforms to run over the rows.
	Stages []string
}

type TailQuery struct {
	Query  string
	Stages []string
}

// BatchResult is the outcome of one query of a batch. Exactly one of Query
// and Err is set.
type BatchResult struct {
	Query *CompiledQuery
	Err   error
}
