package v1

import "time"

type CompileRequestDirection string

const (
	Forward  CompileRequestDirection = "forward"
	Backward CompileRequestDirection = "backward"
)

// CompileRequest carries the parameters of a compile call. Times are RFC3339,
// unix nanoseconds or unix seconds with a fraction. Step is seconds or a
// duration.
type CompileRequest struct {
	Query     string                  `json:"query" form:"query"`
	Start     string                  `json:"start,omitempty" form:"start"`
	End       string                  `json:"end,omitempty" form:"end"`
	Step      string                  `json:"step,omitempty" form:"step"`
	Direction CompileRequestDirection `json:"direction,omitempty" form:"direction"`
	Limit     uint64                  `json:"limit,omitempty" form:"limit"`
}

type CompileResponse struct {
	Query  string `json:"query"`
	Matrix bool   `json:"matrix"`
	// Duration is the bucket width in milliseconds.
	Duration int64    `json:"duration"`
	Stream   []string `json:"stream"`
}

type TailRequest struct {
	Query string `json:"query" form:"query"`
}

type TailResponse struct {
	Query  string   `json:"query"`
	Stream []string `json:"stream"`
}

type BatchCompileRequest struct {
	Queries []CompileRequest `json:"queries"`
}

type BatchCompileItem struct {
	Result *CompileResponse `json:"result,omitempty"`
	Error  *string          `json:"error,omitempty"`
}

type BatchCompileResponse struct {
	Results []BatchCompileItem `json:"results"`
}

type HistoryRequest struct {
	Kind   string `form:"kind"`
	Failed bool   `form:"failed"`
	Limit  uint64 `form:"limit"`
}

type HistoryEntry struct {
	Id        string    `json:"id"`
	Kind      string    `json:"kind"`
	Query     string    `json:"query"`
	Sql       *string   `json:"sql,omitempty"`
	Matrix    bool      `json:"matrix"`
	Error     *string   `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

type Health struct {
	Status string `json:"status"`
}

type Error struct {
	Error string `json:"error"`
}
