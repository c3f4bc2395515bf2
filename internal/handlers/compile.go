package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/kubev2v/logql-transpiler/api/v1"
	"github.com/kubev2v/logql-transpiler/internal/models"
	"github.com/kubev2v/logql-transpiler/pkg/transpiler"
)

// GetCompile compiles a LogQL query
// (GET /compile)
func (h *Handler) GetCompile(c *gin.Context) {
	var req v1.CompileRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, v1.Error{Error: "invalid query parameters"})
		return
	}
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, v1.Error{Error: "query is required"})
		return
	}

	params, err := req.ToParams()
	if err != nil {
		writeError(c, "compile_handler", err)
		return
	}

	compiled, err := h.transpilerSrv.Compile(c.Request.Context(), params)
	if err != nil {
		writeError(c, "compile_handler", err)
		return
	}

	c.JSON(http.StatusOK, v1.NewCompileResponse(compiled))
}

// PostCompileBatch compiles several queries concurrently. Each query fails on
// its own; the response keeps the request order.
// (POST /compile/batch)
func (h *Handler) PostCompileBatch(c *gin.Context) {
	var req v1.BatchCompileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v1.Error{Error: "invalid request body"})
		return
	}

	items := make([]v1.BatchCompileItem, len(req.Queries))
	params := make([]transpiler.Params, 0, len(req.Queries))
	positions := make([]int, 0, len(req.Queries))
	for i, q := range req.Queries {
		if q.Query == "" {
			msg := "query is required"
			items[i] = v1.BatchCompileItem{Error: &msg}
			continue
		}
		p, err := q.ToParams()
		if err != nil {
			items[i] = v1.NewBatchCompileItem(models.BatchResult{Err: err})
			continue
		}
		params = append(params, p)
		positions = append(positions, i)
	}

	results, err := h.transpilerSrv.CompileBatch(c.Request.Context(), params)
	if err != nil {
		writeError(c, "compile_handler", err)
		return
	}
	for i, r := range results {
		items[positions[i]] = v1.NewBatchCompileItem(r)
	}

	c.JSON(http.StatusOK, v1.BatchCompileResponse{Results: items})
}

// GetTail compiles a live tail query
// (GET /tail)
func (h *Handler) GetTail(c *gin.Context) {
	var req v1.TailRequest
	if err := c.ShouldBindQuery(&req); err != nil || req.Query == "" {
		c.JSON(http.StatusBadRequest, v1.Error{Error: "query is required"})
		return
	}

	tail, err := h.transpilerSrv.Tail(c.Request.Context(), req.Query)
	if err != nil {
		writeError(c, "tail_handler", err)
		return
	}

	c.JSON(http.StatusOK, v1.NewTailResponse(tail))
}
