package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/kubev2v/logql-transpiler/api/v1"
	"github.com/kubev2v/logql-transpiler/internal/models"
)

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
)

// GetHistory lists the most recent compile calls
// (GET /history)
func (h *Handler) GetHistory(c *gin.Context) {
	var req v1.HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, v1.Error{Error: "invalid query parameters"})
		return
	}

	filter := models.HistoryFilter{
		FailedOnly: req.Failed,
		Limit:      req.Limit,
	}
	if req.Kind != "" {
		kind, ok := models.ParseQueryKind(req.Kind)
		if !ok {
			c.JSON(http.StatusBadRequest, v1.Error{Error: "kind must be one of: compile, tail"})
			return
		}
		filter.Kind = kind
	}
	switch {
	case filter.Limit == 0:
		filter.Limit = defaultHistoryLimit
	case filter.Limit > maxHistoryLimit:
		filter.Limit = maxHistoryLimit
	}

	entries, err := h.historySrv.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, "history_handler", err)
		return
	}

	c.JSON(http.StatusOK, v1.NewHistoryResponse(entries))
}
