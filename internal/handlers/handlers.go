package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/kubev2v/logql-transpiler/api/v1"
	"github.com/kubev2v/logql-transpiler/internal/models"
	srvErrors "github.com/kubev2v/logql-transpiler/pkg/errors"
	"github.com/kubev2v/logql-transpiler/pkg/transpiler"
)

type TranspilerService interface {
	Compile(ctx context.Context, p transpiler.Params) (models.CompiledQuery, error)
	Tail(ctx context.Context, q string) (models.TailQuery, error)
	CompileBatch(ctx context.Context, params []transpiler.Params) ([]models.BatchResult, error)
}

type HistoryService interface {
	List(ctx context.Context, filter models.HistoryFilter) ([]models.HistoryEntry, error)
}

type Handler struct {
	transpilerSrv TranspilerService
	historySrv    HistoryService
}

func New(transpilerSrv TranspilerService, historySrv HistoryService) *Handler {
	return &Handler{
		transpilerSrv: transpilerSrv,
		historySrv:    historySrv,
	}
}

// RegisterHandlers mounts every endpoint on router.
func RegisterHandlers(router gin.IRoutes, h *Handler) {
	router.GET("/health", h.GetHealth)
	router.GET("/compile", h.GetCompile)
	router.POST("/compile/batch", h.PostCompileBatch)
	router.GET("/tail", h.GetTail)
	router.GET("/history", h.GetHistory)
}

// writeError answers 400 for errors caused by the query and 500 otherwise.
func writeError(c *gin.Context, handler string, err error) {
	if srvErrors.IsUserError(err) {
		c.JSON(http.StatusBadRequest, v1.Error{Error: err.Error()})
		return
	}
	zap.S().Named(handler).Errorw("request failed", "error", err)
	c.JSON(http.StatusInternalServerError, v1.Error{Error: "internal server error"})
}
