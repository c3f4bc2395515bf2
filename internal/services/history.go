package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kubev2v/logql-transpiler/internal/models"
	"github.com/kubev2v/logql-transpiler/internal/store"
)

// HistoryService keeps a bounded log of compiled queries. A nil
// *HistoryService records nothing and lists nothing.
type HistoryService struct {
	store      *store.Store
	maxEntries uint64
	now        func() time.Time
	logger     *zap.SugaredLogger
}

func NewHistoryService(st *store.Store, maxEntries uint64) *HistoryService {
	return &HistoryService{
		store:      st,
		maxEntries: maxEntries,
		now:        time.Now,
		logger:     zap.S().Named("history_service"),
	}
}

// Record stores the outcome of a compile call. Storage failures are logged
// and never reach the caller.
func (h *HistoryService) Record(ctx context.Context, kind models.QueryKind, query, sql string, matrix bool, compileErr error) {
	if h == nil {
		return
	}

	entry := models.HistoryEntry{
		ID:        uuid.NewString(),
		Kind:      kind,
		Query:     query,
		SQL:       sql,
		Matrix:    matrix,
		CreatedAt: h.now(),
	}
	if compileErr != nil {
		entry.SQL = ""
		entry.Matrix = false
		entry.Error = compileErr.Error()
	}

	if err := h.store.History().Insert(ctx, entry); err != nil {
		h.logger.Errorw("failed to record query", "error", err, "kind", kind)
		return
	}

	if h.maxEntries == 0 {
		return
	}
	if n, err := h.store.History().Prune(ctx, h.maxEntries); err != nil {
		h.logger.Errorw("failed to prune history", "error", err)
	} else if n > 0 {
		h.logger.Debugw("history pruned", "deleted", n)
	}
}

func (h *HistoryService) List(ctx context.Context, filter models.HistoryFilter) ([]models.HistoryEntry, error) {
	if h == nil {
		return []models.HistoryEntry{}, nil
	}
	return h.store.History().List(ctx, filter)
}
