package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/kubev2v/logql-transpiler/internal/models"
	"github.com/kubev2v/logql-transpiler/pkg/errors"
	"github.com/kubev2v/logql-transpiler/pkg/query"
	"github.com/kubev2v/logql-transpiler/pkg/scheduler"
	"github.com/kubev2v/logql-transpiler/pkg/transpiler"
)

type TranspilerService struct {
	transpiler   *transpiler.Transpiler
	scheduler    *scheduler.Scheduler
	history      *HistoryService
	maxBatchSize int
	logger       *zap.SugaredLogger
}

// NewTranspilerService returns a service compiling queries with t. Batches
// run on s. history may be nil.
func NewTranspilerService(t *transpiler.Transpiler, s *scheduler.Scheduler, history *HistoryService, maxBatchSize int) *TranspilerService {
	return &TranspilerService{
		transpiler:   t,
		scheduler:    s,
		history:      history,
		maxBatchSize: maxBatchSize,
		logger:       zap.S().Named("transpiler_service"),
	}
}

func (s *TranspilerService) Compile(ctx context.Context, p transpiler.Params) (models.CompiledQuery, error) {
	res, err := s.transpiler.Transpile(p)
	s.history.Record(ctx, models.QueryKindCompile, p.Query, res.Query, res.Matrix, err)
	if err != nil {
		return models.CompiledQuery{}, err
	}

	return models.CompiledQuery{
		Query:    res.Query,
		Matrix:   res.Matrix,
		Duration: res.Duration,
		Stages:   query.StageNames(res.Stream),
	}, nil
}

func (s *TranspilerService) Tail(ctx context.Context, q string) (models.TailQuery, error) {
	res, err := s.transpiler.TranspileTail(q)
	s.history.Record(ctx, models.QueryKindTail, q, res.Query, false, err)
	if err != nil {
		return models.TailQuery{}, err
	}

	return models.TailQuery{
		Query:  res.Query,
		Stages: query.StageNames(res.Stream),
	}, nil
}

// CompileBatch compiles every request on the worker pool. Results keep the
// order of params. A failing query does not fail the batch.
func (s *TranspilerService) CompileBatch(ctx context.Context, params []transpiler.Params) ([]models.BatchResult, error) {
	if len(params) > s.maxBatchSize {
		return nil, errors.NewBatchTooLargeError(len(params), s.maxBatchSize)
	}

	futures := make([]*scheduler.Future[scheduler.Result[any]], 0, len(params))
	for _, p := range params {
		futures = append(futures, s.scheduler.AddWork(func(ctx context.Context) (any, error) {
			return s.Compile(ctx, p)
		}))
	}

	results := make([]models.BatchResult, len(params))
	for i, future := range futures {
		select {
		case <-ctx.Done():
			for _, f := range futures[i:] {
				f.Stop()
			}
			return nil, ctx.Err()
		case result := <-future.C():
			if result.Err != nil {
				results[i] = models.BatchResult{Err: result.Err}
				continue
			}
			compiled := result.Data.(models.CompiledQuery)
			results[i] = models.BatchResult{Query: &compiled}
		}
	}

	s.logger.Debugw("batch compiled", "size", len(params))
	return results, nil
}
