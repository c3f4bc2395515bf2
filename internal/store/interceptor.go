package store

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// QueryInterceptor is the part of *sql.DB the history repository needs.
type QueryInterceptor interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// statementLogger logs every statement with its arguments and latency.
type statementLogger struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

func newStatementLogger(db *sql.DB) *statementLogger {
	return &statementLogger{
		db:     db,
		logger: zap.S().Named("store"),
	}
}

func (s *statementLogger) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	defer s.trace("query_row", query, args, time.Now(), nil)
	return s.db.QueryRowContext(ctx, query, args...)
}

func (s *statementLogger) QueryContext(ctx context.Context, query string, args ...any) (rows *sql.Rows, err error) {
	defer func(start time.Time) { s.trace("query", query, args, start, err) }(time.Now())
	return s.db.QueryContext(ctx, query, args...)
}

func (s *statementLogger) ExecContext(ctx context.Context, query string, args ...any) (res sql.Result, err error) {
	defer func(start time.Time) { s.trace("exec", query, args, start, err) }(time.Now())
	return s.db.ExecContext(ctx, query, args...)
}

func (s *statementLogger) trace(op, query string, args []any, start time.Time, err error) {
	if err != nil {
		s.logger.Debugw(op, "query", query, "args", args, "elapsed", time.Since(start), "error", err)
		return
	}
	s.logger.Debugw(op, "query", query, "args", args, "elapsed", time.Since(start))
}
