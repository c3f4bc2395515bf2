package store

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"github.com/kubev2v/logql-transpiler/internal/models"
)

const historyTable = "query_history"

type HistoryStore struct {
	db QueryInterceptor
}

func NewHistoryStore(db QueryInterceptor) *HistoryStore {
	return &HistoryStore{db: db}
}

func (s *HistoryStore) Insert(ctx context.Context, e models.HistoryEntry) error {
	query, args, err := sq.Insert(historyTable).
		Columns("id", "kind", "logql", "compiled_sql", "matrix", "error_message", "created_at").
		Values(e.ID, string(e.Kind), e.Query, nullable(e.SQL), e.Matrix, nullable(e.Error), e.CreatedAt.UTC()).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

// List returns the entries matching f, newest first.
func (s *HistoryStore) List(ctx context.Context, f models.HistoryFilter) ([]models.HistoryEntry, error) {
	builder := sq.Select("id", "kind", "logql", "compiled_sql", "matrix", "error_message", "created_at").
		From(historyTable).
		OrderBy("seq DESC")
	if f.Kind != "" {
		builder = builder.Where(sq.Eq{"kind": string(f.Kind)})
	}
	if f.FailedOnly {
		builder = builder.Where(sq.NotEq{"error_message": nil})
	}
	if f.Limit > 0 {
		builder = builder.Limit(f.Limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.HistoryEntry{}
	for rows.Next() {
		var (
			e            models.HistoryEntry
			kind         string
			compiled     sql.NullString
			errorMessage sql.NullString
		)
		if err := rows.Scan(&e.ID, &kind, &e.Query, &compiled, &e.Matrix, &errorMessage, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Kind = models.QueryKind(kind)
		e.SQL = compiled.String
		e.Error = errorMessage.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *HistoryStore) Count(ctx context.Context) (int, error) {
	query, args, err := sq.Select("COUNT(*)").From(historyTable).ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Prune keeps the newest keep entries and deletes the rest.
func (s *HistoryStore) Prune(ctx context.Context, keep uint64) (int64, error) {
	newest := sq.Select("seq").From(historyTable).OrderBy("seq DESC").Limit(keep)
	sub, subArgs, err := newest.ToSql()
	if err != nil {
		return 0, err
	}

	query, args, err := sq.Delete(historyTable).
		Where("seq NOT IN ("+sub+")", subArgs...).
		ToSql()
	if err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
