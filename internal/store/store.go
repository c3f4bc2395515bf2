package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kubev2v/logql-transpiler/internal/store/migrations"
)

// Store owns the history database.
type Store struct {
	db      *sql.DB
	history *HistoryStore
}

// Open opens the database at path and applies pending migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := NewDB(path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if err := migrations.Run(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating history database: %w", err)
	}
	return NewStore(db), nil
}

// NewStore wraps an already migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:      db,
		history: NewHistoryStore(newStatementLogger(db)),
	}
}

func (s *Store) History() *HistoryStore {
	return s.history
}

func (s *Store) Close() error {
	return s.db.Close()
}
