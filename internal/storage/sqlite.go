// Package storage implements the entity stores on SQLite.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore opens the database, runs the embedded migrations and exposes
// one store per entity type, all sharing the same connection pool.
type SQLiteStore struct {
	db *sql.DB

	Accounts     *AccountStore
	Transactions *TransactionStore
	Monthly      *MonthlyTransactionStore
	Savings      *SavingStore
	Planned      *PlannedExpenseStore
	Categories   *CategoryStore
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{
		db:           db,
		Accounts:     &AccountStore{db: db},
		Transactions: &TransactionStore{db: db},
		Monthly:      &MonthlyTransactionStore{db: db},
		Savings:      &SavingStore{db: db},
		Planned:      &PlannedExpenseStore{db: db},
		Categories:   &CategoryStore{db: db},
	}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
