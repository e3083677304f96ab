package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// RowScanner is the single-row result surface of QueryRowContext. *sql.Row
// satisfies it; tests substitute their own.
type RowScanner interface {
	Scan(dest ...any) error
}

// SQLExecutor defines the interface for database operations
// This allows for easy mocking in unit tests
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) RowScanner
}

type SQLClient struct {
	db *sql.DB
}

var _ SQLExecutor = (*SQLClient)(nil)

// NewPostgresClient opens and pings a postgres connection from a DSN.
func NewPostgresClient(dsn string) (*SQLClient, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}
	return &SQLClient{db: db}, nil
}

// ExecContext executes a query without returning rows (INSERT/UPDATE/DELETE)
func (c *SQLClient) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.db.ExecContext(ctx, query, args...)
}

// QueryRowContext executes a query that returns a single row
func (c *SQLClient) QueryRowContext(ctx context.Context, query string, args ...any) RowScanner {
	return c.db.QueryRowContext(ctx, query, args...)
}
