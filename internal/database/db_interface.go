// Package database provides database access for the portfolio API.
// It implements a connection pool aware of the SQL dialect in use,
// transaction management, and placeholder rebinding.
package database

import (
	"context"
	"database/sql"
)

// DBTX is the subset of query methods shared by *sql.DB and *sql.Tx.
// Repositories accept it so the same statement can run inside or outside
// a transaction.
type DBTX interface {
	// ExecContext executes a query with the provided context without returning any rows.
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)

	// QueryContext executes a query with the provided context that returns rows.
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)

	// QueryRowContext executes a query with the provided context that is expected to return at most one row.
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Ensure sql.DB and sql.Tx implement DBTX.
var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
