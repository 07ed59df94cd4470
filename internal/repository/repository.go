// Package repository holds the SQL access layer. Every statement is
// parameterized; multi-statement flows go through the Tx-suffixed variants
// so services control the transaction boundary.
package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of the pgx API the repositories need. It is
// satisfied by *pgxpool.Pool and by pgx.Tx, so repositories can be
// constructed against a pool in production and a test double in tests.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
