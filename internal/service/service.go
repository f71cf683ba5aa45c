// Package service implements the dunning engine's business logic:
// reconciliation against the external ledger, the chase sequence,
// token lifecycle, and the user-facing invoice actions.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/owedhq/owed/internal/repository"
)

// TxRunner executes a function inside a database transaction. The queries
// value passed to fn is scoped to that transaction.
type TxRunner interface {
	RunTx(ctx context.Context, fn func(q repository.Querier) error) error
}

// PgxTxRunner implements TxRunner on a pgx connection pool.
type PgxTxRunner struct {
	pool    *pgxpool.Pool
	queries *repository.Queries
}

// NewPgxTxRunner creates a TxRunner backed by the given pool.
func NewPgxTxRunner(pool *pgxpool.Pool, queries *repository.Queries) *PgxTxRunner {
	return &PgxTxRunner{pool: pool, queries: queries}
}

// RunTx begins a transaction, runs fn against it, and commits. Any error
// from fn rolls the transaction back.
func (r *PgxTxRunner) RunTx(ctx context.Context, fn func(q repository.Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(r.queries.WithTx(tx)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// pgUUID parses a string UUID into pgtype.UUID.
func pgUUID(s string) (pgtype.UUID, error) {
	var id pgtype.UUID
	if err := id.Scan(s); err != nil {
		return id, fmt.Errorf("invalid ID: %w", err)
	}
	return id, nil
}

// pgText wraps a string, treating empty as NULL.
func pgText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func pgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: !t.IsZero()}
}

func pgDate(t time.Time) pgtype.Date {
	return pgtype.Date{Time: t, Valid: !t.IsZero()}
}

// numericFromDecimal converts a decimal amount to pgtype.Numeric losslessly.
func numericFromDecimal(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

// decimalFromNumeric converts a pgtype.Numeric back to a decimal amount.
// A NULL numeric maps to zero.
func decimalFromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
