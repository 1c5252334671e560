package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgx shared by the pool and a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// TxRunner runs functions inside a single transaction on the pool.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner creates a TxRunner for pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run begins a transaction and calls fn with a context carrying it. The transaction commits
// when fn returns nil and rolls back otherwise. Begin and commit failures come back as
// classified storage failures; an error from fn is returned as-is, joined with the rollback
// error if rolling back also failed.
func (t *TxRunner) Run(ctx context.Context, fn func(context.Context) error) error {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return ClassifyError(err, "begin transaction")
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, ClassifyError(rbErr, "rollback transaction"))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return ClassifyError(err, "commit transaction")
	}
	return nil
}

// querierFor returns the transaction carried by ctx, or pool when there is none.
func querierFor(ctx context.Context, pool *pgxpool.Pool) Querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok && tx != nil {
		return tx
	}
	return pool
}
