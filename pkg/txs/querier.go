package txs

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Beginner opens transactions. *pgxpool.Pool and pgx.Tx both satisfy it.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type txKey struct{}

func injectTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func txFrom(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok
}

// GetQuerier returns the transaction bound to ctx, or defaultQuerier outside a transaction.
func GetQuerier(ctx context.Context, defaultQuerier Querier) Querier {
	if tx, ok := txFrom(ctx); ok {
		return tx
	}

	return defaultQuerier
}

// InTransaction reports whether ctx carries a transaction opened by TxManager.
func InTransaction(ctx context.Context) bool {
	_, ok := txFrom(ctx)
	return ok
}
