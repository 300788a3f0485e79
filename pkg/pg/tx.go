package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the query surface shared by *pgxpool.Conn and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ConnSource hands out tenant-scoped pgx connections. *Binder[*pgxpool.Conn]
// implements it.
type ConnSource interface {
	Acquire(ctx context.Context) (*BoundConn[*pgxpool.Conn], error)
}

// Do runs fn on a tenant-scoped connection and releases it afterwards.
func Do(ctx context.Context, src ConnSource, fn func(q Querier) error) error {
	bc, err := src.Acquire(ctx)
	if err != nil {
		return err
	}
	defer bc.Release(ctx)
	return fn(bc.Conn())
}

// WithTx runs fn inside a transaction on a tenant-scoped connection. The
// transaction is committed when fn returns nil and rolled back otherwise,
// including when fn panics.
func WithTx(ctx context.Context, src ConnSource, fn func(tx pgx.Tx) error) error {
	bc, err := src.Acquire(ctx)
	if err != nil {
		return err
	}
	defer bc.Release(ctx)

	tx, err := bc.Conn().Begin(ctx)
	if err != nil {
		return errors.Join(ErrBeginTx, err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.Join(ErrCommitTx, err)
	}
	committed = true
	return nil
}
