package duckdb

import (
	"context"
	"database/sql"
	"fmt"
)

type txKey struct{}

// WithTransaction carries tx so stores called with ctx join it
func WithTransaction(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// GetTransaction returns the transaction carried by ctx, or nil
func GetTransaction(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

// InTransaction runs fn inside the transaction carried by ctx, or a new one it commits
func InTransaction(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx *sql.Tx) error) error {
	if tx := GetTransaction(ctx); tx != nil {
		return fn(ctx, tx)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(WithTransaction(ctx, tx), tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
