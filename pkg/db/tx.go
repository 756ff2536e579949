package db

import (
	"context"
	"database/sql"
	"fmt"
)

// TxRunner manages database transactions for the SQL stores.
// Stores keep statements inside fn so a failed step rolls back the whole unit.
type TxRunner struct {
	database *sql.DB
}

// NewTxRunner creates a new TxRunner instance.
func NewTxRunner(database *sql.DB) *TxRunner {
	return &TxRunner{database: database}
}

// WithTxResult executes fn within a transaction and returns its result.
// If fn returns an error, the transaction is rolled back; otherwise it is committed.
//
//	identity, err := WithTxResult(ctx, runner, func(tx *sql.Tx) (*Identity, error) {
//	    if _, err := tx.ExecContext(ctx, insertSQL, args...); err != nil {
//	        return nil, err
//	    }
//	    return scanOne(tx.QueryRowContext(ctx, selectSQL, id))
//	})
func WithTxResult[T any](ctx context.Context, r *TxRunner, fn func(tx *sql.Tx) (T, error)) (T, error) {
	var result T

	tx, err := r.database.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin transaction: %w", err)
	}

	result, err = fn(tx)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return result, fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return result, err
	}

	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("commit transaction: %w", err)
	}

	return result, nil
}

// DB returns the underlying database connection for non-transactional reads.
func (r *TxRunner) DB() *sql.DB {
	return r.database
}
