package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransactionManager manages database transactions.
type TransactionManager struct {
	pool *pgxpool.Pool
}

// NewTransactionManager creates a new transaction manager.
func NewTransactionManager(pool *pgxpool.Pool) *TransactionManager {
	return &TransactionManager{
		pool: pool,
	}
}

// WithTransaction executes fn within a database transaction. The transaction
// rides the context, so repository methods called through fn participate in it.
func (tm *TransactionManager) WithTransaction(ctx context.Context, fn func(context.Context) error) error {
	tx, err := tm.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txCtx := context.WithValue(ctx, txContextKey{}, tx)

	err = fn(txCtx)
	if err != nil {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			return fmt.Errorf("failed to rollback transaction after error %w: %w", err, rollbackErr)
		}
		return err
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		return fmt.Errorf("failed to commit transaction: %w", commitErr)
	}

	return nil
}

// WithTransactionRetry executes fn within a transaction, retrying on
// transient failures such as deadlocks and dropped connections.
func (tm *TransactionManager) WithTransactionRetry(
	ctx context.Context,
	maxRetries int,
	fn func(context.Context) error,
) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := tm.WithTransaction(ctx, fn)
		if err == nil {
			return nil
		}

		if isRetryableError(err) && attempt < maxRetries {
			lastErr = err
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Millisecond * time.Duration((attempt+1)*10)):
				continue
			}
		}

		return err
	}

	return lastErr
}

// isRetryableError checks if an error indicates a condition that might be
// resolved by retrying.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	retryablePatterns := []string{
		"deadlock detected",
		"could not serialize access",
		"connection reset by peer",
		"connection refused",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// txContextKey is used as a key for storing transactions in context.
type txContextKey struct{}

// GetTx retrieves a transaction from context, or nil if none exists.
func GetTx(ctx context.Context, _ *pgxpool.Pool) pgx.Tx {
	if tx, ok := ctx.Value(txContextKey{}).(pgx.Tx); ok {
		return tx
	}
	return nil
}

// QueryInterface represents either a connection pool or a transaction.
type QueryInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// GetQueryInterface returns the appropriate query interface (tx or pool).
func GetQueryInterface(ctx context.Context, pool *pgxpool.Pool) QueryInterface {
	if tx := GetTx(ctx, pool); tx != nil {
		return tx
	}
	return pool
}
