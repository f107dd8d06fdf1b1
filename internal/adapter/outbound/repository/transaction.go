package repository

import (
	"context"
	"fmt"

	"javasegment/internal/application/common/retry"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool the repository needs.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

// TransactionManager manages database transactions.
type TransactionManager struct {
	db    DB
	retry *retry.RetryExecutor
}

// NewTransactionManager creates a transaction manager that retries deadlocks and
// serialization failures up to maxRetries times.
func NewTransactionManager(db DB, maxRetries int) *TransactionManager {
	cfg := retry.DefaultRetryConfig()
	cfg.MaxRetries = maxRetries
	return &TransactionManager{
		db:    db,
		retry: retry.NewRetryExecutor(cfg, retry.RetryableCheckerFunc(IsRetryableError)),
	}
}

// WithTransaction executes fn within a database transaction.
func (tm *TransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := tm.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(ctx, tx); err != nil {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			return fmt.Errorf("failed to rollback transaction after error %w: %w", err, rollbackErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// WithTransactionRetry runs WithTransaction again when the failure is retryable.
func (tm *TransactionManager) WithTransactionRetry(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return tm.retry.Execute(ctx, func(ctx context.Context) error {
		return tm.WithTransaction(ctx, fn)
	})
}
