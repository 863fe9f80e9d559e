package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"community-booking/internal/domain"
	"community-booking/internal/domain/ports/repository"
	"community-booking/internal/infra/metrics"
)

// Ensure compile-time conformance
var _ repository.TransactionManager = (*TxManager)(nil)

// TxManager implements repository.TransactionManager for Postgres (pgx).
// It begins a transaction, applies a lock_timeout so admissions blocked on a
// contended row fail fast instead of hanging, invokes the callback, and
// commits/rolls back. Lock and serialization losses come back as
// domain.ErrConcurrencyConflict, which callers may retry.
type TxManager struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

func NewTxManager(pool *pgxpool.Pool, lockTimeout time.Duration) *TxManager {
	if lockTimeout <= 0 {
		lockTimeout = 3 * time.Second
	}
	return &TxManager{pool: pool, lockTimeout: lockTimeout}
}

// WithTx opens a DB transaction and passes the tx handle to fn.
// If fn returns an error, the transaction is rolled back; otherwise committed.
func (m *TxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	start := time.Now()
	tx, err := m.pool.BeginTx(ctx, txOpt)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Bounded wait on row locks; SET LOCAL scopes it to this transaction.
	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", m.lockTimeout.Milliseconds())); err != nil {
		return fmt.Errorf("set lock_timeout: %w", err)
	}

	if err := fn(ctx, tx); err != nil {
		metrics.IncDBTxRollback()
		return translateConflict(err) // rollback in defer
	}
	if err := tx.Commit(ctx); err != nil {
		metrics.IncDBTxRollback()
		return translateConflict(err)
	}
	metrics.ObserveAdmissionTx(time.Since(start).Seconds())
	return nil
}

func translateConflict(err error) error {
	if isPgErr(err, codeLockNotAvail) || isPgErr(err, codeSerialization) || isPgErr(err, codeQueryCancelled) {
		metrics.IncDBTxConflict()
		return domain.ErrConcurrencyConflict
	}
	return err
}
