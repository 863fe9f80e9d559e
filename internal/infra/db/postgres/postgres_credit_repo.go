package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"community-booking/internal/domain"
	"community-booking/internal/domain/model"
	"community-booking/internal/domain/ports/repository"
)

var _ repository.CreditRecordRepository = (*creditRepo)(nil)

type creditRepo struct {
	pool *pgxpool.Pool
}

func NewCreditRepo(pool *pgxpool.Pool) *creditRepo {
	return &creditRepo{pool: pool}
}

const creditCols = `subscription_id, registered_at, period_start, period_end, available, consumed, modified_by, modified_at`

func (r *creditRepo) Save(ctx context.Context, tx repository.Tx, rec *model.CreditRecord) error {
	const q = `
INSERT INTO credit_records (
  subscription_id, registered_at, period_start, period_end, available, consumed, modified_by, modified_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (subscription_id) DO UPDATE SET
  available=$5, consumed=$6, modified_by=$7, modified_at=$8;`

	_, err := execSQL(ctx, r.pool, tx, q,
		rec.SubscriptionID, rec.RegisteredAt, rec.PeriodStart, rec.PeriodEnd,
		rec.Available, rec.Consumed, rec.ModifiedBy, rec.ModifiedAt)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return err
		default:
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *creditRepo) FindBySubscription(ctx context.Context, tx repository.Tx, subscriptionID string) (*model.CreditRecord, error) {
	const q = `SELECT ` + creditCols + ` FROM credit_records WHERE subscription_id=$1;`
	return r.queryOne(ctx, tx, q, subscriptionID)
}

// FindBySubscriptionForUpdate re-reads the counters under a row lock. Two
// concurrent Consume calls serialize here; the loser sees the decremented
// value, not the stale snapshot it started from.
func (r *creditRepo) FindBySubscriptionForUpdate(ctx context.Context, tx repository.Tx, subscriptionID string) (*model.CreditRecord, error) {
	const q = `SELECT ` + creditCols + ` FROM credit_records WHERE subscription_id=$1 FOR UPDATE;`
	return r.queryOne(ctx, tx, q, subscriptionID)
}

func (r *creditRepo) TotalRemaining(ctx context.Context, tx repository.Tx) (int64, error) {
	const q = `SELECT COALESCE(SUM(available),0) FROM credit_records;`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *creditRepo) queryOne(ctx context.Context, tx repository.Tx, sql string, args ...interface{}) (*model.CreditRecord, error) {
	row, err := pickRow(ctx, r.pool, tx, sql, args...)
	if err != nil {
		return nil, err
	}
	rec := &model.CreditRecord{}
	if err := row.Scan(&rec.SubscriptionID, &rec.RegisteredAt, &rec.PeriodStart, &rec.PeriodEnd,
		&rec.Available, &rec.Consumed, &rec.ModifiedBy, &rec.ModifiedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return rec, nil
}
