package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"community-booking/internal/domain"
	"community-booking/internal/domain/model"
	"community-booking/internal/domain/ports/repository"
)

// Ensure subscriptionRepo implements repository.SubscriptionRepository
var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

const subscriptionCols = `id, client_id, community_id, plan_id, payment_id, state, created_by, created_at, modified_by, modified_at`

func (r *subscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	const q = `
INSERT INTO subscriptions (
  id, client_id, community_id, plan_id, payment_id, state, created_by, created_at, modified_by, modified_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
  plan_id=$4, payment_id=$5, state=$6, modified_by=$9, modified_at=$10;`

	_, err := execSQL(ctx, r.pool, tx, q,
		s.ID, s.ClientID, s.CommunityID, s.PlanID, s.PaymentID, int(s.State),
		s.CreatedBy, s.CreatedAt, s.ModifiedBy, s.ModifiedAt)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return err
		default:
			// the partial unique index on (client, community) where active
			if isPgErr(err, codeUniqueViolation) {
				return domain.ErrAlreadyExists
			}
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *subscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	const q = `SELECT ` + subscriptionCols + ` FROM subscriptions WHERE id=$1;`
	return r.queryOne(ctx, tx, q, id)
}

func (r *subscriptionRepo) FindActiveByClientAndCommunity(ctx context.Context, tx repository.Tx, clientID, communityID string) (*model.Subscription, error) {
	const q = `
SELECT ` + subscriptionCols + `
  FROM subscriptions
 WHERE client_id=$1 AND community_id=$2 AND state=1
 LIMIT 1;`
	return r.queryOne(ctx, tx, q, clientID, communityID)
}

func (r *subscriptionRepo) FindPendingByClientAndCommunity(ctx context.Context, tx repository.Tx, clientID, communityID string, since time.Time) (*model.Subscription, error) {
	const q = `
SELECT ` + subscriptionCols + `
  FROM subscriptions
 WHERE client_id=$1 AND community_id=$2 AND state IN (2,3)
   AND expired_at IS NULL AND created_at >= $3
 ORDER BY created_at DESC
 LIMIT 1;`
	return r.queryOne(ctx, tx, q, clientID, communityID, since)
}

func (r *subscriptionRepo) CountByState(ctx context.Context, tx repository.Tx) (map[model.SubscriptionState]int, error) {
	const q = `SELECT state, COUNT(*) FROM subscriptions GROUP BY state;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	counts := make(map[model.SubscriptionState]int)
	for rows.Next() {
		var state, count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		counts[model.SubscriptionState(state)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return counts, nil
}

// FlagExpiredPending stamps expired_at on stale funnel rows. The column is
// operational metadata only: the pending-reuse query skips flagged rows, the
// domain model never sees it.
func (r *subscriptionRepo) FlagExpiredPending(ctx context.Context, tx repository.Tx, before time.Time) (int, error) {
	const q = `
UPDATE subscriptions
   SET expired_at = now()
 WHERE state IN (2,3) AND expired_at IS NULL AND created_at < $1;`
	ct, err := execSQL(ctx, r.pool, tx, q, before)
	if err != nil {
		return 0, domain.ErrOperationFailed
	}
	return int(ct.RowsAffected()), nil
}

func (r *subscriptionRepo) queryOne(ctx context.Context, tx repository.Tx, sql string, args ...interface{}) (*model.Subscription, error) {
	row, err := pickRow(ctx, r.pool, tx, sql, args...)
	if err != nil {
		return nil, err
	}

	s := &model.Subscription{}
	var state int
	if err := row.Scan(&s.ID, &s.ClientID, &s.CommunityID, &s.PlanID, &s.PaymentID, &state,
		&s.CreatedBy, &s.CreatedAt, &s.ModifiedBy, &s.ModifiedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	s.State = model.SubscriptionState(state)
	return s, nil
}
