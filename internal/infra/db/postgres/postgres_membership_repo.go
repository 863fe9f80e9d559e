package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"community-booking/internal/domain"
	"community-booking/internal/domain/model"
	"community-booking/internal/domain/ports/repository"
)

var _ repository.MembershipRepository = (*membershipRepo)(nil)

type membershipRepo struct {
	pool *pgxpool.Pool
}

func NewMembershipRepo(pool *pgxpool.Pool) *membershipRepo {
	return &membershipRepo{pool: pool}
}

// Ensure is an idempotent upsert: every enrollment guarantees the association
// row exists, re-enrolling changes nothing.
func (r *membershipRepo) Ensure(ctx context.Context, tx repository.Tx, m *model.Membership) error {
	const q = `
INSERT INTO memberships (client_id, community_id, joined_at)
VALUES ($1, $2, $3)
ON CONFLICT (client_id, community_id) DO NOTHING;`
	_, err := execSQL(ctx, r.pool, tx, q, m.ClientID, m.CommunityID, m.JoinedAt)
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

func (r *membershipRepo) Exists(ctx context.Context, tx repository.Tx, clientID, communityID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM memberships WHERE client_id=$1 AND community_id=$2);`
	row, err := pickRow(ctx, r.pool, tx, q, clientID, communityID)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, domain.ErrReadDatabaseRow
	}
	return exists, nil
}
