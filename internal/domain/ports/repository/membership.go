package repository

import (
	"context"

	"community-booking/internal/domain/model"
)

// MembershipRepository maintains the (client, community) association rows.
type MembershipRepository interface {
	// Ensure upserts the association; calling it twice is a no-op.
	Ensure(ctx context.Context, tx Tx, m *model.Membership) error
	Exists(ctx context.Context, tx Tx, clientID, communityID string) (bool, error)
}
