package repository

import (
	"context"
	"time"

	"community-booking/internal/domain/model"
)

// SessionRepository is the port for bookable sessions.
type SessionRepository interface {
	Save(ctx context.Context, tx Tx, s *model.Session) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Session, error)

	// FindByIDForUpdate locks the session row for the duration of the
	// transaction. Presencial admission locks here before counting
	// reservations so the capacity check-then-insert is serialized.
	FindByIDForUpdate(ctx context.Context, tx Tx, id string) (*model.Session, error)

	// ListUpcoming returns sessions of a community starting after `from`.
	ListUpcoming(ctx context.Context, tx Tx, communityID string, from time.Time, limit int) ([]*model.Session, error)
}
