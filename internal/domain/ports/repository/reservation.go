package repository

import (
	"context"
	"time"

	"community-booking/internal/domain/model"
)

// ReservationRepository is the port for reservation rows.
//
// Create must surface a duplicate confirmed (client, session) pair as
// domain.ErrAlreadyReserved; the Postgres implementation backs this with a
// partial unique index so the race loser gets a clean conflict.
type ReservationRepository interface {
	Create(ctx context.Context, tx Tx, r *model.Reservation) error
	Save(ctx context.Context, tx Tx, r *model.Reservation) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Reservation, error)

	// FindConfirmed returns the client's confirmed reservation for a session,
	// or ErrNotFound.
	FindConfirmed(ctx context.Context, tx Tx, clientID, sessionID string) (*model.Reservation, error)

	// CountConfirmedBySession counts non-cancelled reservations for a session.
	// Presencial admission calls this after locking the session row.
	CountConfirmedBySession(ctx context.Context, tx Tx, sessionID string) (int, error)

	// HasOverlapping reports whether the client holds a confirmed reservation
	// in the community whose session window intersects [start, end).
	// Half-open intervals; reservations in other communities never conflict.
	HasOverlapping(ctx context.Context, tx Tx, clientID, communityID string, start, end time.Time) (bool, error)

	// ListByClient returns the client's reservations, newest first.
	ListByClient(ctx context.Context, tx Tx, clientID string, limit int) ([]*model.Reservation, error)

	// CountByStatus powers the stats endpoint and the reservations gauge.
	CountByStatus(ctx context.Context, tx Tx) (map[model.ReservationStatus]int, error)
}
