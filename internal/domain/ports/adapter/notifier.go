package adapter

import (
	"context"
	"time"
)

// ReservationNotice carries what the confirmation / cancellation mails need.
type ReservationNotice struct {
	ReservationID string
	SessionKind   string
	StartsAt      time.Time
	EndsAt        time.Time
	MeetingURL    string
}

// Notifier is the outbound notification collaborator. Implementations are
// fire-and-forget: a failed send is logged by the adapter and must never
// bubble up into the booking transaction.
type Notifier interface {
	NotifyReservationConfirmed(ctx context.Context, email string, n ReservationNotice) error
	NotifyReservationCancelled(ctx context.Context, email string, n ReservationNotice) error
}

// Identity resolves the caller supplied by the authentication layer.
type Identity interface {
	CurrentClientID(ctx context.Context) (string, error)
	CurrentUserEmail(ctx context.Context) (string, error)
}
