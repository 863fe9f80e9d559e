package model

import (
	"time"

	"community-booking/internal/domain"
)

type ReservationStatus string

const (
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// Reservation links a client to a session inside a community.
//
// Invariant: a client holds at most one confirmed reservation per session, and
// no two confirmed reservations with overlapping windows inside the same
// community. Overlap across communities is allowed.
type Reservation struct {
	ID          string // ULID, sortable by reservation time
	ClientID    string
	SessionID   string
	CommunityID string
	Status      ReservationStatus
	ReservedAt  time.Time
	CancelledAt *time.Time
}

func NewReservation(id, clientID, sessionID, communityID string) (*Reservation, error) {
	if id == "" || clientID == "" || sessionID == "" || communityID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Reservation{
		ID:          id,
		ClientID:    clientID,
		SessionID:   sessionID,
		CommunityID: communityID,
		Status:      ReservationStatusConfirmed,
		ReservedAt:  time.Now(),
	}, nil
}

func (r *Reservation) Active() bool { return r.Status == ReservationStatusConfirmed }

// Cancel flips the status; cancelled rows stop counting against session
// capacity and overlap checks.
func (r *Reservation) Cancel() error {
	if r.Status == ReservationStatusCancelled {
		return domain.ErrInvalidState
	}
	now := time.Now()
	r.Status = ReservationStatusCancelled
	r.CancelledAt = &now
	return nil
}
