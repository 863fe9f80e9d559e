package model

import (
	"time"

	"community-booking/internal/domain"
)

type SessionKind string

const (
	SessionKindPresencial SessionKind = "presencial"
	SessionKindVirtual    SessionKind = "virtual"
)

// Session is a bookable time slot offered by a community service.
//
// Presencial sessions take place at a Local and bound concurrent reservations
// by Capacity. Virtual sessions are unbounded, carry a professional and a
// meeting URL, and are gated by credits and time conflicts instead.
type Session struct {
	ID          string // UUID
	ServiceID   string
	CommunityID string
	Kind        SessionKind
	StartsAt    time.Time
	EndsAt      time.Time

	// Presencial only
	LocalID  string
	Capacity int

	// Virtual only
	ProfessionalID string
	MeetingURL     string

	CreatedAt time.Time
}

func NewPresencialSession(id, serviceID, communityID, localID string, capacity int, startsAt, endsAt time.Time) (*Session, error) {
	if id == "" || serviceID == "" || communityID == "" || localID == "" || capacity <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if !startsAt.Before(endsAt) {
		return nil, domain.ErrInvalidArgument
	}
	return &Session{
		ID:          id,
		ServiceID:   serviceID,
		CommunityID: communityID,
		Kind:        SessionKindPresencial,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		LocalID:     localID,
		Capacity:    capacity,
		CreatedAt:   time.Now(),
	}, nil
}

func NewVirtualSession(id, serviceID, communityID, professionalID, meetingURL string, startsAt, endsAt time.Time) (*Session, error) {
	if id == "" || serviceID == "" || communityID == "" || professionalID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if !startsAt.Before(endsAt) {
		return nil, domain.ErrInvalidArgument
	}
	return &Session{
		ID:             id,
		ServiceID:      serviceID,
		CommunityID:    communityID,
		Kind:           SessionKindVirtual,
		StartsAt:       startsAt,
		EndsAt:         endsAt,
		ProfessionalID: professionalID,
		MeetingURL:     meetingURL,
		CreatedAt:      time.Now(),
	}, nil
}

// Overlaps reports half-open interval intersection with [start, end).
func (s *Session) Overlaps(start, end time.Time) bool {
	return s.StartsAt.Before(end) && start.Before(s.EndsAt)
}
