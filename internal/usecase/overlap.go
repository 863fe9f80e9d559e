package usecase

import (
	"context"
	"time"

	"community-booking/internal/domain/ports/repository"
)

// OverlapChecker answers whether a client already holds a confirmed
// reservation in a community that intersects a candidate window.
//
// Intervals are half-open [start, end): back-to-back sessions never conflict,
// and reservations in other communities are excluded on purpose — a member may
// hold simultaneous bookings across communities.
type OverlapChecker struct {
	reservations repository.ReservationRepository
}

func NewOverlapChecker(reservations repository.ReservationRepository) *OverlapChecker {
	return &OverlapChecker{reservations: reservations}
}

func (c *OverlapChecker) HasOverlap(ctx context.Context, tx repository.Tx, clientID, communityID string, start, end time.Time) (bool, error) {
	return c.reservations.HasOverlapping(ctx, tx, clientID, communityID, start, end)
}
