package model

import (
	"time"

	"community-booking/internal/domain"
)

// CreditRecord tracks session credits ("topes") for one subscription under a
// credit-limited plan. Absence of a record means the plan is unlimited.
//
// Invariant: Available + Consumed stays constant for the life of the record
// (credits only move between the two counters). The sum equals the plan
// allotment the record was seeded with.
type CreditRecord struct {
	SubscriptionID string
	RegisteredAt   time.Time
	PeriodStart    time.Time
	PeriodEnd      time.Time
	Available      int
	Consumed       int
	ModifiedBy     string
	ModifiedAt     time.Time
}

// NewCreditRecord seeds a record from the plan allotment for one period.
func NewCreditRecord(subscriptionID string, allotment int, periodStart, periodEnd time.Time, actor string) (*CreditRecord, error) {
	if subscriptionID == "" || allotment <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &CreditRecord{
		SubscriptionID: subscriptionID,
		RegisteredAt:   now,
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
		Available:      allotment,
		Consumed:       0,
		ModifiedBy:     actor,
		ModifiedAt:     now,
	}, nil
}

// Consume moves one credit from available to consumed.
func (c *CreditRecord) Consume(actor string) error {
	if c.Available <= 0 {
		return domain.ErrInsufficientCredits
	}
	c.Available--
	c.Consumed++
	c.ModifiedBy = actor
	c.ModifiedAt = time.Now()
	return nil
}

// Restore moves one credit back. Clamped: Available never exceeds the original
// allotment, so a stray double-restore cannot mint credits.
func (c *CreditRecord) Restore(actor string) error {
	if c.Consumed <= 0 {
		return domain.ErrInvalidState
	}
	c.Consumed--
	c.Available++
	c.ModifiedBy = actor
	c.ModifiedAt = time.Now()
	return nil
}
