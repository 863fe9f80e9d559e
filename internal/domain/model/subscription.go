package model

import (
	"time"

	"community-booking/internal/domain"
)

// SubscriptionState is the stored lifecycle state of an enrollment.
// The numeric codes are part of the persisted contract, do not renumber.
type SubscriptionState int

const (
	SubscriptionStateFrozen         SubscriptionState = 0
	SubscriptionStateActive         SubscriptionState = 1
	SubscriptionStatePendingPlan    SubscriptionState = 2
	SubscriptionStatePendingPayment SubscriptionState = 3
)

func (s SubscriptionState) String() string {
	switch s {
	case SubscriptionStateFrozen:
		return "frozen"
	case SubscriptionStateActive:
		return "active"
	case SubscriptionStatePendingPlan:
		return "pending_plan"
	case SubscriptionStatePendingPayment:
		return "pending_payment"
	}
	return "unknown"
}

// Subscription is a client's enrollment in a community, optionally tied to a
// plan and a payment. Rows are never deleted; state changes only.
// At most one subscription per (client, community) may be active at a time.
type Subscription struct {
	ID          string // UUID
	ClientID    string
	CommunityID string
	PlanID      *string // nil until the member picks a plan
	PaymentID   *string // nil until a payment is attached
	State       SubscriptionState
	CreatedBy   string
	CreatedAt   time.Time
	ModifiedBy  string
	ModifiedAt  time.Time
}

// NewSubscription creates an enrollment with the state derived from what the
// caller supplied: no plan and no payment means the member still has to pick a
// plan; a payment id means the row is waiting for that payment to settle.
func NewSubscription(id, clientID, communityID string, planID, paymentID *string, actor string) (*Subscription, error) {
	if id == "" || clientID == "" || communityID == "" {
		return nil, domain.ErrInvalidArgument
	}
	state := SubscriptionStatePendingPayment
	if planID == nil && paymentID == nil {
		state = SubscriptionStatePendingPlan
	}
	now := time.Now()
	return &Subscription{
		ID:          id,
		ClientID:    clientID,
		CommunityID: communityID,
		PlanID:      planID,
		PaymentID:   paymentID,
		State:       state,
		CreatedBy:   actor,
		CreatedAt:   now,
		ModifiedBy:  actor,
		ModifiedAt:  now,
	}, nil
}

// Pending reports whether the row sits in the enrollment funnel
// (plan not chosen yet, or payment outstanding).
func (s *Subscription) Pending() bool {
	return s.State == SubscriptionStatePendingPlan || s.State == SubscriptionStatePendingPayment
}

// Activate moves a pending subscription to active. Frozen rows reactivate via
// Reactivate, never through here.
func (s *Subscription) Activate(actor string) error {
	if !s.Pending() {
		return domain.ErrInvalidState
	}
	s.State = SubscriptionStateActive
	s.touch(actor)
	return nil
}

// Freeze suspends an active subscription. Only legal from active.
func (s *Subscription) Freeze(actor string) error {
	if s.State != SubscriptionStateActive {
		return domain.ErrNotActive
	}
	s.State = SubscriptionStateFrozen
	s.touch(actor)
	return nil
}

// Reactivate resumes a frozen subscription. Reactivating anything else is an
// explicit error, not a no-op.
func (s *Subscription) Reactivate(actor string) error {
	if s.State != SubscriptionStateFrozen {
		return domain.ErrInvalidState
	}
	s.State = SubscriptionStateActive
	s.touch(actor)
	return nil
}

// Cancel re-enters the payment funnel instead of hard-deleting: the row moves
// back to pending-payment and keeps its history.
func (s *Subscription) Cancel(actor string) error {
	if s.State != SubscriptionStateActive {
		return domain.ErrNotActive
	}
	s.State = SubscriptionStatePendingPayment
	s.touch(actor)
	return nil
}

func (s *Subscription) touch(actor string) {
	s.ModifiedBy = actor
	s.ModifiedAt = time.Now()
}
