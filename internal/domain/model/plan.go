package model

import (
	"time"

	"community-booking/internal/domain"
)

type PlanPeriod string

const (
	PlanPeriodMonthly PlanPeriod = "monthly"
	PlanPeriodAnnual  PlanPeriod = "annual"
)

// Plan is a catalog entry a community offers to its members.
// Credits == 0 means the plan is unlimited ("Ilimitado"): subscriptions under
// it never get a credit record and bookings are not credit-gated.
type Plan struct {
	ID          string // UUID
	CommunityID string
	Name        string
	Credits     int // session credits per period, 0 = unlimited
	PriceCents  int64
	Period      PlanPeriod
	Active      bool
	CreatedAt   time.Time
}

func NewPlan(id, communityID, name string, credits int, priceCents int64, period PlanPeriod) (*Plan, error) {
	if communityID == "" || name == "" || credits < 0 || priceCents < 0 {
		return nil, domain.ErrInvalidArgument
	}
	if period != PlanPeriodMonthly && period != PlanPeriodAnnual {
		return nil, domain.ErrInvalidArgument
	}
	return &Plan{
		ID:          id,
		CommunityID: communityID,
		Name:        name,
		Credits:     credits,
		PriceCents:  priceCents,
		Period:      period,
		Active:      true,
		CreatedAt:   time.Now(),
	}, nil
}

// Unlimited reports whether the plan carries no credit bound.
func (p *Plan) Unlimited() bool { return p.Credits == 0 }
