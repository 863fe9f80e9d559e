package repository

import (
	"context"

	"community-booking/internal/domain/model"
)

// PlanRepository is the port for the plan catalog.
type PlanRepository interface {
	Save(ctx context.Context, tx Tx, plan *model.Plan) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Plan, error)
	ListByCommunity(ctx context.Context, tx Tx, communityID string) ([]*model.Plan, error)
	Deactivate(ctx context.Context, tx Tx, id string) error
}
