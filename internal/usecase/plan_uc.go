package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"community-booking/internal/domain/model"
	"community-booking/internal/domain/ports/repository"
)

// PlanUseCase is thin catalog plumbing over the plan repository.
type PlanUseCase struct {
	plans repository.PlanRepository
	log   *zerolog.Logger
}

func NewPlanUseCase(plans repository.PlanRepository, logger *zerolog.Logger) *PlanUseCase {
	l := logger.With().Str("component", "PlanUseCase").Logger()
	return &PlanUseCase{plans: plans, log: &l}
}

func (uc *PlanUseCase) Create(ctx context.Context, communityID, name string, credits int, priceCents int64, period model.PlanPeriod) (*model.Plan, error) {
	plan, err := model.NewPlan(uuid.NewString(), communityID, name, credits, priceCents, period)
	if err != nil {
		return nil, err
	}
	if err := uc.plans.Save(ctx, repository.NoTX, plan); err != nil {
		return nil, err
	}
	uc.log.Info().Str("plan_id", plan.ID).Str("name", name).Int("credits", credits).Msg("plan created")
	return plan, nil
}

func (uc *PlanUseCase) Get(ctx context.Context, id string) (*model.Plan, error) {
	return uc.plans.FindByID(ctx, repository.NoTX, id)
}

func (uc *PlanUseCase) ListByCommunity(ctx context.Context, communityID string) ([]*model.Plan, error) {
	return uc.plans.ListByCommunity(ctx, repository.NoTX, communityID)
}

func (uc *PlanUseCase) Deactivate(ctx context.Context, id string) error {
	if err := uc.plans.Deactivate(ctx, repository.NoTX, id); err != nil {
		return err
	}
	uc.log.Info().Str("plan_id", id).Msg("plan deactivated")
	return nil
}
