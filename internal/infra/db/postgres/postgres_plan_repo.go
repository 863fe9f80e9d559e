package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"community-booking/internal/domain"
	"community-booking/internal/domain/model"
	"community-booking/internal/domain/ports/repository"
)

// Ensure interface compliance
var _ repository.PlanRepository = (*PlanRepo)(nil)

type PlanRepo struct {
	pool *pgxpool.Pool
}

func NewPlanRepo(pool *pgxpool.Pool) *PlanRepo {
	return &PlanRepo{pool: pool}
}

const planCols = `id, community_id, name, credits, price_cents, period, active, created_at`

func (r *PlanRepo) Save(ctx context.Context, tx repository.Tx, plan *model.Plan) error {
	const q = `
INSERT INTO plans (id, community_id, name, credits, price_cents, period, active, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE
  SET name        = EXCLUDED.name,
      credits     = EXCLUDED.credits,
      price_cents = EXCLUDED.price_cents,
      period      = EXCLUDED.period,
      active      = EXCLUDED.active;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		plan.ID, plan.CommunityID, plan.Name, plan.Credits, plan.PriceCents,
		string(plan.Period), plan.Active, plan.CreatedAt)
	if err != nil {
		return fmt.Errorf("Save plan: %w", err)
	}
	return nil
}

func (r *PlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	const q = `SELECT ` + planCols + ` FROM plans WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	p, err := scanPlan(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("FindByID plan: %w", err)
	}
	return p, nil
}

func (r *PlanRepo) ListByCommunity(ctx context.Context, tx repository.Tx, communityID string) ([]*model.Plan, error) {
	const q = `SELECT ` + planCols + ` FROM plans WHERE community_id = $1 AND active ORDER BY created_at;`
	rows, err := queryRows(ctx, r.pool, tx, q, communityID)
	if err != nil {
		return nil, fmt.Errorf("ListByCommunity plans: %w", err)
	}
	defer rows.Close()
	var out []*model.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *PlanRepo) Deactivate(ctx context.Context, tx repository.Tx, id string) error {
	const q = `UPDATE plans SET active = false WHERE id = $1;`
	ct, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return fmt.Errorf("Deactivate plan: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanPlan(row rowScanner) (*model.Plan, error) {
	p := &model.Plan{}
	var period string
	if err := row.Scan(&p.ID, &p.CommunityID, &p.Name, &p.Credits, &p.PriceCents,
		&period, &p.Active, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Period = model.PlanPeriod(period)
	return p, nil
}
