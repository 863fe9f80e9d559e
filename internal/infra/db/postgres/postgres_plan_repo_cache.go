package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"community-booking/internal/domain/model"
	"community-booking/internal/domain/ports/repository"
	"community-booking/internal/infra/metrics"
	red "community-booking/internal/infra/redis"
)

var _ repository.PlanRepository = (*planRepoCacheDecorator)(nil)

// planRepoCacheDecorator caches the plan catalog in Redis. Plans change
// rarely and are read on every MarkPaid and every admin listing.
type planRepoCacheDecorator struct {
	inner repository.PlanRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewPlanRepoCacheDecorator(inner repository.PlanRepository, cache red.RedisClient, ttl time.Duration) repository.PlanRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &planRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func (d *planRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	key := fmt.Sprintf("plan:%s", id)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("plan", "hit")
		var plan model.Plan
		if json.Unmarshal([]byte(val), &plan) == nil {
			return &plan, nil
		}
	}
	// redis.Nil and real errors both fall through to the database.
	metrics.IncCacheRequest("plan", "miss")
	plan, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if plan != nil {
		bytes, _ := json.Marshal(plan)
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return plan, nil
}

// Write operations invalidate.
func (d *planRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, plan *model.Plan) error {
	d.cache.Del(ctx, fmt.Sprintf("plan:%s", plan.ID), listKey(plan.CommunityID))
	return d.inner.Save(ctx, tx, plan)
}

func (d *planRepoCacheDecorator) Deactivate(ctx context.Context, tx repository.Tx, id string) error {
	// Community is unknown here; drop the single-plan key and let the list
	// entries age out with the TTL.
	d.cache.Del(ctx, fmt.Sprintf("plan:%s", id))
	return d.inner.Deactivate(ctx, tx, id)
}

func (d *planRepoCacheDecorator) ListByCommunity(ctx context.Context, tx repository.Tx, communityID string) ([]*model.Plan, error) {
	key := listKey(communityID)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("plan_list", "hit")
		var plans []*model.Plan
		if json.Unmarshal([]byte(val), &plans) == nil {
			return plans, nil
		}
	}
	if err != nil && err != redis.Nil {
		metrics.IncCacheRequest("plan_list", "error")
	}

	metrics.IncCacheRequest("plan_list", "miss")
	plans, err := d.inner.ListByCommunity(ctx, tx, communityID)
	if err != nil {
		return nil, err
	}
	if len(plans) > 0 {
		bytes, _ := json.Marshal(plans)
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return plans, nil
}

func listKey(communityID string) string {
	return fmt.Sprintf("plans:community:%s", communityID)
}
