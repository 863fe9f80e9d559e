//go:build !integration

package web_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"community-booking/internal/domain"
	"community-booking/internal/domain/model"
	"community-booking/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// Minimal in-memory repos backing the HTTP tests. The use cases under the
// handlers are real; only the persistence underneath is faked.

type fakeTxManager struct{ mu sync.Mutex }

var _ repository.TransactionManager = (*fakeTxManager)(nil)

func (m *fakeTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, repository.NoTX)
}

type fakeStore struct {
	mu           sync.RWMutex
	subs         map[string]*model.Subscription
	credits      map[string]*model.CreditRecord
	sessions     map[string]*model.Session
	reservations map[string]*model.Reservation
	plans        map[string]*model.Plan
	members      map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		subs:         make(map[string]*model.Subscription),
		credits:      make(map[string]*model.CreditRecord),
		sessions:     make(map[string]*model.Session),
		reservations: make(map[string]*model.Reservation),
		plans:        make(map[string]*model.Plan),
		members:      make(map[string]bool),
	}
}

// ---- SubscriptionRepository ----

type fakeSubRepo struct{ s *fakeStore }

var _ repository.SubscriptionRepository = fakeSubRepo{}

func (r fakeSubRepo) Save(_ context.Context, _ repository.Tx, sub *model.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *sub
	r.s.subs[sub.ID] = &cp
	return nil
}

func (r fakeSubRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Subscription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if s, ok := r.s.subs[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r fakeSubRepo) FindActiveByClientAndCommunity(_ context.Context, _ repository.Tx, clientID, communityID string) (*model.Subscription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, s := range r.s.subs {
		if s.ClientID == clientID && s.CommunityID == communityID && s.State == model.SubscriptionStateActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r fakeSubRepo) FindPendingByClientAndCommunity(_ context.Context, _ repository.Tx, clientID, communityID string, since time.Time) (*model.Subscription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, s := range r.s.subs {
		if s.ClientID == clientID && s.CommunityID == communityID && s.Pending() && !s.CreatedAt.Before(since) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r fakeSubRepo) CountByState(_ context.Context, _ repository.Tx) (map[model.SubscriptionState]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := make(map[model.SubscriptionState]int)
	for _, s := range r.s.subs {
		counts[s.State]++
	}
	return counts, nil
}

func (r fakeSubRepo) FlagExpiredPending(_ context.Context, _ repository.Tx, _ time.Time) (int, error) {
	return 0, nil
}

// ---- CreditRecordRepository ----

type fakeCreditRepo struct{ s *fakeStore }

var _ repository.CreditRecordRepository = fakeCreditRepo{}

func (r fakeCreditRepo) Save(_ context.Context, _ repository.Tx, rec *model.CreditRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *rec
	r.s.credits[rec.SubscriptionID] = &cp
	return nil
}

func (r fakeCreditRepo) FindBySubscription(_ context.Context, _ repository.Tx, id string) (*model.CreditRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if rec, ok := r.s.credits[id]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r fakeCreditRepo) FindBySubscriptionForUpdate(ctx context.Context, tx repository.Tx, id string) (*model.CreditRecord, error) {
	return r.FindBySubscription(ctx, tx, id)
}

func (r fakeCreditRepo) TotalRemaining(_ context.Context, _ repository.Tx) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var sum int64
	for _, rec := range r.s.credits {
		sum += int64(rec.Available)
	}
	return sum, nil
}

// ---- SessionRepository ----

type fakeSessionRepo struct{ s *fakeStore }

var _ repository.SessionRepository = fakeSessionRepo{}

func (r fakeSessionRepo) Save(_ context.Context, _ repository.Tx, sess *model.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *sess
	r.s.sessions[sess.ID] = &cp
	return nil
}

func (r fakeSessionRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if s, ok := r.s.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r fakeSessionRepo) FindByIDForUpdate(ctx context.Context, tx repository.Tx, id string) (*model.Session, error) {
	return r.FindByID(ctx, tx, id)
}

func (r fakeSessionRepo) ListUpcoming(_ context.Context, _ repository.Tx, communityID string, from time.Time, limit int) ([]*model.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*model.Session
	for _, s := range r.s.sessions {
		if s.CommunityID == communityID && !s.StartsAt.Before(from) && len(out) < limit {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- ReservationRepository ----

type fakeReservationRepo struct{ s *fakeStore }

var _ repository.ReservationRepository = fakeReservationRepo{}

func (r fakeReservationRepo) Create(_ context.Context, _ repository.Tx, res *model.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.reservations {
		if existing.ClientID == res.ClientID && existing.SessionID == res.SessionID && existing.Status == model.ReservationStatusConfirmed {
			return domain.ErrAlreadyReserved
		}
	}
	cp := *res
	r.s.reservations[res.ID] = &cp
	return nil
}

func (r fakeReservationRepo) Save(_ context.Context, _ repository.Tx, res *model.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reservations[res.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *res
	r.s.reservations[res.ID] = &cp
	return nil
}

func (r fakeReservationRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Reservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if res, ok := r.s.reservations[id]; ok {
		cp := *res
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r fakeReservationRepo) FindConfirmed(_ context.Context, _ repository.Tx, clientID, sessionID string) (*model.Reservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, res := range r.s.reservations {
		if res.ClientID == clientID && res.SessionID == sessionID && res.Status == model.ReservationStatusConfirmed {
			cp := *res
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r fakeReservationRepo) CountConfirmedBySession(_ context.Context, _ repository.Tx, sessionID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, res := range r.s.reservations {
		if res.SessionID == sessionID && res.Status == model.ReservationStatusConfirmed {
			n++
		}
	}
	return n, nil
}

func (r fakeReservationRepo) HasOverlapping(_ context.Context, _ repository.Tx, clientID, communityID string, start, end time.Time) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, res := range r.s.reservations {
		if res.ClientID != clientID || res.CommunityID != communityID || res.Status != model.ReservationStatusConfirmed {
			continue
		}
		if sess, ok := r.s.sessions[res.SessionID]; ok && sess.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeReservationRepo) ListByClient(_ context.Context, _ repository.Tx, clientID string, limit int) ([]*model.Reservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*model.Reservation
	for _, res := range r.s.reservations {
		if res.ClientID == clientID && len(out) < limit {
			cp := *res
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r fakeReservationRepo) CountByStatus(_ context.Context, _ repository.Tx) (map[model.ReservationStatus]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := make(map[model.ReservationStatus]int)
	for _, res := range r.s.reservations {
		counts[res.Status]++
	}
	return counts, nil
}

// ---- PlanRepository ----

type fakePlanRepo struct{ s *fakeStore }

var _ repository.PlanRepository = fakePlanRepo{}

func (r fakePlanRepo) Save(_ context.Context, _ repository.Tx, p *model.Plan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *p
	r.s.plans[p.ID] = &cp
	return nil
}

func (r fakePlanRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Plan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if p, ok := r.s.plans[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r fakePlanRepo) ListByCommunity(_ context.Context, _ repository.Tx, communityID string) ([]*model.Plan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*model.Plan
	for _, p := range r.s.plans {
		if p.CommunityID == communityID && p.Active {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r fakePlanRepo) Deactivate(_ context.Context, _ repository.Tx, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.plans[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Active = false
	return nil
}

// ---- MembershipRepository ----

type fakeMembershipRepo struct{ s *fakeStore }

var _ repository.MembershipRepository = fakeMembershipRepo{}

func (r fakeMembershipRepo) Ensure(_ context.Context, _ repository.Tx, m *model.Membership) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.members[m.ClientID+"|"+m.CommunityID] = true
	return nil
}

func (r fakeMembershipRepo) Exists(_ context.Context, _ repository.Tx, clientID, communityID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.members[clientID+"|"+communityID], nil
}
