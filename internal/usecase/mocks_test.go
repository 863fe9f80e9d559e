//go:build !integration

package usecase_test

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

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// ---- Transaction manager ----

// MockTxManager serializes callbacks behind a mutex, the way contended row
// locks serialize real admission transactions. Tests that need custom
// behavior assign WithTxFunc.
type MockTxManager struct {
	mu sync.Mutex

	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, repository.NoTX)
}

// ---- Subscription repo ----

// MockSubscriptionRepo keeps the expired flag outside the model, mirroring the
// expired_at column the SQL implementation writes.
type MockSubscriptionRepo struct {
	mu      sync.RWMutex
	subs    map[string]*model.Subscription
	expired map[string]bool

	SaveFunc func(ctx context.Context, tx repository.Tx, sub *model.Subscription) error
}

func NewMockSubscriptionRepo() *MockSubscriptionRepo {
	return &MockSubscriptionRepo{
		subs:    make(map[string]*model.Subscription),
		expired: make(map[string]bool),
	}
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func (m *MockSubscriptionRepo) Save(ctx context.Context, tx repository.Tx, sub *model.Subscription) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, sub)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sub
	m.subs[sub.ID] = &cp
	return nil
}

func (m *MockSubscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.subs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MockSubscriptionRepo) FindActiveByClientAndCommunity(ctx context.Context, tx repository.Tx, clientID, communityID string) (*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.subs {
		if s.ClientID == clientID && s.CommunityID == communityID && s.State == model.SubscriptionStateActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockSubscriptionRepo) FindPendingByClientAndCommunity(ctx context.Context, tx repository.Tx, clientID, communityID string, since time.Time) (*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *model.Subscription
	for _, s := range m.subs {
		if s.ClientID != clientID || s.CommunityID != communityID || !s.Pending() {
			continue
		}
		if s.CreatedAt.Before(since) || m.expired[s.ID] {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *MockSubscriptionRepo) CountByState(ctx context.Context, tx repository.Tx) (map[model.SubscriptionState]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[model.SubscriptionState]int)
	for _, s := range m.subs {
		counts[s.State]++
	}
	return counts, nil
}

func (m *MockSubscriptionRepo) FlagExpiredPending(ctx context.Context, tx repository.Tx, before time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.subs {
		if s.Pending() && s.CreatedAt.Before(before) && !m.expired[s.ID] {
			m.expired[s.ID] = true
			n++
		}
	}
	return n, nil
}

// ---- Credit repo ----

type MockCreditRepo struct {
	mu      sync.RWMutex
	records map[string]*model.CreditRecord

	SaveFunc func(ctx context.Context, tx repository.Tx, rec *model.CreditRecord) error
}

func NewMockCreditRepo() *MockCreditRepo {
	return &MockCreditRepo{records: make(map[string]*model.CreditRecord)}
}

var _ repository.CreditRecordRepository = (*MockCreditRepo)(nil)

func (m *MockCreditRepo) Save(ctx context.Context, tx repository.Tx, rec *model.CreditRecord) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, rec)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.records[rec.SubscriptionID] = &cp
	return nil
}

func (m *MockCreditRepo) FindBySubscription(ctx context.Context, tx repository.Tx, subscriptionID string) (*model.CreditRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[subscriptionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *MockCreditRepo) FindBySubscriptionForUpdate(ctx context.Context, tx repository.Tx, subscriptionID string) (*model.CreditRecord, error) {
	return m.FindBySubscription(ctx, tx, subscriptionID)
}

func (m *MockCreditRepo) TotalRemaining(ctx context.Context, tx repository.Tx) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum int64
	for _, rec := range m.records {
		sum += int64(rec.Available)
	}
	return sum, nil
}

// ---- Session repo ----

type MockSessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
}

func NewMockSessionRepo() *MockSessionRepo {
	return &MockSessionRepo{sessions: make(map[string]*model.Session)}
}

var _ repository.SessionRepository = (*MockSessionRepo)(nil)

func (m *MockSessionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *MockSessionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MockSessionRepo) FindByIDForUpdate(ctx context.Context, tx repository.Tx, id string) (*model.Session, error) {
	return m.FindByID(ctx, tx, id)
}

func (m *MockSessionRepo) ListUpcoming(ctx context.Context, tx repository.Tx, communityID string, from time.Time, limit int) ([]*model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Session
	for _, s := range m.sessions {
		if s.CommunityID == communityID && !s.StartsAt.Before(from) {
			cp := *s
			out = append(out, &cp)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// ---- Reservation repo ----

// MockReservationRepo holds a reference to the session store so HasOverlapping
// can join reservation windows the way the SQL implementation does.
type MockReservationRepo struct {
	mu           sync.RWMutex
	reservations map[string]*model.Reservation
	sessions     *MockSessionRepo

	CreateFunc func(ctx context.Context, tx repository.Tx, res *model.Reservation) error
}

func NewMockReservationRepo(sessions *MockSessionRepo) *MockReservationRepo {
	return &MockReservationRepo{
		reservations: make(map[string]*model.Reservation),
		sessions:     sessions,
	}
}

var _ repository.ReservationRepository = (*MockReservationRepo)(nil)

func (m *MockReservationRepo) Create(ctx context.Context, tx repository.Tx, res *model.Reservation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, res)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	// one confirmed row per (client, session), same as the partial unique index
	for _, r := range m.reservations {
		if r.ClientID == res.ClientID && r.SessionID == res.SessionID && r.Status == model.ReservationStatusConfirmed {
			return domain.ErrAlreadyReserved
		}
	}
	cp := *res
	m.reservations[res.ID] = &cp
	return nil
}

func (m *MockReservationRepo) Save(ctx context.Context, tx repository.Tx, res *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reservations[res.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *res
	m.reservations[res.ID] = &cp
	return nil
}

func (m *MockReservationRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reservations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MockReservationRepo) FindConfirmed(ctx context.Context, tx repository.Tx, clientID, sessionID string) (*model.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.reservations {
		if r.ClientID == clientID && r.SessionID == sessionID && r.Status == model.ReservationStatusConfirmed {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockReservationRepo) CountConfirmedBySession(ctx context.Context, tx repository.Tx, sessionID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, r := range m.reservations {
		if r.SessionID == sessionID && r.Status == model.ReservationStatusConfirmed {
			n++
		}
	}
	return n, nil
}

func (m *MockReservationRepo) HasOverlapping(ctx context.Context, tx repository.Tx, clientID, communityID string, start, end time.Time) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.reservations {
		if r.ClientID != clientID || r.CommunityID != communityID || r.Status != model.ReservationStatusConfirmed {
			continue
		}
		sess, err := m.sessions.FindByID(ctx, tx, r.SessionID)
		if err != nil {
			continue
		}
		if sess.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockReservationRepo) ListByClient(ctx context.Context, tx repository.Tx, clientID string, limit int) ([]*model.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Reservation
	for _, r := range m.reservations {
		if r.ClientID == clientID {
			cp := *r
			out = append(out, &cp)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MockReservationRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.ReservationStatus]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[model.ReservationStatus]int)
	for _, r := range m.reservations {
		counts[r.Status]++
	}
	return counts, nil
}

// ---- Plan repo ----

type MockPlanRepo struct {
	mu    sync.RWMutex
	plans map[string]*model.Plan
}

func NewMockPlanRepo() *MockPlanRepo {
	return &MockPlanRepo{plans: make(map[string]*model.Plan)}
}

var _ repository.PlanRepository = (*MockPlanRepo)(nil)

func (m *MockPlanRepo) Save(ctx context.Context, tx repository.Tx, p *model.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.plans[p.ID] = &cp
	return nil
}

func (m *MockPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.plans[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPlanRepo) ListByCommunity(ctx context.Context, tx repository.Tx, communityID string) ([]*model.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Plan
	for _, p := range m.plans {
		if p.CommunityID == communityID && p.Active {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockPlanRepo) Deactivate(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Active = false
	return nil
}

// ---- Membership repo ----

type MockMembershipRepo struct {
	mu      sync.RWMutex
	members map[string]bool // clientID|communityID
}

func NewMockMembershipRepo() *MockMembershipRepo {
	return &MockMembershipRepo{members: make(map[string]bool)}
}

var _ repository.MembershipRepository = (*MockMembershipRepo)(nil)

func (m *MockMembershipRepo) Ensure(ctx context.Context, tx repository.Tx, mem *model.Membership) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[mem.ClientID+"|"+mem.CommunityID] = true
	return nil
}

func (m *MockMembershipRepo) Exists(ctx context.Context, tx repository.Tx, clientID, communityID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.members[clientID+"|"+communityID], nil
}
