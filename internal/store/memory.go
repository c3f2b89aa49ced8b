package store

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/mpsubs/pkg/subscription"
)

// Memory is an in-process Store. Values are copied in and out, so callers
// never share state with the store.
type Memory struct {
	mu     sync.Mutex
	now    func() time.Time
	nextID int64

	users  map[subscription.UserID]subscription.User
	emails map[string]subscription.UserID
	plans  map[subscription.PlanID]subscription.Plan
	subs   map[subscription.SubscriptionID]subscription.Subscription
	byPlan map[subscription.PreapprovalPlanID]subscription.SubscriptionID
	writes int
}

func NewMemory() *Memory {
	return &Memory{
		now:    time.Now,
		users:  make(map[subscription.UserID]subscription.User),
		emails: make(map[string]subscription.UserID),
		plans:  make(map[subscription.PlanID]subscription.Plan),
		subs:   make(map[subscription.SubscriptionID]subscription.Subscription),
		byPlan: make(map[subscription.PreapprovalPlanID]subscription.SubscriptionID),
	}
}

var _ subscription.Store = (*Memory)(nil)

func (m *Memory) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *Memory) CreateUser(_ context.Context, u *subscription.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(u.Email)
	if _, ok := m.emails[key]; ok {
		return subscription.ErrEmailTaken
	}
	u.ID = subscription.UserID(m.id())
	m.users[u.ID] = *u
	m.emails[key] = u.ID
	m.writes++
	return nil
}

func (m *Memory) GetPlan(_ context.Context, id subscription.PlanID) (*subscription.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.plans[id]
	if !ok {
		return nil, subscription.ErrPlanNotFound
	}
	return &p, nil
}

func (m *Memory) ListPlans(context.Context) ([]subscription.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	plans := make([]subscription.Plan, 0, len(m.plans))
	for _, p := range m.plans {
		plans = append(plans, p)
	}
	slices.SortFunc(plans, func(a, b subscription.Plan) int { return cmp.Compare(a.ID, b.ID) })
	return plans, nil
}

func (m *Memory) UpsertPlan(_ context.Context, p *subscription.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, existing := range m.plans {
		if existing.Name == p.Name {
			p.ID = id
			m.plans[id] = *p
			m.writes++
			return nil
		}
	}
	p.ID = subscription.PlanID(m.id())
	m.plans[p.ID] = *p
	m.writes++
	return nil
}

func (m *Memory) CreateSubscription(_ context.Context, s *subscription.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byPlan[s.PreapprovalPlanID]; ok {
		return subscription.ErrSubscriptionAlreadyExists
	}
	if _, ok := m.users[s.UserID]; !ok {
		return persistence("create subscription", errUnknownUser)
	}
	if _, ok := m.plans[s.PlanID]; !ok {
		return persistence("create subscription", errUnknownPlan)
	}

	now := m.now().UTC()
	s.ID = subscription.SubscriptionID(m.id())
	s.CreatedAt, s.UpdatedAt = now, now
	m.subs[s.ID] = clone(*s)
	m.byPlan[s.PreapprovalPlanID] = s.ID
	m.writes++
	return nil
}

func (m *Memory) GetSubscriptionByPreapprovalPlanID(_ context.Context, id subscription.PreapprovalPlanID) (*subscription.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sid, ok := m.byPlan[id]
	if !ok {
		return nil, subscription.ErrSubscriptionNotFound
	}
	s := clone(m.subs[sid])
	return &s, nil
}

func (m *Memory) SaveSubscription(_ context.Context, s *subscription.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.subs[s.ID]; !ok {
		return subscription.ErrSubscriptionNotFound
	}
	s.UpdatedAt = m.now().UTC()
	m.subs[s.ID] = clone(*s)
	m.writes++
	return nil
}

// Subscriptions returns a snapshot of every stored subscription ordered by id.
func (m *Memory) Subscriptions() []subscription.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]subscription.Subscription, 0, len(m.subs))
	for _, s := range m.subs {
		out = append(out, clone(s))
	}
	slices.SortFunc(out, func(a, b subscription.Subscription) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Writes counts successful mutations.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func clone(s subscription.Subscription) subscription.Subscription {
	if s.StartDate != nil {
		t := *s.StartDate
		s.StartDate = &t
	}
	if s.EndDate != nil {
		t := *s.EndDate
		s.EndDate = &t
	}
	return s
}
