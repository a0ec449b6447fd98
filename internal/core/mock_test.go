package core

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/edvin/agentauth/internal/model"
)

// ---------- Mock KeyStore ----------

// mockKeyStore implements the KeyStore interface for testing.
type mockKeyStore struct {
	mock.Mock
}

func (m *mockKeyStore) Create(ctx context.Context, key *model.APIKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockKeyStore) GetByID(ctx context.Context, id string) (*model.APIKey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.APIKey), args.Error(1)
}

func (m *mockKeyStore) FindByValue(ctx context.Context, value, tenantID, agentID string) (*model.APIKey, error) {
	args := m.Called(ctx, value, tenantID, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.APIKey), args.Error(1)
}

func (m *mockKeyStore) List(ctx context.Context, filter KeyFilter) ([]model.APIKey, bool, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]model.APIKey), args.Bool(1), args.Error(2)
}

func (m *mockKeyStore) Update(ctx context.Context, id string, upd KeyUpdate, now time.Time) (*model.APIKey, error) {
	args := m.Called(ctx, id, upd, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.APIKey), args.Error(1)
}

func (m *mockKeyStore) Disable(ctx context.Context, id string, now time.Time) (*model.APIKey, error) {
	args := m.Called(ctx, id, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.APIKey), args.Error(1)
}

func (m *mockKeyStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockKeyStore) MarkExpired(ctx context.Context, id string, now time.Time) error {
	args := m.Called(ctx, id, now)
	return args.Error(0)
}

func (m *mockKeyStore) RecordUsage(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// ---------- Mock Directory ----------

// mockDirectory implements the Directory interface for testing.
type mockDirectory struct {
	mock.Mock
}

func (m *mockDirectory) GetTenant(ctx context.Context, id string) (*model.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tenant), args.Error(1)
}

func (m *mockDirectory) GetAgent(ctx context.Context, id string) (*model.Agent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Agent), args.Error(1)
}

// ---------- Mock PresenceStore ----------

// mockPresenceStore implements the PresenceStore interface for testing.
type mockPresenceStore struct {
	mock.Mock
}

func (m *mockPresenceStore) Upsert(ctx context.Context, p model.Presence) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockPresenceStore) ListActive(ctx context.Context, now time.Time, tenantID string) ([]model.Presence, error) {
	args := m.Called(ctx, now, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Presence), args.Error(1)
}

func (m *mockPresenceStore) Purge(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// ---------- In-memory PresenceStore ----------

// memPresenceStore is a map-backed PresenceStore for scenario tests.
type memPresenceStore struct {
	mu   sync.Mutex
	rows map[[2]string]model.Presence
}

func newMemPresenceStore() *memPresenceStore {
	return &memPresenceStore{rows: map[[2]string]model.Presence{}}
}

func (s *memPresenceStore) Upsert(_ context.Context, p model.Presence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[[2]string{p.TenantID, p.AgentID}] = p
	return nil
}

func (s *memPresenceStore) ListActive(_ context.Context, now time.Time, tenantID string) ([]model.Presence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Presence
	for _, p := range s.rows {
		if !p.ExpiresAt.After(now) {
			continue
		}
		if tenantID != "" && p.TenantID != tenantID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *memPresenceStore) Purge(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k, p := range s.rows {
		if p.ExpiresAt.Before(before) {
			delete(s.rows, k)
			n++
		}
	}
	return n, nil
}

func (s *memPresenceStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// ---------- Clock ----------

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{t: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}
