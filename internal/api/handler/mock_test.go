package handler

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/edvin/agentauth/internal/core"
	"github.com/edvin/agentauth/internal/model"
)

// ---------- Mock KeyStore ----------

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

func (m *mockKeyStore) List(ctx context.Context, filter core.KeyFilter) ([]model.APIKey, bool, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]model.APIKey), args.Bool(1), args.Error(2)
}

func (m *mockKeyStore) Update(ctx context.Context, id string, upd core.KeyUpdate, now time.Time) (*model.APIKey, error) {
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
