package core

import (
	"context"
	"time"

	"github.com/edvin/agentauth/internal/model"
)

// Directory is a read-only view of tenants and agents. Lookups of unknown IDs
// return ErrNotFound.
type Directory interface {
	GetTenant(ctx context.Context, id string) (*model.Tenant, error)
	GetAgent(ctx context.Context, id string) (*model.Agent, error)
}

// KeyStore persists API keys. RecordUsage and MarkExpired must each be a
// single atomic store-side update; callers never read-modify-write.
type KeyStore interface {
	Create(ctx context.Context, key *model.APIKey) error
	GetByID(ctx context.Context, id string) (*model.APIKey, error)
	// FindByValue returns the key whose stored value is exactly value and
	// whose tenant and agent match the decoded ones.
	FindByValue(ctx context.Context, value, tenantID, agentID string) (*model.APIKey, error)
	List(ctx context.Context, filter KeyFilter) ([]model.APIKey, bool, error)
	Update(ctx context.Context, id string, upd KeyUpdate, now time.Time) (*model.APIKey, error)
	Disable(ctx context.Context, id string, now time.Time) (*model.APIKey, error)
	Delete(ctx context.Context, id string) error
	// MarkExpired moves an active key to expired. It is a no-op for keys that
	// are already expired or disabled.
	MarkExpired(ctx context.Context, id string, now time.Time) error
	// RecordUsage increments the usage counter by one and advances last_used_at.
	RecordUsage(ctx context.Context, id string, at time.Time) error
}

// PresenceStore persists one presence row per (tenant, agent). Upsert replaces
// the whole row atomically.
type PresenceStore interface {
	Upsert(ctx context.Context, p model.Presence) error
	// ListActive returns rows with expires_at after now, restricted to tenantID
	// when it is non-empty.
	ListActive(ctx context.Context, now time.Time, tenantID string) ([]model.Presence, error)
	// Purge deletes rows that expired before the given time.
	Purge(ctx context.Context, before time.Time) (int64, error)
}

// KeyFilter selects API keys for listing. TenantID is required.
type KeyFilter struct {
	TenantID string
	AgentID  string
	Status   model.KeyStatus
	Limit    int
	Cursor   string
}

// KeyUpdate holds a partial update. Nil fields are left unchanged.
type KeyUpdate struct {
	Name        *string
	Description *string
	Permissions []string
	ExpiresAt   *time.Time
}

// Empty reports whether the update changes nothing.
func (u KeyUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Permissions == nil && u.ExpiresAt == nil
}
