package model

import (
	"slices"
	"time"
)

// APIKey is a tenant/agent-scoped bearer credential. Value is the full opaque
// key string handed to the caller; it decodes to TenantID and AgentID.
type APIKey struct {
	ID          string     `json:"api_key_id"`
	TenantID    string     `json:"tenant_id"`
	AgentID     string     `json:"agent_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Value       string     `json:"api_key"`
	Permissions []string   `json:"permissions"`
	Status      KeyStatus  `json:"status"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	UsageCount  int64      `json:"usage_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// HasPermission reports whether the key carries permission. Matching is exact
// and case-sensitive.
func (k *APIKey) HasPermission(permission string) bool {
	return permission != "" && slices.Contains(k.Permissions, permission)
}

// ExpiredAt reports whether the key's expiry time has been reached at now.
func (k *APIKey) ExpiredAt(now time.Time) bool {
	return k.ExpiresAt != nil && !now.Before(*k.ExpiresAt)
}
