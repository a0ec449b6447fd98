package model

import "fmt"

// KeyStatus is the lifecycle state of an API key.
type KeyStatus string

// API key statuses. Disabled is terminal; Expired is only ever set by the
// expiry check at validation time.
const (
	KeyStatusActive   KeyStatus = "active"
	KeyStatusDisabled KeyStatus = "disabled"
	KeyStatusExpired  KeyStatus = "expired"
)

// ParseKeyStatus converts a wire or storage value into a KeyStatus.
func ParseKeyStatus(s string) (KeyStatus, error) {
	switch KeyStatus(s) {
	case KeyStatusActive, KeyStatusDisabled, KeyStatusExpired:
		return KeyStatus(s), nil
	}
	return "", fmt.Errorf("unknown key status %q", s)
}

// TenantStatus is the state of a tenant in the directory.
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusInactive  TenantStatus = "inactive"
	TenantStatusSuspended TenantStatus = "suspended"
)

// AgentStatus is the state of an agent in the directory.
type AgentStatus string

const (
	AgentStatusActive   AgentStatus = "active"
	AgentStatusInactive AgentStatus = "inactive"
	AgentStatusArchived AgentStatus = "archived"
)
