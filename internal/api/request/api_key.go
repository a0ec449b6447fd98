package request

import "time"

// CreateAPIKey holds the request body for creating an API key.
type CreateAPIKey struct {
	TenantID    string     `json:"tenant_id" validate:"required,keyid"`
	AgentID     string     `json:"agent_id" validate:"required,keyid"`
	Name        string     `json:"name" validate:"required,min=1,max=255"`
	Description string     `json:"description" validate:"max=1024"`
	Permissions []string   `json:"permissions" validate:"dive,required,max=128"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// UpdateAPIKey holds the request body for updating an API key. Absent fields
// are left unchanged.
type UpdateAPIKey struct {
	Name        *string    `json:"name" validate:"omitnil,min=1,max=255"`
	Description *string    `json:"description" validate:"omitnil,max=1024"`
	Permissions *[]string  `json:"permissions" validate:"omitnil,dive,required,max=128"`
	ExpiresAt   *time.Time `json:"expires_at"`
}
