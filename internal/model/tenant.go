package model

// Tenant is the directory view of a tenant: the top-level isolation boundary
// owning agents and keys.
type Tenant struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Status TenantStatus `json:"status"`
}

// Agent is the directory view of an agent. Every agent belongs to exactly one
// tenant.
type Agent struct {
	ID       string      `json:"id"`
	TenantID string      `json:"tenant_id"`
	Name     string      `json:"name"`
	Status   AgentStatus `json:"status"`
}
