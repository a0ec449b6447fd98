package request

// UpsertActivity holds the request body for an agent heartbeat. The lower
// TTL bound is enforced by the presence tracker.
type UpsertActivity struct {
	TenantID   string `json:"tenant_id" validate:"required,keyid"`
	AgentID    string `json:"agent_id" validate:"required,keyid"`
	TTLSeconds int    `json:"ttl_seconds" validate:"lte=2592000"`
}
