package model

import "time"

// Presence records that an agent was recently heartbeated. At most one row
// exists per (TenantID, AgentID); ExpiresAt is always LastSeenAt plus
// TTLSeconds.
type Presence struct {
	TenantID   string    `json:"tenant_id"`
	AgentID    string    `json:"agent_id"`
	LastSeenAt time.Time `json:"last_seen_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	TTLSeconds int       `json:"ttl_seconds"`
}

// NewPresence builds a full replacement row for a heartbeat observed at now.
func NewPresence(tenantID, agentID string, ttlSeconds int, now time.Time) Presence {
	return Presence{
		TenantID:   tenantID,
		AgentID:    agentID,
		LastSeenAt: now,
		ExpiresAt:  now.Add(time.Duration(ttlSeconds) * time.Second),
		TTLSeconds: ttlSeconds,
	}
}

// LiveAt reports whether the row is still live at now.
func (p *Presence) LiveAt(now time.Time) bool {
	return now.Before(p.ExpiresAt)
}
