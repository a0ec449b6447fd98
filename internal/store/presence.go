package store

import (
	"context"
	"fmt"
	"time"

	"github.com/edvin/agentauth/internal/model"
)

// PresenceStore keeps agent presence in the agent_presence table.
type PresenceStore struct {
	db DB
}

// NewPresenceStore creates a new PresenceStore.
func NewPresenceStore(db DB) *PresenceStore {
	return &PresenceStore{db: db}
}

// Upsert writes the row for (tenant, agent), replacing every column of an
// existing one.
func (s *PresenceStore) Upsert(ctx context.Context, p model.Presence) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO agent_presence (tenant_id, agent_id, last_seen_at, expires_at, ttl_seconds)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (tenant_id, agent_id) DO UPDATE
		 SET last_seen_at = EXCLUDED.last_seen_at,
		     expires_at = EXCLUDED.expires_at,
		     ttl_seconds = EXCLUDED.ttl_seconds`,
		p.TenantID, p.AgentID, p.LastSeenAt, p.ExpiresAt, p.TTLSeconds,
	)
	if err != nil {
		return fmt.Errorf("upsert presence %s/%s: %w", p.TenantID, p.AgentID, err)
	}
	return nil
}

// ListActive returns rows that have not expired at now, optionally for one tenant.
func (s *PresenceStore) ListActive(ctx context.Context, now time.Time, tenantID string) ([]model.Presence, error) {
	query := `SELECT tenant_id, agent_id, last_seen_at, expires_at, ttl_seconds
		FROM agent_presence WHERE expires_at > $1`
	args := []any{now}
	if tenantID != "" {
		query += ` AND tenant_id = $2`
		args = append(args, tenantID)
	}
	query += ` ORDER BY last_seen_at DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list presence: %w", err)
	}
	defer rows.Close()

	var out []model.Presence
	for rows.Next() {
		var p model.Presence
		if err := rows.Scan(&p.TenantID, &p.AgentID, &p.LastSeenAt, &p.ExpiresAt, &p.TTLSeconds); err != nil {
			return nil, fmt.Errorf("scan presence: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate presence: %w", err)
	}
	return out, nil
}

// Purge deletes rows that expired before the given time.
func (s *PresenceStore) Purge(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM agent_presence WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("purge presence: %w", err)
	}
	return tag.RowsAffected(), nil
}
