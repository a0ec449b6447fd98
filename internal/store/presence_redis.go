package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/edvin/agentauth/internal/model"
)

const presenceKeyPrefix = "presence:"

// RedisPresenceStore keeps one JSON value per (tenant, agent) with a Redis TTL
// equal to the heartbeat TTL. Liveness is still decided from ExpiresAt at read
// time, so the Redis expiry only reclaims memory.
type RedisPresenceStore struct {
	client redis.Cmdable
}

// NewRedisPresenceStore creates a new RedisPresenceStore.
func NewRedisPresenceStore(client redis.Cmdable) *RedisPresenceStore {
	return &RedisPresenceStore{client: client}
}

// presenceKey joins the escaped tenant and agent IDs with ":". Escaping keeps
// the mapping one-to-one when an ID itself contains ":".
func presenceKey(tenantID, agentID string) string {
	return presenceKeyPrefix + escapeKeyPart(tenantID) + ":" + escapeKeyPart(agentID)
}

func escapeKeyPart(s string) string {
	if !strings.ContainsAny(s, `:\`) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if r == ':' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Upsert overwrites the value for (tenant, agent).
func (s *RedisPresenceStore) Upsert(ctx context.Context, p model.Presence) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode presence: %w", err)
	}
	ttl := time.Duration(p.TTLSeconds) * time.Second
	if err := s.client.Set(ctx, presenceKey(p.TenantID, p.AgentID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("upsert presence %s/%s: %w", p.TenantID, p.AgentID, err)
	}
	return nil
}

// ListActive scans the presence keys and returns the rows still live at now.
func (s *RedisPresenceStore) ListActive(ctx context.Context, now time.Time, tenantID string) ([]model.Presence, error) {
	match := presenceKeyPrefix + "*"
	if tenantID != "" {
		match = presenceKeyPrefix + escapeGlob(escapeKeyPart(tenantID)) + ":*"
	}

	var keys []string
	iter := s.client.Scan(ctx, 0, match, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan presence: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("read presence: %w", err)
	}

	out := make([]model.Presence, 0, len(vals))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			// expired between SCAN and MGET
			continue
		}
		var p model.Presence
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("decode presence %s: %w", keys[i], err)
		}
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

// Purge is a no-op; Redis expires presence keys on its own.
func (s *RedisPresenceStore) Purge(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
