package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/agentauth/internal/core"
	"github.com/edvin/agentauth/internal/model"
)

const keyColumns = `id, tenant_id, agent_id, name, description, api_key, permissions, status,
	expires_at, last_used_at, usage_count, created_at, updated_at`

// KeyStore persists API keys in the api_keys table.
type KeyStore struct {
	db DB
}

// NewKeyStore creates a new KeyStore.
func NewKeyStore(db DB) *KeyStore {
	return &KeyStore{db: db}
}

func scanKey(row pgx.Row) (*model.APIKey, error) {
	var k model.APIKey
	err := row.Scan(&k.ID, &k.TenantID, &k.AgentID, &k.Name, &k.Description, &k.Value,
		&k.Permissions, &k.Status, &k.ExpiresAt, &k.LastUsedAt, &k.UsageCount,
		&k.CreatedAt, &k.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

// Create inserts a new API key.
func (s *KeyStore) Create(ctx context.Context, key *model.APIKey) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO api_keys (`+keyColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		key.ID, key.TenantID, key.AgentID, key.Name, key.Description, key.Value,
		key.Permissions, key.Status, key.ExpiresAt, key.LastUsedAt, key.UsageCount,
		key.CreatedAt, key.UpdatedAt,
	)
	if err != nil {
		return mapErr(err)
	}
	return nil
}

// GetByID retrieves an API key by its ID.
func (s *KeyStore) GetByID(ctx context.Context, id string) (*model.APIKey, error) {
	k, err := scanKey(s.db.QueryRow(ctx,
		`SELECT `+keyColumns+` FROM api_keys WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return k, nil
}

// FindByValue retrieves the key with exactly this value, scoped to the
// decoded tenant and agent.
func (s *KeyStore) FindByValue(ctx context.Context, value, tenantID, agentID string) (*model.APIKey, error) {
	k, err := scanKey(s.db.QueryRow(ctx,
		`SELECT `+keyColumns+` FROM api_keys WHERE api_key = $1 AND tenant_id = $2 AND agent_id = $3`,
		value, tenantID, agentID))
	if err != nil {
		return nil, mapErr(err)
	}
	return k, nil
}

// List retrieves a tenant's keys, newest first. The cursor is the ID of the
// last key on the previous page.
func (s *KeyStore) List(ctx context.Context, filter core.KeyFilter) ([]model.APIKey, bool, error) {
	query := `SELECT ` + keyColumns + ` FROM api_keys WHERE tenant_id = $1`
	args := []any{filter.TenantID}
	argIdx := 2

	if filter.AgentID != "" {
		query += fmt.Sprintf(` AND agent_id = $%d`, argIdx)
		args = append(args, filter.AgentID)
		argIdx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.Cursor != "" {
		query += fmt.Sprintf(` AND (created_at, id) < (SELECT created_at, id FROM api_keys WHERE id = $%d)`, argIdx)
		args = append(args, filter.Cursor)
		argIdx++
	}

	query += ` ORDER BY created_at DESC, id DESC`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, filter.Limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []model.APIKey
	for rows.Next() {
		k, err := scanKey(rows)
		if err != nil {
			return nil, false, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, *k)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate api keys: %w", err)
	}

	hasMore := len(keys) > filter.Limit
	if hasMore {
		keys = keys[:filter.Limit]
	}
	return keys, hasMore, nil
}

// Update applies the non-nil fields of upd and returns the updated key.
func (s *KeyStore) Update(ctx context.Context, id string, upd core.KeyUpdate, now time.Time) (*model.APIKey, error) {
	sets := []string{"updated_at = $1"}
	args := []any{now}

	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Permissions != nil {
		add("permissions", upd.Permissions)
	}
	if upd.ExpiresAt != nil {
		add("expires_at", *upd.ExpiresAt)
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE api_keys SET %s WHERE id = $%d RETURNING `+keyColumns,
		strings.Join(sets, ", "), len(args))
	k, err := scanKey(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapErr(err)
	}
	return k, nil
}

// Disable sets the key's status to disabled regardless of its current status.
func (s *KeyStore) Disable(ctx context.Context, id string, now time.Time) (*model.APIKey, error) {
	k, err := scanKey(s.db.QueryRow(ctx,
		`UPDATE api_keys SET status = $1, updated_at = $2 WHERE id = $3 RETURNING `+keyColumns,
		model.KeyStatusDisabled, now, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return k, nil
}

// Delete removes an API key.
func (s *KeyStore) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM api_keys WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete api key %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

// MarkExpired moves an active key to expired.
func (s *KeyStore) MarkExpired(ctx context.Context, id string, now time.Time) error {
	_, err := s.db.Exec(ctx,
		`UPDATE api_keys SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		model.KeyStatusExpired, now, id, model.KeyStatusActive,
	)
	if err != nil {
		return fmt.Errorf("mark api key %s expired: %w", id, err)
	}
	return nil
}

// RecordUsage increments usage_count and moves last_used_at forward, never back.
func (s *KeyStore) RecordUsage(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.Exec(ctx,
		`UPDATE api_keys
		 SET usage_count = usage_count + 1,
		     last_used_at = GREATEST(COALESCE(last_used_at, $2), $2)
		 WHERE id = $1`,
		id, at,
	)
	if err != nil {
		return fmt.Errorf("record api key %s usage: %w", id, err)
	}
	return nil
}
