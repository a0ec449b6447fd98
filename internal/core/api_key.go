package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/edvin/agentauth/internal/keycodec"
	"github.com/edvin/agentauth/internal/model"
	"github.com/edvin/agentauth/internal/platform"
)

// IssueParams describes a new API key.
type IssueParams struct {
	TenantID    string
	AgentID     string
	Name        string
	Description string
	Permissions []string
	ExpiresAt   *time.Time
}

// APIKeyService manages the API key lifecycle: issuance, listing, updates,
// disabling and deletion.
type APIKeyService struct {
	dir  Directory
	keys KeyStore
	now  func() time.Time
}

// NewAPIKeyService creates a new APIKeyService.
func NewAPIKeyService(dir Directory, keys KeyStore) *APIKeyService {
	return &APIKeyService{dir: dir, keys: keys, now: time.Now}
}

// Issue verifies the tenant and agent, mints a key literal and stores it as
// active. The returned record carries the full key value.
func (s *APIKeyService) Issue(ctx context.Context, p IssueParams) (*model.APIKey, error) {
	if s.dir == nil || s.keys == nil {
		return nil, ErrUnavailable
	}

	if _, err := s.dir.GetTenant(ctx, p.TenantID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, storeErr("get tenant", err)
	}

	agent, err := s.dir.GetAgent(ctx, p.AgentID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrAgentNotFound
	}
	if err != nil {
		return nil, storeErr("get agent", err)
	}
	if agent.TenantID != p.TenantID {
		return nil, ErrAgentNotFound
	}

	value, err := keycodec.Generate(p.TenantID, p.AgentID)
	if err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	now := s.now().UTC()
	key := &model.APIKey{
		ID:          platform.NewKeyID(),
		TenantID:    p.TenantID,
		AgentID:     p.AgentID,
		Name:        p.Name,
		Description: p.Description,
		Value:       value,
		Permissions: normalizePermissions(p.Permissions),
		Status:      model.KeyStatusActive,
		ExpiresAt:   p.ExpiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.keys.Create(ctx, key); err != nil {
		return nil, storeErr("create api key", err)
	}
	return key, nil
}

// Get retrieves an API key by its ID.
func (s *APIKeyService) Get(ctx context.Context, id string) (*model.APIKey, error) {
	if s.keys == nil {
		return nil, ErrUnavailable
	}
	key, err := s.keys.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(fmt.Sprintf("get api key %s", id), err)
	}
	return key, nil
}

// List retrieves a tenant's API keys, newest first, with cursor-based pagination.
func (s *APIKeyService) List(ctx context.Context, filter KeyFilter) ([]model.APIKey, bool, error) {
	if s.keys == nil {
		return nil, false, ErrUnavailable
	}
	if filter.TenantID == "" {
		return nil, false, &ValidationError{Reason: "tenant_id is required"}
	}
	keys, hasMore, err := s.keys.List(ctx, filter)
	if err != nil {
		return nil, false, storeErr("list api keys", err)
	}
	if keys == nil {
		keys = []model.APIKey{}
	}
	return keys, hasMore, nil
}

// Update applies a partial update to an API key. Status is never changed here.
func (s *APIKeyService) Update(ctx context.Context, id string, upd KeyUpdate) (*model.APIKey, error) {
	if s.keys == nil {
		return nil, ErrUnavailable
	}
	if upd.Empty() {
		return s.Get(ctx, id)
	}
	if upd.Permissions != nil {
		upd.Permissions = normalizePermissions(upd.Permissions)
	}
	key, err := s.keys.Update(ctx, id, upd, s.now().UTC())
	if err != nil {
		return nil, storeErr(fmt.Sprintf("update api key %s", id), err)
	}
	return key, nil
}

// Disable permanently disables an API key.
func (s *APIKeyService) Disable(ctx context.Context, id string) (*model.APIKey, error) {
	if s.keys == nil {
		return nil, ErrUnavailable
	}
	key, err := s.keys.Disable(ctx, id, s.now().UTC())
	if err != nil {
		return nil, storeErr(fmt.Sprintf("disable api key %s", id), err)
	}
	return key, nil
}

// Delete removes an API key.
func (s *APIKeyService) Delete(ctx context.Context, id string) error {
	if s.keys == nil {
		return ErrUnavailable
	}
	if err := s.keys.Delete(ctx, id); err != nil {
		return storeErr(fmt.Sprintf("delete api key %s", id), err)
	}
	return nil
}

// Parse decodes a key literal without consulting the store. A successful parse
// does not mean the key was issued.
func (s *APIKeyService) Parse(key string) (keycodec.Parts, error) {
	return keycodec.Decode(key)
}

// normalizePermissions drops empty and duplicate entries, keeping first-seen order.
func normalizePermissions(perms []string) []string {
	out := make([]string, 0, len(perms))
	seen := make(map[string]bool, len(perms))
	for _, p := range perms {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
