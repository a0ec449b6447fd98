package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/agentauth/internal/api/request"
	"github.com/edvin/agentauth/internal/api/response"
	"github.com/edvin/agentauth/internal/core"
)

// APIKey handles API key management endpoints.
type APIKey struct {
	svc *core.APIKeyService
}

// NewAPIKey creates a new APIKey handler.
func NewAPIKey(svc *core.APIKeyService) *APIKey {
	return &APIKey{svc: svc}
}

// Create issues a new API key. The response carries the full key value, as do
// the other key management responses.
func (h *APIKey) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateAPIKey
	if err := request.Decode(r, &req); err != nil {
		badRequest(w, r, err)
		return
	}

	key, err := h.svc.Issue(r.Context(), core.IssueParams{
		TenantID:    req.TenantID,
		AgentID:     req.AgentID,
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		writeServiceError(w, r, err, response.CodeBadRequest, response.CodeStoreUnavailable)
		return
	}

	response.WriteSuccess(w, r, http.StatusCreated, "API key created", key)
}

// List returns a tenant's API keys, newest first.
func (h *APIKey) List(w http.ResponseWriter, r *http.Request) {
	q, err := request.ParseKeyListQuery(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}

	filter := core.KeyFilter{
		TenantID: q.TenantID,
		AgentID:  q.AgentID,
		Status:   q.Status,
		Limit:    q.Limit,
		Cursor:   q.Cursor,
	}

	keys, hasMore, err := h.svc.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err, response.CodeBadRequest, response.CodeStoreUnavailable)
		return
	}

	var nextCursor string
	if hasMore && len(keys) > 0 {
		nextCursor = keys[len(keys)-1].ID
	}
	response.WritePaginated(w, r, "API keys listed", keys, nextCursor, hasMore)
}

// Get returns a single API key.
func (h *APIKey) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, err)
		return
	}

	key, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, response.CodeBadRequest, response.CodeStoreUnavailable)
		return
	}

	response.WriteSuccess(w, r, http.StatusOK, "API key retrieved", key)
}

// Update applies a partial update to an API key.
func (h *APIKey) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, err)
		return
	}

	var req request.UpdateAPIKey
	if err := request.Decode(r, &req); err != nil {
		badRequest(w, r, err)
		return
	}

	upd := core.KeyUpdate{
		Name:        req.Name,
		Description: req.Description,
		ExpiresAt:   req.ExpiresAt,
	}
	if req.Permissions != nil {
		upd.Permissions = nonNil(*req.Permissions)
	}

	key, err := h.svc.Update(r.Context(), id, upd)
	if err != nil {
		writeServiceError(w, r, err, response.CodeBadRequest, response.CodeStoreUnavailable)
		return
	}

	response.WriteSuccess(w, r, http.StatusOK, "API key updated", key)
}

// Disable permanently disables an API key.
func (h *APIKey) Disable(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, err)
		return
	}

	key, err := h.svc.Disable(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, response.CodeBadRequest, response.CodeStoreUnavailable)
		return
	}

	response.WriteSuccess(w, r, http.StatusOK, "API key disabled", key)
}

// Delete removes an API key.
func (h *APIKey) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, response.CodeBadRequest, response.CodeStoreUnavailable)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
