package handler

import (
	"net/http"

	"github.com/edvin/agentauth/internal/api/request"
	"github.com/edvin/agentauth/internal/api/response"
	"github.com/edvin/agentauth/internal/core"
	"github.com/edvin/agentauth/internal/model"
)

// Auth handles key validation endpoints.
type Auth struct {
	authz *core.Authorizer
	keys  *core.APIKeyService
}

// NewAuth creates a new Auth handler.
func NewAuth(authz *core.Authorizer, keys *core.APIKeyService) *Auth {
	return &Auth{authz: authz, keys: keys}
}

type validateResponse struct {
	Valid         bool            `json:"valid"`
	TenantID      string          `json:"tenant_id"`
	AgentID       string          `json:"agent_id"`
	APIKeyID      string          `json:"api_key_id"`
	Permissions   []string        `json:"permissions"`
	HasPermission bool            `json:"has_permission"`
	Status        model.KeyStatus `json:"status"`
}

// ValidateAPIKey authenticates a key and reports whether it holds the optional
// required permission. A missing permission is reported in the body, not as
// an error status.
func (h *Auth) ValidateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req request.ValidateAPIKey
	if err := request.Decode(r, &req); err != nil {
		badRequest(w, r, err)
		return
	}

	v, err := h.authz.Validate(r.Context(), req.APIKey, core.ValidateOptions{
		RequiredPermission: req.RequiredPermission,
		CountUsage:         req.CountUsage(),
	})
	if err != nil {
		writeServiceError(w, r, err, response.CodeBadRequest, response.CodeAuthUnavailable)
		return
	}
	if !v.Outcome.Authenticated() {
		writeRejected(w, r, v)
		return
	}

	response.WriteSuccess(w, r, http.StatusOK, "API key is valid", validateResponse{
		Valid:         true,
		TenantID:      v.TenantID,
		AgentID:       v.AgentID,
		APIKeyID:      v.KeyID,
		Permissions:   nonNil(v.Permissions),
		HasPermission: v.HasPermission,
		Status:        v.Status,
	})
}

type checkPermissionResponse struct {
	HasPermission  bool            `json:"has_permission"`
	Permission     string          `json:"permission"`
	AllPermissions []string        `json:"all_permissions"`
	TenantID       string          `json:"tenant_id"`
	AgentID        string          `json:"agent_id"`
	Status         model.KeyStatus `json:"status"`
}

// CheckPermission reports whether a valid key holds one permission. Usage is
// not counted.
func (h *Auth) CheckPermission(w http.ResponseWriter, r *http.Request) {
	var req request.CheckPermission
	if err := request.Decode(r, &req); err != nil {
		badRequest(w, r, err)
		return
	}

	v, err := h.authz.CheckPermission(r.Context(), req.APIKey, req.Permission)
	if err != nil {
		writeServiceError(w, r, err, response.CodeBadRequest, response.CodeAuthUnavailable)
		return
	}
	if !v.Outcome.Authenticated() {
		writeRejected(w, r, v)
		return
	}

	response.WriteSuccess(w, r, http.StatusOK, "permission checked", checkPermissionResponse{
		HasPermission:  v.HasPermission,
		Permission:     req.Permission,
		AllPermissions: nonNil(v.Permissions),
		TenantID:       v.TenantID,
		AgentID:        v.AgentID,
		Status:         v.Status,
	})
}

type parseResponse struct {
	TenantID    string `json:"tenant_id"`
	AgentID     string `json:"agent_id"`
	RandomToken string `json:"random_token"`
	Version     string `json:"version"`
	FormatValid bool   `json:"format_valid"`
}

// ParseAPIKey decodes a key literal without consulting the store.
func (h *Auth) ParseAPIKey(w http.ResponseWriter, r *http.Request) {
	var req request.ParseAPIKey
	if err := request.Decode(r, &req); err != nil {
		badRequest(w, r, err)
		return
	}

	parts, err := h.keys.Parse(req.APIKey)
	if err != nil {
		response.WriteError(w, r, http.StatusBadRequest, response.CodeInvalidKey, "invalid API key format", "")
		return
	}

	response.WriteSuccess(w, r, http.StatusOK, "API key parsed", parseResponse{
		TenantID:    parts.TenantID,
		AgentID:     parts.AgentID,
		RandomToken: parts.RandomToken,
		Version:     parts.Version,
		FormatValid: true,
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
