package handler

import (
	"net/http"
	"time"

	"github.com/edvin/agentauth/internal/api/request"
	"github.com/edvin/agentauth/internal/api/response"
	"github.com/edvin/agentauth/internal/core"
	"github.com/edvin/agentauth/internal/model"
)

// Activity handles agent presence endpoints.
type Activity struct {
	tracker *core.PresenceTracker
}

// NewActivity creates a new Activity handler.
func NewActivity(tracker *core.PresenceTracker) *Activity {
	return &Activity{tracker: tracker}
}

type presenceResponse struct {
	TenantID   string `json:"tenant_id"`
	AgentID    string `json:"agent_id"`
	LastSeenAt string `json:"last_seen_at"`
	ExpiresAt  string `json:"expires_at"`
	TTLSeconds int    `json:"ttl_seconds"`
}

func toPresenceResponse(p model.Presence) presenceResponse {
	return presenceResponse{
		TenantID:   p.TenantID,
		AgentID:    p.AgentID,
		LastSeenAt: p.LastSeenAt.UTC().Format(time.RFC3339),
		ExpiresAt:  p.ExpiresAt.UTC().Format(time.RFC3339),
		TTLSeconds: p.TTLSeconds,
	}
}

// Upsert records an agent heartbeat.
func (h *Activity) Upsert(w http.ResponseWriter, r *http.Request) {
	var req request.UpsertActivity
	if err := request.Decode(r, &req); err != nil {
		badRequest(w, r, err)
		return
	}

	p, err := h.tracker.Upsert(r.Context(), req.TenantID, req.AgentID, req.TTLSeconds)
	if err != nil {
		writeServiceError(w, r, err, response.CodeActivityInvalid, response.CodeActivityUnavailable)
		return
	}

	response.WriteSuccess(w, r, http.StatusOK, "agent activity recorded", toPresenceResponse(*p))
}

type activeListResponse struct {
	Items []presenceResponse `json:"items"`
	Count int                `json:"count"`
}

// List returns the agents whose heartbeat has not lapsed, optionally filtered
// by the tenant_id query parameter.
func (h *Activity) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.tracker.ListActive(r.Context(), r.URL.Query().Get("tenant_id"))
	if err != nil {
		writeServiceError(w, r, err, response.CodeActivityInvalid, response.CodeActivityUnavailable)
		return
	}

	items := make([]presenceResponse, 0, len(rows))
	for _, p := range rows {
		items = append(items, toPresenceResponse(p))
	}
	response.WriteSuccess(w, r, http.StatusOK, "active agents listed", activeListResponse{
		Items: items,
		Count: len(items),
	})
}
