package request

import (
	"net/http"
	"strconv"

	"github.com/edvin/agentauth/internal/model"
)

// Page size bounds for key listings.
const (
	DefaultKeyListLimit = 50
	MaxKeyListLimit     = 200
)

// KeyListQuery holds the query parameters of a key listing. An empty Status
// lists keys in every state.
type KeyListQuery struct {
	TenantID string
	AgentID  string
	Status   model.KeyStatus
	Limit    int
	Cursor   string
}

// ParseKeyListQuery reads tenant_id, agent_id, status, limit and cursor. An
// unparsable or non-positive limit falls back to the default; larger ones are
// clamped. Only an unknown status is an error.
func ParseKeyListQuery(r *http.Request) (KeyListQuery, error) {
	q := r.URL.Query()
	kq := KeyListQuery{
		TenantID: q.Get("tenant_id"),
		AgentID:  q.Get("agent_id"),
		Limit:    DefaultKeyListLimit,
		Cursor:   q.Get("cursor"),
	}

	if s := q.Get("status"); s != "" {
		status, err := model.ParseKeyStatus(s)
		if err != nil {
			return KeyListQuery{}, err
		}
		kq.Status = status
	}

	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		kq.Limit = min(n, MaxKeyListLimit)
	}

	return kq, nil
}
