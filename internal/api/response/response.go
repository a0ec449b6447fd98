package response

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/edvin/agentauth/internal/platform"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
	Error     string `json:"error,omitempty"`
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteSuccess writes a successful envelope carrying data.
func WriteSuccess(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	WriteJSON(w, status, newEnvelope(r, true, message, data))
}

// WriteError writes a failed envelope with a stable error code. detail is
// optional and may be empty.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code Code, message, detail string) {
	env := newEnvelope(r, false, message, nil)
	env.ErrorCode = string(code)
	env.Error = detail
	WriteJSON(w, status, env)
}

// PaginatedResponse wraps a list with pagination metadata.
type PaginatedResponse struct {
	Items      any    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// WritePaginated writes a successful envelope carrying a page of items.
func WritePaginated(w http.ResponseWriter, r *http.Request, message string, items any, nextCursor string, hasMore bool) {
	WriteSuccess(w, r, http.StatusOK, message, PaginatedResponse{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	})
}

func newEnvelope(r *http.Request, success bool, message string, data any) Envelope {
	return Envelope{
		Success:   success,
		Message:   message,
		Data:      data,
		RequestID: requestID(r),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

func requestID(r *http.Request) string {
	if r != nil {
		if id := middleware.GetReqID(r.Context()); id != "" {
			return id
		}
	}
	return platform.NewID()
}
