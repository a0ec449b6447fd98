package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/edvin/agentauth/internal/api/response"
	"github.com/edvin/agentauth/internal/model"
)

// maxAuditBodyBytes matches the request decoder's body limit.
const maxAuditBodyBytes = 1 << 20

// AuditWriter persists audit entries.
type AuditWriter interface {
	WriteAudit(ctx context.Context, e model.AuditEntry) error
}

// AuditLogger is an async audit log writer.
type AuditLogger struct {
	writer AuditWriter
	logger zerolog.Logger
	ch     chan model.AuditEntry
	done   chan struct{}
	once   sync.Once
}

func NewAuditLogger(writer AuditWriter, logger zerolog.Logger) *AuditLogger {
	al := &AuditLogger{
		writer: writer,
		logger: logger,
		ch:     make(chan model.AuditEntry, 1024),
		done:   make(chan struct{}),
	}
	go al.drain()
	return al
}

func (al *AuditLogger) drain() {
	defer close(al.done)
	for entry := range al.ch {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := al.writer.WriteAudit(ctx, entry); err != nil {
			al.logger.Error().Err(err).Str("request_id", entry.RequestID).Msg("failed to write audit log")
		}
		cancel()
	}
}

// Close stops accepting entries and waits for buffered ones to be written.
func (al *AuditLogger) Close() {
	al.once.Do(func() { close(al.ch) })
	<-al.done
}

// Middleware returns a chi middleware that logs mutating API requests.
func (al *AuditLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodDelete {
			next.ServeHTTP(w, r)
			return
		}

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		var bodyBytes []byte
		var readErr error
		if r.Body != nil {
			bodyBytes, readErr = io.ReadAll(http.MaxBytesReader(w, r.Body, maxAuditBodyBytes))
			r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(readErr, &tooLarge):
			bodyBytes = nil
			response.WriteError(sw, r, http.StatusRequestEntityTooLarge, response.CodeBadRequest, "request body too large", "")
		case readErr != nil:
			bodyBytes = nil
			response.WriteError(sw, r, http.StatusBadRequest, response.CodeBadRequest, "unreadable request body", "")
		default:
			next.ServeHTTP(sw, r)
		}

		resource, resourceID := extractResource(r)

		var sanitizedBody json.RawMessage
		if len(bodyBytes) > 0 && json.Valid(bodyBytes) {
			sanitizedBody = sanitizeBody(bodyBytes)
		}

		select {
		case al.ch <- model.AuditEntry{
			RequestID:   middleware.GetReqID(r.Context()),
			Method:      r.Method,
			Path:        r.URL.Path,
			Resource:    resource,
			ResourceID:  resourceID,
			StatusCode:  sw.status,
			RequestBody: sanitizedBody,
			CreatedAt:   time.Now().UTC(),
		}:
		default:
			al.logger.Warn().Msg("audit log buffer full, dropping entry")
		}
	})
}

// extractResource returns the first path segment under /api/v1 and the {id}
// URL parameter resolved by the router, if any.
func extractResource(r *http.Request) (string, string) {
	resource, _, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/api/v1/"), "/")
	var id string
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		id = rctx.URLParam("id")
	}
	return resource, id
}

// sensitiveFields are fields that should be redacted from audit logs.
var sensitiveFields = map[string]bool{
	"api_key": true, "secret": true, "token": true, "password": true,
}

func sanitizeBody(body []byte) json.RawMessage {
	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return body
	}
	for k := range data {
		if sensitiveFields[k] {
			data[k] = "[REDACTED]"
		}
	}
	sanitized, _ := json.Marshal(data)
	return sanitized
}
