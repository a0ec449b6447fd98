package store

import (
	"context"
	"fmt"

	"github.com/edvin/agentauth/internal/model"
)

// AuditLog appends key management audit entries to the audit_logs table.
type AuditLog struct {
	db DB
}

// NewAuditLog creates a new AuditLog.
func NewAuditLog(db DB) *AuditLog {
	return &AuditLog{db: db}
}

// WriteAudit inserts one entry.
func (a *AuditLog) WriteAudit(ctx context.Context, e model.AuditEntry) error {
	var body any
	if len(e.RequestBody) > 0 {
		body = []byte(e.RequestBody)
	}
	_, err := a.db.Exec(ctx,
		`INSERT INTO audit_logs (request_id, method, path, resource, resource_id, status_code, request_body, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.RequestID, e.Method, e.Path, e.Resource, e.ResourceID, e.StatusCode, body, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}
