package model

import (
	"encoding/json"
	"time"
)

// AuditEntry records one mutating key management request.
type AuditEntry struct {
	RequestID   string
	Method      string
	Path        string
	Resource    string
	ResourceID  string
	StatusCode  int
	RequestBody json.RawMessage
	CreatedAt   time.Time
}
