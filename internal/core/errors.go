package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by stores and services when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNameTaken is returned when an API key name is already used within the tenant.
	ErrNameTaken = errors.New("api key name already exists in tenant")
	// ErrTenantNotFound is returned when issuing a key for an unknown tenant.
	ErrTenantNotFound = errors.New("tenant not found")
	// ErrAgentNotFound is returned when issuing a key for an unknown agent, or
	// one that belongs to another tenant.
	ErrAgentNotFound = errors.New("agent not found in tenant")
	// ErrStoreUnavailable marks failures of the underlying persistence. These are
	// safe to retry with backoff and never mean the record is missing.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrUnavailable is returned when a service was built without one of its
	// required collaborators.
	ErrUnavailable = errors.New("service unavailable")
)

// Presence eligibility failures.
const (
	ReasonInvalidTTL     = "ttl_seconds must be positive"
	ReasonTTLTooLarge    = "ttl_seconds exceeds the maximum of 2592000"
	ReasonTenantInactive = "tenant missing or inactive"
	ReasonAgentMissing   = "agent missing"
	ReasonAgentMismatch  = "agent/tenant mismatch"
	ReasonAgentInactive  = "agent inactive"
)

// ValidationError reports a request rejected before any state was written.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func invalid(reason string) error {
	return &ValidationError{Reason: reason}
}

// storeErr passes through the sentinel errors callers act on and marks
// everything else as a transient store failure.
func storeErr(op string, err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNameTaken) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
