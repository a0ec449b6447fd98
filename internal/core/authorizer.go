package core

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/agentauth/internal/keycodec"
	"github.com/edvin/agentauth/internal/metrics"
	"github.com/edvin/agentauth/internal/model"
)

// Outcome is the result kind of a key validation.
type Outcome int

const (
	OutcomeValid Outcome = iota
	OutcomeInvalidFormat
	OutcomeNotFound
	OutcomeDisabled
	OutcomeExpired
	// OutcomeInsufficientPermission means the key authenticated but lacks the
	// required permission.
	OutcomeInsufficientPermission
)

func (o Outcome) String() string {
	switch o {
	case OutcomeValid:
		return "valid"
	case OutcomeInvalidFormat:
		return "invalid_format"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeDisabled:
		return "disabled"
	case OutcomeExpired:
		return "expired"
	case OutcomeInsufficientPermission:
		return "insufficient_permission"
	}
	return "unknown"
}

// Authenticated reports whether the key itself was accepted, regardless of
// the permission check.
func (o Outcome) Authenticated() bool {
	return o == OutcomeValid || o == OutcomeInsufficientPermission
}

// Validation is the result of validating a presented key. Identity fields are
// only populated when the outcome is Authenticated.
type Validation struct {
	Outcome       Outcome
	KeyID         string
	TenantID      string
	AgentID       string
	Permissions   []string
	Status        model.KeyStatus
	HasPermission bool
}

// ValidateOptions controls a single Validate call.
type ValidateOptions struct {
	// RequiredPermission, when set, must be held by the key.
	RequiredPermission string
	// CountUsage increments the key's usage counter on success.
	CountUsage bool
}

// Authorizer validates presented API keys against the KeyStore.
type Authorizer struct {
	keys KeyStore
	now  func() time.Time
}

// NewAuthorizer creates a new Authorizer. A nil store yields an Authorizer
// whose calls fail with ErrUnavailable.
func NewAuthorizer(keys KeyStore) *Authorizer {
	return &Authorizer{keys: keys, now: time.Now}
}

// Validate decides whether key is authentic, enabled, unexpired and holds the
// required permission. The returned error is non-nil only for ErrUnavailable
// and ErrStoreUnavailable; every other failure is reported as an Outcome.
func (a *Authorizer) Validate(ctx context.Context, key string, opts ValidateOptions) (Validation, error) {
	v, rec, err := a.authenticate(ctx, key)
	if err != nil || rec == nil {
		observe(v, err)
		return v, err
	}

	v.HasPermission = opts.RequiredPermission == "" || rec.HasPermission(opts.RequiredPermission)
	if !v.HasPermission {
		v.Outcome = OutcomeInsufficientPermission
	}

	if opts.CountUsage {
		if err := a.keys.RecordUsage(ctx, rec.ID, a.now()); err != nil {
			err = storeErr("record api key usage", err)
			observe(Validation{}, err)
			return Validation{}, err
		}
	}

	observe(v, nil)
	return v, nil
}

// CheckPermission validates key without counting usage and reports whether it
// holds permission. HasPermission is only true for a fully valid key.
func (a *Authorizer) CheckPermission(ctx context.Context, key, permission string) (Validation, error) {
	v, rec, err := a.authenticate(ctx, key)
	if err != nil || rec == nil {
		observe(v, err)
		return v, err
	}

	v.HasPermission = rec.HasPermission(permission)
	if !v.HasPermission {
		v.Outcome = OutcomeInsufficientPermission
	}
	observe(v, nil)
	return v, nil
}

// Permits reports whether key is valid and holds permission. Any failure,
// including a store error, yields false.
func (a *Authorizer) Permits(ctx context.Context, key, permission string) bool {
	v, err := a.CheckPermission(ctx, key, permission)
	return err == nil && v.Outcome == OutcomeValid && v.HasPermission
}

// authenticate runs decode, lookup, status and expiry checks. It returns the
// stored record only when the key is authenticated.
func (a *Authorizer) authenticate(ctx context.Context, key string) (Validation, *model.APIKey, error) {
	if a.keys == nil {
		return Validation{}, nil, ErrUnavailable
	}

	parts, err := keycodec.Decode(key)
	if err != nil {
		return Validation{Outcome: OutcomeInvalidFormat}, nil, nil
	}

	rec, err := a.keys.FindByValue(ctx, key, parts.TenantID, parts.AgentID)
	if errors.Is(err, ErrNotFound) {
		return Validation{Outcome: OutcomeNotFound}, nil, nil
	}
	if err != nil {
		return Validation{}, nil, storeErr("find api key", err)
	}

	if rec.Status == model.KeyStatusDisabled {
		return Validation{Outcome: OutcomeDisabled, Status: rec.Status}, nil, nil
	}

	now := a.now()
	if rec.Status == model.KeyStatusExpired || rec.ExpiredAt(now) {
		if rec.Status != model.KeyStatusExpired {
			if err := a.keys.MarkExpired(ctx, rec.ID, now); err != nil {
				// The outcome stands; the next validation retries the write.
				zerolog.Ctx(ctx).Warn().Err(err).Str("api_key_id", rec.ID).Msg("failed to persist api key expiry")
			} else {
				metrics.KeysExpired.Inc()
			}
		}
		return Validation{Outcome: OutcomeExpired, Status: model.KeyStatusExpired}, nil, nil
	}

	return Validation{
		Outcome:     OutcomeValid,
		KeyID:       rec.ID,
		TenantID:    rec.TenantID,
		AgentID:     rec.AgentID,
		Permissions: rec.Permissions,
		Status:      rec.Status,
	}, rec, nil
}

func observe(v Validation, err error) {
	if err != nil {
		metrics.KeyValidations.WithLabelValues("error").Inc()
		return
	}
	metrics.KeyValidations.WithLabelValues(v.Outcome.String()).Inc()
}
