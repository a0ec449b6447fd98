package core

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/agentauth/internal/metrics"
	"github.com/edvin/agentauth/internal/model"
)

// MaxTTLSeconds caps a heartbeat TTL at 30 days. It keeps expires_at
// representable and fits the INTEGER ttl_seconds column.
const MaxTTLSeconds = 30 * 24 * 60 * 60

// PresenceTracker records agent heartbeats with a TTL and lists the agents
// whose heartbeat has not yet lapsed.
type PresenceTracker struct {
	dir   Directory
	store PresenceStore
	now   func() time.Time
}

// NewPresenceTracker creates a new PresenceTracker. Missing collaborators make
// every call fail with ErrUnavailable.
func NewPresenceTracker(dir Directory, store PresenceStore) *PresenceTracker {
	return &PresenceTracker{dir: dir, store: store, now: time.Now}
}

// Upsert records a heartbeat for tenantID/agentID, replacing any previous row.
// Ineligible tenants or agents yield a *ValidationError and nothing is written.
func (t *PresenceTracker) Upsert(ctx context.Context, tenantID, agentID string, ttlSeconds int) (*model.Presence, error) {
	if t.dir == nil || t.store == nil {
		return nil, ErrUnavailable
	}
	if ttlSeconds <= 0 {
		metrics.PresenceUpserts.WithLabelValues("rejected").Inc()
		return nil, invalid(ReasonInvalidTTL)
	}
	if ttlSeconds > MaxTTLSeconds {
		metrics.PresenceUpserts.WithLabelValues("rejected").Inc()
		return nil, invalid(ReasonTTLTooLarge)
	}

	if err := t.checkEligible(ctx, tenantID, agentID); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			metrics.PresenceUpserts.WithLabelValues("rejected").Inc()
		} else {
			metrics.PresenceUpserts.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	p := model.NewPresence(tenantID, agentID, ttlSeconds, t.now().UTC())
	if err := t.store.Upsert(ctx, p); err != nil {
		metrics.PresenceUpserts.WithLabelValues("error").Inc()
		return nil, storeErr("upsert presence", err)
	}

	metrics.PresenceUpserts.WithLabelValues("ok").Inc()
	return &p, nil
}

func (t *PresenceTracker) checkEligible(ctx context.Context, tenantID, agentID string) error {
	tenant, err := t.dir.GetTenant(ctx, tenantID)
	if errors.Is(err, ErrNotFound) {
		return invalid(ReasonTenantInactive)
	}
	if err != nil {
		return storeErr("get tenant", err)
	}
	if tenant.Status != model.TenantStatusActive {
		return invalid(ReasonTenantInactive)
	}

	agent, err := t.dir.GetAgent(ctx, agentID)
	if errors.Is(err, ErrNotFound) {
		return invalid(ReasonAgentMissing)
	}
	if err != nil {
		return storeErr("get agent", err)
	}
	if agent.TenantID != tenantID {
		return invalid(ReasonAgentMismatch)
	}
	if agent.Status == model.AgentStatusInactive {
		return invalid(ReasonAgentInactive)
	}
	return nil
}

// ListActive returns presence rows that are live now, optionally restricted to
// one tenant. Expiry is evaluated at read time.
func (t *PresenceTracker) ListActive(ctx context.Context, tenantID string) ([]model.Presence, error) {
	if t.store == nil {
		return nil, ErrUnavailable
	}
	rows, err := t.store.ListActive(ctx, t.now().UTC(), tenantID)
	if err != nil {
		return nil, storeErr("list active presence", err)
	}
	if rows == nil {
		rows = []model.Presence{}
	}
	return rows, nil
}

// Sweep deletes rows that expired more than retention ago. It only reclaims
// storage; ListActive never depends on it.
func (t *PresenceTracker) Sweep(ctx context.Context, retention time.Duration) (int64, error) {
	if t.store == nil {
		return 0, ErrUnavailable
	}
	n, err := t.store.Purge(ctx, t.now().UTC().Add(-retention))
	if err != nil {
		return 0, storeErr("purge presence", err)
	}
	metrics.PresenceSwept.Add(float64(n))
	return n, nil
}

// RunSweeper calls Sweep every interval until ctx is cancelled. Sweep failures
// are logged and retried on the next tick.
func (t *PresenceTracker) RunSweeper(ctx context.Context, interval, retention time.Duration) error {
	logger := zerolog.Ctx(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := t.Sweep(ctx, retention)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Warn().Err(err).Msg("presence sweep failed")
				continue
			}
			if n > 0 {
				logger.Debug().Int64("purged", n).Msg("presence sweep")
			}
		}
	}
}
