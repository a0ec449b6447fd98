package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterPgxPoolMetrics(t *testing.T) {
	// The pool connects lazily, so no database is needed to read its stats.
	pool, err := pgxpool.New(context.Background(), "postgres://agentauth@127.0.0.1:1/agentauth?pool_max_conns=7")
	require.NoError(t, err)
	defer pool.Close()

	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterPgxPoolMetrics(reg, pool))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "agentauth_db_pool_max_conns" {
			assert.Equal(t, 7.0, f.GetMetric()[0].GetGauge().GetValue())
		}
	}

	assert.Error(t, RegisterPgxPoolMetrics(reg, pool), "duplicate registration")
}

func TestNewServer(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "agentauth_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	srv := NewServer(":0", reg)
	assert.Equal(t, ":0", srv.Addr)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "agentauth_test_total 1")
}

func TestAuthCounters(t *testing.T) {
	before := testutil.ToFloat64(KeyValidations.WithLabelValues("valid"))
	KeyValidations.WithLabelValues("valid").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(KeyValidations.WithLabelValues("valid")))
}
