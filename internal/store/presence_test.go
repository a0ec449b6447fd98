package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/agentauth/internal/model"
)

func TestPresenceStore_Upsert(t *testing.T) {
	db := &mockDB{}
	s := NewPresenceStore(db)
	ctx := context.Background()
	p := model.NewPresence("t1", "a1", 5, storeNow)

	db.On("Exec", ctx, sqlContains("ON CONFLICT (tenant_id, agent_id) DO UPDATE"),
		[]any{"t1", "a1", storeNow, storeNow.Add(5 * time.Second), 5}).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	require.NoError(t, s.Upsert(ctx, p))
	db.AssertExpectations(t)
}

func TestPresenceStore_Upsert_Error(t *testing.T) {
	db := &mockDB{}
	s := NewPresenceStore(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.Anything, mock.Anything).Return(pgconn.CommandTag{}, errors.New("timeout"))

	err := s.Upsert(ctx, model.NewPresence("t1", "a1", 5, storeNow))
	assert.ErrorContains(t, err, "upsert presence t1/a1")
}

func TestPresenceStore_ListActive(t *testing.T) {
	db := &mockDB{}
	s := NewPresenceStore(db)
	ctx := context.Background()
	p1 := model.NewPresence("t1", "a1", 60, storeNow)
	p2 := model.NewPresence("t1", "a2", 60, storeNow.Add(-time.Second))

	db.On("Query", ctx, sqlContains("expires_at > $1 AND tenant_id = $2"), []any{storeNow, "t1"}).
		Return(newMockRows(scanPresence(p1), scanPresence(p2)), nil)

	got, err := s.ListActive(ctx, storeNow, "t1")
	require.NoError(t, err)
	assert.Equal(t, []model.Presence{p1, p2}, got)
}

func TestPresenceStore_ListActive_AllTenants(t *testing.T) {
	db := &mockDB{}
	s := NewPresenceStore(db)
	ctx := context.Background()

	db.On("Query", ctx, mock.MatchedBy(func(sql string) bool {
		return !strings.Contains(sql, "tenant_id = $2")
	}), []any{storeNow}).Return(newMockRows(), nil)

	got, err := s.ListActive(ctx, storeNow, "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPresenceStore_ListActive_QueryError(t *testing.T) {
	db := &mockDB{}
	s := NewPresenceStore(db)
	ctx := context.Background()

	db.On("Query", ctx, mock.Anything, mock.Anything).Return(nil, errors.New("down"))

	_, err := s.ListActive(ctx, storeNow, "")
	assert.ErrorContains(t, err, "list presence")
}

func TestPresenceStore_Purge(t *testing.T) {
	db := &mockDB{}
	s := NewPresenceStore(db)
	ctx := context.Background()
	before := storeNow.Add(-24 * time.Hour)

	db.On("Exec", ctx, sqlContains("DELETE FROM agent_presence WHERE expires_at < $1"), []any{before}).
		Return(pgconn.NewCommandTag("DELETE 7"), nil)

	n, err := s.Purge(ctx, before)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}
