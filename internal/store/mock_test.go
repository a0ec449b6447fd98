package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"

	"github.com/edvin/agentauth/internal/model"
)

// ---------- Mock DB ----------

// mockDB implements the DB interface for testing.
type mockDB struct {
	mock.Mock
}

func (m *mockDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *mockDB) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Rows), args.Error(1)
}

func (m *mockDB) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

// ---------- Mock Row ----------

// mockRow implements pgx.Row for testing.
type mockRow struct {
	scanFunc func(dest ...any) error
}

func (m *mockRow) Scan(dest ...any) error {
	return m.scanFunc(dest...)
}

func errRow(err error) *mockRow {
	return &mockRow{scanFunc: func(...any) error { return err }}
}

// ---------- Mock Rows ----------

// mockRows implements pgx.Rows for testing.
// It iterates through a list of scan functions, one per row.
type mockRows struct {
	callIndex int
	scanFuncs []func(dest ...any) error
	err       error
}

func newMockRows(scanFuncs ...func(dest ...any) error) *mockRows {
	return &mockRows{scanFuncs: scanFuncs}
}

func (m *mockRows) Next() bool {
	return m.callIndex < len(m.scanFuncs)
}

func (m *mockRows) Scan(dest ...any) error {
	if m.callIndex < len(m.scanFuncs) {
		fn := m.scanFuncs[m.callIndex]
		m.callIndex++
		return fn(dest...)
	}
	return nil
}

func (m *mockRows) Err() error                                   { return m.err }
func (m *mockRows) Close()                                       {}
func (m *mockRows) CommandTag() pgconn.CommandTag                 { return pgconn.CommandTag{} }
func (m *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (m *mockRows) RawValues() [][]byte                          { return nil }
func (m *mockRows) Values() ([]any, error)                       { return nil, nil }
func (m *mockRows) Conn() *pgx.Conn                              { return nil }

// ---------- Scan helpers ----------

func scanAPIKey(k model.APIKey) func(dest ...any) error {
	return func(dest ...any) error {
		*(dest[0].(*string)) = k.ID
		*(dest[1].(*string)) = k.TenantID
		*(dest[2].(*string)) = k.AgentID
		*(dest[3].(*string)) = k.Name
		*(dest[4].(*string)) = k.Description
		*(dest[5].(*string)) = k.Value
		*(dest[6].(*[]string)) = k.Permissions
		*(dest[7].(*model.KeyStatus)) = k.Status
		*(dest[8].(**time.Time)) = k.ExpiresAt
		*(dest[9].(**time.Time)) = k.LastUsedAt
		*(dest[10].(*int64)) = k.UsageCount
		*(dest[11].(*time.Time)) = k.CreatedAt
		*(dest[12].(*time.Time)) = k.UpdatedAt
		return nil
	}
}

func scanPresence(p model.Presence) func(dest ...any) error {
	return func(dest ...any) error {
		*(dest[0].(*string)) = p.TenantID
		*(dest[1].(*string)) = p.AgentID
		*(dest[2].(*time.Time)) = p.LastSeenAt
		*(dest[3].(*time.Time)) = p.ExpiresAt
		*(dest[4].(*int)) = p.TTLSeconds
		return nil
	}
}
