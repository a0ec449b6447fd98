// Package store implements the core persistence interfaces on PostgreSQL and
// Redis.
package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/edvin/agentauth/internal/core"
)

// DB defines the database operations used by the stores.
// *pgxpool.Pool satisfies this interface.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	pgUniqueViolation = "23505"
	// keyNameConstraint is the per-tenant unique key name constraint.
	keyNameConstraint = "api_keys_tenant_name_key"
)

// mapErr translates driver errors into the core sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return core.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == keyNameConstraint {
		return core.ErrNameTaken
	}
	return err
}
