package store

import (
	"context"

	"github.com/edvin/agentauth/internal/model"
)

// Directory reads tenants and agents from the shared tables.
type Directory struct {
	db DB
}

// NewDirectory creates a new Directory.
func NewDirectory(db DB) *Directory {
	return &Directory{db: db}
}

// GetTenant retrieves a tenant by its ID.
func (d *Directory) GetTenant(ctx context.Context, id string) (*model.Tenant, error) {
	var t model.Tenant
	err := d.db.QueryRow(ctx,
		`SELECT id, name, status FROM tenants WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Status)
	if err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

// GetAgent retrieves an agent by its ID.
func (d *Directory) GetAgent(ctx context.Context, id string) (*model.Agent, error) {
	var a model.Agent
	err := d.db.QueryRow(ctx,
		`SELECT id, tenant_id, name, status FROM agents WHERE id = $1`, id,
	).Scan(&a.ID, &a.TenantID, &a.Name, &a.Status)
	if err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}
