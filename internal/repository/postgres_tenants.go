package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gentaArnezzi/onvlo/internal/apperror"
	"github.com/gentaArnezzi/onvlo/internal/model"
)

// PostgresTenantsRepository reads tenants. Tenant lifecycle is owned by the
// account service.
type PostgresTenantsRepository struct {
	db *sql.DB
}

func NewPostgresTenantsRepository(db *sql.DB) *PostgresTenantsRepository {
	return &PostgresTenantsRepository{db: db}
}

var _ TenantRepository = (*PostgresTenantsRepository)(nil)

const tenantColumns = `tenant_id::text, slug, name, COALESCE(status, 'active')`

func (r *PostgresTenantsRepository) GetTenantBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	if slug == "" {
		return nil, fmt.Errorf("slug is required")
	}
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE slug = $1`
	return r.scan(r.db.QueryRowContext(ctx, query, slug), slug)
}

func (r *PostgresTenantsRepository) GetTenant(ctx context.Context, tenantID string) (*model.Tenant, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant_id is required")
	}
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE tenant_id = $1::uuid`
	return r.scan(r.db.QueryRowContext(ctx, query, tenantID), tenantID)
}

func (r *PostgresTenantsRepository) scan(row *sql.Row, key string) (*model.Tenant, error) {
	var t model.Tenant
	if err := row.Scan(&t.ID, &t.Slug, &t.Name, &t.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("tenant %q: %w", key, apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return &t, nil
}
