package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/gentaArnezzi/onvlo/internal/apperror"
	"github.com/gentaArnezzi/onvlo/internal/model"
)

// PostgresFunnelsRepository stores funnels in onboarding_funnels. Schema,
// agreement and auto-provision settings live in the JSONB config column.
type PostgresFunnelsRepository struct {
	db *sql.DB
}

func NewPostgresFunnelsRepository(db *sql.DB) *PostgresFunnelsRepository {
	return &PostgresFunnelsRepository{db: db}
}

var _ FunnelRepository = (*PostgresFunnelsRepository)(nil)

const funnelColumns = `
	id::text,
	tenant_id::text,
	name,
	slug,
	is_active,
	COALESCE(config, '{}'::jsonb),
	created_at,
	updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFunnel(row rowScanner) (*model.Funnel, error) {
	var (
		f   model.Funnel
		raw []byte
	)
	if err := row.Scan(&f.ID, &f.TenantID, &f.Name, &f.Slug, &f.IsActive, &raw, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	var cfg model.FunnelConfig
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("failed to decode funnel config: %w", err)
		}
	}
	f.SetConfig(cfg)
	return &f, nil
}

func (r *PostgresFunnelsRepository) ResolveActive(ctx context.Context, tenantID, slug string) (*model.Funnel, error) {
	if tenantID == "" || slug == "" {
		return nil, fmt.Errorf("funnel %q: %w", slug, apperror.ErrNotFound)
	}
	query := `SELECT ` + funnelColumns + `
		FROM onboarding_funnels
		WHERE tenant_id = $1::uuid AND slug = $2 AND is_active = TRUE
		LIMIT 1`
	f, err := scanFunnel(r.db.QueryRowContext(ctx, query, tenantID, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("funnel %q: %w", slug, apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to resolve funnel: %w", err)
	}
	return f, nil
}

func (r *PostgresFunnelsRepository) GetFunnel(ctx context.Context, tenantID, funnelID string) (*model.Funnel, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant_id is required")
	}
	query := `SELECT ` + funnelColumns + `
		FROM onboarding_funnels
		WHERE id = $1::uuid AND tenant_id = $2::uuid`
	f, err := scanFunnel(r.db.QueryRowContext(ctx, query, funnelID, tenantID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("funnel %s: %w", funnelID, apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get funnel: %w", err)
	}
	return f, nil
}

func (r *PostgresFunnelsRepository) ListFunnels(ctx context.Context, tenantID string) ([]*model.Funnel, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant_id is required")
	}
	query := `SELECT ` + funnelColumns + `
		FROM onboarding_funnels
		WHERE tenant_id = $1::uuid
		ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list funnels: %w", err)
	}
	defer rows.Close()

	funnels := []*model.Funnel{}
	for rows.Next() {
		f, err := scanFunnel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan funnel: %w", err)
		}
		funnels = append(funnels, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate funnels: %w", err)
	}
	return funnels, nil
}

func (r *PostgresFunnelsRepository) CreateFunnel(ctx context.Context, f *model.Funnel) (string, error) {
	if f == nil {
		return "", fmt.Errorf("funnel is required")
	}
	cfg, err := json.Marshal(f.Config())
	if err != nil {
		return "", fmt.Errorf("failed to encode funnel config: %w", err)
	}

	var id string
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO onboarding_funnels (tenant_id, name, slug, is_active, config)
		 VALUES ($1::uuid, $2, $3, $4, $5::jsonb)
		 RETURNING id::text`,
		f.TenantID, f.Name, f.Slug, f.IsActive, string(cfg),
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("create funnel: %w", apperror.ErrSlugTaken)
		}
		return "", fmt.Errorf("failed to create funnel: %w", err)
	}
	return id, nil
}

func (r *PostgresFunnelsRepository) UpdateFunnel(ctx context.Context, f *model.Funnel) error {
	if f == nil || f.ID == "" {
		return fmt.Errorf("funnel id is required")
	}
	cfg, err := json.Marshal(f.Config())
	if err != nil {
		return fmt.Errorf("failed to encode funnel config: %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE onboarding_funnels
		 SET name = $3, slug = $4, is_active = $5, config = $6::jsonb, updated_at = NOW()
		 WHERE id = $1::uuid AND tenant_id = $2::uuid`,
		f.ID, f.TenantID, f.Name, f.Slug, f.IsActive, string(cfg),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update funnel: %w", apperror.ErrSlugTaken)
		}
		return fmt.Errorf("failed to update funnel: %w", err)
	}
	return expectOneRow(result, "funnel", f.ID)
}

func (r *PostgresFunnelsRepository) DeleteFunnel(ctx context.Context, tenantID, funnelID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM onboarding_funnels WHERE id = $1::uuid AND tenant_id = $2::uuid`,
		funnelID, tenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete funnel: %w", err)
	}
	return expectOneRow(result, "funnel", funnelID)
}

func (r *PostgresFunnelsRepository) SlugExists(ctx context.Context, tenantID, slug, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM onboarding_funnels
			WHERE tenant_id = $1::uuid AND slug = $2 AND id::text <> $3
		)`,
		tenantID, slug, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check funnel slug: %w", err)
	}
	return exists, nil
}

func expectOneRow(result sql.Result, entity, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, apperror.ErrNotFound)
	}
	return nil
}

// isUniqueViolation reports a unique_violation (23505), raised here by
// UNIQUE (tenant_id, slug).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
