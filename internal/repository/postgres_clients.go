package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gentaArnezzi/onvlo/internal/apperror"
	"github.com/gentaArnezzi/onvlo/internal/model"
)

// PostgresClientsRepository covers the CRM tables the onboarding flow touches:
// clients (written) and leads (read for proposal recipients).
type PostgresClientsRepository struct {
	db *sql.DB
}

func NewPostgresClientsRepository(db *sql.DB) *PostgresClientsRepository {
	return &PostgresClientsRepository{db: db}
}

var (
	_ ClientRepository = (*PostgresClientsRepository)(nil)
	_ LeadRepository   = (*PostgresClientsRepository)(nil)
)

func (r *PostgresClientsRepository) CreateClient(ctx context.Context, c *model.Client) (string, error) {
	if c == nil {
		return "", fmt.Errorf("client is required")
	}
	if c.TenantID == "" {
		return "", fmt.Errorf("tenant_id is required")
	}
	status := c.Status
	if status == "" {
		status = model.ClientStatusActive
	}

	var id string
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO clients (tenant_id, name, email, phone, company, status)
		 VALUES ($1::uuid, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6)
		 RETURNING id::text`,
		c.TenantID, c.Name, c.Email, c.Phone, c.Company, status,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create client: %w", err)
	}
	return id, nil
}

func (r *PostgresClientsRepository) GetClient(ctx context.Context, tenantID, clientID string) (*model.Client, error) {
	var c model.Client
	err := r.db.QueryRowContext(ctx,
		`SELECT id::text, tenant_id::text, name,
			COALESCE(email, ''), COALESCE(phone, ''), COALESCE(company, ''),
			status, created_at
		 FROM clients
		 WHERE id = $1::uuid AND tenant_id = $2::uuid`,
		clientID, tenantID,
	).Scan(&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Status, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("client %s: %w", clientID, apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return &c, nil
}

func (r *PostgresClientsRepository) GetLead(ctx context.Context, tenantID, leadID string) (*model.Lead, error) {
	var l model.Lead
	err := r.db.QueryRowContext(ctx,
		`SELECT id::text, tenant_id::text, name, COALESCE(email, ''), COALESCE(company, '')
		 FROM leads
		 WHERE id = $1::uuid AND tenant_id = $2::uuid`,
		leadID, tenantID,
	).Scan(&l.ID, &l.TenantID, &l.Name, &l.Email, &l.Company)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("lead %s: %w", leadID, apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return &l, nil
}

// PostgresProjectsRepository writes auto-provisioned projects.
type PostgresProjectsRepository struct {
	db *sql.DB
}

func NewPostgresProjectsRepository(db *sql.DB) *PostgresProjectsRepository {
	return &PostgresProjectsRepository{db: db}
}

var _ ProjectRepository = (*PostgresProjectsRepository)(nil)

func (r *PostgresProjectsRepository) CreateProject(ctx context.Context, p *model.Project) (string, error) {
	if p == nil {
		return "", fmt.Errorf("project is required")
	}
	if p.ClientID == "" {
		return "", fmt.Errorf("client_id is required")
	}
	status := p.Status
	if status == "" {
		status = model.ProjectStatusPlanned
	}

	var id string
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO projects (tenant_id, client_id, title, description, status, owner_id)
		 VALUES ($1::uuid, $2::uuid, $3, NULLIF($4, ''), $5, $6)
		 RETURNING id::text`,
		p.TenantID, p.ClientID, p.Title, p.Description, status, nullString(p.OwnerID),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create project: %w", err)
	}
	return id, nil
}

func (r *PostgresProjectsRepository) ListProjectsByClient(ctx context.Context, tenantID, clientID string) ([]*model.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id::text, tenant_id::text, client_id::text, title,
			COALESCE(description, ''), status, COALESCE(owner_id, ''), created_at
		 FROM projects
		 WHERE tenant_id = $1::uuid AND client_id = $2::uuid
		 ORDER BY created_at`,
		tenantID, clientID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []*model.Project{}
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.TenantID, &p.ClientID, &p.Title, &p.Description, &p.Status, &p.OwnerID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return projects, nil
}
