package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gentaArnezzi/onvlo/internal/apperror"
	"github.com/gentaArnezzi/onvlo/internal/model"
)

// PostgresProposalsRepository serves public proposal views and signatures.
type PostgresProposalsRepository struct {
	db *sql.DB
}

func NewPostgresProposalsRepository(db *sql.DB) *PostgresProposalsRepository {
	return &PostgresProposalsRepository{db: db}
}

var _ ProposalRepository = (*PostgresProposalsRepository)(nil)

const proposalColumns = `
	id::text,
	tenant_id::text,
	COALESCE(client_id::text, ''),
	COALESCE(lead_id::text, ''),
	status,
	content,
	signed_at,
	COALESCE(signed_by, ''),
	COALESCE(signed_ip, ''),
	created_at,
	updated_at`

func scanProposal(row rowScanner) (*model.Proposal, error) {
	var (
		p        model.Proposal
		status   string
		signedAt sql.NullTime
	)
	err := row.Scan(&p.ID, &p.TenantID, &p.ClientID, &p.LeadID, &status, &p.Content,
		&signedAt, &p.SignedBy, &p.SignedIP, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Status = model.ProposalStatus(status)
	if signedAt.Valid {
		t := signedAt.Time
		p.SignedAt = &t
	}
	return &p, nil
}

func (r *PostgresProposalsRepository) GetProposal(ctx context.Context, proposalID string) (*model.Proposal, error) {
	p, err := scanProposal(r.db.QueryRowContext(ctx,
		`SELECT `+proposalColumns+` FROM proposals WHERE id = $1::uuid`, proposalID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("proposal %s: %w", proposalID, apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}
	return p, nil
}

func (r *PostgresProposalsRepository) SignProposal(ctx context.Context, proposalID string, sig model.Signature) (*model.Proposal, error) {
	p, err := scanProposal(r.db.QueryRowContext(ctx,
		`UPDATE proposals
		 SET status = $2, signed_at = $3, signed_by = $4, signed_ip = $5, updated_at = NOW()
		 WHERE id = $1::uuid AND status = $6
		 RETURNING `+proposalColumns,
		proposalID, string(model.ProposalAccepted), sig.SignedAt, sig.SignedBy, sig.SignedIP, string(model.ProposalSent),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("proposal %s is not awaiting signature: %w", proposalID, apperror.ErrConflict)
		}
		return nil, fmt.Errorf("failed to sign proposal: %w", err)
	}
	return p, nil
}
