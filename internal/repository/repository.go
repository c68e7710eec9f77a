// Package repository holds persistence for tenants, funnels and everything the
// onboarding pipeline writes. Lookups of missing rows return errors wrapping
// apperror.ErrNotFound.
package repository

import (
	"context"

	"github.com/gentaArnezzi/onvlo/internal/model"
)

type TenantRepository interface {
	GetTenantBySlug(ctx context.Context, slug string) (*model.Tenant, error)
	GetTenant(ctx context.Context, tenantID string) (*model.Tenant, error)
}

type FunnelRepository interface {
	// ResolveActive returns the funnel only when it exists and is active.
	ResolveActive(ctx context.Context, tenantID, slug string) (*model.Funnel, error)
	GetFunnel(ctx context.Context, tenantID, funnelID string) (*model.Funnel, error)
	ListFunnels(ctx context.Context, tenantID string) ([]*model.Funnel, error)
	CreateFunnel(ctx context.Context, f *model.Funnel) (string, error)
	// UpdateFunnel overwrites every column of an existing funnel.
	UpdateFunnel(ctx context.Context, f *model.Funnel) error
	DeleteFunnel(ctx context.Context, tenantID, funnelID string) error
	// SlugExists reports whether another funnel of the tenant uses slug.
	SlugExists(ctx context.Context, tenantID, slug, excludeID string) (bool, error)
}

type ClientRepository interface {
	CreateClient(ctx context.Context, c *model.Client) (string, error)
	GetClient(ctx context.Context, tenantID, clientID string) (*model.Client, error)
}

type LeadRepository interface {
	GetLead(ctx context.Context, tenantID, leadID string) (*model.Lead, error)
}

type ProjectRepository interface {
	CreateProject(ctx context.Context, p *model.Project) (string, error)
	ListProjectsByClient(ctx context.Context, tenantID, clientID string) ([]*model.Project, error)
}

type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, s *model.Submission) (string, error)
	ListSubmissions(ctx context.Context, funnelID string) ([]*model.Submission, error)
}

type ProposalRepository interface {
	GetProposal(ctx context.Context, proposalID string) (*model.Proposal, error)
	// SignProposal accepts a proposal that is currently Sent.
	SignProposal(ctx context.Context, proposalID string, sig model.Signature) (*model.Proposal, error)
}

// Store groups the repositories the service needs.
type Store struct {
	Tenants     TenantRepository
	Funnels     FunnelRepository
	Clients     ClientRepository
	Leads       LeadRepository
	Projects    ProjectRepository
	Submissions SubmissionRepository
	Proposals   ProposalRepository
}
