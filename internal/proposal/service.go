// Package proposal serves public proposal pages and their e-signature.
package proposal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gentaArnezzi/onvlo/internal/apperror"
	"github.com/gentaArnezzi/onvlo/internal/model"
	"github.com/gentaArnezzi/onvlo/internal/placeholder"
	"github.com/gentaArnezzi/onvlo/internal/repository"
)

// View is a proposal prepared for display. Content is rendered at read time
// and never written back.
type View struct {
	Proposal   *model.Proposal
	Recipient  *placeholder.Recipient
	AgencyName string
	Content    string
}

// CanSign reports whether the proposal is awaiting a signature.
func (v *View) CanSign() bool {
	return v.Proposal.Status == model.ProposalSent
}

type Service struct {
	proposals repository.ProposalRepository
	clients   repository.ClientRepository
	leads     repository.LeadRepository
	tenants   repository.TenantRepository
	engine    *placeholder.Engine
	now       func() time.Time
	log       *zap.Logger
}

func New(store repository.Store, engine *placeholder.Engine, log *zap.Logger) *Service {
	return &Service{
		proposals: store.Proposals,
		clients:   store.Clients,
		leads:     store.Leads,
		tenants:   store.Tenants,
		engine:    engine,
		now:       time.Now,
		log:       log,
	}
}

func (s *Service) View(ctx context.Context, proposalID string) (*View, error) {
	p, err := s.proposals.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	recipient, err := s.recipient(ctx, p)
	if err != nil {
		return nil, err
	}

	v := &View{Proposal: p, Recipient: recipient}
	tc := placeholder.TemplateContext{
		Recipient: recipient,
		Document:  &placeholder.Document{CreatedAt: p.CreatedAt},
	}
	tenant, err := s.tenants.GetTenant(ctx, p.TenantID)
	switch {
	case err == nil:
		v.AgencyName = tenant.Name
		tc.Brand = &placeholder.Brand{Name: tenant.Name}
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, err
	}
	v.Content = s.engine.Substitute(p.Content, tc)
	return v, nil
}

// recipient returns the linked client, else the linked lead, else nil.
func (s *Service) recipient(ctx context.Context, p *model.Proposal) (*placeholder.Recipient, error) {
	if p.ClientID != "" {
		c, err := s.clients.GetClient(ctx, p.TenantID, p.ClientID)
		if err == nil {
			return &placeholder.Recipient{Name: c.Name, Company: c.Company, Email: c.Email}, nil
		}
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
	}
	if p.LeadID != "" {
		l, err := s.leads.GetLead(ctx, p.TenantID, p.LeadID)
		if err == nil {
			return &placeholder.Recipient{Name: l.Name, Company: l.Company, Email: l.Email}, nil
		}
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
	}
	return nil, nil
}

// Sign accepts a Sent proposal on behalf of signedBy.
func (s *Service) Sign(ctx context.Context, proposalID, signedBy, ip string) (*model.Proposal, error) {
	signedBy = strings.TrimSpace(signedBy)
	if signedBy == "" {
		return nil, fmt.Errorf("%w: signer name is required", apperror.ErrInvalidInput)
	}
	if ip == "" {
		ip = "unknown"
	}
	p, err := s.proposals.SignProposal(ctx, proposalID, model.Signature{
		SignedBy: signedBy,
		SignedIP: ip,
		SignedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("proposal signed",
		zap.String("proposal_id", proposalID),
		zap.String("tenant_id", p.TenantID),
		zap.String("signed_ip", ip))
	return p, nil
}
