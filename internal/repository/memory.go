package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gentaArnezzi/onvlo/internal/apperror"
	"github.com/gentaArnezzi/onvlo/internal/model"
)

// Memory is an in-process implementation of every repository, used for local
// development and tests.
type Memory struct {
	mu          sync.RWMutex
	now         func() time.Time
	tenants     map[string]*model.Tenant
	funnels     map[string]*model.Funnel
	clients     map[string]*model.Client
	leads       map[string]*model.Lead
	projects    map[string]*model.Project
	submissions map[string]*model.Submission
	proposals   map[string]*model.Proposal
}

var (
	_ TenantRepository     = (*Memory)(nil)
	_ FunnelRepository     = (*Memory)(nil)
	_ ClientRepository     = (*Memory)(nil)
	_ LeadRepository       = (*Memory)(nil)
	_ ProjectRepository    = (*Memory)(nil)
	_ SubmissionRepository = (*Memory)(nil)
	_ ProposalRepository   = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{
		now:         time.Now,
		tenants:     map[string]*model.Tenant{},
		funnels:     map[string]*model.Funnel{},
		clients:     map[string]*model.Client{},
		leads:       map[string]*model.Lead{},
		projects:    map[string]*model.Project{},
		submissions: map[string]*model.Submission{},
		proposals:   map[string]*model.Proposal{},
	}
}

// Store exposes m through the Store grouping.
func (m *Memory) Store() Store {
	return Store{
		Tenants:     m,
		Funnels:     m,
		Clients:     m,
		Leads:       m,
		Projects:    m,
		Submissions: m,
		Proposals:   m,
	}
}

// AddTenant seeds a tenant and returns its id.
func (m *Memory) AddTenant(t model.Tenant) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = "active"
	}
	m.tenants[t.ID] = &t
	return t.ID
}

// AddLead seeds a lead and returns its id.
func (m *Memory) AddLead(l model.Lead) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	m.leads[l.ID] = &l
	return l.ID
}

// AddProposal seeds a proposal and returns its id.
func (m *Memory) AddProposal(p model.Proposal) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = m.now()
	}
	p.UpdatedAt = p.CreatedAt
	m.proposals[p.ID] = &p
	return p.ID
}

// Clients returns a snapshot of all stored clients.
func (m *Memory) Clients() []model.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Client, 0, len(m.clients))
	for _, c := range m.clients {
		out = append(out, *c)
	}
	return out
}

// Projects returns a snapshot of all stored projects.
func (m *Memory) Projects() []model.Project {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, *p)
	}
	return out
}

func (m *Memory) GetTenantBySlug(_ context.Context, slug string) (*model.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tenants {
		if t.Slug == slug {
			cp := *t
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("tenant %q: %w", slug, apperror.ErrNotFound)
}

func (m *Memory) GetTenant(_ context.Context, tenantID string) (*model.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tenants[tenantID]
	if !ok {
		return nil, fmt.Errorf("tenant %s: %w", tenantID, apperror.ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

func (m *Memory) ResolveActive(_ context.Context, tenantID, slug string) (*model.Funnel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, f := range m.funnels {
		if f.TenantID == tenantID && f.Slug == slug && f.IsActive {
			return copyFunnel(f), nil
		}
	}
	return nil, fmt.Errorf("funnel %q: %w", slug, apperror.ErrNotFound)
}

func (m *Memory) GetFunnel(_ context.Context, tenantID, funnelID string) (*model.Funnel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.funnels[funnelID]
	if !ok || f.TenantID != tenantID {
		return nil, fmt.Errorf("funnel %s: %w", funnelID, apperror.ErrNotFound)
	}
	return copyFunnel(f), nil
}

func (m *Memory) ListFunnels(_ context.Context, tenantID string) ([]*model.Funnel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*model.Funnel{}
	for _, f := range m.funnels {
		if f.TenantID == tenantID {
			out = append(out, copyFunnel(f))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) CreateFunnel(_ context.Context, f *model.Funnel) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.funnels {
		if existing.TenantID == f.TenantID && existing.Slug == f.Slug {
			return "", fmt.Errorf("create funnel: %w", apperror.ErrSlugTaken)
		}
	}
	stored := copyFunnel(f)
	stored.ID = uuid.NewString()
	stored.CreatedAt = m.now()
	stored.UpdatedAt = stored.CreatedAt
	m.funnels[stored.ID] = stored
	return stored.ID, nil
}

func (m *Memory) UpdateFunnel(_ context.Context, f *model.Funnel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.funnels[f.ID]
	if !ok || existing.TenantID != f.TenantID {
		return fmt.Errorf("funnel %s: %w", f.ID, apperror.ErrNotFound)
	}
	stored := copyFunnel(f)
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = m.now()
	m.funnels[f.ID] = stored
	return nil
}

func (m *Memory) DeleteFunnel(_ context.Context, tenantID, funnelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.funnels[funnelID]
	if !ok || f.TenantID != tenantID {
		return fmt.Errorf("funnel %s: %w", funnelID, apperror.ErrNotFound)
	}
	delete(m.funnels, funnelID)
	return nil
}

func (m *Memory) SlugExists(_ context.Context, tenantID, slug, excludeID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, f := range m.funnels {
		if f.TenantID == tenantID && f.Slug == slug && f.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) CreateClient(_ context.Context, c *model.Client) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *c
	stored.ID = uuid.NewString()
	if stored.Status == "" {
		stored.Status = model.ClientStatusActive
	}
	stored.CreatedAt = m.now()
	m.clients[stored.ID] = &stored
	return stored.ID, nil
}

func (m *Memory) GetClient(_ context.Context, tenantID, clientID string) (*model.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.clients[clientID]
	if !ok || c.TenantID != tenantID {
		return nil, fmt.Errorf("client %s: %w", clientID, apperror.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (m *Memory) GetLead(_ context.Context, tenantID, leadID string) (*model.Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.leads[leadID]
	if !ok || l.TenantID != tenantID {
		return nil, fmt.Errorf("lead %s: %w", leadID, apperror.ErrNotFound)
	}
	cp := *l
	return &cp, nil
}

func (m *Memory) CreateProject(_ context.Context, p *model.Project) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *p
	stored.ID = uuid.NewString()
	stored.CreatedAt = m.now()
	m.projects[stored.ID] = &stored
	return stored.ID, nil
}

func (m *Memory) ListProjectsByClient(_ context.Context, tenantID, clientID string) ([]*model.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*model.Project{}
	for _, p := range m.projects {
		if p.TenantID == tenantID && p.ClientID == clientID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *Memory) CreateSubmission(_ context.Context, s *model.Submission) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *s
	stored.ID = uuid.NewString()
	stored.Responses = copyResponses(s.Responses)
	stored.CreatedAt = m.now()
	m.submissions[stored.ID] = &stored
	return stored.ID, nil
}

func (m *Memory) ListSubmissions(_ context.Context, funnelID string) ([]*model.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*model.Submission{}
	for _, s := range m.submissions {
		if s.FunnelID == funnelID {
			cp := *s
			cp.Responses = copyResponses(s.Responses)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) GetProposal(_ context.Context, proposalID string) (*model.Proposal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.proposals[proposalID]
	if !ok {
		return nil, fmt.Errorf("proposal %s: %w", proposalID, apperror.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (m *Memory) SignProposal(_ context.Context, proposalID string, sig model.Signature) (*model.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.proposals[proposalID]
	if !ok {
		return nil, fmt.Errorf("proposal %s: %w", proposalID, apperror.ErrNotFound)
	}
	if p.Status != model.ProposalSent {
		return nil, fmt.Errorf("proposal %s is %s: %w", proposalID, p.Status, apperror.ErrConflict)
	}
	signedAt := sig.SignedAt
	p.Status = model.ProposalAccepted
	p.SignedAt = &signedAt
	p.SignedBy = sig.SignedBy
	p.SignedIP = sig.SignedIP
	p.UpdatedAt = m.now()
	cp := *p
	return &cp, nil
}

func copyFunnel(f *model.Funnel) *model.Funnel {
	cp := *f
	cp.Fields = append([]model.FieldDescriptor(nil), f.Fields...)
	return &cp
}

// copyResponses deep-copies a response bag through JSON, which is also how
// the postgres store keeps it.
func copyResponses(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	raw, err := json.Marshal(in)
	if err != nil {
		out := make(map[string]any, len(in))
		for k, v := range in {
			out[k] = v
		}
		return out
	}
	out := map[string]any{}
	_ = json.Unmarshal(raw, &out)
	return out
}
