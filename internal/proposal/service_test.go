package proposal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gentaArnezzi/onvlo/internal/apperror"
	"github.com/gentaArnezzi/onvlo/internal/model"
	"github.com/gentaArnezzi/onvlo/internal/placeholder"
	"github.com/gentaArnezzi/onvlo/internal/repository"
)

const content = "Dear {{client_name}} ({{client_company}}), {{agency_name}} proposes this on {{proposal_date}}. {{unknown_token}}"

func setup(t *testing.T) (*Service, *repository.Memory, string) {
	t.Helper()
	mem := repository.NewMemory()
	tenantID := mem.AddTenant(model.Tenant{Slug: "acme", Name: "Acme Agency"})
	return New(mem.Store(), placeholder.NewEngine("en-US"), zap.NewNop()), mem, tenantID
}

func TestView_ClientRecipient(t *testing.T) {
	ctx := context.Background()
	svc, mem, tenantID := setup(t)
	clientID, err := mem.CreateClient(ctx, &model.Client{TenantID: tenantID, Name: "John Doe", Company: "Doe Inc"})
	require.NoError(t, err)
	id := mem.AddProposal(model.Proposal{
		TenantID:  tenantID,
		ClientID:  clientID,
		Status:    model.ProposalSent,
		Content:   content,
		CreatedAt: time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC),
	})

	v, err := svc.View(ctx, id)

	require.NoError(t, err)
	assert.Equal(t, "Dear John Doe (Doe Inc), Acme Agency proposes this on 1/1/2023. {{unknown_token}}", v.Content)
	assert.True(t, v.CanSign())

	stored, err := mem.GetProposal(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, content, stored.Content)
}

func TestView_LeadFallback(t *testing.T) {
	ctx := context.Background()
	svc, mem, tenantID := setup(t)
	leadID := mem.AddLead(model.Lead{TenantID: tenantID, Name: "Lena Lead", Company: "Prospect Co"})
	id := mem.AddProposal(model.Proposal{TenantID: tenantID, LeadID: leadID, Status: model.ProposalDraft, Content: "Hi {{client_name}} of {{client_company}}"})

	v, err := svc.View(ctx, id)

	require.NoError(t, err)
	assert.Equal(t, "Hi Lena Lead of Prospect Co", v.Content)
	assert.False(t, v.CanSign())
}

func TestView_NoRecipient(t *testing.T) {
	svc, mem, tenantID := setup(t)
	id := mem.AddProposal(model.Proposal{TenantID: tenantID, Content: "Hi {{client_name}}!"})

	v, err := svc.View(context.Background(), id)

	require.NoError(t, err)
	assert.Nil(t, v.Recipient)
	assert.Equal(t, "Hi !", v.Content)
}

func TestView_NotFound(t *testing.T) {
	svc, _, _ := setup(t)

	_, err := svc.View(context.Background(), "missing")

	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestSign(t *testing.T) {
	ctx := context.Background()
	svc, mem, tenantID := setup(t)
	now := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	sent := mem.AddProposal(model.Proposal{TenantID: tenantID, Status: model.ProposalSent, Content: "x"})
	draft := mem.AddProposal(model.Proposal{TenantID: tenantID, Status: model.ProposalDraft, Content: "x"})

	_, err := svc.Sign(ctx, sent, "   ", "10.0.0.1")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = svc.Sign(ctx, draft, "Jane", "10.0.0.1")
	assert.ErrorIs(t, err, apperror.ErrConflict)

	p, err := svc.Sign(ctx, sent, " Jane Doe ", "")
	require.NoError(t, err)
	assert.Equal(t, model.ProposalAccepted, p.Status)
	assert.Equal(t, "Jane Doe", p.SignedBy)
	assert.Equal(t, "unknown", p.SignedIP)
	require.NotNil(t, p.SignedAt)
	assert.Equal(t, now, *p.SignedAt)
}
