package view

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gentaArnezzi/onvlo/internal/apperror"
	"github.com/gentaArnezzi/onvlo/internal/model"
	"github.com/gentaArnezzi/onvlo/internal/placeholder"
	"github.com/gentaArnezzi/onvlo/internal/proposal"
	"github.com/gentaArnezzi/onvlo/internal/wizard"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, c.Render(context.Background(), &b))
	return b.String()
}

var funnel = &model.Funnel{
	Name: "Website intake",
	Fields: []model.FieldDescriptor{
		{ID: "name", Kind: model.KindText, Label: "Full name", Required: true, Placeholder: "Jane Doe"},
		{ID: "about", Kind: model.KindTextArea, Label: "About"},
		{ID: "budget", Kind: model.KindSelect, Label: "Budget", Options: []string{"<5k", "5-10k"}},
		{ID: "terms", Kind: model.KindCheckbox, Label: "Terms", Placeholder: "Send me updates"},
	},
}

func TestWizard_Steps(t *testing.T) {
	tests := []struct {
		name    string
		wizard  *wizard.Wizard
		want    []string
		notWant []string
	}{
		{
			name:   "welcome",
			wizard: wizard.New(),
			want: []string{
				"Thank you for choosing Acme &amp; Co. We're excited to work with you!",
				`name="_action" value="start"`,
				`<li class="step done" aria-current="step"><span>1</span> Welcome</li>`,
			},
		},
		{
			name: "collecting keeps values and shows errors",
			wizard: &wizard.Wizard{
				Step:      wizard.StepCollecting,
				Responses: map[string]any{"name": `Jane "JD" Doe`, "about": "<b>hi</b>", "budget": "5-10k", "terms": true},
				Errors:    apperror.FieldErrors{"name": "Full name is required"},
			},
			want: []string{
				`value="Jane &#34;JD&#34; Doe"`,
				`placeholder="Jane Doe"`,
				`&lt;b&gt;hi&lt;/b&gt;</textarea>`,
				`<option value="5-10k" selected>5-10k</option>`,
				`<option value="&lt;5k">&lt;5k</option>`,
				`name="terms" value="on" checked>`,
				"Send me updates",
				`<p class="field-error">Full name is required</p>`,
				`value="collect"`,
				`value="back"`,
			},
			notWant: []string{" disabled"},
		},
		{
			name:   "agreement",
			wizard: &wizard.Wizard{Step: wizard.StepAgreement, SubmitError: "agreement must be accepted"},
			want: []string{
				`<div class="agreement">Dear Jane, welcome.</div>`,
				`name="agree" value="on">`,
				`role="alert">agreement must be accepted</p>`,
				`value="submit"`,
			},
		},
		{
			name:   "submitting disables inputs",
			wizard: &wizard.Wizard{Step: wizard.StepSubmitting, Agreed: true},
			want: []string{
				`name="agree" value="on" checked disabled>`,
				`value="submit" class="primary" formnovalidate disabled>`,
				"Your submission is being processed.",
				`<li class="step done" aria-current="step"><span>3</span> Agreement</li>`,
			},
		},
		{
			name:   "submitted",
			wizard: &wizard.Wizard{Step: wizard.StepSubmitted},
			want:   []string{`href="/onboard/acme/web/success"`},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := render(t, Wizard(WizardPage{
				AgencyName: "Acme & Co",
				Funnel:     funnel,
				Wizard:     tc.wizard,
				Agreement:  "Dear Jane, welcome.",
				Action:     "/onboard/acme/web",
			}))

			assert.Contains(t, out, `<form method="post" action="/onboard/acme/web"`)
			for _, w := range tc.want {
				assert.Contains(t, out, w)
			}
			for _, w := range tc.notWant {
				assert.NotContains(t, out, w)
			}
		})
	}
}

func TestWizard_NoAgreement(t *testing.T) {
	out := render(t, Wizard(WizardPage{
		Funnel: funnel,
		Wizard: &wizard.Wizard{Step: wizard.StepAgreement},
		Action: "/onboard/acme/web",
	}))

	assert.Contains(t, out, "No agreement required for this onboarding.")
	assert.NotContains(t, out, `name="agree"`)
}

func TestRenderField_UnknownKind(t *testing.T) {
	var b strings.Builder
	h := &htmlWriter{w: &b}

	renderField(h, model.FieldDescriptor{ID: "x", Kind: "rating"}, nil, "", false)

	require.NoError(t, h.err)
	assert.Empty(t, b.String())
}

func TestNotFoundAndSuccess(t *testing.T) {
	nf := render(t, NotFound("funnel not found or inactive"))
	assert.Contains(t, nf, "<p>funnel not found or inactive</p>")

	ok := render(t, Success("Acme", "https://app.test/client"))
	assert.Contains(t, ok, "Welcome Aboard!")
	assert.Contains(t, ok, `href="https://app.test/client"`)
	assert.Contains(t, ok, "<h2>Acme</h2>")
}

func TestProposal(t *testing.T) {
	signedAt := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		page    ProposalPage
		want    []string
		notWant []string
	}{
		{
			name: "sent with recipient",
			page: ProposalPage{
				View: &proposal.View{
					Proposal:   &model.Proposal{Status: model.ProposalSent},
					Recipient:  &placeholder.Recipient{Name: "John Doe", Company: "Doe Inc", Email: "john@doe.io"},
					AgencyName: "Acme",
					Content:    "Scope <all>",
				},
				Action: "/proposals/p-1/sign",
				Error:  "signer name is required",
			},
			want: []string{
				`<span class="badge status-sent">Sent</span>`,
				"Proposal For",
				"Doe Inc",
				"Scope &lt;all&gt;",
				`action="/proposals/p-1/sign"`,
				"signer name is required",
			},
		},
		{
			name: "accepted shows signature",
			page: ProposalPage{
				View: &proposal.View{
					Proposal: &model.Proposal{Status: model.ProposalAccepted, SignedBy: "Jane", SignedAt: &signedAt},
					Content:  "x",
				},
			},
			want:    []string{"Signed by Jane on Sat, 09 Mar 2024 10:00:00 UTC"},
			notWant: []string{"<form", "Proposal For"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := render(t, Proposal(tc.page))
			for _, w := range tc.want {
				assert.Contains(t, out, w)
			}
			for _, w := range tc.notWant {
				assert.NotContains(t, out, w)
			}
		})
	}
}
