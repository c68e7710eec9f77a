package view

import (
	"context"

	"github.com/a-h/templ"

	"github.com/gentaArnezzi/onvlo/internal/model"
	"github.com/gentaArnezzi/onvlo/internal/wizard"
)

// WizardPage is everything the onboarding page shows for one visitor.
type WizardPage struct {
	AgencyName string
	Funnel     *model.Funnel
	Wizard     *wizard.Wizard
	// Agreement is the agreement template with placeholders already resolved.
	Agreement string
	// Action is the URL the wizard form posts to.
	Action string
}

var stepTitles = map[wizard.Step]string{
	wizard.StepWelcome:    "Welcome",
	wizard.StepCollecting: "Information",
	wizard.StepAgreement:  "Agreement",
	wizard.StepSubmitted:  "Done",
}

// stepIndex places step on the indicator. Submitting shows as agreement.
func stepIndex(step wizard.Step) int {
	if step == wizard.StepSubmitting {
		step = wizard.StepAgreement
	}
	for i, s := range wizard.Steps {
		if s == step {
			return i
		}
	}
	return 0
}

func stepIndicator(h *htmlWriter, current wizard.Step) {
	active := stepIndex(current)
	h.raw(`<ol class="steps">`)
	for i, s := range wizard.Steps {
		class := "step"
		if i <= active {
			class += " done"
		}
		if i == active {
			h.rawf(`<li class="%s" aria-current="step"><span>%d</span> `, class, i+1)
		} else {
			h.rawf(`<li class="%s"><span>%d</span> `, class, i+1)
		}
		h.text(stepTitles[s])
		h.raw(`</li>`)
	}
	h.raw(`</ol>`)
}

func actionButton(h *htmlWriter, action, label, class string, disabled bool) {
	h.rawf(`<button type="submit" name="_action" value="%s" class="%s" formnovalidate%s>`,
		action, class, disabledAttr(disabled))
	h.text(label)
	h.raw(`</button>`)
}

// Wizard renders the current step of the onboarding wizard.
func Wizard(p WizardPage) templ.Component {
	body := component(func(_ context.Context, h *htmlWriter) {
		w := p.Wizard
		locked := w.Locked()
		stepIndicator(h, w.Step)

		h.rawf(`<form method="post" action="%s" class="wizard">`, escape(p.Action))
		switch w.Step {
		case wizard.StepWelcome:
			welcomeStep(h, p.AgencyName)
		case wizard.StepCollecting:
			collectStep(h, p.Funnel.Fields, w)
		case wizard.StepAgreement, wizard.StepSubmitting:
			agreementStep(h, p.Agreement, w, locked)
		case wizard.StepSubmitted:
			h.raw(`<h1>Onboarding complete</h1><p>Your onboarding has already been submitted.</p>`)
			h.rawf(`<a class="button" href="%s/success">Continue</a>`, escape(p.Action))
		}
		h.raw(`</form>`)
	})
	return Layout(p.Funnel.Name, p.AgencyName, body)
}

func welcomeStep(h *htmlWriter, agency string) {
	h.raw(`<h1>Welcome!</h1><p class="lead">Thank you for choosing `)
	h.text(agency)
	h.raw(`. We're excited to work with you!</p>`)
	h.raw(`<p>This onboarding process will help us understand your needs and get you set up quickly. It should only take a few minutes.</p>`)
	h.raw(`<div class="card"><h3>What to expect:</h3><ul>`)
	h.raw(`<li>Fill out a brief information form</li>`)
	h.raw(`<li>Review and accept our terms</li>`)
	h.raw(`<li>Get instant access to your client portal</li></ul></div>`)
	actionButton(h, "start", "Get Started", "primary wide", false)
}

func collectStep(h *htmlWriter, fields []model.FieldDescriptor, w *wizard.Wizard) {
	h.raw(`<h1>Tell us about yourself</h1>`)
	if len(fields) == 0 {
		h.raw(`<p>Please provide your basic information to continue.</p>`)
	}
	for _, f := range fields {
		renderField(h, f, w.Responses[f.ID], w.Errors[f.ID], false)
	}
	h.raw(`<div class="actions">`)
	actionButton(h, "back", "Back", "outline", false)
	actionButton(h, "collect", "Continue", "primary", false)
	h.raw(`</div>`)
}

func agreementStep(h *htmlWriter, agreement string, w *wizard.Wizard, locked bool) {
	h.raw(`<h1>Agreement</h1>`)
	if agreement != "" {
		h.raw(`<div class="agreement">`)
		h.text(agreement)
		h.raw(`</div>`)
		checked := ""
		if w.Agreed {
			checked = " checked"
		}
		h.rawf(`<div class="checkbox consent"><input type="checkbox" id="agree" name="agree" value="on"%s%s>`,
			checked, disabledAttr(locked))
		h.raw(`<label for="agree">I have read and agree to the terms and conditions outlined above</label></div>`)
	} else {
		h.raw(`<p>No agreement required for this onboarding.</p>`)
	}
	if w.Step == wizard.StepSubmitting {
		h.raw(`<p class="notice">Your submission is being processed.</p>`)
	}
	if w.SubmitError != "" {
		h.raw(`<p class="form-error" role="alert">`)
		h.text(w.SubmitError)
		h.raw(`</p>`)
	}
	h.raw(`<div class="actions">`)
	actionButton(h, "back", "Back", "outline", locked)
	actionButton(h, "submit", "Complete Onboarding", "primary", locked)
	h.raw(`</div>`)
}

// Success is the static confirmation shown after a completed submission.
func Success(agencyName, portalURL string) templ.Component {
	body := component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<section class="success"><h1>Welcome Aboard!</h1>`)
		h.raw(`<p class="lead">Your onboarding has been completed successfully.</p>`)
		h.raw(`<div class="card"><h2>What happens next?</h2><ul>`)
		h.raw(`<li><strong>Check your email</strong><p>We've sent you a welcome email with your client portal access details.</p></li>`)
		h.raw(`<li><strong>Your project will be set up</strong><p>Our team will set up your first project and assign team members within 24 hours.</p></li>`)
		h.raw(`<li><strong>Track everything in one place</strong><p>View projects, tasks, invoices, and communicate with your team from your portal.</p></li>`)
		h.raw(`</ul></div>`)
		h.rawf(`<a class="button primary" href="%s">Access Client Portal</a>`, escape(portalURL))
		h.raw(`</section>`)
	})
	return Layout("Onboarding complete", agencyName, body)
}
