package view

import (
	"context"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/gentaArnezzi/onvlo/internal/model"
	"github.com/gentaArnezzi/onvlo/internal/proposal"
)

type ProposalPage struct {
	View *proposal.View
	// Action is the URL the signature form posts to.
	Action string
	Error  string
}

// Proposal renders a public proposal with its recipient and, while it is
// awaiting a signature, the signing form.
func Proposal(p ProposalPage) templ.Component {
	v := p.View
	body := component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<article class="proposal"><header><h1>Proposal</h1>`)
		h.rawf(`<span class="badge status-%s">`, strings.ToLower(string(v.Proposal.Status)))
		h.text(string(v.Proposal.Status))
		h.raw(`</span></header>`)

		if r := v.Recipient; r != nil {
			h.raw(`<div class="card recipient"><h3>Proposal For</h3>`)
			h.raw(`<p class="name">`)
			h.text(r.Name)
			h.raw(`</p>`)
			if r.Company != "" {
				h.raw(`<p>`)
				h.text(r.Company)
				h.raw(`</p>`)
			}
			if r.Email != "" {
				h.raw(`<p>`)
				h.text(r.Email)
				h.raw(`</p>`)
			}
			h.raw(`</div>`)
		}

		h.raw(`<div class="content">`)
		h.text(v.Content)
		h.raw(`</div>`)

		switch {
		case v.CanSign():
			signForm(h, p)
		case v.Proposal.Status == model.ProposalAccepted && v.Proposal.SignedAt != nil:
			h.raw(`<p class="signed">Signed by `)
			h.text(v.Proposal.SignedBy)
			h.raw(` on `)
			h.text(v.Proposal.SignedAt.UTC().Format(time.RFC1123))
			h.raw(`</p>`)
		}
		h.raw(`</article>`)
	})
	return Layout("Proposal", v.AgencyName, body)
}

func signForm(h *htmlWriter, p ProposalPage) {
	h.rawf(`<form method="post" action="%s" class="sign">`, escape(p.Action))
	if p.Error != "" {
		h.raw(`<p class="form-error" role="alert">`)
		h.text(p.Error)
		h.raw(`</p>`)
	}
	h.raw(`<label for="signed_by">Full name</label>`)
	h.raw(`<input type="text" id="signed_by" name="signed_by" required>`)
	h.raw(`<p class="hint">By signing you accept this proposal. Your name, the time and your IP address are recorded.</p>`)
	h.raw(`<button type="submit" class="primary">Accept &amp; Sign</button></form>`)
}
