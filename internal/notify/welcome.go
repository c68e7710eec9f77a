package notify

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ErrNoRecipient = errors.New("recipient email is required")

// Welcome describes the confirmation sent to a newly onboarded client.
type Welcome struct {
	AgencyName  string
	ClientName  string
	ClientEmail string
}

// Notifier composes onboarding emails and hands them to a Queue.
type Notifier struct {
	queue     Queue
	from      string
	portalURL string
	lang      language.Tag
}

// NewNotifier returns a Notifier writing in the catalog language closest to
// locale. The portal link is appURL + "/client".
func NewNotifier(q Queue, from, appURL, locale string) *Notifier {
	return &Notifier{
		queue:     q,
		from:      from,
		portalURL: strings.TrimRight(appURL, "/") + "/client",
		lang:      matchLanguage(locale),
	}
}

// Welcome enqueues the welcome email. Delivery happens asynchronously.
func (n *Notifier) Welcome(_ context.Context, w Welcome) error {
	msg, err := n.Compose(w)
	if err != nil {
		return err
	}
	n.queue.Add(msg)
	return nil
}

// Compose renders the welcome email without sending it.
func (n *Notifier) Compose(w Welcome) (Message, error) {
	if strings.TrimSpace(w.ClientEmail) == "" {
		return Message{}, ErrNoRecipient
	}
	p := message.NewPrinter(n.lang)
	from := (&mail.Address{Name: w.AgencyName, Address: n.from}).String()

	var b strings.Builder
	paragraph := func(s string) {
		b.WriteString("<p>")
		b.WriteString(templ.EscapeString(s))
		b.WriteString("</p>\n")
	}
	paragraph(p.Sprintf(keyWelcomeGreeting, w.ClientName))
	paragraph(p.Sprintf(keyWelcomeThanks))
	paragraph(p.Sprintf(keyWelcomePortal))
	fmt.Fprintf(&b, "<p><a href=\"%s\">%s</a></p>\n",
		templ.EscapeString(n.portalURL), templ.EscapeString(p.Sprintf(keyWelcomeCTA)))
	paragraph(p.Sprintf(keyWelcomeSignoff, w.AgencyName))

	return Message{
		From:    from,
		To:      w.ClientEmail,
		Subject: p.Sprintf(keyWelcomeSubject, w.AgencyName),
		HTML:    b.String(),
	}, nil
}
