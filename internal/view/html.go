// Package view renders the public HTML pages: the onboarding wizard, its
// confirmation and error pages, and public proposals.
package view

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// htmlWriter keeps the first write error so components can emit markup
// without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) rawf(format string, args ...any) {
	if h.err == nil {
		_, h.err = fmt.Fprintf(h.w, format, args...)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) render(ctx context.Context, c templ.Component) {
	if h.err == nil && c != nil {
		h.err = c.Render(ctx, h.w)
	}
}

func component(fn func(ctx context.Context, h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		fn(ctx, h)
		return h.err
	})
}

func escape(s string) string {
	return templ.EscapeString(s)
}

func disabledAttr(disabled bool) string {
	if disabled {
		return " disabled"
	}
	return ""
}

// Layout wraps body in the document shell shared by every public page.
func Layout(title, brand string, body templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title><link rel="stylesheet" href="/static/onboard.css"></head><body>`)
		if brand != "" {
			h.raw(`<header class="brand"><h2>`)
			h.text(brand)
			h.raw(`</h2></header>`)
		}
		h.raw(`<main>`)
		h.render(ctx, body)
		h.raw(`</main></body></html>`)
	})
}

// NotFound is shown for unknown tenants, funnels and proposals.
func NotFound(message string) templ.Component {
	return Layout("Not found", "", component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<section class="not-found"><h1>Page not found</h1><p>`)
		h.text(message)
		h.raw(`</p></section>`)
	}))
}

// Error is shown when a request fails for reasons the visitor cannot fix.
func Error(message string) templ.Component {
	return Layout("Something went wrong", "", component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<section class="error"><h1>Something went wrong</h1><p>`)
		h.text(message)
		h.raw(`</p></section>`)
	}))
}
