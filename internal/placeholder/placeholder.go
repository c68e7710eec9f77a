// Package placeholder resolves {{identifier}} markers in tenant-authored
// templates.
//
// A template is scanned once, left to right. A marker whose identifier is in
// the active Table is replaced by the resolver's output (empty when there is
// no data); any other marker is copied through untouched. Replacement text is
// never scanned again.
package placeholder

import (
	"strings"
	"time"
)

const (
	openMarker  = "{{"
	closeMarker = "}}"
)

// Table maps a placeholder identifier to the function producing its value.
type Table[T any] map[string]func(T) string

// marker reports the identifier of the marker starting at template[i:] and
// the marker's width in bytes.
func marker(template string, i int) (id string, width int, ok bool) {
	if !strings.HasPrefix(template[i:], openMarker) {
		return "", 0, false
	}
	rest := template[i+len(openMarker):]
	end := strings.Index(rest, closeMarker)
	if end < 0 {
		return "", 0, false
	}
	return rest[:end], len(openMarker) + end + len(closeMarker), true
}

// Render substitutes every marker of template known to table.
func Render[T any](template string, table Table[T], data T) string {
	if !strings.Contains(template, openMarker) {
		return template
	}

	var b strings.Builder
	b.Grow(len(template))
	for i := 0; i < len(template); {
		if id, width, ok := marker(template, i); ok {
			if resolve, known := table[id]; known {
				b.WriteString(resolve(data))
				i += width
				continue
			}
		}
		b.WriteByte(template[i])
		i++
	}
	return b.String()
}

// Extract lists the distinct identifiers used in template, in order of first
// appearance. It scans like Render; identifiers never contain braces.
func Extract(template string) []string {
	var ids []string
	seen := map[string]bool{}
	for i := 0; i < len(template); {
		id, width, ok := marker(template, i)
		if !ok || id == "" || strings.ContainsAny(id, "{}") {
			i++
			continue
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
		i += width
	}
	return ids
}

// Unknown returns the identifiers of template that table does not resolve.
func Unknown[T any](template string, table Table[T]) []string {
	var out []string
	for _, id := range Extract(template) {
		if _, ok := table[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

type Recipient struct {
	Name    string
	Company string
	Email   string
}

type Document struct {
	CreatedAt time.Time
}

type Brand struct {
	Name string
}

// TemplateContext is the data available to agreement and proposal templates.
// Any section may be nil.
type TemplateContext struct {
	Recipient *Recipient
	Document  *Document
	Brand     *Brand
}

// Engine renders agreement and proposal templates for one locale.
type Engine struct {
	table Table[TemplateContext]
}

// NewEngine returns an engine formatting {{proposal_date}} for locale, e.g.
// "en-US" or "pt-BR". Unknown locales fall back to en-US.
func NewEngine(locale string) *Engine {
	layout := dateLayout(locale)
	return &Engine{table: Table[TemplateContext]{
		"client_name": func(c TemplateContext) string {
			if c.Recipient == nil {
				return ""
			}
			return c.Recipient.Name
		},
		"client_company": func(c TemplateContext) string {
			if c.Recipient == nil {
				return ""
			}
			return c.Recipient.Company
		},
		"client_email": func(c TemplateContext) string {
			if c.Recipient == nil {
				return ""
			}
			return c.Recipient.Email
		},
		"proposal_date": func(c TemplateContext) string {
			if c.Document == nil || c.Document.CreatedAt.IsZero() {
				return ""
			}
			return c.Document.CreatedAt.Format(layout)
		},
		"agency_name": func(c TemplateContext) string {
			if c.Brand == nil {
				return ""
			}
			return c.Brand.Name
		},
	}}
}

// Substitute renders template against ctx.
func (e *Engine) Substitute(template string, ctx TemplateContext) string {
	return Render(template, e.table, ctx)
}

// Unknown lists identifiers in template this engine leaves untouched.
func (e *Engine) Unknown(template string) []string {
	return Unknown(template, e.table)
}

var defaultEngine = NewEngine("en-US")

// Substitute renders template with the en-US engine.
func Substitute(template string, ctx TemplateContext) string {
	return defaultEngine.Substitute(template, ctx)
}

// ProjectTitleData feeds the auto-provisioned project title template.
type ProjectTitleData struct {
	ClientName string
	Company    string
}

// ProjectTitleTokens resolves only {{client_name}} and {{company}};
// {{client_company}} passes through untouched.
var ProjectTitleTokens = Table[ProjectTitleData]{
	"client_name": func(d ProjectTitleData) string { return d.ClientName },
	"company":     func(d ProjectTitleData) string { return d.Company },
}

// ProjectTitle renders an auto-provisioned project title.
func ProjectTitle(template string, data ProjectTitleData) string {
	return Render(template, ProjectTitleTokens, data)
}
