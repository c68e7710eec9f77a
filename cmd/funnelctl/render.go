package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gentaArnezzi/onvlo/internal/placeholder"
)

type renderOptions struct {
	locale  string
	date    string
	agency  string
	name    string
	company string
	email   string
	title   bool
}

func renderCmd() *cobra.Command {
	var opts renderOptions
	cmd := &cobra.Command{
		Use:   "render <template-file>",
		Short: "Preview a template with sample placeholder values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return renderTemplate(cmd.OutOrStdout(), cmd.ErrOrStderr(), string(raw), opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.locale, "locale", "en-US", "Locale for {{proposal_date}}")
	f.StringVar(&opts.date, "date", "", "Document date as YYYY-MM-DD (default today)")
	f.StringVar(&opts.agency, "agency", "", "Value for {{agency_name}}")
	f.StringVar(&opts.name, "client-name", "", "Value for {{client_name}}")
	f.StringVar(&opts.company, "client-company", "", "Value for {{client_company}} and {{company}}")
	f.StringVar(&opts.email, "client-email", "", "Value for {{client_email}}")
	f.BoolVar(&opts.title, "project-title", false, "Render as a project title template")
	return cmd
}

func renderTemplate(out, errOut io.Writer, tmpl string, opts renderOptions) error {
	if opts.title {
		fmt.Fprintln(out, placeholder.ProjectTitle(tmpl, placeholder.ProjectTitleData{
			ClientName: opts.name,
			Company:    opts.company,
		}))
		warnUnknown(errOut, placeholder.Unknown(tmpl, placeholder.ProjectTitleTokens))
		return nil
	}

	created := time.Now()
	if opts.date != "" {
		d, err := time.Parse(time.DateOnly, opts.date)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		created = d
	}
	engine := placeholder.NewEngine(opts.locale)
	fmt.Fprintln(out, engine.Substitute(tmpl, placeholder.TemplateContext{
		Recipient: &placeholder.Recipient{Name: opts.name, Company: opts.company, Email: opts.email},
		Document:  &placeholder.Document{CreatedAt: created},
		Brand:     &placeholder.Brand{Name: opts.agency},
	}))
	warnUnknown(errOut, engine.Unknown(tmpl))
	return nil
}

func warnUnknown(w io.Writer, ids []string) {
	for _, id := range ids {
		fmt.Fprintf(w, "warning: {{%s}} is not a known placeholder\n", id)
	}
}
