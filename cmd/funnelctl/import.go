package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gentaArnezzi/onvlo/internal/apperror"
	"github.com/gentaArnezzi/onvlo/internal/funnel"
	"github.com/gentaArnezzi/onvlo/internal/model"
	"github.com/gentaArnezzi/onvlo/internal/placeholder"
)

// definitionFile is the YAML layout accepted by import.
type definitionFile struct {
	Tenant  string              `yaml:"tenant"`
	Funnels []model.FunnelInput `yaml:"funnels"`
}

func importCmd(a *app) *cobra.Command {
	var tenant, locale string
	cmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Create or update funnels from a YAML definition file",
		Long: `Reads funnel definitions and upserts them by slug for one tenant.
The tenant slug comes from --tenant or the file's "tenant" key.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			return a.importDefinitions(cmd.Context(), cmd.OutOrStdout(), f, tenant, locale)
		},
	}
	cmd.Flags().StringVarP(&tenant, "tenant", "t", "", "Tenant slug (overrides the file)")
	cmd.Flags().StringVar(&locale, "locale", "en-US", "Locale used to check agreement placeholders")
	return cmd
}

func (a *app) importDefinitions(ctx context.Context, out io.Writer, r io.Reader, tenantSlug, locale string) error {
	var def definitionFile
	if err := yaml.NewDecoder(r).Decode(&def); err != nil {
		return fmt.Errorf("failed to parse definition file: %w", err)
	}
	if tenantSlug == "" {
		tenantSlug = def.Tenant
	}
	if tenantSlug == "" {
		return errors.New("tenant slug is required")
	}

	store, closeStore, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	tenant, err := store.Tenants.GetTenantBySlug(ctx, tenantSlug)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.ErrTenantNotFound
		}
		return err
	}

	svc := funnel.New(store, placeholder.NewEngine(locale), funnel.NewValidator(), a.log)
	existing, err := svc.List(ctx, tenant.ID)
	if err != nil {
		return err
	}
	bySlug := make(map[string]string, len(existing))
	for _, f := range existing {
		bySlug[f.Slug] = f.ID
	}

	for _, in := range def.Funnels {
		var (
			saved  *funnel.Saved
			action string
		)
		if id, ok := bySlug[in.Slug]; ok {
			saved, err = svc.Update(ctx, tenant.ID, id, in.Patch())
			action = "updated"
		} else {
			saved, err = svc.Create(ctx, tenant.ID, in)
			action = "created"
		}
		if err != nil {
			return fmt.Errorf("funnel %q: %w", in.Slug, err)
		}
		fmt.Fprintf(out, "%s %s (%s)\n", action, saved.Slug, saved.ID)
		for _, id := range saved.UnknownPlaceholders {
			fmt.Fprintf(out, "  warning: {{%s}} is not a known placeholder\n", id)
		}
	}
	return nil
}
