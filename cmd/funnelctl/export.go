package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gentaArnezzi/onvlo/internal/apperror"
	"github.com/gentaArnezzi/onvlo/internal/export"
)

func exportCmd(a *app) *cobra.Command {
	var tenant, output string
	cmd := &cobra.Command{
		Use:   "export <funnel-id>",
		Short: "Export a funnel's submissions as an XLSX workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := a.exportSubmissions(cmd.Context(), f, tenant, args[0]); err != nil {
				_ = f.Close()
				_ = os.Remove(output)
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&tenant, "tenant", "t", "", "Tenant slug")
	cmd.Flags().StringVarP(&output, "output", "o", "submissions.xlsx", "Output file")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}

func (a *app) exportSubmissions(ctx context.Context, w io.Writer, tenantSlug, funnelID string) error {
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
	f, err := store.Funnels.GetFunnel(ctx, tenant.ID, funnelID)
	if err != nil {
		return err
	}
	subs, err := store.Submissions.ListSubmissions(ctx, f.ID)
	if err != nil {
		return err
	}
	data, err := export.Submissions(f, subs)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
