// Command funnelctl manages onboarding funnels from the command line.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gentaArnezzi/onvlo/internal/config"
	"github.com/gentaArnezzi/onvlo/internal/logger"
	"github.com/gentaArnezzi/onvlo/internal/repository"
)

var Version = "dev"

// app carries what every subcommand needs.
type app struct {
	log  *zap.Logger
	open func(ctx context.Context) (repository.Store, func(), error)
}

// openPostgres connects with the same DB_* settings as the server.
func openPostgres(ctx context.Context) (repository.Store, func(), error) {
	cfg := config.Load()
	db, err := repository.OpenPostgres(ctx, cfg.DB.Postgres())
	if err != nil {
		return repository.Store{}, nil, err
	}
	if err := repository.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return repository.Store{}, nil, err
	}
	return repository.NewPostgresStore(db), func() { _ = db.Close() }, nil
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "funnelctl",
		Short:         "Manage onboarding funnels",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(importCmd(a))
	rootCmd.AddCommand(exportCmd(a))
	rootCmd.AddCommand(renderCmd())
	return rootCmd
}

func main() {
	a := &app{
		log:  logger.New(os.Getenv("ENV")),
		open: openPostgres,
	}
	defer func() { _ = a.log.Sync() }()

	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
