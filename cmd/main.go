// Package main provides the entry point of the onboarding funnel service.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gentaArnezzi/onvlo/internal/config"
	"github.com/gentaArnezzi/onvlo/internal/funnel"
	"github.com/gentaArnezzi/onvlo/internal/handler"
	"github.com/gentaArnezzi/onvlo/internal/intake"
	"github.com/gentaArnezzi/onvlo/internal/logger"
	"github.com/gentaArnezzi/onvlo/internal/model"
	"github.com/gentaArnezzi/onvlo/internal/notify"
	"github.com/gentaArnezzi/onvlo/internal/placeholder"
	"github.com/gentaArnezzi/onvlo/internal/proposal"
	"github.com/gentaArnezzi/onvlo/internal/repository"
	"github.com/gentaArnezzi/onvlo/internal/telemetry"
	"github.com/gentaArnezzi/onvlo/internal/wizard"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.LogLevel == "" {
		return logger.New(cfg.Env), nil
	}
	return logger.NewWithLevel(cfg.LogLevel, cfg.LogFormat, cfg.ServiceName)
}

// openStore returns the configured repositories and a function releasing them.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.Store, func(), error) {
	if cfg.Store == config.StorePostgres {
		db, err := repository.OpenPostgres(ctx, cfg.DB.Postgres())
		if err != nil {
			return repository.Store{}, nil, err
		}
		if err := repository.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return repository.Store{}, nil, err
		}
		return repository.NewPostgresStore(db), func() { closeDB(db, log) }, nil
	}

	mem := repository.NewMemory()
	tenantID := mem.AddTenant(model.Tenant{Slug: "demo", Name: "Demo Agency"})
	log.Info("using in-memory store", zap.String("tenant_id", tenantID), zap.String("tenant_slug", "demo"))
	return mem.Store(), func() {}, nil
}

func closeDB(db *sql.DB, log *zap.Logger) {
	if err := db.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}

func openWizardStore(ctx context.Context, cfg *config.Config) (wizard.Store, func(), error) {
	if cfg.Redis.Addr == "" {
		return wizard.NewMemoryStore(cfg.WizardSessionTTL), func() {}, nil
	}
	c := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return wizard.NewRedisStore(c, cfg.WizardSessionTTL), func() { _ = c.Close() }, nil
}

func newMailer(cfg *config.Config, log *zap.Logger) notify.Mailer {
	if cfg.Mailer.Endpoint == "" {
		return notify.NewLogMailer(log)
	}
	return notify.NewHTTPMailer(cfg.Mailer.Endpoint, cfg.Mailer.APIKey, log)
}

// Run is the testable entrypoint for the application.
func Run(ctx context.Context) error {
	cfg := config.Load()
	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	log.Info("Starting onboarding service", zap.String("env", cfg.Env), zap.String("store", cfg.Store))

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTelEndpoint, cfg.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("failed to flush traces", zap.Error(err))
		}
	}()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open store", zap.Error(err))
		return err
	}
	defer closeStore()

	wizards, closeWizards, err := openWizardStore(ctx, cfg)
	if err != nil {
		log.Error("failed to open wizard store", zap.Error(err))
		return err
	}
	defer closeWizards()

	queue := notify.NewQueue(newMailer(cfg, log), cfg.Mailer.QueueSize, cfg.Mailer.FlushInterval, log)
	notifier := notify.NewNotifier(queue, cfg.Mailer.From, cfg.AppURL, cfg.Locale)
	engine := placeholder.NewEngine(cfg.Locale)

	h := handler.New(log, handler.Services{
		Funnels:     funnel.New(store, engine, funnel.NewValidator(), log),
		Intake:      intake.New(store, notifier, log),
		Wizards:     wizards,
		Proposals:   proposal.New(store, engine, log),
		Submissions: store.Submissions,
		Engine:      engine,
		PortalURL:   strings.TrimRight(cfg.AppURL, "/") + "/client",
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      h.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		queue.Start()
		return nil
	})
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(ctxShutdown)
		queue.Stop()
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("service stopped with error", zap.Error(err))
		return err
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := Run(ctx); err != nil {
		os.Exit(1)
	}
}
