package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/coffeestock/coffeestock/internal/app"
	"github.com/coffeestock/coffeestock/internal/audit"
	"github.com/coffeestock/coffeestock/internal/authz"
	"github.com/coffeestock/coffeestock/internal/guard"
	"github.com/coffeestock/coffeestock/internal/identity"
	"github.com/coffeestock/coffeestock/internal/observability"
	"github.com/coffeestock/coffeestock/internal/seed"
	"github.com/coffeestock/coffeestock/internal/session"
	"github.com/coffeestock/coffeestock/internal/view"
	"github.com/coffeestock/coffeestock/internal/web"
)

func main() {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	seedFile, err := seed.Load(cfg.SeedPath)
	if err != nil {
		logger.Error("load seed", slog.Any("error", err))
		os.Exit(1)
	}
	assets, err := seedFile.Build()
	if err != nil {
		logger.Error("build seed", slog.Any("error", err))
		os.Exit(1)
	}

	// Configuration inconsistencies (unknown permissions, unknown
	// roles) refuse to start rather than run with a partial model.
	catalog := authz.NewCatalog()
	registry, err := authz.NewRegistry(catalog, assets.Roles)
	if err != nil {
		logger.Error("build role registry", slog.Any("error", err))
		os.Exit(1)
	}
	engine := authz.NewEngine(registry)

	store, err := identity.NewStore(registry, assets.Identities)
	if err != nil {
		logger.Error("build identity store", slog.Any("error", err))
		os.Exit(1)
	}

	viewGuard, err := guard.New(catalog, engine, assets.Views)
	if err != nil {
		logger.Error("build view guard", slog.Any("error", err))
		os.Exit(1)
	}

	trail := audit.NewTrail(cfg.AuditTrailSize)
	metrics := observability.NewMetrics()
	controller := session.NewController(logger, store, engine, trail)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	shell := web.NewHandler(logger, templates, controller, viewGuard, engine, store, trail, metrics)

	router := app.NewRouter(app.RouterParams{
		Logger:  logger,
		Config:  cfg,
		Shell:   shell,
		Metrics: metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("server listening",
			slog.String("addr", cfg.AppAddr),
			slog.String("env", cfg.AppEnv),
			slog.Int("roles", len(registry.List())),
			slog.Int("identities", len(store.List())))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
