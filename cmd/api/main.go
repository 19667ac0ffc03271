package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/tillwork/posadmin/internal/api/http"
	"github.com/tillwork/posadmin/internal/api/http/handlers"
	"github.com/tillwork/posadmin/internal/apiclient"
	"github.com/tillwork/posadmin/internal/auth"
	"github.com/tillwork/posadmin/internal/branch"
	"github.com/tillwork/posadmin/internal/config"
	"github.com/tillwork/posadmin/internal/events"
	"github.com/tillwork/posadmin/internal/observability"
	"github.com/tillwork/posadmin/internal/persistence"
	"github.com/tillwork/posadmin/internal/service"
	"github.com/tillwork/posadmin/internal/session"
	"github.com/tillwork/posadmin/internal/worker"
	"github.com/tillwork/posadmin/internal/workspace"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var redis *persistence.Redis
	deps := map[string]handlers.Pinger{}
	if persistence.NeedsRedis(cfg) {
		redis = persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
		deps["redis"] = redis
	}

	metrics := observability.NewMetrics()
	base := apiclient.New(cfg.Remote, apiclient.WithLogger(logger), apiclient.WithMetrics(metrics))

	var store session.Store = session.NewMemoryStore()
	if cfg.Session.Backend == "redis" {
		store = session.NewRedisStore(redis.Client, cfg.Auth.SessionTTL())
	}
	clients := session.NewClients(base, store)

	var cache branch.Cache
	if cfg.BranchCache.Backend == "redis" {
		cache = branch.NewRedisCache(redis.Client, cfg.BranchCache.TTL())
	} else {
		memory := branch.NewMemoryCache(cfg.BranchCache.TTL(), cfg.BranchCache.SweepInterval())
		defer memory.Close()
		cache = memory
	}
	resolver := branch.NewResolver(cache, logger)

	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	registry := workspace.NewRegistry(clients, resolver, workspace.Options{
		ToastTTL:        cfg.Toast.TTL(),
		BulkConcurrency: cfg.Manager.BulkDeleteConcurrency,
		Dispatcher:      dispatcher,
		Logger:          logger,
	})
	workspace.RegisterDefaults(registry)
	defer registry.CloseAll()

	notificationWorker := worker.NewNotificationWorker(notifications, registry, metrics, logger, cfg.Notification.ReportInterval())
	notificationWorker.Start(ctx)
	defer notificationWorker.Stop()

	accounts := service.NewAccountService(clients, logger)
	staff := service.NewStaffService(clients)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL())
	authMiddleware := auth.NewAuthMiddleware(tokens, store)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true, Immutable: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps, metrics),
		Auth:           handlers.NewAuthHandler(accounts, tokens, registry, notifications),
		Pages:          handlers.NewPagesHandler(registry),
		Staff:          handlers.NewStaffHandler(accounts, staff),
		Branches:       handlers.NewBranchesHandler(registry),
		Activity:       handlers.NewActivityHandler(notifications),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("remote", cfg.Remote.BaseURL))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("fiber shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
