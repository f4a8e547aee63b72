package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/office-hours/queue-service/internal/api/http"
	"github.com/office-hours/queue-service/internal/api/http/handlers"
	"github.com/office-hours/queue-service/internal/auth"
	"github.com/office-hours/queue-service/internal/config"
	"github.com/office-hours/queue-service/internal/events"
	"github.com/office-hours/queue-service/internal/lifecycle"
	"github.com/office-hours/queue-service/internal/observability"
	"github.com/office-hours/queue-service/internal/persistence"
	"github.com/office-hours/queue-service/internal/queueview"
	"github.com/office-hours/queue-service/internal/repository"
	"github.com/office-hours/queue-service/internal/service"
	"github.com/office-hours/queue-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	catalogRepo := repository.NewCatalogRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)

	publisher := events.NewRedisPublisher(redis.Client, logger)
	settingsService := service.NewSettingsService(settingsRepo, logger, cfg.Queue.DefaultCooldownMinutes)
	engine := lifecycle.NewEngine(ticketRepo, publisher, logger, cfg.Queue.GlobalTopic)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		CatalogRepo: catalogRepo,
		Settings:    settingsService,
		Publisher:   publisher,
		Logger:      logger,
		GlobalTopic: cfg.Queue.GlobalTopic,
	})

	cache := queueview.NewCache(func() bool {
		return settingsService.LastKnownPendingStage(ctx)
	}, logger)
	if err := cache.Seed(ctx, ticketRepo); err != nil {
		logger.Warn("queue cache seeded partially", zap.Error(err))
	}
	subscriber := events.NewSubscriber(redis.Client, logger)
	worker.StartQueueWorker(ctx, subscriber, cache, metrics, cfg.Queue.GlobalTopic, logger)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokenManager)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Lifecycle:      handlers.NewLifecycleHandler(engine),
		Queue:          handlers.NewQueueHandler(cache),
		Stats:          handlers.NewStatsHandler(ticketService),
		Catalog:        handlers.NewCatalogHandler(catalogRepo),
		Settings:       handlers.NewSettingsHandler(settingsService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
