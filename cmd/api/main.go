package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/health-info-service/internal/api/http"
	"github.com/spec-kit/health-info-service/internal/api/http/handlers"
	"github.com/spec-kit/health-info-service/internal/auth"
	"github.com/spec-kit/health-info-service/internal/config"
	"github.com/spec-kit/health-info-service/internal/events"
	"github.com/spec-kit/health-info-service/internal/observability"
	"github.com/spec-kit/health-info-service/internal/persistence"
	"github.com/spec-kit/health-info-service/internal/repository"
	"github.com/spec-kit/health-info-service/internal/service"
	"github.com/spec-kit/health-info-service/internal/worker"
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

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	programRepo := repository.NewProgramRepository(pool)
	clientRepo := repository.NewClientRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
	})
	programService := service.NewProgramService(programRepo, dispatcher)
	clientService := service.NewClientService(service.ClientDependencies{
		ClientRepo:     clientRepo,
		ProgramRepo:    programRepo,
		EnrollmentRepo: enrollmentRepo,
		Cache:          persistence.NewClientCache(redis),
		Dispatcher:     dispatcher,
	})

	authMiddleware := auth.NewMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Programs:       handlers.NewProgramHandler(programService),
		Clients:        handlers.NewClientHandler(clientService),
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
