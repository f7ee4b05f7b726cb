package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/civicpulse/grievance-service/internal/api/http"
	"github.com/civicpulse/grievance-service/internal/api/http/handlers"
	"github.com/civicpulse/grievance-service/internal/auth"
	"github.com/civicpulse/grievance-service/internal/config"
	"github.com/civicpulse/grievance-service/internal/events"
	"github.com/civicpulse/grievance-service/internal/observability"
	"github.com/civicpulse/grievance-service/internal/persistence"
	"github.com/civicpulse/grievance-service/internal/repository"
	"github.com/civicpulse/grievance-service/internal/service"
	"github.com/civicpulse/grievance-service/internal/worker"
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
	officerRepo := repository.NewOfficerRepository(pool)
	grievanceRepo := repository.NewGrievanceRepository(pool)
	departmentRepo := repository.NewDepartmentRepository(pool)
	regionRepo := repository.NewRegionRepository(pool)
	mediaRepo := repository.NewMediaRepository(pool)
	feedbackRepo := repository.NewFeedbackRepository(pool)
	timelineRepo := repository.NewTimelineRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	matcher := service.NewMatcherService(service.MatcherDependencies{
		GrievanceRepo: grievanceRepo,
		OfficerRepo:   officerRepo,
		RegionRepo:    regionRepo,
	})

	geoIndex := service.NewGeoIndex(logger, redis)
	if err := geoIndex.Rebuild(ctx, grievanceRepo); err != nil {
		logger.Fatal("initial geo index build failed", zap.Error(err))
	}

	lifecycle := service.NewLifecycleService(service.LifecycleDependencies{
		GrievanceRepo: grievanceRepo,
		OfficerRepo:   officerRepo,
		MediaRepo:     mediaRepo,
		FeedbackRepo:  feedbackRepo,
		TimelineRepo:  timelineRepo,
		Matcher:       matcher,
		GeoIndex:      geoIndex,
		Dispatcher:    dispatcher,
		Metrics:       metrics,
		Logger:        logger,
		StrictVerify:  cfg.Policy.StrictVerify,
	})

	grievances := service.NewGrievanceService(service.GrievanceDependencies{
		GrievanceRepo:  grievanceRepo,
		MediaRepo:      mediaRepo,
		FeedbackRepo:   feedbackRepo,
		TimelineRepo:   timelineRepo,
		DepartmentRepo: departmentRepo,
		Matcher:        matcher,
		GeoIndex:       geoIndex,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:     userRepo,
		OfficerRepo:  officerRepo,
		TokenManager: tokenManager,
		BcryptCost:   cfg.Auth.BcryptCost,
	})
	officers := service.NewOfficerService(service.OfficerDependencies{
		OfficerRepo:    officerRepo,
		DepartmentRepo: departmentRepo,
		Matcher:        matcher,
		BcryptCost:     cfg.Auth.BcryptCost,
	})

	reconciler := service.NewReconciler(cfg.Policy.ReconcileTimeout(), logger)

	notifications := service.NewNotificationService(cfg.Notification, logger)
	notifications.Register(dispatcher)

	authMiddleware := auth.NewAuthMiddleware(tokenManager, userRepo, officerRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:           handlers.NewUsersHandler(authService),
		Grievances:      handlers.NewGrievancesHandler(grievances, lifecycle),
		OfficerWorkload: handlers.NewOfficerGrievancesHandler(grievances, lifecycle),
		Admin:           handlers.NewAdminGrievancesHandler(grievances, lifecycle, matcher, geoIndex, reconciler),
		Staff:           handlers.NewStaffHandler(officers),
		Metadata:        handlers.NewMetadataHandler(departmentRepo, regionRepo),
		AuthMiddleware:  authMiddleware,
	})

	go worker.NewGeoRebuildWorker(geoIndex, grievanceRepo, cfg.Policy.GeoRebuildInterval(), logger).Run(ctx)
	go worker.NewReconcileSweeper(reconciler, time.Second, logger).Run(ctx)

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
