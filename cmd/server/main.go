package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/candidate-dashboard/adapters/event"
	httpAdapter "github.com/khoahotran/candidate-dashboard/adapters/http"
	"github.com/khoahotran/candidate-dashboard/adapters/persistence"
	"github.com/khoahotran/candidate-dashboard/adapters/secret"
	"github.com/khoahotran/candidate-dashboard/internal/application/service"
	authUC "github.com/khoahotran/candidate-dashboard/internal/application/usecase/auth"
	candidateUC "github.com/khoahotran/candidate-dashboard/internal/application/usecase/candidate"
	integrationUC "github.com/khoahotran/candidate-dashboard/internal/application/usecase/integration"
	"github.com/khoahotran/candidate-dashboard/internal/application/usecase/synctracker"
	"github.com/khoahotran/candidate-dashboard/internal/config"
	"github.com/khoahotran/candidate-dashboard/pkg/auth"
	"github.com/khoahotran/candidate-dashboard/pkg/logger"
	"github.com/khoahotran/candidate-dashboard/pkg/tracing"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("cannot load config: " + err.Error())
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()
	appLogger.Info("Starting candidate dashboard API server...")

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(cfg, appLogger, "candidate-dashboard-api")
	if err != nil {
		appLogger.Fatal("Cannot init tracing", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			appLogger.Error("Failed to flush traces", err)
		}
	}()

	// Infrastructure
	dbPool, err := persistence.NewPostgresPool(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	var filterCache service.FilterCache
	if cfg.Redis.Addr != "" {
		redisClient, err := persistence.NewRedisClient(ctx, cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot connect Redis", err)
		}
		defer redisClient.Close()
		filterCache = persistence.NewRedisFilterCache(redisClient, cfg.Redis.CacheTTL)
	} else {
		appLogger.Warn("REDIS_ADDR not set, filter cache disabled")
	}

	var publisher service.SyncEventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot init Kafka", err)
		}
		defer kafkaClient.Close()
		publisher = kafkaClient
	} else {
		appLogger.Warn("KAFKA_BROKERS not set, sync job events disabled")
	}

	secrets, err := secret.NewSecretboxStore(cfg.Ashby.EncryptionKey)
	if err != nil {
		appLogger.Fatal("Invalid ASHBY_ENCRYPTION_KEY", err)
	}

	// Repositories
	candidateRepo := persistence.NewPostgresCandidateRepo(dbPool, appLogger)
	integrationRepo := persistence.NewPostgresIntegrationRepo(dbPool, appLogger)
	syncJobRepo := persistence.NewPostgresSyncJobRepo(dbPool, appLogger)
	operatorRepo := persistence.NewPostgresOperatorRepo(dbPool)

	// Use cases
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)
	filterOptionsUseCase := candidateUC.NewFilterOptionsUseCase(candidateRepo, filterCache, appLogger)
	tracker := synctracker.NewTracker(syncJobRepo, publisher, appLogger)

	handlers := httpAdapter.Handlers{
		Auth: httpAdapter.NewAuthHandler(authUC.NewLoginUseCase(operatorRepo, jwtSvc, appLogger), appLogger),
		Candidate: httpAdapter.NewCandidateHandler(
			candidateUC.NewListCandidatesUseCase(candidateRepo, filterOptionsUseCase, appLogger),
			candidateUC.NewGetCandidateUseCase(candidateRepo, appLogger),
			filterOptionsUseCase,
			candidateUC.NewListProfilesUseCase(candidateRepo, appLogger),
			candidateUC.NewStatsUseCase(candidateRepo, filterCache, appLogger),
			appLogger,
		),
		Integration: httpAdapter.NewIntegrationHandler(
			integrationUC.NewIntegrationUseCase(integrationRepo, secrets, appLogger),
			appLogger,
		),
		Sync: httpAdapter.NewSyncHandler(tracker, cfg.Sync.StaleAfter, appLogger),
	}

	router := httpAdapter.NewRouter(handlers, jwtSvc, httpAdapter.LoginLimit{
		PerMinute: cfg.Auth.LoginPerMinute,
		Burst:     cfg.Auth.LoginBurst,
	}, appLogger)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Cannot run server", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
}
