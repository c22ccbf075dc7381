package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/khoahotran/candidate-dashboard/adapters/event"
	"github.com/khoahotran/candidate-dashboard/adapters/persistence"
	"github.com/khoahotran/candidate-dashboard/adapters/secret"
	"github.com/khoahotran/candidate-dashboard/internal/application/service"
	integrationUC "github.com/khoahotran/candidate-dashboard/internal/application/usecase/integration"
	"github.com/khoahotran/candidate-dashboard/internal/application/usecase/synctracker"
	"github.com/khoahotran/candidate-dashboard/internal/config"
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
	appLogger.Info("Starting candidate dashboard worker...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(cfg, appLogger, "candidate-dashboard-worker")
	if err != nil {
		appLogger.Fatal("Cannot init tracing", err)
	}
	defer shutdownTracing(context.Background())

	dbPool, err := persistence.NewPostgresPool(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	redisClient, err := persistence.NewRedisClient(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Redis", err)
	}
	defer redisClient.Close()
	filterCache := persistence.NewRedisFilterCache(redisClient, cfg.Redis.CacheTTL)

	producer, err := event.NewKafkaProducerClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot init Kafka producer", err)
	}
	defer producer.Close()

	consumer, err := event.NewSyncEventConsumer(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot init Kafka consumer", err)
	}
	defer consumer.Close()

	secrets, err := secret.NewSecretboxStore(cfg.Ashby.EncryptionKey)
	if err != nil {
		appLogger.Fatal("Invalid ASHBY_ENCRYPTION_KEY", err)
	}
	integrations := integrationUC.NewIntegrationUseCase(persistence.NewPostgresIntegrationRepo(dbPool, appLogger), secrets, appLogger)
	if err := checkActiveIntegrationKey(ctx, integrations, appLogger); err != nil {
		appLogger.Warn("Active Ashby integration key cannot be opened", zap.Error(err))
	}

	tracker := synctracker.NewTracker(persistence.NewPostgresSyncJobRepo(dbPool, appLogger), producer, appLogger)
	processEventUseCase := synctracker.NewProcessSyncEventUseCase(filterCache, appLogger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.Run(gctx, func(ctx context.Context, ev service.SyncJobEvent) error {
			_, err := processEventUseCase.Execute(ctx, ev)
			return err
		})
	})
	g.Go(func() error {
		runReaper(gctx, tracker, cfg.Sync.StaleAfter, cfg.Sync.ReapInterval, appLogger)
		return nil
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("Worker stopped with error", err)
	}
	appLogger.Info("Worker stopped")
}

// runReaper fails stuck jobs once at startup and then on every tick.
func runReaper(ctx context.Context, tracker *synctracker.Tracker, staleAfter, interval time.Duration, log logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		jobs, err := tracker.MarkStaleAsFailed(ctx, staleAfter)
		if err != nil {
			log.Error("Stale job reaper failed", err)
		} else if len(jobs) > 0 {
			log.Info("Stale sync jobs failed", zap.Int(logger.FieldCount, len(jobs)))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
