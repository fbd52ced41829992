package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/tuanvumaihuynh/coop-inventory/internal/config"
	"github.com/tuanvumaihuynh/coop-inventory/internal/event"
	"github.com/tuanvumaihuynh/coop-inventory/internal/http"
	"github.com/tuanvumaihuynh/coop-inventory/internal/log"
	"github.com/tuanvumaihuynh/coop-inventory/internal/relay"
	"github.com/tuanvumaihuynh/coop-inventory/internal/repository"
	"github.com/tuanvumaihuynh/coop-inventory/internal/seed"
	"github.com/tuanvumaihuynh/coop-inventory/internal/service"
	"github.com/tuanvumaihuynh/coop-inventory/internal/storage/cache"
	"github.com/tuanvumaihuynh/coop-inventory/internal/storage/db"
	"github.com/tuanvumaihuynh/coop-inventory/internal/storage/memory"
	"github.com/tuanvumaihuynh/coop-inventory/internal/storage/mq"
	"github.com/tuanvumaihuynh/coop-inventory/internal/telemetry"
	"github.com/tuanvumaihuynh/coop-inventory/pkg/cmdutil"
	"github.com/tuanvumaihuynh/coop-inventory/pkg/keymutex"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running standalone application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Store    config.Store
		Postgres config.Postgres
		Redis    config.Redis
		HTTP     config.HTTP
		Relay    config.Relay
		Kafka    config.Kafka
		Sale     config.Sale
		Otel     config.Otel
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	var (
		store  repository.Store
		health db.HealthChecker
	)
	switch cfg.Store.Backend {
	case config.StoreBackendMemory:
		memStore := memory.New()
		store, health = memStore, memStore
	default:
		pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
		if err != nil {
			return fmt.Errorf("error creating pgx pool: %w", err)
		}
		defer pgxPool.Close()

		if err := db.Migrate(pgxPool); err != nil {
			return fmt.Errorf("error migrating database: %w", err)
		}

		dbClient := db.NewClient(pgxPool)
		store, health = repository.NewPostgresStore(dbClient), dbClient
	}
	logger.InfoContext(ctx, "store ready", slog.String("backend", cfg.Store.Backend.String()))

	var idempotency cache.IdempotencyStore
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("error creating redis client: %w", err)
		}
		defer redisClient.Close()

		idempotency = cache.NewRedisIdempotencyStore(redisClient, cfg.Redis.IdempotencyTTL)
	} else {
		idempotency = cache.NewMemoryIdempotencyStore(cfg.Redis.IdempotencyTTL)
	}

	var (
		mqProducer mq.Producer
		mqConsumer mq.Consumer
	)
	if cfg.Kafka.Enabled() {
		kafkaProducer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
		if err != nil {
			return fmt.Errorf("error creating kafka producer: %w", err)
		}
		defer kafkaProducer.Close()

		kafkaConsumer, err := mq.NewKafkaConsumer(ctx, cfg.Kafka, logger)
		if err != nil {
			return fmt.Errorf("error creating kafka consumer: %w", err)
		}

		mqProducer, mqConsumer = kafkaProducer, kafkaConsumer
	} else {
		broker := mq.NewLocalBroker(logger)
		mqProducer, mqConsumer = broker, broker
	}

	// product and sale services share the locks so stock changes of one product never interleave
	locks := keymutex.New()
	productService := service.NewProductService(store, locks)
	saleService := service.NewSaleService(store, idempotency, locks, logger)
	reportService := service.NewReportService(store)

	if cfg.Store.Seed {
		seeder := seed.New(store, productService, saleService, logger, uint64(time.Now().UnixNano()))
		if _, err := seeder.Run(ctx, time.Now()); err != nil {
			return fmt.Errorf("error seeding store: %w", err)
		}
	}

	// consumers subscribe before the relay starts publishing
	eventSvc := event.New(cfg.Sale, logger, mqConsumer)
	cleanupEvent, err := eventSvc.Run(ctx)
	if err != nil {
		return fmt.Errorf("error running event service: %w", err)
	}
	logger.InfoContext(ctx, "event service started")

	httpSvc := http.New(cfg.HTTP, logger, productService, saleService, reportService, health)
	cleanupHTTP, err := httpSvc.Run(ctx)
	if err != nil {
		cleanupEvent()
		return fmt.Errorf("error running http service: %w", err)
	}
	logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

	relaySvc := relay.NewService(cfg.Relay, logger, store, mqProducer)
	cleanupRelay := relaySvc.Run(ctx)
	logger.InfoContext(ctx, "relay service started")

	<-cmdutil.InterruptChan()

	var wg sync.WaitGroup

	wg.Go(func() {
		logger.InfoContext(ctx, "http service is shutting down")
		if err := cleanupHTTP(ctx); err != nil {
			logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
		}
		logger.InfoContext(ctx, "http service is stopped")
	})

	wg.Go(func() {
		logger.InfoContext(ctx, "relay service is shutting down")
		cleanupRelay()
		logger.InfoContext(ctx, "relay service is stopped")
	})

	wg.Wait()

	// the relay is stopped, nothing more will be published
	logger.InfoContext(ctx, "event service is shutting down")
	cleanupEvent()
	logger.InfoContext(ctx, "event service is stopped")

	return nil
}
