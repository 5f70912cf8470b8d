package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appsales "github.com/orderpost/backend/internal/application/sales"
	"github.com/orderpost/backend/internal/domain/finance"
	"github.com/orderpost/backend/internal/domain/shared"
	"github.com/orderpost/backend/internal/infrastructure/cache"
	"github.com/orderpost/backend/internal/infrastructure/config"
	"github.com/orderpost/backend/internal/infrastructure/event"
	"github.com/orderpost/backend/internal/infrastructure/followup"
	"github.com/orderpost/backend/internal/infrastructure/logger"
	"github.com/orderpost/backend/internal/infrastructure/persistence"
	"github.com/orderpost/backend/internal/interfaces/http/handler"
	"github.com/orderpost/backend/internal/interfaces/http/middleware"
	"github.com/orderpost/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting order posting backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	// Initialize database connection
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Redis client backs the recalc queue, the customer notification channel
	// and the idempotency store
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()

	// Initialize repositories and readers
	orderRepo := persistence.NewGormSalesOrderRepository(db.DB)
	nomenclatureReader := persistence.NewGormNomenclatureReader(db.DB)
	cardReader := persistence.NewGormLoyaltyCardReader(db.DB)
	fifoSettingsReader := persistence.NewGormFifoSettingsReader(db.DB)
	referenceChecker := persistence.NewGormReferenceChecker(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Initialize event serializer and register all event types
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)

	// Outbox publisher saves events inside the posting transaction
	outboxPublisher := event.NewOutboxPublisher(eventSerializer)
	uow := persistence.NewGormPostingUnitOfWork(db.DB, outboxPublisher)

	// Initialize application services
	validator := appsales.NewReferenceValidator(referenceChecker)
	periodLock := finance.NewPeriodLockChecker(fifoSettingsReader)
	postingService := appsales.NewOrderPostingService(uow, validator, periodLock, nomenclatureReader, cardReader, log)
	statusService := appsales.NewOrderStatusService(uow, log)
	queryService := appsales.NewOrderQueryService(orderRepo)

	// Follow-up work driven from the outbox
	orderPostedHandler := appsales.NewOrderPostedHandler(log).
		WithRecalcRequester(followup.NewRedisRecalcQueue(redisClient, log)).
		WithOutgoingDocumentCreator(followup.NewGormOutgoingDocumentCreator(db.DB)).
		WithCustomerNotifier(followup.NewRedisCustomerNotifier(redisClient))

	// Idempotency store keeps outbox redeliveries from repeating side effects
	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(true),
	)
	idempotencyStore, err := storeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Initialize event bus and subscribe wrapped handlers
	eventBus := event.NewInMemoryEventBus(log)
	handlers := event.WrapHandlersWithIdempotency(
		[]shared.EventHandler{orderPostedHandler},
		idempotencyStore,
		log,
		event.WithIdempotencyConfig(shared.IdempotencyConfig{
			TTL:     cfg.Posting.IdempotencyTTL,
			Enabled: cfg.Posting.IdempotencyEnabled,
		}),
	)
	for _, h := range handlers {
		eventBus.Subscribe(h)
	}
	log.Info("Event handlers registered",
		zap.Strings("order_posted_events", orderPostedHandler.EventTypes()),
	)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Outbox processor republishes committed events until delivery succeeds
	processorConfig := event.DefaultOutboxProcessorConfig()
	if cfg.Event.BatchSize > 0 {
		processorConfig.BatchSize = cfg.Event.BatchSize
	}
	if cfg.Event.PollInterval > 0 {
		processorConfig.PollInterval = cfg.Event.PollInterval
	}
	processorConfig.CleanupEnabled = cfg.Event.CleanupEnabled
	if cfg.Event.CleanupRetention > 0 {
		processorConfig.CleanupRetention = cfg.Event.CleanupRetention
	}

	if cfg.Event.ProcessorEnabled {
		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, processorConfig, log)
		if err := outboxProcessor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", processorConfig.BatchSize),
			zap.Duration("poll_interval", processorConfig.PollInterval),
		)
	}

	// Initialize HTTP handlers
	orderHandler := handler.NewOrderHandler(postingService, statusService, queryService).
		WithMaxBatchSize(cfg.Posting.MaxBatchSize)
	systemHandler := handler.NewSystemHandler(db)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.RequestLog(log))
	engine.Use(middleware.CORS())

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(orderHandler).
		Register(systemHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
