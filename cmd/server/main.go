package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	accountingapp "github.com/retailops/backend/internal/application/accounting"
	eventapp "github.com/retailops/backend/internal/application/event"
	fulfillmentapp "github.com/retailops/backend/internal/application/fulfillment"
	notificationapp "github.com/retailops/backend/internal/application/notification"
	procurementapp "github.com/retailops/backend/internal/application/procurement"
	replenishmentapp "github.com/retailops/backend/internal/application/replenishment"
	stockapp "github.com/retailops/backend/internal/application/stock"
	warehouseapp "github.com/retailops/backend/internal/application/warehouse"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/infrastructure/cache"
	"github.com/retailops/backend/internal/infrastructure/config"
	"github.com/retailops/backend/internal/infrastructure/event"
	"github.com/retailops/backend/internal/infrastructure/logger"
	"github.com/retailops/backend/internal/infrastructure/persistence"
	"github.com/retailops/backend/internal/infrastructure/telemetry"
	"github.com/retailops/backend/internal/interfaces/http/handler"
	"github.com/retailops/backend/internal/interfaces/http/middleware"
	"github.com/retailops/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	tracer, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			log.Error("tracer shutdown", zap.Error(err))
		}
	}()

	gormLevel := gormlogger.Warn
	if cfg.Log.Level == "debug" {
		gormLevel = gormlogger.Info
	}
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.NewGormLogger(log, gormLevel))
	if err != nil {
		log.Fatal("connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("close database", zap.Error(err))
		}
	}()
	if tracer.IsEnabled() {
		if err := db.DB.Use(otelgorm.NewPlugin()); err != nil {
			log.Warn("register database tracing", zap.Error(err))
		}
	}
	if cfg.App.Env == "development" {
		if err := persistence.AutoMigrate(db.DB); err != nil {
			log.Fatal("auto-migrate schema", zap.Error(err))
		}
	}

	// Repositories.
	warehouseRepo := persistence.NewGormWarehouseRepository(db.DB)
	stockRepo := persistence.NewGormStockRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	purchaseRepo := persistence.NewGormPurchaseRepository(db.DB)
	requestRepo := persistence.NewGormStockRequestRepository(db.DB)
	transferRepo := persistence.NewGormTransferRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Event plumbing: serializer, bus, transactional outbox.
	serializer := event.NewEventSerializer()
	event.RegisterDomainEvents(serializer)
	bus := event.NewInMemoryEventBus(log)
	publisher := event.NewOutboxPublisher(serializer, event.WithMaxRetries(cfg.Event.MaxRetries))

	var idemStore shared.IdempotencyStore
	if cfg.Redis.Enabled {
		redisStore, err := cache.NewRedisIdempotencyStore(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("connect to redis", zap.Error(err))
		}
		idemStore = redisStore
		log.Info("using redis idempotency store", zap.String("addr", cfg.Redis.Addr()))
	} else {
		memStore := cache.NewInMemoryIdempotencyStore()
		defer memStore.Close()
		idemStore = memStore
	}
	idemConfig := shared.IdempotencyConfig{TTL: cfg.Idempotency.TTL, Enabled: true}

	// Side-effect consumers behind the outbox. The log-backed poster and
	// notifier stand in for the accounting and notification services.
	consumers := event.WrapHandlers([]shared.EventHandler{
		accountingapp.NewPostingHandler(accountingapp.NewLogPoster(log), log),
		notificationapp.NewEventHandler(notificationapp.NewLogNotifier(log), log),
	}, idemStore, idemConfig, log)
	for _, h := range consumers {
		bus.Subscribe(h)
	}

	processor := event.NewOutboxProcessor(outboxRepo, bus, serializer, event.OutboxProcessorConfig{
		BatchSize:        cfg.Event.BatchSize,
		PollInterval:     cfg.Event.PollInterval,
		Workers:          cfg.Event.Workers,
		CleanupEnabled:   cfg.Event.CleanupEnabled,
		CleanupRetention: cfg.Event.CleanupRetention,
		CleanupInterval:  time.Hour,
	}, log)
	if cfg.Event.ProcessorEnabled {
		if err := processor.Start(ctx); err != nil {
			log.Fatal("start outbox processor", zap.Error(err))
		}
	}

	// Application services.
	scope := persistence.NewGormTransactionScope(db.DB, publisher)
	ledger := stockapp.NewLedger(scope, stockRepo, movementRepo, log)
	warehouseService := warehouseapp.NewService(warehouseRepo, log)
	purchaseService := procurementapp.NewPurchaseService(scope, ledger, purchaseRepo, log)
	transferService := replenishmentapp.NewTransferService(scope, ledger, transferRepo, log)
	requestService := replenishmentapp.NewStockRequestService(scope, transferService, requestRepo, log)
	orderService := fulfillmentapp.NewOrderService(scope, ledger, orderRepo, log)
	outboxService := eventapp.NewOutboxService(outboxRepo, log)

	// HTTP.
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("set trusted proxies", zap.Error(err))
		}
	}
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	if tracer.IsEnabled() {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig()))

	systemHandler := handler.NewSystemHandler(db, version)
	systemHandler.RegisterRootRoutes(engine)

	api := router.New(engine)
	api.Register(
		handler.NewWarehouseHandler(warehouseService, ledger),
		handler.NewStockHandler(ledger),
		handler.NewPurchaseHandler(purchaseService),
		handler.NewStockRequestHandler(requestService),
		handler.NewTransferHandler(transferService),
		handler.NewOrderHandler(orderService),
		handler.NewOutboxHandler(outboxService),
	)
	engine.Use(middleware.Tenant())
	api.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
	if cfg.Event.ProcessorEnabled {
		if err := processor.Stop(shutdownCtx); err != nil {
			log.Error("outbox processor shutdown", zap.Error(err))
		}
	}
	log.Info("server stopped")
}
