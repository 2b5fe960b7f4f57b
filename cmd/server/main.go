package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ledgerapp "github.com/retailpos/backend/internal/application/ledger"
	"github.com/retailpos/backend/internal/application/notify"
	saleapp "github.com/retailpos/backend/internal/application/sale"
	supplierapp "github.com/retailpos/backend/internal/application/supplier"
	"github.com/retailpos/backend/internal/domain/sale"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/infrastructure/cache"
	"github.com/retailpos/backend/internal/infrastructure/config"
	"github.com/retailpos/backend/internal/infrastructure/event"
	"github.com/retailpos/backend/internal/infrastructure/logger"
	"github.com/retailpos/backend/internal/infrastructure/persistence"
	"github.com/retailpos/backend/internal/interfaces/http/handler"
	"github.com/retailpos/backend/internal/interfaces/http/middleware"
	"github.com/retailpos/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting retail backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Commit tokens and event dedup share one store. Redis keeps the
	// reservation across restarts; without Redis the in-memory store
	// still protects a single process.
	var idempotencyStore shared.IdempotencyStore
	if redisStore, err := cache.NewRedisIdempotencyStore(cfg.Redis); err != nil {
		log.Warn("Redis unavailable, using in-memory idempotency store", zap.Error(err))
		idempotencyStore = cache.NewInMemoryIdempotencyStore()
	} else {
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
		idempotencyStore = redisStore
	}
	defer func() {
		_ = idempotencyStore.Close()
	}()

	// Repositories and gateways
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	exchangeRepo := persistence.NewGormExchangeRepository(db.DB)
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	purchaseRepo := persistence.NewGormPurchaseRepository(db.DB)
	supplierPaymentRepo := persistence.NewGormSupplierPaymentRepository(db.DB)
	stockGateway := persistence.NewGormStockGateway(db.DB)
	clientDirectory := persistence.NewGormClientDirectory(db.DB)

	accountLocks := persistence.NewAccountLocks()
	ledgerScope := persistence.NewGormLedgerTransactionScope(db.DB)
	saleScope := persistence.NewGormSaleTransactionScope(db.DB)
	supplierScope := persistence.NewGormSupplierTransactionScope(db.DB)

	cashAccountID := uuid.Nil
	if cfg.Commit.CashAccountID != "" {
		cashAccountID, err = uuid.Parse(cfg.Commit.CashAccountID)
		if err != nil {
			log.Fatal("Invalid commit.cash_account_id", zap.Error(err))
		}
	}

	// Application services
	postingService := ledgerapp.NewPostingService(accountRepo, movementRepo, ledgerScope, accountLocks)
	allocator := sale.NewAllocator(ledgerapp.NewActiveAccountChecker(accountRepo))
	checkoutService := saleapp.NewCheckoutService(
		saleRepo, stockGateway, clientDirectory, allocator, saleScope, idempotencyStore, cashAccountID)
	checkoutService.SetIdempotencyConfig(shared.IdempotencyConfig{
		TTL:     cfg.Commit.TokenTTL,
		Enabled: true,
	})
	exchangeService := saleapp.NewExchangeService(exchangeRepo, stockGateway, allocator, saleScope, cashAccountID)
	balanceService := supplierapp.NewBalanceService(purchaseRepo, supplierPaymentRepo, supplierScope)

	// Event bus with idempotent consumers
	bus := event.NewInMemoryEventBus(log)
	receiptHandler := notify.NewReceiptHandler(log).WithSink(notify.NewLoggingReceiptSink(log))
	auditHandler := notify.NewMovementAuditHandler(log)
	for _, h := range event.WrapHandlersWithIdempotency(
		[]shared.EventHandler{receiptHandler, auditHandler}, idempotencyStore, log) {
		bus.Subscribe(h, h.EventTypes()...)
	}
	checkoutService.SetEventPublisher(bus)
	exchangeService.SetEventPublisher(bus)
	postingService.SetEventPublisher(bus)
	balanceService.SetEventPublisher(bus)

	// HTTP surface
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORSWithConfig(corsConfig(cfg)),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	router.NewRouter(engine).
		Register(handler.NewSystemHandler(db, version)).
		Register(handler.NewSaleHandler(checkoutService)).
		Register(handler.NewExchangeHandler(exchangeService)).
		Register(handler.NewAccountHandler(postingService)).
		Register(handler.NewSupplierHandler(balanceService)).
		Setup()

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

func corsConfig(cfg *config.Config) middleware.CORSConfig {
	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	return corsCfg
}
