// Package main is the entry point for the shoppos API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"shoppos/internal/config"
	corenumerator "shoppos/internal/core/numerator"
	"shoppos/internal/domain"
	"shoppos/internal/domain/auth"
	"shoppos/internal/domain/billing"
	"shoppos/internal/domain/catalog"
	"shoppos/internal/domain/customer"
	"shoppos/internal/domain/reports"
	"shoppos/internal/domain/stock"
	"shoppos/internal/infrastructure/cache"
	v1 "shoppos/internal/infrastructure/http/v1"
	"shoppos/internal/infrastructure/http/v1/handlers"
	"shoppos/internal/infrastructure/http/v1/middleware"
	"shoppos/internal/infrastructure/numerator"
	"shoppos/internal/infrastructure/receipt"
	"shoppos/internal/infrastructure/storage/postgres"
	"shoppos/internal/infrastructure/storage/postgres/auth_repo"
	"shoppos/internal/infrastructure/storage/postgres/billing_repo"
	"shoppos/internal/infrastructure/storage/postgres/catalog_repo"
	"shoppos/internal/infrastructure/storage/postgres/register_repo"
	"shoppos/internal/infrastructure/storage/postgres/report_repo"
	"shoppos/pkg/logger"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: !cfg.IsProduction(),
		Service:     "shoppos-server",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	log.Infow("starting shoppos server", "version", version, "env", cfg.Env)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.MinConns = cfg.DBMinConns
	poolCfg.AcquireTimeout = cfg.DBAcquireTimeout
	poolCfg.StatementTimeout = cfg.TxStatementTimeout
	poolCfg.ApplicationName = "shoppos-server"
	poolCfg.TimeZone = cfg.DBTimeZone

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Infow("database connection established", "max_conns", poolCfg.MaxConns)

	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, pool.Unwrap()); err != nil {
			log.Fatalw("failed to apply migrations", "error", err)
		}
	}

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	productRepo := catalog_repo.NewProductRepo(txManager)
	categoryRepo := catalog_repo.NewCategoryRepo(txManager)
	customerRepo := catalog_repo.NewCustomerRepo(txManager)
	stockRepo := register_repo.NewStockRepo(txManager)
	billRepo := billing_repo.NewBillRepo(txManager)
	userRepo := auth_repo.NewUserRepo(txManager)
	reportRepo := report_repo.NewReportRepo(txManager)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to create audit service", "error", err)
	}
	outbox := postgres.NewOutboxPublisher(txManager)

	// --- Report cache ---
	var reportCache reports.Cache = reports.NopCache{}
	health := handlers.NewHealthHandler(pool.Unwrap(), version)
	if cfg.RedisURL != "" {
		rdb, err := cache.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			// Reports still work without the cache.
			log.Warnw("redis unavailable, report cache disabled", "error", err)
		} else {
			defer func() { _ = rdb.Close() }()
			reportCache = cache.NewReportCache(rdb)
			health.AddCheck("redis", handlers.PingFunc(func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			}))
		}
	}
	reportService := reports.NewService(reportRepo, reportCache, cfg.ReportCacheTTL)

	// --- Domain services ---
	stockService := stock.NewService(stockRepo, txManager, outbox)
	productService := catalog.NewProductService(productRepo, txManager, stockService)
	categoryService := catalog.NewCategoryService(categoryRepo, txManager)
	customerService := customer.NewService(customerRepo, txManager)

	policy, err := billing.NewDiscountPolicy(cfg.DiscountPolicy)
	if err != nil {
		log.Fatalw("invalid DISCOUNT_POLICY", "error", err)
	}

	numbering := corenumerator.DefaultConfig(cfg.BillPrefix)
	if cfg.BillNumberWidth > 0 {
		numbering.PadWidth = cfg.BillNumberWidth
	}

	billService := billing.NewService(billing.ServiceConfig{
		Bills:     billRepo,
		Stock:     stockRepo,
		Customers: customerRepo,
		TxManager: txManager,
		Numerator: numerator.New(txManager),
		Numbering: numbering,
		TaxRate:   cfg.TaxRateDecimal(),
		Policy:    policy,
		Events:    outbox,
		Audit:     auditService,
	})
	invalidateReports := func(ctx context.Context, _ *billing.Bill) error {
		if err := reportService.Invalidate(ctx); err != nil {
			logger.Warn(ctx, "invalidate report cache", "error", err)
		}
		return nil
	}
	billService.Hooks().On(domain.AfterCreate, invalidateReports)
	billService.Hooks().On(domain.AfterDelete, invalidateReports)

	// Low-stock and dashboard figures read product reorder levels and prices.
	invalidateOnProduct := func(ctx context.Context, _ *catalog.Product) error {
		return reportService.Invalidate(ctx)
	}
	productService.Hooks().On(domain.AfterUpdate, invalidateOnProduct)
	productService.Hooks().On(domain.AfterDelete, invalidateOnProduct)

	jwtConfig := auth.DefaultJWTConfig(cfg.JWTSecret)
	if cfg.JWTTTL > 0 {
		jwtConfig.AccessTokenTTL = cfg.JWTTTL
	}
	jwtService := auth.NewJWTService(jwtConfig)
	authService := auth.NewService(userRepo, txManager, jwtService, auth.DefaultServiceConfig())

	var idempotency middleware.IdempotencyStore
	if cfg.IdempotencyEnabled {
		idempotency = postgres.NewIdempotencyStore(txManager, cfg.IdempotencyTTL)
	}

	// --- Router ---
	router, err := v1.NewRouter(v1.RouterConfig{
		Logger:       log,
		ReleaseMode:  cfg.IsProduction(),
		JWTValidator: jwtService,
		AuthService:  authService,
		Products:     productService,
		Categories:   categoryService,
		Customers:    customerService,
		Bills:        billService,
		Stock:        stockService,
		Reports:      reportService,
		Receipts:     receipt.NewRenderer(cfg.ShopName),
		Audit:        auditService,
		Health:       health,
		Idempotency:  idempotency,
	})
	if err != nil {
		log.Fatalw("failed to build router", "error", err)
	}

	// --- HTTP Server ---
	port := strconv.Itoa(cfg.Port)
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			pool.LogStats(ctx)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
