package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"shoppos/internal/domain/auth"
	"shoppos/internal/domain/catalog"
	"shoppos/internal/domain/customer"
	"shoppos/internal/domain/reports"
	"shoppos/internal/infrastructure/http/v1/handlers"
	"shoppos/internal/infrastructure/http/v1/middleware"
	"shoppos/pkg/logger"
)

// RouterConfig holds everything the router wires into handlers.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// ReleaseMode switches gin to release mode
	ReleaseMode bool

	JWTValidator middleware.JWTValidator
	AuthService  *auth.Service

	Products   *catalog.ProductService
	Categories *catalog.CategoryService
	Customers  *customer.Service
	Bills      handlers.BillService
	Stock      handlers.StockService
	Reports    *reports.Service
	Receipts   handlers.ReceiptRenderer
	Audit      handlers.AuditReader

	Health *handlers.HealthHandler

	// Idempotency is nil when X-Idempotency-Key handling is disabled
	Idempotency middleware.IdempotencyStore
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	if err := middleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}
	if cfg.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	if cfg.Health != nil {
		health := router.Group("/health")
		health.GET("/live", cfg.Health.Live)
		health.GET("/ready", cfg.Health.Ready)
		health.GET("/info", cfg.Health.Info)
	}

	base := handlers.NewBaseHandler()
	v1 := router.Group("/api/v1")

	registerAuthRoutes(v1, base, cfg)

	protected := v1.Group("")
	protected.Use(middleware.Auth(cfg.JWTValidator))
	if cfg.Idempotency != nil {
		protected.Use(middleware.Idempotency(cfg.Idempotency))
	}

	registerUserRoutes(protected, base, cfg)
	registerCatalogRoutes(protected, base, cfg)
	registerBillRoutes(protected, base, cfg)
	registerStockRoutes(protected, base, cfg)
	registerReportRoutes(protected, base, cfg)

	return router, nil
}

func registerAuthRoutes(v1 *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}
	h := handlers.NewAuthHandler(base, cfg.AuthService)

	group := v1.Group("/auth")
	// Register is open while no user exists; afterwards the service requires an admin.
	group.POST("/register", middleware.OptionalAuth(cfg.JWTValidator), h.Register)
	group.POST("/login", h.Login)
	group.GET("/me", middleware.Auth(cfg.JWTValidator), h.Me)
}

func registerUserRoutes(protected *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}
	h := handlers.NewAuthHandler(base, cfg.AuthService)

	users := protected.Group("/users", middleware.RequirePermission(auth.PermUserManage))
	users.GET("", h.ListUsers)
	users.PATCH("/:id/status", h.SetStatus)
}

func registerCatalogRoutes(protected *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.Categories != nil {
		RegisterCatalogRoutes(protected.Group("/categories"),
			handlers.NewCategoryHandler(base, cfg.Categories), auth.PermCatalogRead, auth.PermCatalogWrite)
	}
	if cfg.Products != nil {
		h := handlers.NewProductHandler(base, cfg.Products)
		group := protected.Group("/products")
		group.GET("/barcode/:barcode", middleware.RequirePermission(auth.PermCatalogRead), h.GetByBarcode)
		RegisterCatalogRoutes(group, h, auth.PermCatalogRead, auth.PermCatalogWrite)
	}
	if cfg.Customers != nil {
		RegisterCatalogRoutes(protected.Group("/customers"),
			handlers.NewCustomerHandler(base, cfg.Customers), auth.PermCustomerRead, auth.PermCustomerWrite)
	}
}

func registerBillRoutes(protected *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.Bills == nil {
		return
	}
	h := handlers.NewBillHandler(base, cfg.Bills, cfg.Receipts)

	bills := protected.Group("/bills")
	bills.GET("", middleware.RequirePermission(auth.PermBillRead), h.List)
	bills.POST("", middleware.RequirePermission(auth.PermBillCreate), h.Create)
	bills.GET("/summary/today", middleware.RequirePermission(auth.PermBillRead, auth.PermReportRead), h.TodaySummary)
	bills.GET("/:id", middleware.RequirePermission(auth.PermBillRead), h.Get)
	if cfg.Receipts != nil {
		bills.GET("/:id/receipt", middleware.RequirePermission(auth.PermBillRead), h.Receipt)
	}
	bills.DELETE("/:id", middleware.RequirePermission(auth.PermBillDelete), h.Delete)
	if cfg.Audit != nil {
		history := handlers.NewAuditHandler(base, cfg.Audit)
		bills.GET("/:id/history", middleware.RequirePermission(auth.PermBillDelete), history.BillHistory)
	}
}

func registerStockRoutes(protected *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.Stock == nil {
		return
	}
	h := handlers.NewStockHandler(base, cfg.Stock)

	movements := protected.Group("/stock/movements")
	movements.GET("", middleware.RequirePermission(auth.PermStockRead), h.ListMovements)
	movements.POST("", middleware.RequirePermission(auth.PermStockAdjust), h.Adjust)
}

func registerReportRoutes(protected *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.Reports == nil {
		return
	}
	h := handlers.NewReportsHandler(base, cfg.Reports)
	perm := middleware.RequirePermission(auth.PermReportRead)

	protected.GET("/reports/sales", perm, h.Sales)
	protected.GET("/reports/low-stock", perm, h.LowStock)
	protected.GET("/dashboard/stats", perm, h.Dashboard)
}
