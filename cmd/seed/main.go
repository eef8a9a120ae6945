// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"shoppos/internal/config"
	"shoppos/internal/core/apperror"
	appctx "shoppos/internal/core/context"
	"shoppos/internal/core/id"
	corenumerator "shoppos/internal/core/numerator"
	"shoppos/internal/domain/auth"
	"shoppos/internal/domain/catalog"
	"shoppos/internal/domain/stock"
	"shoppos/internal/infrastructure/numerator"
	"shoppos/internal/infrastructure/storage/postgres"
	"shoppos/internal/infrastructure/storage/postgres/auth_repo"
	"shoppos/internal/infrastructure/storage/postgres/catalog_repo"
	"shoppos/internal/infrastructure/storage/postgres/register_repo"
	"shoppos/pkg/logger"
)

type productSeed struct {
	name     string
	category string
	barcode  string
	price    string
	cost     string
	stock    int
	unit     string
}

var (
	defaultCategories = []string{"Groceries", "Beverages", "Snacks", "Household", "Personal Care"}

	sampleProducts = []productSeed{
		{"Basmati Rice 1kg", "Groceries", "8901000000011", "120.00", "95.00", 50, "kg"},
		{"Toor Dal 1kg", "Groceries", "8901000000028", "150.00", "118.00", 40, "kg"},
		{"Sunflower Oil 1L", "Groceries", "8901000000035", "180.00", "150.00", 30, "ltr"},
		{"Mineral Water 1L", "Beverages", "8901000000042", "20.00", "12.00", 100, "piece"},
		{"Green Tea 100g", "Beverages", "8901000000059", "140.00", "100.00", 25, "piece"},
		{"Potato Chips 50g", "Snacks", "8901000000066", "20.00", "14.00", 80, "piece"},
		{"Glucose Biscuits", "Snacks", "8901000000073", "10.00", "7.00", 120, "piece"},
		{"Dish Soap 500ml", "Household", "8901000000080", "95.00", "70.00", 20, "piece"},
		{"Toothpaste 150g", "Personal Care", "8901000000097", "85.00", "62.00", 35, "piece"},
	}
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
		Service:     "shoppos-seed",
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := appctx.StartTrace(context.Background(), appctx.OriginSeed)

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := postgres.Migrate(ctx, pool.Unwrap()); err != nil {
		log.Fatalw("failed to apply migrations", "error", err)
	}

	txManager := postgres.NewTxManager(pool)
	userRepo := auth_repo.NewUserRepo(txManager)
	authService := auth.NewService(userRepo, txManager, auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret)), auth.DefaultServiceConfig())
	stockService := stock.NewService(register_repo.NewStockRepo(txManager), txManager, nil)
	categories := catalog.NewCategoryService(catalog_repo.NewCategoryRepo(txManager), txManager)
	products := catalog.NewProductService(catalog_repo.NewProductRepo(txManager), txManager, stockService)

	admin, err := seedAdminUser(ctx, authService, userRepo, log)
	if err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}
	// Seeded rows are attributed to the admin.
	ctx = appctx.WithUser(ctx, &appctx.UserContext{
		UserID:  admin.ID.String(),
		Email:   admin.Email,
		Name:    admin.Name,
		Role:    string(admin.Role),
		IsAdmin: true,
	})

	categoryIDs, err := seedCategories(ctx, categories, log)
	if err != nil {
		log.Fatalw("failed to seed categories", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") != "false" {
		if err := seedProducts(ctx, products, categoryIDs, log); err != nil {
			log.Fatalw("failed to seed products", "error", err)
		}
	}

	numbering := corenumerator.DefaultConfig(cfg.BillPrefix)
	if cfg.BillNumberWidth > 0 {
		numbering.PadWidth = cfg.BillNumberWidth
	}
	if err := alignBillCounter(ctx, pool, numerator.New(txManager), numbering, log); err != nil {
		log.Fatalw("failed to align bill counter", "error", err)
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, svc *auth.Service, users *auth_repo.UserRepo, log *logger.Logger) (*auth.User, error) {
	adminEmail := strings.ToLower(getEnv("ADMIN_EMAIL", "admin@shoppos.local"))
	adminPassword := getEnv("ADMIN_PASSWORD", "Admin123!")

	existing, err := users.GetByEmail(ctx, adminEmail)
	if err == nil {
		log.Infow("admin user already exists", "email", adminEmail, "user_id", existing.ID)
		return existing, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, fmt.Errorf("check admin exists: %w", err)
	}

	// The first registered user becomes admin. Later registrations need an
	// admin caller.
	regCtx := appctx.AsSystem(ctx)
	user, err := svc.Register(regCtx, auth.RegisterRequest{
		Name:     "Shop Admin",
		Email:    adminEmail,
		Password: adminPassword,
		Role:     string(auth.RoleAdmin),
	})
	if err != nil {
		return nil, err
	}

	log.Infow("admin user created", "email", adminEmail, "user_id", user.ID)
	return user, nil
}

func seedCategories(ctx context.Context, svc *catalog.CategoryService, log *logger.Logger) (map[string]id.ID, error) {
	existing, err := svc.List(ctx, true)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]id.ID, len(existing))
	for _, c := range existing {
		ids[c.Name] = c.ID
	}

	for _, name := range defaultCategories {
		if _, ok := ids[name]; ok {
			continue
		}
		c, err := svc.CreateCategory(ctx, name, nil)
		if err != nil {
			return nil, fmt.Errorf("create category %q: %w", name, err)
		}
		ids[name] = c.ID
		log.Infow("category created", "name", name)
	}
	return ids, nil
}

func seedProducts(ctx context.Context, svc *catalog.ProductService, categoryIDs map[string]id.ID, log *logger.Logger) error {
	created := 0
	for _, s := range sampleProducts {
		if _, err := svc.GetByBarcode(ctx, s.barcode); err == nil {
			continue
		} else if !apperror.IsNotFound(err) {
			return fmt.Errorf("lookup %s: %w", s.barcode, err)
		}

		barcode := s.barcode
		in := catalog.ProductInput{
			Name:          s.name,
			Barcode:       &barcode,
			Price:         decimal.RequireFromString(s.price),
			CostPrice:     decimal.RequireFromString(s.cost),
			StockQuantity: s.stock,
			Unit:          s.unit,
		}
		if categoryID, ok := categoryIDs[s.category]; ok {
			in.CategoryID = &categoryID
		}

		if _, err := svc.CreateProduct(ctx, in); err != nil {
			return fmt.Errorf("create product %q: %w", s.name, err)
		}
		created++
	}

	log.Infow("sample products seeded", "created", created, "total", len(sampleProducts))
	return nil
}

// alignBillCounter moves the counter past the highest bill number already
// stored, so numbering continues after a restore or import.
func alignBillCounter(ctx context.Context, pool *postgres.Pool, gen corenumerator.Generator, cfg corenumerator.Config, log *logger.Logger) error {
	rows, err := pool.Query(ctx, `SELECT bill_number FROM bills WHERE bill_number LIKE $1`, cfg.Prefix+"-%")
	if err != nil {
		return fmt.Errorf("read bill numbers: %w", err)
	}
	defer rows.Close()

	var highest int64
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return err
		}
		if n := corenumerator.ParseNumber(number); n > highest {
			highest = n
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if highest == 0 {
		return nil
	}
	if err := gen.SetNextNumber(ctx, cfg, highest); err != nil {
		return err
	}
	log.Infow("bill counter aligned", "prefix", cfg.Prefix, "last_number", highest)
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
