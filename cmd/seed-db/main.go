// Command seed-db prepares a fresh installation: it runs migrations, creates
// the initial back-office user, and loads the product and service catalogs
// from JSON files.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/sharmuse/ideal-collor-os/internal/domain/auth"
	"github.com/sharmuse/ideal-collor-os/internal/domain/catalog"
	"github.com/sharmuse/ideal-collor-os/internal/repository"
)

type productJSON struct {
	Type           string          `json:"type"`
	Name           string          `json:"name"`
	ColorCode      string          `json:"color_code"`
	Unit           string          `json:"unit"`
	AvgConsumption decimal.Decimal `json:"avg_consumption"`
	Cost           decimal.Decimal `json:"cost_unit"`
	Price          decimal.Decimal `json:"price_unit"`
	StockQty       decimal.Decimal `json:"stock_qty"`
}

type serviceJSON struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Unit          string          `json:"unit"`
	LaborPrice    decimal.Decimal `json:"labor_price_unit"`
	EstimatedTime string          `json:"estimated_time"`
}

func main() {
	var (
		databaseURL   string
		productsFile  string
		servicesFile  string
		adminEmail    string
		adminPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&servicesFile, "services-file", "db/seed/services.json", "path to services JSON file")
	flag.StringVar(&adminEmail, "admin-email", "", "initial user email (or COLLOR_SEED_EMAIL env)")
	flag.StringVar(&adminPassword, "admin-password", "", "initial user password (or COLLOR_SEED_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminEmail == "" {
		adminEmail = os.Getenv("COLLOR_SEED_EMAIL")
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("COLLOR_SEED_PASSWORD")
	}
	if adminEmail == "" || adminPassword == "" {
		slog.Error("admin credentials are required: set --admin-email/--admin-password or COLLOR_SEED_EMAIL/COLLOR_SEED_PASSWORD")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, servicesFile, adminEmail, adminPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, servicesFile, adminEmail, adminPassword string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedAdmin(ctx, repository.NewUserRepository(pool), adminEmail, adminPassword); err != nil {
		return errors.Wrap(err, "seed admin user")
	}
	if err := seedProducts(ctx, repository.NewProductRepository(pool), productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedServices(ctx, repository.NewServiceRepository(pool), servicesFile); err != nil {
		return errors.Wrap(err, "seed services")
	}

	return nil
}

func seedAdmin(ctx context.Context, users auth.Repository, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	u := &auth.User{Email: email, PasswordHash: hash}
	if err := users.Create(ctx, u); err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			slog.Info("admin user already exists", slog.String("email", email))
			return nil
		}
		return err
	}

	slog.Info("admin user created", slog.String("email", email))
	return nil
}

func seedProducts(ctx context.Context, products catalog.ProductRepository, path string) error {
	slog.Info("reading products file", slog.String("path", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var entries []productJSON
	if err := json.Unmarshal(data, &entries); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	for _, e := range entries {
		p := &catalog.Product{
			Type:           e.Type,
			Name:           e.Name,
			ColorCode:      e.ColorCode,
			Unit:           e.Unit,
			AvgConsumption: e.AvgConsumption,
			Cost:           e.Cost,
			Price:          e.Price,
			StockQty:       e.StockQty,
		}
		if err := products.Upsert(ctx, p); err != nil {
			return err
		}
	}

	slog.Info("products seeded", slog.Int("count", len(entries)))
	return nil
}

func seedServices(ctx context.Context, services catalog.ServiceRepository, path string) error {
	slog.Info("reading services file", slog.String("path", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read services file")
	}

	var entries []serviceJSON
	if err := json.Unmarshal(data, &entries); err != nil {
		return errors.Wrap(err, "parse services JSON")
	}

	for _, e := range entries {
		s := &catalog.Service{
			Name:          e.Name,
			Description:   e.Description,
			Unit:          e.Unit,
			LaborPrice:    e.LaborPrice,
			EstimatedTime: e.EstimatedTime,
		}
		if err := services.Upsert(ctx, s); err != nil {
			return err
		}
	}

	slog.Info("services seeded", slog.Int("count", len(entries)))
	return nil
}
