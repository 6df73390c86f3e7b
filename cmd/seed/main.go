package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"os"

	"github.com/brianvoe/gofakeit/v7"
	cartapp "github.com/stitchline/backend/internal/application/cart"
	orderapp "github.com/stitchline/backend/internal/application/order"
	"github.com/stitchline/backend/internal/infrastructure/config"
	"github.com/stitchline/backend/internal/infrastructure/event"
	"github.com/stitchline/backend/internal/infrastructure/logger"
	"github.com/stitchline/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

//go:embed catalog.yaml
var defaultCatalog []byte

func main() {
	var (
		catalogPath   string
		customers     int
		orders        int
		adminEmail    string
		adminPassword string
		seed          uint64
	)
	flag.StringVar(&catalogPath, "catalog", "", "YAML catalog to load (default: built-in demo catalog)")
	flag.IntVar(&customers, "customers", 10, "Number of fake customers to register")
	flag.IntVar(&orders, "orders", 2, "Orders to place per fake customer")
	flag.StringVar(&adminEmail, "admin-email", "admin@example.com", "Email of the admin account")
	flag.StringVar(&adminPassword, "admin-password", "admin123", "Password of the admin account")
	flag.Uint64Var(&seed, "seed", 0, "Faker seed, 0 for random")
	flag.Parse()

	log, err := logger.New(logger.DefaultConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	data := defaultCatalog
	if catalogPath != "" {
		if data, err = os.ReadFile(catalogPath); err != nil {
			log.Fatal("Failed to read catalog", zap.String("path", catalogPath), zap.Error(err))
		}
	}
	products, err := parseCatalog(data)
	if err != nil {
		log.Fatal("Invalid catalog", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	db, err := persistence.NewDatabase(&cfg.Database, nil)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	productRepo := persistence.NewGormProductRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	outbox := event.NewOutboxPublisher(event.NewOrderEventSerializer())
	txScope := persistence.NewGormTransactionScope(db.DB, outbox.Recorder)

	s := &Seeder{
		users:    persistence.NewGormUserRepository(db.DB),
		products: productRepo,
		carts:    cartapp.NewCartService(cartRepo, productRepo, cfg.Order.StorageTimeout, log),
		orders: orderapp.NewOrderService(orderRepo, orderRepo, txScope, orderapp.Config{
			StorageTimeout: cfg.Order.StorageTimeout,
		}, log),
		faker:  gofakeit.New(seed),
		logger: log,
	}

	ctx := context.Background()
	if err := s.SeedAdmin(ctx, adminEmail, adminPassword); err != nil {
		log.Fatal("Failed to seed admin", zap.Error(err))
	}
	added, err := s.SeedProducts(ctx, products)
	if err != nil {
		log.Fatal("Failed to seed products", zap.Error(err))
	}
	users, err := s.SeedCustomers(ctx, customers)
	if err != nil {
		log.Fatal("Failed to seed customers", zap.Error(err))
	}
	placed, err := s.SeedOrders(ctx, users, orders)
	if err != nil {
		log.Fatal("Failed to seed orders", zap.Error(err))
	}

	log.Info("Seeding complete",
		zap.Int("products", added),
		zap.Int("customers", len(users)),
		zap.Int("orders", placed),
	)
}
