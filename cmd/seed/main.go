// seed replaces the inventory tables with the demo catalogue.
// Existing purchase orders are deleted.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"os"

	"souk-inventory/internal/db"
	"souk-inventory/internal/logger"
	"souk-inventory/internal/seed"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.InitLogger(logger.LogConfig{
		Level:       os.Getenv("LOG_LEVEL"),
		Environment: os.Getenv("APP_ENV"),
		ServiceName: "souk-inventory-seed",
	})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal("connect", zap.Error(err))
	}
	defer pool.Close()

	log.Info("restoring demo warehouses, suppliers and products")
	if err := seed.Postgres(ctx, pool); err != nil {
		log.Fatal("seed", zap.Error(err))
	}
	log.Info("seed complete",
		zap.Int("warehouses", len(seed.Warehouses)),
		zap.Int("suppliers", len(seed.Suppliers)),
		zap.Int("products", len(seed.Products)),
	)
}
