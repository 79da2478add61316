package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"pdv/m/internal/api"
	"pdv/m/internal/apperr"
	"pdv/m/internal/auth"
	"pdv/m/internal/catalog"
	"pdv/m/internal/config"
	"pdv/m/internal/database"
	"pdv/m/internal/logger"
	"pdv/m/internal/migrations"
	"pdv/m/internal/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		logger.Error("failed to connect to database", "driver", cfg.DatabaseDriver, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	if cfg.SeedProductsCSV != "" {
		seedProducts(db, cfg)
	}

	handler := api.New(db, cfg)
	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("PDV server starting", "port", cfg.HTTPPort, "driver", cfg.DatabaseDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	logger.Info("server stopped")
}

// seedProducts loads the product CSV into the owner's catalog. The owner has
// to have registered first; until then seeding is skipped.
func seedProducts(db *sqlx.DB, cfg config.Config) {
	ctx := context.Background()
	if cfg.OwnerEmail == "" {
		logger.Warn("SEED_PRODUCTS_CSV set without OWNER_EMAIL, skipping product seed")
		return
	}
	owner, err := auth.NewUsers(db, cfg.OwnerEmail).FindByEmail(ctx, cfg.OwnerEmail)
	if apperr.IsNotFound(err) {
		logger.Warn("owner account not registered yet, skipping product seed", "email", cfg.OwnerEmail)
		return
	}
	if err != nil {
		logger.Error("unable to resolve owner for product seed", "error", err)
		return
	}
	if _, err := seed.LoadProducts(ctx, catalog.NewStore(db), owner.ID, cfg.SeedProductsCSV); err != nil {
		logger.Error("unable to seed products", "path", cfg.SeedProductsCSV, "error", err)
	}
}
