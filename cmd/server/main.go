// Package main is the entry point for the posline API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"posline/internal/domain/catalogs/product"
	"posline/internal/domain/documents/openingstock"
	"posline/internal/domain/documents/salesinvoice"
	"posline/internal/infrastructure/cache"
	v1 "posline/internal/infrastructure/http/v1"
	"posline/internal/infrastructure/numerator"
	"posline/internal/infrastructure/storage/postgres"
	"posline/internal/infrastructure/storage/postgres/catalog_repo"
	"posline/internal/infrastructure/storage/postgres/document_repo"
	"posline/internal/infrastructure/storage/postgres/register_repo"
	"posline/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting posline server")

	// --- Database connection ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Numbering ---
	// Numbers are drawn outside business transactions (hooks run before tx),
	// so the generator talks straight to the pool.
	numeratorService := numerator.New(pool.Pool)

	// --- Repositories ---
	productRepo := catalog_repo.NewProductRepo(txManager)
	stockRepo := register_repo.NewStockRepo(txManager)
	invoiceRepo := document_repo.NewSalesInvoiceRepo(txManager)
	openingRepo := document_repo.NewOpeningStockRepo(txManager)

	// --- Stock cache ---
	stockCache := cache.NewStockCache(stockRepo, getEnvDuration("STOCK_CACHE_TTL", cache.DefaultStockTTL))

	// --- Audit ---
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- Services ---
	productService := product.NewService(productRepo, txManager)
	invoiceService := salesinvoice.NewService(invoiceRepo, numeratorService, txManager, stockRepo, stockCache)
	openingService := openingstock.NewService(openingRepo, numeratorService, txManager, stockCache)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:                pool,
		Logger:              log,
		ProductService:      productService,
		SalesInvoiceService: invoiceService,
		OpeningStockService: openingService,
		StockLookup:         stockRepo,
		BatchRepo:           stockRepo,
		Audit:               auditService,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
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
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
