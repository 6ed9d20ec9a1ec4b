// Package v1 provides HTTP API version 1.
package v1

import (
	"context"

	"github.com/gin-gonic/gin"

	"posline/internal/domain"
	"posline/internal/domain/batch"
	"posline/internal/domain/catalogs/product"
	"posline/internal/domain/documents/openingstock"
	"posline/internal/domain/documents/salesinvoice"
	"posline/internal/domain/stock"
	"posline/internal/infrastructure/http/v1/handlers"
	"posline/internal/infrastructure/http/v1/middleware"
	"posline/internal/infrastructure/storage/postgres"
	"posline/pkg/logger"
)

// RouterConfig holds the wired services the router exposes.
type RouterConfig struct {
	// Pool is the database connection (for health checks)
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	ProductService      *product.Service
	SalesInvoiceService *salesinvoice.Service
	OpeningStockService *openingstock.Service

	// StockLookup is the live stock repository (not the session cache)
	StockLookup stock.Lookup

	// BatchRepo lists stock batches per product
	BatchRepo batch.Repository

	// Audit records document mutations; optional
	Audit *postgres.AuditService
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Operator())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	registerAuditHooks(cfg)

	// API v1
	api := router.Group("/api/v1")
	baseHandler := handlers.NewBaseHandler()

	// --- PRODUCTS ---
	{
		handler := handlers.NewProductHandler(baseHandler, cfg.ProductService)
		group := api.Group("/catalog/products")
		group.GET("/lookup", handler.Lookup)
		RegisterCatalogRoutes(group, handler)
	}

	// --- STOCK ---
	{
		handler := handlers.NewStockHandler(baseHandler, cfg.StockLookup, cfg.BatchRepo)
		group := api.Group("/stock")
		group.GET("/availability/:productId", handler.GetAvailability)
		group.GET("/batches/:productId", handler.GetBatches)
	}

	// --- DOCUMENTS ---
	{
		handler := handlers.NewSalesInvoiceHandler(baseHandler, cfg.SalesInvoiceService)
		RegisterDocumentRoutes(api.Group("/document/sales-invoice"), handler)
	}
	{
		handler := handlers.NewOpeningStockHandler(baseHandler, cfg.OpeningStockService)
		RegisterDocumentRoutes(api.Group("/document/opening-stock"), handler)
	}

	// --- AUDIT ---
	if cfg.Audit != nil {
		handler := handlers.NewAuditHandler(baseHandler, cfg.Audit)
		api.GET("/audit/:entityType/:id", handler.GetHistory)
	}

	return router
}

// registerAuditHooks wires document lifecycle events into the audit log.
func registerAuditHooks(cfg RouterConfig) {
	if cfg.Audit == nil {
		return
	}
	audit := cfg.Audit

	if svc := cfg.SalesInvoiceService; svc != nil {
		svc.Hooks().On(domain.AfterCreate, func(ctx context.Context, doc *salesinvoice.SalesInvoice) error {
			return audit.LogChange(ctx, "sales_invoice", doc.ID, postgres.AuditActionCreate, map[string]any{
				"number":      doc.Number,
				"grand_total": doc.GrandTotal,
				"lines":       len(doc.Lines),
			})
		})
		svc.Hooks().On(domain.AfterUpdate, func(ctx context.Context, doc *salesinvoice.SalesInvoice) error {
			return audit.LogChange(ctx, "sales_invoice", doc.ID, postgres.AuditActionUpdate, map[string]any{
				"number":      doc.Number,
				"version":     doc.Version,
				"grand_total": doc.GrandTotal,
				"lines":       len(doc.Lines),
			})
		})
		svc.Hooks().On(domain.AfterDelete, func(ctx context.Context, doc *salesinvoice.SalesInvoice) error {
			return audit.LogChange(ctx, "sales_invoice", doc.ID, postgres.AuditActionDelete, map[string]any{
				"number": doc.Number,
			})
		})
	}

	if svc := cfg.OpeningStockService; svc != nil {
		svc.Hooks().On(domain.AfterCreate, func(ctx context.Context, doc *openingstock.OpeningStock) error {
			return audit.LogChange(ctx, "opening_stock", doc.ID, postgres.AuditActionCreate, map[string]any{
				"number":         doc.Number,
				"total_quantity": doc.TotalQuantity,
				"lines":          len(doc.Lines),
			})
		})
		svc.Hooks().On(domain.AfterUpdate, func(ctx context.Context, doc *openingstock.OpeningStock) error {
			return audit.LogChange(ctx, "opening_stock", doc.ID, postgres.AuditActionUpdate, map[string]any{
				"number":         doc.Number,
				"version":        doc.Version,
				"total_quantity": doc.TotalQuantity,
				"lines":          len(doc.Lines),
			})
		})
		svc.Hooks().On(domain.AfterDelete, func(ctx context.Context, doc *openingstock.OpeningStock) error {
			return audit.LogChange(ctx, "opening_stock", doc.ID, postgres.AuditActionDelete, map[string]any{
				"number": doc.Number,
			})
		})
	}
}
