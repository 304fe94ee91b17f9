package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/httech/pos-api/internal/application/service"
	"github.com/httech/pos-api/internal/config"
	"github.com/httech/pos-api/internal/domain/entity"
	"github.com/httech/pos-api/internal/infrastructure/catalog"
	"github.com/httech/pos-api/internal/infrastructure/ledger"
	"github.com/httech/pos-api/internal/presentation/http/handler"
	"github.com/httech/pos-api/internal/presentation/http/middleware"
	"github.com/httech/pos-api/internal/presentation/http/routes"
	"github.com/httech/pos-api/pkg/printer"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize the sales ledger
	salesLedger := ledger.NewCSVLedger(
		cfg.Storage.SalesPath(),
		cfg.Storage.SaleItemsPath(),
		cfg.Storage.ExportsDir(),
		cfg.Sales.LockTimeout,
	)
	if err := salesLedger.Initialize(); err != nil {
		log.Fatalf("Failed to initialize sales ledger: %v", err)
	}

	// Initialize the product catalog
	productCatalog := catalog.NewCSVCatalog(cfg.Storage.ProductsPath())

	// Initialize thermal printer
	thermalPrinter, err := printer.NewPrinterFromConfig(
		cfg.Printer.Type,
		cfg.Printer.USBPath,
		cfg.Printer.Address,
	)
	if err != nil {
		log.Printf("Warning: Failed to initialize printer: %v", err)
		thermalPrinter = printer.NewNullPrinter()
	}

	// Initialize services
	receiptService := service.NewReceiptService(
		cfg.Storage.ReceiptsDir(),
		thermalPrinter,
		cfg.Printer.Type,
		service.ReceiptOptions{
			Header: entity.ReceiptHeader{
				StoreName: cfg.Store.Name,
				Tagline:   cfg.Store.Tagline,
				Address:   cfg.Store.Address,
			},
			Width:   cfg.Sales.ReceiptWidth,
			TaxRate: cfg.Sales.TaxRate,
		},
	)
	saleService := service.NewSaleService(salesLedger, receiptService, cfg.Sales.TaxRate)
	productService := service.NewProductService(productCatalog)
	reportService := service.NewReportService(salesLedger)

	// Initialize handlers
	handlers := &routes.Handlers{
		Product: handler.NewProductHandler(productService),
		Sale:    handler.NewSaleHandler(saleService),
		Report:  handler.NewReportHandler(reportService),
		Printer: handler.NewPrinterHandler(receiptService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		Cfg:              cfg,
		IdempotencyStore: middleware.NewIdempotencyStore(cfg.Sales.IdempotencyTTL),
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
	log.Printf("Environment: %s", cfg.App.Env)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
