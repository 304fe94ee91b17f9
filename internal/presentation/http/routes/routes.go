package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/httech/pos-api/internal/config"
	"github.com/httech/pos-api/internal/presentation/http/handler"
	"github.com/httech/pos-api/internal/presentation/http/middleware"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Product *handler.ProductHandler
	Sale    *handler.SaleHandler
	Report  *handler.ReportHandler
	Printer *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg              *config.Config
	IdempotencyStore *middleware.IdempotencyStore
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	rateLimiter := middleware.NewClientRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
		BurstSize:         deps.Cfg.RateLimit.Requests,
		CleanupInterval:   5 * time.Minute,
		EntryTTL:          10 * time.Minute,
	})
	router.Use(rateLimiter.Middleware())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	registerProductRoutes(router, h)
	registerSaleRoutes(router, h, deps)
	registerPrinterRoutes(router, h)

	return router
}

func registerProductRoutes(router *gin.Engine, h *Handlers) {
	products := router.Group("/products")
	{
		products.GET("", h.Product.List)
		products.GET("/search", h.Product.Search)
		products.POST("/import", h.Product.Import)
	}
}

func registerSaleRoutes(router *gin.Engine, h *Handlers, deps *Deps) {
	sales := router.Group("/sales")
	{
		sales.GET("", h.Sale.List)
		// Checkout uses idempotency middleware to prevent duplicate sales on
		// client retries
		sales.POST("", middleware.Idempotency(deps.IdempotencyStore), h.Sale.Create)
		sales.GET("/summary", h.Report.Summary)
		sales.GET("/export", h.Report.Export)
		sales.GET("/:invoice", h.Sale.GetByInvoice)
	}
}

func registerPrinterRoutes(router *gin.Engine, h *Handlers) {
	printerGroup := router.Group("/printer")
	{
		printerGroup.GET("/status", h.Printer.GetStatus)
		printerGroup.POST("/test", h.Printer.TestPrint)
	}
}
