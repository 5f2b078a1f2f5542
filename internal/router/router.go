package router

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/Renatopaccha/Dental-Gest/internal/config"
	"github.com/Renatopaccha/Dental-Gest/internal/handler"
	"github.com/Renatopaccha/Dental-Gest/internal/infra"
	"github.com/Renatopaccha/Dental-Gest/internal/middleware"
	"github.com/Renatopaccha/Dental-Gest/internal/repository"
	"github.com/Renatopaccha/Dental-Gest/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services groups the business services shared by the HTTP layer and the
// background jobs started in cmd/server.
type Services struct {
	Categories service.CategoryService
	Brands     service.BrandService
	Products   service.ProductService
	Inventory  service.InventoryService
	Sales      service.SaleService
	Receipts   service.ReceiptService
	Expenses   service.ExpenseService
	Dashboard  service.DashboardService
}

// NewServices wires repositories and services.
// Dependency graph: Service ← Repository ← DB/Redis
func NewServices(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher service.JobDispatcher) (*Services, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	categoryRepo := repository.NewCategoryRepository(db)
	brandRepo := repository.NewBrandRepository(db)
	productRepo := repository.NewProductRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	cache := infra.NewProductCache(rdb, cfg.CatalogCacheTTL)
	inventory := service.NewInventoryService(productRepo, movementRepo, cache)
	sales := service.NewSaleService(saleRepo, productRepo, inventory, cache, loc)

	return &Services{
		Categories: service.NewCategoryService(categoryRepo, productRepo, cache),
		Brands:     service.NewBrandService(brandRepo, productRepo, cache, cfg.MediaURL),
		Products:   service.NewProductService(productRepo, categoryRepo, brandRepo, cache, cfg.MediaURL, cfg.PageSize),
		Inventory:  inventory,
		Sales:      sales,
		Receipts: service.NewReceiptService(sales, infra.NewReceiptPDF(cfg.BusinessName), dispatcher,
			filepath.Join(cfg.MediaRoot, "receipts", "sales"), cfg.BusinessName),
		Expenses:  service.NewExpenseService(expenseRepo, cfg.MediaURL),
		Dashboard: service.NewDashboardService(saleRepo, expenseRepo, inventory, loc),
	}, nil
}

// New returns a configured Gin engine. ctx bounds the rate limiter's purge loop.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client, smtpCB *infra.CircuitBreaker, svcs *Services, media *infra.MediaStore) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = 8 << 20

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	go limiter.RunPurge(ctx, 5*time.Minute)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(limiter.Handler())

	// ── Handlers ─────────────────────────────────────────────────────────────
	categoriesH := handler.NewCategoriesHandler(svcs.Categories)
	brandsH := handler.NewBrandsHandler(svcs.Brands, media)
	productsH := handler.NewProductsHandler(svcs.Products, svcs.Inventory, media)
	inventoryH := handler.NewInventoryHandler(svcs.Inventory)
	salesH := handler.NewSalesHandler(svcs.Sales, svcs.Receipts)
	expensesH := handler.NewExpensesHandler(svcs.Expenses, media)
	dashboardH := handler.NewDashboardHandler(svcs.Dashboard)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb, smtpCB))

	// Uploaded media, unless MEDIA_URL points at an external host
	if strings.HasPrefix(cfg.MediaURL, "/") {
		r.Static(strings.TrimSuffix(cfg.MediaURL, "/"), media.Root())
	}

	v1 := r.Group("/v1")
	{
		// Public catalog (read-only)
		v1.GET("/categories", categoriesH.List)
		v1.GET("/categories/:slug", categoriesH.GetBySlug)
		v1.GET("/brands", brandsH.List)
		v1.GET("/brands/:slug", brandsH.GetBySlug)
		v1.GET("/products", productsH.List)
		v1.GET("/products/:id", productsH.Get)

		admin := v1.Group("/admin")
		{
			admin.POST("/categories", categoriesH.Create)
			admin.PUT("/categories/:id", categoriesH.Update)
			admin.DELETE("/categories/:id", categoriesH.Delete)

			admin.POST("/brands", brandsH.Create)
			admin.PUT("/brands/:id", brandsH.Update)
			admin.DELETE("/brands/:id", brandsH.Delete)
			admin.POST("/brands/:id/image", brandsH.UploadImage)

			admin.POST("/products", productsH.Create)
			admin.PUT("/products/:id", productsH.Update)
			admin.DELETE("/products/:id", productsH.Delete)
			admin.PATCH("/products/:id/stock", productsH.AdjustStock)
			admin.POST("/products/:id/image", productsH.UploadImage)
			admin.POST("/products/:id/images", productsH.AddGalleryImage)
			admin.DELETE("/products/:id/images/:imageId", productsH.DeleteGalleryImage)
		}

		inv := v1.Group("/inventory")
		{
			inv.GET("/movements", inventoryH.ListMovements)
			inv.GET("/alerts", inventoryH.CriticalStock)
		}

		finance := v1.Group("/finance")
		{
			finance.GET("/dashboard", dashboardH.Get)

			finance.GET("/sales", salesH.List)
			finance.POST("/sales", salesH.Record)
			finance.GET("/sales/export", salesH.Export)
			finance.GET("/sales/:id", salesH.Get)
			finance.PUT("/sales/:id", salesH.Update)
			finance.DELETE("/sales/:id", salesH.Delete)
			finance.GET("/sales/:id/receipt", salesH.Receipt)
			finance.POST("/sales/:id/receipt/email", salesH.EmailReceipt)

			finance.GET("/expenses", expensesH.List)
			finance.POST("/expenses", expensesH.Create)
			finance.GET("/expenses/export", expensesH.Export)
			finance.GET("/expenses/:id", expensesH.Get)
			finance.PUT("/expenses/:id", expensesH.Update)
			finance.DELETE("/expenses/:id", expensesH.Delete)
			finance.POST("/expenses/:id/receipt", expensesH.UploadReceipt)
		}
	}

	// Swagger UI, only outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
