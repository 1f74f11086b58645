// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/construmax/construmax-backend/internal/config"
	"github.com/construmax/construmax-backend/internal/handlers"
	"github.com/construmax/construmax-backend/internal/middleware"
	"github.com/construmax/construmax-backend/internal/services"
	"github.com/construmax/construmax-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config, exchangeService *services.ExchangeService) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(cfg)
	storageService, _ := services.NewStorageService(cfg)

	authService := services.NewAuthService(db, cfg)
	categoryService := services.NewCategoryService(db)
	priceGroupService := services.NewPriceGroupService(db)
	productService := services.NewProductService(db)
	orderService := services.NewOrderService(db, cfg, exchangeService, notificationService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	priceGroupHandler := handlers.NewPriceGroupHandler(priceGroupService)
	productHandler := handlers.NewProductHandler(productService, storageService, exchangeService)
	orderHandler := handlers.NewOrderHandler(orderService)
	exchangeHandler := handlers.NewExchangeHandler(exchangeService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Public API routes
	api := r.Group("/api")
	{
		categories := api.Group("/categories")
		{
			categories.GET("", categoryHandler.GetCategories)
		}

		priceGroups := api.Group("/price-groups")
		{
			priceGroups.GET("", priceGroupHandler.GetPriceGroups)
			priceGroups.GET("/:id", priceGroupHandler.GetPriceGroup)
		}

		products := api.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/featured", productHandler.GetFeaturedProducts)
			products.GET("/:id", productHandler.GetProduct)
			products.GET("/:id/images", productHandler.GetProductImages)
			products.GET("/:id/price", productHandler.GetProductPrice)
		}

		orders := api.Group("/orders")
		orders.Use(middleware.CheckoutRateLimit())
		{
			orders.POST("", orderHandler.CreateOrder)
		}

		api.GET("/exchange-rate", exchangeHandler.GetExchangeRate)

		// Admin routes
		admin := api.Group("/admin")
		{
			admin.POST("/login", middleware.LoginRateLimit(), authHandler.Login)

			protected := admin.Group("")
			protected.Use(middleware.AdminRequired())
			{
				protected.GET("/me", authHandler.Me)

				// Listing is shared with the storefront handlers; the
				// admin aliases exist so the panel never depends on
				// public routes.
				adminProducts := protected.Group("/products")
				{
					adminProducts.GET("", productHandler.GetProducts)
					adminProducts.POST("", productHandler.CreateProduct)
					adminProducts.PUT("/:id", productHandler.UpdateProduct)
					adminProducts.DELETE("/:id", productHandler.DeleteProduct)
					adminProducts.POST("/:id/images", middleware.UploadRateLimit(), productHandler.UploadProductImage)
					adminProducts.DELETE("/:id/images/:imageId", productHandler.DeleteProductImage)
				}

				adminGroups := protected.Group("/price-groups")
				{
					adminGroups.GET("", priceGroupHandler.GetPriceGroups)
					adminGroups.POST("", priceGroupHandler.CreatePriceGroup)
					adminGroups.PUT("/:id", priceGroupHandler.UpdatePriceGroup)
					adminGroups.DELETE("/:id", priceGroupHandler.DeletePriceGroup)
					adminGroups.POST("/:id/prices", priceGroupHandler.AddPrice)
					adminGroups.PUT("/:id/prices/:priceId", priceGroupHandler.UpdatePrice)
					adminGroups.DELETE("/:id/prices/:priceId", priceGroupHandler.DeletePrice)
					adminGroups.POST("/:id/recompute", priceGroupHandler.RecomputePrices)
				}

				adminOrders := protected.Group("/orders")
				{
					adminOrders.GET("", orderHandler.GetOrders)
					adminOrders.GET("/:id", orderHandler.GetOrder)
					adminOrders.PATCH("/:id/status", orderHandler.UpdateOrderStatus)
				}

				adminCategories := protected.Group("/categories")
				{
					adminCategories.GET("", categoryHandler.GetCategories)
					adminCategories.POST("", categoryHandler.CreateCategory)
					adminCategories.PUT("/:id", categoryHandler.UpdateCategory)
					adminCategories.DELETE("/:id", categoryHandler.DeleteCategory)
				}

				protected.POST("/exchange-rate/refresh", exchangeHandler.RefreshExchangeRate)
			}
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}
