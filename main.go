package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/washline/washline-api/config"
	"github.com/washline/washline-api/controllers"
	"github.com/washline/washline-api/middleware"
	"github.com/washline/washline-api/models"
	"github.com/washline/washline-api/services"
)

func main() {
	log.Println("Starting Washline API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := migrateModels(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	if err := seedCatalog(db, cfg.CurrencyCode); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	// Initialize S3-backed photo storage
	s3Service, err := services.InitS3Service()
	if err != nil {
		log.Fatalf("Failed to initialize S3 service: %v", err)
	}
	services.InitPhotoService(s3Service)

	controllers.Init(db, cfg)

	// Re-derive pending-order reminders lost in the restart
	if err := controllers.Reminders().Restore(); err != nil {
		log.Printf("Failed to restore reminders: %v", err)
	}

	router := setupRouter(cfg)

	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// migrateModels runs the gorm auto-migrations for every entity
func migrateModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.ServiceType{},
		&models.AddOn{},
		&models.Order{},
		&models.OrderAddOn{},
		&models.OrderPhoto{},
		&models.StatusEvent{},
		&models.Notification{},
		&models.InventoryItem{},
	)
}

// setupRouter assembles the full route tree. Every protected group re-checks
// the caller's persisted role server-side; roles are exact-match, an admin
// token does not open staff routes.
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/api/v1")
	{
		// Public endpoints
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)
		v1.GET("/catalog", controllers.GetCatalog)
		v1.POST("/quotes/delivery", controllers.QuoteDelivery)

		// Authenticated, no role requirement: profile bootstrap and claiming
		authed := v1.Group("")
		authed.Use(middleware.EnsureValidToken(cfg))
		{
			authed.POST("/users", controllers.CreateUser)
			authed.POST("/users/claim", controllers.ClaimAccount)
			authed.GET("/users/me", controllers.GetMyProfile)
			authed.PUT("/users/me", controllers.UpdateMyProfile)
		}

		// Any active user with a profile
		anyRole := v1.Group("")
		anyRole.Use(middleware.EnsureValidToken(cfg), middleware.RequireRole(middleware.RequireNone))
		{
			anyRole.GET("/notifications", controllers.ListMyNotifications)
			anyRole.POST("/notifications/:id/read", controllers.MarkNotificationRead)
		}

		// Customer checkout and order tracking
		customer := v1.Group("")
		customer.Use(middleware.EnsureValidToken(cfg), middleware.RequireRole(middleware.RequireCustomer))
		{
			customer.POST("/orders", controllers.CreateOrder)
			customer.GET("/orders", controllers.ListMyOrders)
			customer.GET("/orders/:id", controllers.GetMyOrder)
			customer.POST("/orders/:id/cancel", controllers.CancelMyOrder)
			customer.GET("/orders/:id/invoice", controllers.GetMyInvoice)
			customer.POST("/orders/:id/photos", controllers.UploadOrderPhoto)
			customer.GET("/orders/:id/photos", controllers.ListOrderPhotos)
		}

		// Staff order management
		staff := v1.Group("/staff")
		staff.Use(middleware.EnsureValidToken(cfg), middleware.RequireRole(middleware.RequireStaff))
		{
			staff.GET("/orders", controllers.ListOrders)
			staff.POST("/orders", controllers.CreateWalkInOrder)
			staff.POST("/orders/:id/status", controllers.UpdateOrderStatus)
			staff.POST("/orders/:id/weight", controllers.ConfirmWeight)
			staff.POST("/orders/:id/ack", controllers.AcknowledgeOrder)
			staff.POST("/orders/:id/paid", controllers.MarkOrderPaid)
		}

		// Admin management and reporting
		admin := v1.Group("/admin")
		admin.Use(middleware.EnsureValidToken(cfg), middleware.RequireRole(middleware.RequireAdmin))
		{
			admin.GET("/users", controllers.ListUsers)
			admin.POST("/users", controllers.CreateStaffUser)
			admin.POST("/users/:id/role", controllers.UpdateUserRole)
			admin.POST("/users/:id/active", controllers.ToggleUserActive)
			admin.POST("/orders/:id/force-status", controllers.ForceOrderStatus)
			admin.GET("/inventory", controllers.ListInventory)
			admin.POST("/inventory", controllers.CreateInventoryItem)
			admin.PUT("/inventory/:id", controllers.UpdateInventoryItem)
			admin.POST("/notifications", controllers.SendNotification)
			admin.GET("/reports/summary", controllers.GetReportsSummary)
		}
	}

	return router
}

// seedCatalog inserts the default service and add-on catalog for the
// configured currency when the tables are empty
func seedCatalog(db *gorm.DB, currency string) error {
	var count int64
	if err := db.Model(&models.ServiceType{}).Where("currency = ?", currency).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	flat := func(v float64) *float64 { return &v }

	serviceTypes := []models.ServiceType{
		{Code: "standard", Name: "Standard Wash", PricePerKg: 5000, Currency: currency, Active: true},
		{Code: "express", Name: "Express Wash", PricePerKg: 8000, Currency: currency, Active: true},
		{Code: "dry_clean", Name: "Dry Cleaning", PricePerKg: 12000, Currency: currency, Active: true},
	}
	addOns := []models.AddOn{
		{Code: "ironing", Name: "Ironing", PricePerKg: flat(2000), Currency: currency, Active: true},
		{Code: "duvet", Name: "Duvet Cleaning", BasePrice: flat(15000), Currency: currency, Active: true},
		{Code: "suit", Name: "Suit Cleaning", BasePrice: flat(10000), Currency: currency, Active: true},
		// No server-side price: staff quote this manually per order
		{Code: "other", Name: "Other Service", Currency: currency, Active: true},
	}

	if err := db.Create(&serviceTypes).Error; err != nil {
		return err
	}
	return db.Create(&addOns).Error
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Washline API is running",
	})
}

// databaseStatus checks database connectivity
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
	})
}
