package main

import (
	"log"
	"os"

	"change-order-api/config"
	"change-order-api/controllers"
	"change-order-api/middleware"
	"change-order-api/routes"
	"change-order-api/services"
	"change-order-api/store"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize logging
	logFile, _ := config.InitLogging()
	if logFile != nil {
		defer logFile.Close()
	}

	// Pick the record store. The demo runs in memory by default; state is
	// lost on restart unless a database is configured.
	var records store.ChangeOrderStore
	if config.DatabaseConfigured() {
		config.InitDB()
		gormStore, err := store.NewGormStore(config.DB)
		if err != nil {
			log.Fatal("Failed to migrate change order store:", err)
		}
		records = gormStore
		log.Println("Using MySQL change order store")
	} else {
		records = store.NewMemoryStore()
		log.Println("Using in-memory change order store (state lost on restart)")
	}

	controllers.Init(services.NewLifecycleService(records))

	// Set Gin mode
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()

	// Add logging middleware
	router.Use(gin.Logger())

	// Add recovery middleware
	router.Use(gin.Recovery())

	// Add security headers middleware
	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	})

	// Add CORS middleware
	router.Use(middleware.CORSMiddleware())

	// Setup routes
	routes.SetupRoutes(router)

	// Start server
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Change Order API starting on port %s", port)
	if ginMode == "release" {
		log.Printf("Running in production mode")
	} else {
		log.Printf("Running in development mode")
	}

	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
