package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/famoney/famoney-api/config"
	"github.com/famoney/famoney-api/middleware"
	"github.com/famoney/famoney-api/repository"
	"github.com/famoney/famoney-api/repository/memory"
	"github.com/famoney/famoney-api/repository/postgres"
	"github.com/famoney/famoney-api/routes"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	var store repository.Store
	switch cfg.StorageBackend {
	case "memory":
		store = memory.New()
		log.Println("⚠️ Using in-memory storage, data is lost on restart")
	default:
		db, err := config.InitDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		defer db.Close()

		log.Println("✅ Database connected successfully")

		if err := config.RunMigrations(db); err != nil {
			log.Fatal("Failed to run migrations:", err)
		}
		store = postgres.New(db)
	}

	h := routes.NewHandlers(store)

	router := gin.Default()

	allowedOrigins := []string{cfg.FrontendURL}

	log.Printf("🌍 CORS: Allowing origins:")
	for _, origin := range allowedOrigins {
		log.Printf("   - %s", origin)
	}

	corsConfig := cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           86400,
	}
	router.Use(cors.New(corsConfig))

	router.Use(func(c *gin.Context) {
		start := time.Now()
		log.Printf("📨 %s %s from %s", c.Request.Method, c.Request.URL.Path, c.ClientIP())
		c.Next()
		duration := time.Since(start)
		log.Printf("✅ %s %s - %d (%v)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), duration)
	})

	router.Use(middleware.RateLimiter())

	v1 := router.Group("/api/v1")
	{
		routes.SetupAuthRoutes(v1, h)
		v1.GET("/ws/ledgers/:id", h.WS.HandleWS)

		protected := v1.Group("/")
		protected.Use(middleware.AuthRequired())
		{
			routes.SetupUserRoutes(protected, h)
			routes.SetupLedgerRoutes(protected, h)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	log.Printf("🚀 Server starting on port %s...", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
