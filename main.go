package main

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/7FyD/travel-manager-api/database"
	"github.com/7FyD/travel-manager-api/handlers"
	"github.com/7FyD/travel-manager-api/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file (ignored in production where env vars are set directly)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found — using environment variables")
	}

	// Initialize database
	database.InitDB()

	// Blacklist entries outlive their tokens; sweep them hourly.
	go func() {
		for range time.Tick(time.Hour) {
			if err := database.PurgeExpiredTokens(); err != nil {
				log.Printf("⚠️  Token blacklist purge failed: %v", err)
			}
		}
	}()

	// Provider clients, constructed once and injected into handlers
	amadeus := services.NewAmadeusClient(
		os.Getenv("AMADEUS_CLIENT_ID"),
		os.Getenv("AMADEUS_CLIENT_SECRET"),
		os.Getenv("AMADEUS_ENV"),
	)
	weather := services.NewWeatherClient()
	gemini := services.NewGeminiClient(os.Getenv("GEMINI_API_KEY"), os.Getenv("GEMINI_MODEL"))

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("❌ JWT_SECRET must be set")
	}
	tokens := services.NewTokenService(jwtSecret)

	travel := handlers.NewTravelHandler(amadeus, weather, gemini)
	auth := handlers.NewAuthHandler(handlers.NewDBUserStore(), tokens, os.Getenv("COOKIE_SECURE") == "true")

	// Set Gin mode
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// Trusted proxies (hosted deployments sit behind a proxy)
	r.SetTrustedProxies([]string{"0.0.0.0/0"})

	// CORS — allow configured frontend origins
	frontendURLs := os.Getenv("FRONTEND_URL")
	allowedOrigins := []string{"http://localhost:5173", "http://localhost:3000"}
	if frontendURLs != "" {
		for _, u := range strings.Split(frontendURLs, ",") {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Routes
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", auth.Register)
		authRoutes.POST("/login", auth.Login)
		authRoutes.POST("/refresh", auth.Refresh)
		authRoutes.POST("/logout", auth.Logout)
		authRoutes.GET("/user", handlers.RequireAuth(tokens), auth.CurrentUser)
	}

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthHandler)

		protected := api.Group("", handlers.RequireAuth(tokens))
		protected.GET("/travel-planner", travel.PlanTrip)
		protected.GET("/travel-planner/pdf", travel.PlanTripPDF)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("🚀 Travel Manager API starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
