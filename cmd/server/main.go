package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gemora/internal/config"
	"gemora/internal/database"
	"gemora/internal/handlers"
	"gemora/internal/logging"
	"gemora/internal/middleware"
	"gemora/internal/models"
	"gemora/internal/security"
	"gemora/internal/services"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting Gemora Advisor Server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	}

	// Load configuration
	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s, Quota: %d/h, Cooldown: %s)",
		cfg.Port, cfg.HourlyQuota, cfg.MinInterval)

	if cfg.UpstreamAPIKey == "" {
		log.Fatal("❌ UPSTREAM_API_KEY environment variable is required")
	}

	// Optional policy file (deny-list and vocabulary overrides)
	var policy *models.AdvisorPolicy
	if cfg.PolicyFile != "" {
		var err error
		policy, err = config.LoadPolicy(cfg.PolicyFile)
		if err != nil {
			log.Fatalf("❌ Failed to load advisor policy: %v", err)
		}
		log.Printf("✅ Advisor policy loaded from %s", cfg.PolicyFile)
	}

	// Catalog lookup: MongoDB when configured, built-in seed catalog otherwise
	var catalog services.CatalogLookup
	if cfg.MongoURI != "" {
		mongoDB, err := database.NewMongoDB(cfg.MongoURI)
		if err != nil {
			log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
		}
		defer mongoDB.Close(context.Background())
		catalog = services.NewMongoCatalog(mongoDB)
	} else {
		log.Println("⚠️  MONGODB_URI not set - using built-in seed catalog (development only)")
		catalog = services.NewMemoryCatalog(services.SeedGems())
	}

	// Quota store: in-memory by default, Redis when configured
	var quota services.QuotaStore
	if cfg.RedisURL != "" {
		redisService, err := services.NewRedisService(cfg.RedisURL)
		if err != nil {
			log.Fatalf("❌ Failed to connect to Redis: %v", err)
		}
		defer redisService.Close()
		quota = services.NewRedisQuotaStore(redisService.Client(), cfg.HourlyQuota, services.QuotaWindow)
		log.Println("🛡️  [RATE-LIMIT] Using Redis-backed quota store")
	} else {
		quota = services.NewMemoryQuotaStore(cfg.HourlyQuota, services.QuotaWindow)
	}

	var extraDeny []string
	if policy != nil {
		extraDeny = policy.DenyPatterns
	}

	extractor := services.NewExtractor(policy)
	advisor := services.NewAdvisorService(
		quota,
		services.NewSessionGate(cfg.MinInterval),
		services.NewResponseCache(cfg.CacheTTL, cfg.CacheSweepBound),
		extractor,
		services.NewCatalogMatcher(catalog),
		services.NewOpenAIGenerator(cfg.UpstreamBaseURL, cfg.UpstreamAPIKey, cfg.UpstreamModel, cfg.UpstreamTimeout),
		security.NewContentFilter(extraDeny...),
		services.InitMetrics(),
		cfg.MaxMessageLen,
		cfg.UpstreamTimeout,
	)

	app := fiber.New(fiber.Config{
		AppName:      "Gemora Advisor v1.0",
		BodyLimit:    64 * 1024, // chat bodies are tiny; anything bigger is abuse
		ReadTimeout:  0,
		WriteTimeout: 0,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	// Prometheus metrics middleware
	prometheus := fiberprometheus.New("gemora")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	// CORS configuration with environment-based origins
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173,http://localhost:3000"
		log.Println("⚠️  ALLOWED_ORIGINS not set, using development defaults")
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Global API rate limiter - first line of DDoS defense, applied before
	// the advisor's own quota and session gate
	rateLimitConfig := middleware.LoadRateLimitConfig()
	app.Use("/api", middleware.GlobalAPIRateLimiter(rateLimitConfig))
	log.Printf("🛡️  [RATE-LIMIT] Global API rate limiter enabled (%d/min)", rateLimitConfig.GlobalAPIMax)

	// Routes
	healthHandler := handlers.NewHealthHandler()
	advisorHandler := handlers.NewAdvisorHandler(advisor)

	app.Get("/health", healthHandler.Handle)
	app.Post("/api/advisor/chat", advisorHandler.Chat)
	app.Get("/api/advisor/status", advisorHandler.Status)

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
