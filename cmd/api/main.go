package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brandradar/server/internal/adstore"
	"github.com/brandradar/server/internal/brandai"
	"github.com/brandradar/server/internal/config"
	"github.com/brandradar/server/internal/database"
	"github.com/brandradar/server/internal/discovery"
	"github.com/brandradar/server/internal/handlers"
	applogger "github.com/brandradar/server/internal/logger"
	"github.com/brandradar/server/internal/middleware"
	"github.com/brandradar/server/internal/services"
	"github.com/brandradar/server/internal/telemetry"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if err := applogger.Init(); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer applogger.Sync()

	// Load configuration
	cfg := config.Load()

	// Initialize OpenTelemetry Tracer
	ctx := context.Background()
	tracerShutdown, err := telemetry.InitTracer(ctx, "brandradar-api", cfg.SigNozEndpoint)
	if err != nil {
		log.Printf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tracerShutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	// Initialize OpenTelemetry Metrics
	meterShutdown, err := telemetry.InitMeter(ctx, "brandradar-api", cfg.SigNozEndpoint)
	if err != nil {
		log.Printf("Failed to initialize metrics: %v", err)
	}
	defer func() {
		if err := meterShutdown(ctx); err != nil {
			log.Printf("Error shutting down metrics: %v", err)
		}
	}()

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Pool gauge refresh for Prometheus
	go database.StartConnectionPoolMetricsCollector(ctx, db.DB, 15*time.Second)

	// Dedicated pgx pool for the ad cache hot path
	store, err := adstore.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize ad store: %v", err)
	}
	defer store.Close()

	// Ad discovery pipeline
	if !cfg.AdDiscovery.Configured() {
		log.Println("AD_DISCOVERY_API_KEY not set; external ad search disabled, cache only")
	}
	discoveryClient := discovery.NewClient(&cfg.AdDiscovery)
	enricher := discovery.NewEnricher(discoveryClient, cfg.AdDiscovery.EnrichWorkers, cfg.AdDiscovery.DetailTimeout)
	searchService := services.NewAdSearchService(store, discoveryClient, enricher)

	// Brand analysis proxy
	generator := brandai.NewClient(&cfg.BrandAI)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "BrandRadar API",
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	// JSON structured access logging
	app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","status":${status},"latency":"${latency}","ip":"${ip}","method":"${method}","path":"${path}","user_agent":"${ua}","error":"${error}"}` + "\n",
		TimeFormat: "2006-01-02T15:04:05Z07:00",
		TimeZone:   "UTC",
	}))
	app.Use(telemetry.New())
	app.Use(middleware.PrometheusMiddleware())
	// Dashboard frontend calls from the browser, so allow all origins
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowHeaders:     "Accept, Accept-Encoding, Authorization, Content-Type, DNT, Origin, User-Agent, X-Requested-With, X-API-Key",
		AllowCredentials: false,
		ExposeHeaders:    "Content-Length, Content-Type",
		MaxAge:           86400,
	}))

	// Setup routes
	setupRoutes(app, db, searchService, generator)

	// Start server
	port := cfg.ServerPort
	if port == "" {
		port = "3000"
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Println("Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Error shutting down server: %v", err)
		}
	}()

	log.Printf("Server starting on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRoutes(app *fiber.App, db *database.DB, search *services.AdSearchService, generator brandai.Generator) {
	// Health check endpoints for k8s probes
	app.Get("/healthz", handlers.HealthCheck)
	app.Get("/v1/healthz", handlers.HealthCheck)
	app.Get("/v1/health", handlers.HealthCheck)
	app.Get("/v1/readiness", handlers.ReadinessCheck(db))
	app.Get("/v1/liveness", handlers.LivenessCheck)

	// Prometheus scrape endpoint, private ranges only
	app.Get("/metrics", middleware.InternalOnly(), middleware.PrometheusHandler())

	// API v1 group
	v1 := app.Group("/v1")

	// Ad discovery routes (public)
	ads := v1.Group("/ads")
	handlers.SetupAdsRoutes(ads, search, db)

	// Brand routes (public)
	brands := v1.Group("/brands")
	handlers.SetupBrandRoutes(brands, db, generator)
}
