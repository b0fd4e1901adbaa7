package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/floodwatch-ke/floodwatch/internal/config"
	"github.com/floodwatch-ke/floodwatch/internal/database"
	"github.com/floodwatch-ke/floodwatch/internal/handlers"
	"github.com/floodwatch-ke/floodwatch/internal/middleware"
	"github.com/floodwatch-ke/floodwatch/internal/notify"
	"github.com/floodwatch-ke/floodwatch/internal/services"
	"github.com/floodwatch-ke/floodwatch/internal/ussd"
	"github.com/joho/godotenv"
	"gorm.io/gorm/logger"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading it (this is fine if using environment variables): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting FloodWatch API...")

	if cfg.AdminPassword == "" {
		log.Fatalf("ADMIN_PASSWORD is not set")
	}

	passwordHash, err := middleware.HashPassword(cfg.AdminPassword)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	jwtAuthMiddleware := middleware.NewJWTAuthMiddleware(&middleware.JWTAuthConfig{
		AdminUsername:     cfg.AdminUsername,
		AdminPasswordHash: passwordHash,
		JWTSecret:         cfg.JWTSecret,
		JWTExpiryHours:    cfg.JWTExpiryHours,
		SkipPaths: []string{
			"/health",
			"/auth/login",
			"/ussd",
			// Public reads for the frontend, public subscribe.
			// Report creation stays guarded: reporters must hold a session.
			"GET /api/alerts*",
			"GET /api/reports*",
			"GET /api/demographics*",
			"GET /api/health-facilities*",
			"GET /api/infrastructure*",
			"GET /api/flood-records*",
			// Subscriptions are self-service: subscribers have no account,
			// so the whole surface is open.
			"/api/subscriptions*",
		},
	})
	log.Printf("JWT authentication enabled for user: %s", cfg.AdminUsername)

	// Initialize database connection
	if err := database.Connect(cfg.DatabaseURL, logger.Warn); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	db := database.GetDB()

	// Outbound gateways
	channels, err := loadNotifiers(cfg)
	if err != nil {
		log.Fatalf("Failed to build notifiers: %v", err)
	}
	ops := notify.NewOpsNotifier(cfg.SlackWebhookURL)
	if ops.Enabled() {
		log.Printf("Slack ops notifications enabled")
	}

	// Services
	alertService := services.NewAlertService(db)
	subscriptionService := services.NewSubscriptionService(db)
	dispatchService := services.NewDispatchService(db, subscriptionService, channels, ops)

	// USSD menu with a bounded session store: 1024 concurrent sessions,
	// two-minute idle expiry.
	sessionStore := ussd.NewSessionStore(1024, 2*time.Minute)
	menu := ussd.NewMenu(alertService, subscriptionService, sessionStore)

	// Live alert feed
	hub := handlers.NewHub()

	// HTTP handlers
	httpHandler := handlers.NewHTTPHandler()
	authHandler := handlers.NewAuthHandler(jwtAuthMiddleware, cfg.JWTExpiryHours)
	alertHandler := handlers.NewAlertHandler(alertService, dispatchService, hub, cfg.NotifyOnCreate)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)
	reportHandler := handlers.NewReportHandler(db)
	referenceHandler := handlers.NewReferenceHandler(db)
	ussdHandler := handlers.NewUSSDHandler(menu)

	mux := http.NewServeMux()
	httpHandler.SetupRoutes(mux)
	authHandler.SetupRoutes(mux)
	alertHandler.SetupRoutes(mux)
	subscriptionHandler.SetupRoutes(mux)
	reportHandler.SetupRoutes(mux)
	referenceHandler.SetupRoutes(mux)
	ussdHandler.SetupRoutes(mux)
	hub.SetupRoutes(mux)

	// CORS first, then JWT authentication
	corsMiddleware := middleware.NewCORSMiddleware(cfg.AllowedOrigins...)
	handler := middleware.RequestIDMiddleware(corsMiddleware.Wrap(jwtAuthMiddleware.Wrap(mux)))

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: handler,
	}

	go func() {
		log.Printf("Starting HTTP server on port %d", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	log.Printf("Health check endpoint: http://localhost:%d/health", cfg.HTTPPort)
	log.Printf("API base URL: http://localhost:%d/api", cfg.HTTPPort)

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Received shutdown signal, cleaning up...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	if err := database.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}

	log.Println("Shutdown complete")
}

// loadNotifiers reads the notifier config file. A missing file disables
// outbound delivery; dispatch attempts are still logged as failed.
func loadNotifiers(cfg *config.Config) (map[database.SubscriptionMethod]notify.Notifier, error) {
	notifierCfg, err := config.LoadNotifierConfig(cfg.NotifierConfigPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("Notifier config %s not found; delivery channels disabled", cfg.NotifierConfigPath)
			return map[database.SubscriptionMethod]notify.Notifier{}, nil
		}
		return nil, err
	}
	return config.BuildNotifiers(notifierCfg)
}
