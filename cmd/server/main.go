package main

import (
	"context"       // Context for Redis ping and shutdown
	"errors"        // Error inspection on server close
	"net/http"      // HTTP server
	"os"            // Signal handling
	"os/signal"     // Signal handling
	"syscall"       // SIGTERM
	"time"          // Shutdown deadline

	"github.com/Crayann/swiftbase-backend/internal/api"          // Custom package for API handlers
	"github.com/Crayann/swiftbase-backend/internal/config"       // Custom package for configuration
	"github.com/Crayann/swiftbase-backend/internal/gateway"      // Payment and settlement adapters
	"github.com/Crayann/swiftbase-backend/internal/middleware"   // Custom package for middleware
	"github.com/Crayann/swiftbase-backend/internal/orchestrator" // Transfer pipeline
	"github.com/Crayann/swiftbase-backend/internal/rates"        // Mid-market rate provider
	"github.com/Crayann/swiftbase-backend/internal/store"        // Persistence layer

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Pick the transaction store: MySQL when configured, in-memory otherwise
	var st store.Store
	if cfg.DBHost != "" {
		dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
		db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
		if err != nil {
			logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
		}
		st = store.NewGormStore(db)
	} else {
		logrus.Warn("DB_HOST not set, using in-memory store")
		st = store.NewMemoryStore()
	}

	// Setup Redis client; response caching is optional
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
	} else {
		logrus.Warn("REDIS_ADDR not set, response caching disabled")
	}

	// Wire the remittance core: rate provider, adapters, orchestrator
	provider := rates.NewProvider(rates.NewSimulatedSource(), cfg.RateTTL, nil)
	payments := gateway.NewSimulatedGateway(cfg.GatewayDelay)
	settler := gateway.NewSimulatedLedger(provider, cfg.GatewayDelay)
	orc := orchestrator.New(st, provider, payments, settler, cfg.StageTimeout)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/api/auth/register", api.RegisterHandler(st))           // Registration endpoint
	r.POST("/api/auth/login", api.LoginHandler(st, cfg.JWTSecret))  // Login endpoint

	// Authenticated routes (protected by JWT)
	authed := r.Group("/api")
	authed.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))

	// Recipient and payment method routes
	authed.POST("/recipients", api.CreateRecipientHandler(st))            // Add recipient endpoint
	authed.GET("/recipients", api.ListRecipientsHandler(st))              // List recipients endpoint
	authed.GET("/recipients/:id", api.GetRecipientHandler(st))            // Get recipient endpoint
	authed.DELETE("/recipients/:id", api.DeleteRecipientHandler(st))      // Delete recipient endpoint
	authed.POST("/payment-methods", api.CreatePaymentMethodHandler(st))   // Add payment method endpoint
	authed.GET("/payment-methods", api.ListPaymentMethodsHandler(st))     // List payment methods endpoint
	authed.GET("/payment-methods/:id", api.GetPaymentMethodHandler(st))   // Get payment method endpoint
	authed.DELETE("/payment-methods/:id", api.DeletePaymentMethodHandler(st)) // Delete payment method endpoint

	// Transaction routes
	authed.POST("/transactions/compare-routes", api.CompareRoutesHandler(provider))     // Route comparison endpoint
	authed.POST("/transactions", api.CreateTransactionHandler(orc, redisClient))        // Create transfer endpoint
	authed.GET("/transactions", api.TransactionHistoryHandler(st, redisClient))         // Transfer history endpoint
	authed.GET("/transactions/stats", api.TransactionStatsHandler(st, redisClient))     // Stats endpoint
	authed.GET("/transactions/:id/status", api.TransactionStatusHandler(st))            // Status polling endpoint
	authed.POST("/transactions/:id/cancel", api.CancelTransactionHandler(orc, redisClient)) // Cancel endpoint

	// Run the server and drain in-flight pipelines on shutdown
	srv := &http.Server{Addr: ":" + cfg.AppPort, Handler: r}
	go func() {
		logrus.Info("Server running on " + cfg.AppPort) // Log server start
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server error: %v", err)
		}
	}()

	// Wait for an interrupt, stop accepting requests, then let the
	// orchestrator finish every dispatched pipeline before exiting
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down, draining transfer pipelines")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("server shutdown: %v", err)
	}
	orc.Wait()
	logrus.Info("Shutdown complete")
}
