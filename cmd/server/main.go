package main

import (
	"context"                          // context package is needed for Redis operations
	"creativelens/internal/api"        // Custom package for API handlers
	"creativelens/internal/config"     // Custom package for configuration
	"creativelens/internal/domain"     // Custom package for domain models
	"creativelens/internal/middleware" // Custom package for middleware
	"creativelens/internal/payments"   // Custom package for the payment gateway
	"creativelens/internal/settlement" // Custom package for the settlement workflow
	"creativelens/internal/store"      // Custom package for the data store
	"log"                              // log package is needed for logging

	// For loading .env files
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

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	// TranslateError turns driver-specific failures (MySQL 1062) into
	// gorm.ErrDuplicatedKey so the store can tell replays from outages
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	dataStore := store.New(db)                          // Gorm-backed data store capability
	settleSvc := settlement.NewService(dataStore)       // Settlement workflow on top of the store
	gateway := payments.NewStripeGateway(cfg.StripeKey) // Card payment gateway

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

	// Public routes
	r.POST("/jwt", api.TokenHandler(cfg.JWTSecret))                        // Token issuance endpoint
	r.POST("/users", api.RegisterHandler(db))                              // Idempotent registration endpoint
	r.GET("/classes", api.ListApprovedClassesHandler(db, redisClient))     // Approved classes endpoint
	r.GET("/classes/popular", api.PopularClassesHandler(db, redisClient))  // Popular classes endpoint
	r.GET("/instructors", api.ListInstructorsHandler(db))                  // Instructors endpoint
	r.GET("/instructors/popular", api.PopularInstructorsHandler(db, redisClient)) // Popular instructors endpoint

	// Authenticated routes (valid bearer token required)
	authed := r.Group("")
	authed.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))

	// Per-user resources, restricted to their owner
	authed.GET("/users/admin/:email", middleware.SelfOnlyMiddleware("email"), api.IsAdminHandler(db))                // Admin flag endpoint
	authed.GET("/users/instructor/:email", middleware.SelfOnlyMiddleware("email"), api.IsInstructorHandler(db))      // Instructor flag endpoint
	authed.GET("/cart/:email", middleware.SelfOnlyMiddleware("email"), api.GetCartHandler(db))                       // Cart listing endpoint
	authed.GET("/payments/:email", middleware.SelfOnlyMiddleware("email"), api.PaymentHistoryHandler(db, redisClient)) // Payment history endpoint

	// Cart and payment actions, owner derived from the token
	authed.POST("/cart", api.AddToCartHandler(db))                           // Add to cart endpoint
	authed.DELETE("/cart/:id", api.RemoveCartItemHandler(db))                // Remove from cart endpoint
	authed.POST("/create-payment-intent", api.CreatePaymentIntentHandler(gateway)) // Payment intent endpoint
	authed.POST("/payments", api.SettleHandler(settleSvc, redisClient))      // Settlement endpoint

	// Instructor routes (instructor role required)
	instructor := authed.Group("")
	instructor.Use(middleware.RoleRequiredMiddleware(dataStore, domain.RoleInstructor))
	instructor.POST("/classes", api.CreateClassHandler(db, redisClient)) // Class submission endpoint
	instructor.GET("/classes/mine/:email", middleware.SelfOnlyMiddleware("email"), api.MyClassesHandler(db)) // Own classes endpoint

	// Admin routes (admin role required)
	admin := authed.Group("")
	admin.Use(middleware.RoleRequiredMiddleware(dataStore, domain.RoleAdmin))
	admin.GET("/users", api.ListUsersHandler(db, redisClient))                   // List users endpoint
	admin.PATCH("/users/:id/role", api.UpdateRoleHandler(db))                    // Role management endpoint
	admin.GET("/classes/all", api.ListAllClassesHandler(db))                     // All classes endpoint
	admin.PATCH("/classes/:id/status", api.UpdateClassStatusHandler(db, redisClient)) // Class review endpoint
	admin.PATCH("/classes/:id/feedback", api.UpdateClassFeedbackHandler(db))     // Review feedback endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
