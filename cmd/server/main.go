package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/coralbay-resort/booking-backend/internal/config"
	"github.com/coralbay-resort/booking-backend/internal/database"
	"github.com/coralbay-resort/booking-backend/internal/handlers"
	"github.com/coralbay-resort/booking-backend/internal/services"
	"github.com/coralbay-resort/booking-backend/pkg/notify"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting Coral Bay Activity Booking Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Run migrations
	if cfg.Database.MigrateOnStart {
		logger.Info("Running database migrations...")
		if err := database.Migrate(db); err != nil {
			logger.Fatalf("Failed to run migrations: %v", err)
		}
		logger.Info("Database migrations completed")
	}

	// Initialize repositories
	activityRepo := database.NewActivityRepository(db)
	timeSlotRepo := database.NewTimeSlotRepository(db)
	bookingRepo := database.NewBookingRepository(db, timeSlotRepo)

	// Initialize WhatsApp gateway
	gateway := notify.NewTwilioGateway(notify.TwilioConfig{
		APIBaseURL: cfg.WhatsApp.APIBaseURL,
		AccountSID: cfg.WhatsApp.AccountSID,
		AuthToken:  cfg.WhatsApp.AuthToken,
		FromNumber: cfg.WhatsApp.FromNumber,
	})
	if cfg.WhatsApp.Mode == "production" && gateway.IsConfigured() {
		logger.Info("WhatsApp gateway initialized in production mode")
	} else {
		logger.Info("WhatsApp gateway in development mode (no actual messages will be sent)")
	}

	// Initialize services
	logger.Info("Initializing services...")
	dispatcher := services.NewWhatsAppDispatcher(gateway, activityRepo, timeSlotRepo, cfg.WhatsApp.WebAppURL, logger)
	bookingService := services.NewBookingService(
		activityRepo,
		timeSlotRepo,
		bookingRepo,
		dispatcher,
		cfg.Booking.MaxParticipants,
		logger,
	)
	expirationService := services.NewExpirationService(
		bookingRepo,
		dispatcher,
		cfg.Booking.SweepInterval,
		cfg.Booking.SweepBatchSize,
		logger,
	)
	reminderService := services.NewReminderService(bookingRepo, dispatcher, logger)

	// Start background services
	expirationService.Start()
	defer expirationService.Stop()

	cronService := services.NewCronService(reminderService, logger)
	if err := cronService.Start(); err != nil {
		logger.Fatalf("Failed to start cron service: %v", err)
	}

	logger.Info("Services initialized")

	// Initialize handlers
	activityHandler := handlers.NewActivityHandler(activityRepo, timeSlotRepo, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, logger)
	adminHandler := handlers.NewAdminHandler(expirationService, cronService, logger)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Activity catalog (public)
		activities := v1.Group("/activities")
		{
			activities.GET("", activityHandler.ListActivities)
			activities.GET("/:activity_id", activityHandler.GetActivity)
			activities.GET("/:activity_id/availability", activityHandler.GetAvailability)
		}

		// Booking lifecycle
		bookings := v1.Group("/bookings")
		{
			bookings.POST("", bookingHandler.CreateBooking)
			bookings.GET("", bookingHandler.ListBookings)
			bookings.GET("/:booking_id", bookingHandler.GetBooking)
			bookings.POST("/:booking_id/confirm", bookingHandler.ConfirmBooking)
			bookings.POST("/:booking_id/cancel", bookingHandler.CancelBooking)
		}

		// Operational routes
		admin := v1.Group("/admin")
		// TODO: add staff auth middleware once the resort SSO integration lands
		{
			admin.POST("/bookings/:booking_id/complete", bookingHandler.MarkCompleted)
			admin.POST("/bookings/:booking_id/no-show", bookingHandler.MarkNoShow)
			admin.POST("/jobs/expiration-sweep", adminHandler.RunExpirationSweep)
			admin.POST("/jobs/reminder-24h", adminHandler.RunReminder24h)
			admin.POST("/jobs/reminder-1h", adminHandler.RunReminder1h)
			admin.GET("/jobs", adminHandler.GetJobStatus)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	cronService.Stop()
	expirationService.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
		} else {
			status := c.Writer.Status()
			switch {
			case status >= 500:
				entry.Error("Request completed with server error")
			case status >= 400:
				entry.Warn("Request completed with client error")
			default:
				entry.Info("Request completed successfully")
			}
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
