package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fastrail/booking-backend/internal/config"
	"github.com/fastrail/booking-backend/internal/database"
	"github.com/fastrail/booking-backend/internal/events"
	"github.com/fastrail/booking-backend/internal/handlers"
	"github.com/fastrail/booking-backend/internal/middleware"
	"github.com/fastrail/booking-backend/internal/monitoring"
	"github.com/fastrail/booking-backend/internal/services"
	"github.com/fastrail/booking-backend/internal/utils"
	"github.com/fastrail/booking-backend/pkg/jwt"
	"github.com/fastrail/booking-backend/pkg/ratelimit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
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

	logger.Info("Starting FastRail booking backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Connect to database
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Redis backs the rate limiter only; without it limits are not enforced
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			logger.WithError(err).Warn("Redis not reachable, rate limiting will fail open until it is")
		}
		cancel()
	} else {
		logger.Warn("REDIS_ADDR not set, rate limiting disabled")
	}

	// Booking lifecycle events
	var publisher events.Publisher
	if cfg.Events.RabbitMQURL != "" {
		rabbit, err := events.NewRabbitMQPublisher(cfg.Events.RabbitMQURL, cfg.Events.Exchange, logger)
		if err != nil {
			logger.WithError(err).Warn("RabbitMQ unavailable, booking events will only be logged")
			publisher = events.NewNoopPublisher(logger)
		} else {
			publisher = rabbit
		}
	} else {
		publisher = events.NewNoopPublisher(logger)
	}
	defer publisher.Close()

	// Initialize repositories
	logger.Info("Initializing services...")
	segmentRepo := database.NewRouteSegmentRepository(db)
	tripRepo := database.NewTripRepository(db)
	seatRepo := database.NewSeatRepository(db)
	fareRepo := database.NewFareRepository(db)
	seatSegmentRepo := database.NewSeatSegmentRepository(db)
	bookingRepo := database.NewBookingRepository(db)
	ticketRepo := database.NewTicketRepository(db)

	// Initialize services
	resolver := services.NewRouteSegmentResolver(segmentRepo)
	pricing := services.NewPricingService(fareRepo, seatRepo, segmentRepo, true, logger)
	availability := services.NewSeatAvailabilityService(seatSegmentRepo, seatRepo, tripRepo, resolver, pricing)

	orchestrator := services.NewBookingOrchestratorService(
		db,
		tripRepo,
		seatRepo,
		resolver,
		availability,
		pricing,
		bookingRepo,
		ticketRepo,
		seatSegmentRepo,
		publisher,
		services.BookingOrchestratorConfig{
			HoldTTL:     cfg.Booking.HoldTTL,
			CodeRetries: cfg.Booking.CodeRetries,
		},
		logger,
	)
	queries := services.NewBookingQueryService(bookingRepo, ticketRepo, logger)
	documents := services.NewTicketDocumentService(queries)
	ticketValidation := services.NewTicketValidationService(
		ticketRepo,
		bookingRepo,
		orchestrator,
		publisher,
		services.BoardingWindow{
			OpensBefore: cfg.Booking.BoardingOpensIn,
			ClosesAfter: cfg.Booking.BoardingClosesIn,
		},
		logger,
	)
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Issuer, 12*time.Hour)

	// Hold expiry sweep
	expirationService := services.NewHoldExpirationService(orchestrator, cfg.Booking.ExpiryBatchSize, logger)
	cronService := services.NewCronService(cfg.Booking.ExpirySweepCron, expirationService, logger)
	if err := cronService.Start(); err != nil {
		logger.Fatalf("Failed to start cron service: %v", err)
	}
	logger.Info("Services initialized")

	// Initialize handlers
	bookingHandler := handlers.NewBookingHandler(orchestrator, queries, documents, logger)
	tripSeatHandler := handlers.NewTripSeatHandler(availability, logger)
	ticketHandler := handlers.NewTicketValidationHandler(ticketValidation, logger)

	var redisPinger handlers.Pinger
	var limiter *ratelimit.RateLimiter
	if redisClient != nil {
		redisPinger = handlers.PingerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
		limiter = ratelimit.NewRateLimiter(redisClient, ratelimit.Config{
			Enabled: cfg.RateLimit.Enabled,
			Window:  time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
		})
	} else {
		limiter = ratelimit.NewRateLimiter(nil, ratelimit.Config{Enabled: false})
	}
	healthHandler := handlers.NewHealthHandler(handlers.PingerFunc(db.PingContext), redisPinger, version)

	// Setup router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	if cfg.Metrics.Enabled {
		router.Use(monitoring.GinMiddleware())
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader, "X-RateLimit-Remaining"},
		AllowCredentials: !containsWildcard(cfg.CORS.AllowedOrigins),
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", healthHandler.Check)
	if cfg.Metrics.Enabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("/api")
	{
		booking := api.Group("/booking")
		{
			booking.POST("/create-temporary",
				ratelimit.Middleware(limiter, "booking", cfg.RateLimit.BookingRequests, utils.GetRealIP, logger),
				bookingHandler.CreateTemporary)
			booking.POST("/guest-lookup",
				ratelimit.Middleware(limiter, "lookup", cfg.RateLimit.LookupRequests, utils.GetRealIP, logger),
				bookingHandler.GuestLookup)
			booking.GET("/:id", bookingHandler.GetBooking)
			booking.POST("/:id/cancel", bookingHandler.Cancel)
			booking.POST("/:id/extend", bookingHandler.Extend)
			booking.GET("/code/:code/ticket.pdf", bookingHandler.ETicket)

			user := booking.Group("/user")
			user.Use(middleware.AuthMiddleware(jwtService))
			{
				user.GET("/:userId", bookingHandler.UserBookings)
				user.GET("/:userId/stats", bookingHandler.UserStats)
			}
		}

		api.GET("/trips/:tripId/seats", tripSeatHandler.GetSeats)

		tickets := api.Group("/tickets")
		tickets.Use(middleware.AuthMiddleware(jwtService), middleware.RequireRole(jwt.RoleStaff, jwt.RoleAdmin))
		{
			tickets.POST("/validate", ticketHandler.Validate)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

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

	logger.Info("Stopping cron service...")
	cronService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
