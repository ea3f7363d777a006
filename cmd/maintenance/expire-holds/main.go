package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fastrail/booking-backend/internal/config"
	"github.com/fastrail/booking-backend/internal/database"
	"github.com/fastrail/booking-backend/internal/events"
	"github.com/fastrail/booking-backend/internal/services"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// expire-holds runs one hold expiry sweep outside the server, e.g. after an outage
func main() {
	var dbURLFlag string
	var batchSize int
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.IntVar(&batchSize, "batch-size", 500, "Bookings expired per batch")
	flag.Parse()

	// Try loading .env from current working directory (optional)
	_ = godotenv.Load()

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	dbCfg := config.DatabaseConfig{
		URL:                dbURL,
		Driver:             "pgx",
		MaxConnections:     5,
		MaxIdleConnections: 2,
	}

	db, err := database.NewConnection(dbCfg, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	segmentRepo := database.NewRouteSegmentRepository(db)
	tripRepo := database.NewTripRepository(db)
	seatRepo := database.NewSeatRepository(db)
	seatSegmentRepo := database.NewSeatSegmentRepository(db)
	resolver := services.NewRouteSegmentResolver(segmentRepo)
	pricing := services.NewPricingService(database.NewFareRepository(db), seatRepo, segmentRepo, false, logger)

	orchestrator := services.NewBookingOrchestratorService(
		db,
		tripRepo,
		seatRepo,
		resolver,
		services.NewSeatAvailabilityService(seatSegmentRepo, seatRepo, tripRepo, resolver, pricing),
		pricing,
		database.NewBookingRepository(db),
		database.NewTicketRepository(db),
		seatSegmentRepo,
		events.NewNoopPublisher(logger),
		services.DefaultOrchestratorConfig(),
		logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	expired, err := services.NewHoldExpirationService(orchestrator, batchSize, logger).RunOnce(ctx)
	if err != nil {
		log.Fatalf("expiry sweep failed after %d bookings: %v", expired, err)
	}

	fmt.Printf("Expired %d temporary bookings and released their seats.\n", expired)
}
