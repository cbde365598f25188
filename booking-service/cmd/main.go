package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/distributed-hotel-saga/booking-service/internal/client"
	"github.com/distributed-hotel-saga/booking-service/internal/handlers"
	"github.com/distributed-hotel-saga/booking-service/internal/repository"
	"github.com/distributed-hotel-saga/booking-service/internal/service"
	"github.com/distributed-hotel-saga/booking-service/internal/worker"
	"github.com/distributed-hotel-saga/booking-service/migrations"
	"github.com/distributed-hotel-saga/shared-domain/messaging"
	"github.com/distributed-hotel-saga/shared-domain/retry"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Info().Msg("🚀 Starting Booking Service...")

	db, err := initDatabase()
	if err != nil {
		log.Fatal().Err(err).Msg("database connection error")
	}
	defer db.Close()

	if err := migrations.Apply(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("migration error")
	}

	rabbitConfig := messaging.NewRabbitMQConfig()
	rabbitClient := messaging.NewRabbitMQClient(rabbitConfig)
	if err := rabbitClient.Connect(); err != nil {
		log.Error().Err(err).Msg("RabbitMQ connection error, booking confirmations will log-and-continue on publish failure")
	}
	defer rabbitClient.Close()
	publisher := messaging.NewPublisher(rabbitClient)

	retryPolicy := retry.Policy{
		MaxAttempts: getEnvInt("RPC_MAX_ATTEMPTS", 3),
		BaseDelay:   getEnvMillis("RPC_RETRY_BASE_DELAY_MS", 200),
		MaxDelay:    getEnvMillis("RPC_RETRY_MAX_DELAY_MS", 2_000),
	}
	httpClient := &http.Client{Timeout: getEnvSeconds("RPC_TIMEOUT_SECONDS", 8)}

	inventoryClient := client.NewInventoryClient(getEnvOrDefault("INVENTORY_SERVICE_URL", "http://localhost:8003"), httpClient, retryPolicy)
	paymentClient := client.NewPaymentClient(getEnvOrDefault("PAYMENT_SERVICE_URL", "http://localhost:8002"), httpClient, retryPolicy)

	bookingRepo := repository.NewBookingRepository(db)
	orchestrator := service.NewBookingOrchestrator(bookingRepo, inventoryClient, paymentClient, publisher)
	bookingHandler := handlers.NewBookingHandler(orchestrator)

	recoveryCtx, cancelRecovery := context.WithCancel(context.Background())
	recovery := worker.NewRecovery(
		orchestrator,
		getEnvMillis("RECOVERY_INTERVAL_MS", 300_000),
		getEnvMinutes("RECOVERY_STUCK_MINUTES", 10),
		getEnvMinutes("RECOVERY_GIVE_UP_MINUTES", 1_440),
	)
	go recovery.Run(recoveryCtx)

	app := setupFiberApp()
	setupRoutes(app, bookingHandler)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("🛑 Shutting down Booking Service...")
		cancelRecovery()
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("shutdown error")
		}
	}()

	port := getEnvOrDefault("PORT", "8001")
	log.Info().Str("port", port).Msg("🌍 Booking Service running")

	if err := app.Listen(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server startup error")
	}
}

func initDatabase() (*sql.DB, error) {
	dbHost := getEnvOrDefault("DB_HOST", "localhost")
	dbPort := getEnvOrDefault("DB_PORT", "5432")
	dbUser := getEnvOrDefault("DB_USER", "postgres")
	dbPassword := getEnvOrDefault("DB_PASSWORD", "postgres")
	dbName := getEnvOrDefault("DB_NAME", "booking_db")

	connectionString := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPassword, dbName,
	)

	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("database open error: %v", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("database ping error: %v", err)
	}

	log.Info().Str("db", dbName).Msg("✅ Database connection successful")
	return db, nil
}

func setupFiberApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Booking Service v1.0",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} - ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Request-ID",
	}))

	return app
}

func setupRoutes(app *fiber.App, h *handlers.BookingHandler) {
	api := app.Group("/api/v1")
	api.Get("/health", h.HealthCheck)

	bookings := api.Group("/bookings")
	bookings.Post("/", h.CreateBooking)
	bookings.Get("/:id", h.GetBooking)

	customers := api.Group("/customers")
	customers.Get("/:user_id/bookings", h.ListBookingsForUser)

	app.Use("*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Route not found",
		})
	})
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	log.Error().Err(err).Msg("unhandled request error")

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": message,
		"error":   err.Error(),
	})
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvMillis(key string, defaultMs int) time.Duration {
	return time.Duration(getEnvInt(key, defaultMs)) * time.Millisecond
}

func getEnvSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvInt(key, defaultSeconds)) * time.Second
}

func getEnvMinutes(key string, defaultMinutes int) time.Duration {
	return time.Duration(getEnvInt(key, defaultMinutes)) * time.Minute
}
