package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/distributed-hotel-saga/payment-service/internal/gateway"
	"github.com/distributed-hotel-saga/payment-service/internal/handlers"
	"github.com/distributed-hotel-saga/payment-service/internal/repository"
	"github.com/distributed-hotel-saga/payment-service/internal/service"
	"github.com/distributed-hotel-saga/payment-service/migrations"
	sharedCache "github.com/distributed-hotel-saga/shared-domain/cache"
	"github.com/distributed-hotel-saga/shared-domain/idempotency"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Info().Msg("🚀 Starting Payment Service...")

	db, err := initDatabase()
	if err != nil {
		log.Fatal().Err(err).Msg("database connection error")
	}
	defer db.Close()

	if err := migrations.Apply(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("migration error")
	}

	failureRate := getEnvFloat("PAYMENT_FAILURE_RATE", 0.1)
	paymentGateway := gateway.NewMockPaymentGateway(failureRate)

	var cache idempotency.Cache
	if getEnvOrDefault("IDEMPOTENCY_FAST_CACHE_ENABLED", "false") == "true" {
		redisClient := goredis.NewClient(&goredis.Options{
			Addr: getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		})
		defer redisClient.Close()
		cache = sharedCache.NewRedisCache(redisClient, "payment:idempotency:")
	}

	paymentRepo := repository.NewPaymentRepository(db)
	idempStore := repository.NewIdempotencyStore(db)

	paymentService := service.NewPaymentService(
		paymentRepo,
		paymentGateway,
		idempStore,
		cache,
		getEnvHours("IDEMPOTENCY_FAST_CACHE_TTL_HOURS", 24),
	)
	paymentHandler := handlers.NewPaymentHandler(paymentService)

	app := setupFiberApp()
	setupRoutes(app, paymentHandler)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("🛑 Shutting down Payment Service...")
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("shutdown error")
		}
	}()

	port := getEnvOrDefault("PORT", "8002")
	log.Info().Str("port", port).Float64("failure_rate", failureRate).Msg("🌍 Payment Service running")

	if err := app.Listen(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server startup error")
	}
}

func initDatabase() (*sql.DB, error) {
	dbHost := getEnvOrDefault("DB_HOST", "localhost")
	dbPort := getEnvOrDefault("DB_PORT", "5432")
	dbUser := getEnvOrDefault("DB_USER", "postgres")
	dbPassword := getEnvOrDefault("DB_PASSWORD", "postgres")
	dbName := getEnvOrDefault("DB_NAME", "payment_db")

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
		AppName:      "Payment Service v1.0",
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

func setupRoutes(app *fiber.App, h *handlers.PaymentHandler) {
	api := app.Group("/api/v1")
	api.Get("/health", h.HealthCheck)
	api.Post("/payments", h.Charge)
	api.Get("/payments/:booking_id", h.GetByBookingID)

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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
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

func getEnvHours(key string, defaultHours int) time.Duration {
	return time.Duration(getEnvInt(key, defaultHours)) * time.Hour
}
