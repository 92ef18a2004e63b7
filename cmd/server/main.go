package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Dton04/BookingHotel-sub000/internal/adapter"
	"github.com/Dton04/BookingHotel-sub000/internal/application"
	"github.com/Dton04/BookingHotel-sub000/internal/auth"
	"github.com/Dton04/BookingHotel-sub000/internal/config"
	"github.com/Dton04/BookingHotel-sub000/internal/database"
	"github.com/Dton04/BookingHotel-sub000/internal/events"
	"github.com/Dton04/BookingHotel-sub000/internal/handler"
	"github.com/Dton04/BookingHotel-sub000/internal/health"
	"github.com/Dton04/BookingHotel-sub000/internal/logger"
	"github.com/Dton04/BookingHotel-sub000/internal/middleware"
	"github.com/Dton04/BookingHotel-sub000/internal/repository"
	"github.com/Dton04/BookingHotel-sub000/internal/saga"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewNamed(cfg.AppEnv, "booking-engine")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting booking-engine",
		zap.String("port", cfg.Port),
		zap.String("inventory_mode", cfg.InventoryMode),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.RoomTypeModel{},
			&repository.ReservationModel{},
			&repository.BookingModel{},
			&repository.DiscountModel{},
			&repository.DiscountRoomTypeModel{},
			&repository.DiscountUsageModel{},
			&repository.UserModel{},
			&repository.TransactionModel{},
		); err != nil {
			zapLogger.Fatal("failed to auto-migrate", zap.Error(err))
		}
		zapLogger.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), "migrations", zapLogger); err != nil {
			zapLogger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, 15*time.Minute)

	// Initialize Kafka producer
	producer := events.NewProducer(cfg.KafkaConfig.Brokers, zapLogger)
	defer producer.Close()

	// Initialize payment gateway (mock for development)
	gateway := adapter.NewMockGateway(zapLogger)

	// Initialize unit of work and saga orchestration
	uow := repository.NewUnitOfWork(db, cfg.InventoryMode)
	sagaService := saga.NewBookingSagaService(uow, gateway, producer, zapLogger)

	// Initialize application services
	loyaltyService := application.NewLoyaltyService(uow, zapLogger)
	bookingService := application.NewBookingService(uow, sagaService, loyaltyService, zapLogger)
	discountService := application.NewDiscountService(uow, zapLogger)

	// Initialize Kafka consumer for gateway payment callbacks
	consumerGroupID := cfg.KafkaConfig.GroupPrefix + "booking-engine"
	paymentConsumer := events.NewPaymentEventConsumer(
		cfg.KafkaConfig.Brokers,
		consumerGroupID,
		bookingService,
		zapLogger,
	)
	defer paymentConsumer.Close()

	// Start Kafka consumer in a goroutine
	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()

	go func() {
		zapLogger.Info("starting payment event consumer")
		if err := paymentConsumer.Start(consumerCtx); err != nil {
			if consumerCtx.Err() == nil {
				zapLogger.Error("payment event consumer failed", zap.Error(err))
			}
		}
	}()

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	discountHandler := handler.NewDiscountHandler(discountService)
	loyaltyHandler := handler.NewLoyaltyHandler(loyaltyService)
	adminHandler := handler.NewAdminHandler(bookingService, discountService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.LoggerMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "booking-engine")
	healthHandler.RegisterRoutes(router)

	// Register API routes
	apiV1 := router.Group("/api/v1")
	bookingHandler.RegisterRoutes(apiV1, jwtManager)
	discountHandler.RegisterRoutes(apiV1, jwtManager)
	loyaltyHandler.RegisterRoutes(apiV1, jwtManager)
	adminHandler.RegisterRoutes(apiV1, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down booking-engine...")

	// Cancel Kafka consumer
	consumerCancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("booking-engine stopped")
}
