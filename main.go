package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/craftora/marketplace-api/config"
	"github.com/craftora/marketplace-api/controllers"
	"github.com/craftora/marketplace-api/database"
	"github.com/craftora/marketplace-api/logger"
	"github.com/craftora/marketplace-api/repository"
	"github.com/craftora/marketplace-api/routes"
	"github.com/craftora/marketplace-api/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file (optional, falls back to system env)
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Initialize("development")
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Initialize(cfg.Env)
	defer logger.Log.Sync()

	client, db, err := database.Connect(cfg.MongoURL, cfg.MongoDB)
	if err != nil {
		zap.L().Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := database.Close(client); err != nil {
			zap.L().Error("Failed to close MongoDB", zap.Error(err))
		}
	}()

	// Repositories
	orderRepo := repository.NewMongoOrderRepository(db)
	productRepo := repository.NewMongoProductRepository(db)
	userRepo := repository.NewMongoUserRepository(db)
	anomalyRepo := repository.NewMongoAnomalyRepository(db)

	// The unique index is the authoritative duplicate-materialization guard;
	// refusing to start without it would be worse than logging here, but the
	// warning must not be missed in production.
	if err := orderRepo.EnsureIndexes(context.Background()); err != nil {
		zap.L().Warn("Failed to ensure order indexes", zap.Error(err))
	}

	// Payment gateway + services
	gateway := services.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	if cfg.StripeWebhookSecret == "" {
		zap.L().Warn("STRIPE_WEBHOOK_SECRET not set, webhook payloads are trusted unverified (dev mode)")
	}
	checkoutService := services.NewCheckoutService(gateway, cfg.Currency, cfg.FrontendURL, logger.Log)
	orderService := services.NewOrderService(orderRepo, productRepo, userRepo, anomalyRepo, gateway, logger.Log)

	// Controllers
	checkoutController := controllers.NewCheckoutController(checkoutService, logger.Log)
	webhookController := controllers.NewWebhookController(gateway, orderService, logger.Log)
	orderController := controllers.NewOrderController(orderService, logger.Log)

	// HTTP server
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())

	routes.Register(r, checkoutController, webhookController, orderController, cfg.JWTSecret)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		zap.L().Info("Marketplace API starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Fatal("Server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("Stopped gracefully")
}
