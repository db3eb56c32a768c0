package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/pocketbase/dbx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"xposure-ticketing/config"
	"xposure-ticketing/gateway"
	"xposure-ticketing/handlers"
	"xposure-ticketing/models"
	"xposure-ticketing/repository"
	"xposure-ticketing/security"
	"xposure-ticketing/services"
	"xposure-ticketing/utils"
)

func main() {
	cfg := config.LoadConfig()

	if cfg.Environment == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	logrus.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"port":        cfg.Port,
	}).Info("starting ticketing server")

	// Database
	db, err := repository.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		logrus.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	if err := repository.Migrate(db); err != nil {
		logrus.WithError(err).Fatal("database migration failed")
	}

	eventRepo := repository.NewEventRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	// Login rate limiter: Redis when configured, in-process otherwise.
	var redisClient *redis.Client
	var limiter security.Limiter = security.NewMemoryLimiter(cfg.LoginMaxAttempts, cfg.LoginWindow)
	if cfg.RedisURL != "" {
		redisClient, err = utils.NewRedisClient(cfg.RedisURL)
		if err != nil {
			logrus.WithError(err).Fatal("redis connection failed")
		}
		defer redisClient.Close()
		limiter = security.NewRedisLimiter(redisClient, cfg.LoginMaxAttempts, cfg.LoginWindow)
	}

	// Gateways
	provider := gateway.NewStripeProvider(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	deliverer := services.NewEmailDeliverer(services.EmailConfig{
		Host:     cfg.EmailHost,
		Port:     cfg.EmailPort,
		User:     cfg.EmailUser,
		Password: cfg.EmailPassword,
		From:     cfg.EmailFrom,
		FromName: cfg.EmailFromName,
	})

	var uploader services.MediaUploader
	if cfg.CloudinaryCloudName != "" {
		uploader, err = gateway.NewCloudinaryUploader(
			cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		if err != nil {
			logrus.WithError(err).Fatal("cloudinary initialization failed")
		}
	}

	var notifier services.CheckinNotifier
	if cfg.PubNubPublishKey != "" {
		notifier = gateway.NewPubNubNotifier(
			cfg.PubNubPublishKey, cfg.PubNubSubscribeKey, cfg.PubNubSecretKey, cfg.CheckinChannel)
	}

	// Services
	catalog := services.NewCatalogService(eventRepo, ticketRepo)
	checkout := services.NewCheckoutService(eventRepo, ticketRepo, provider, cfg.AppURL, cfg.Currency)
	confirmation := services.NewConfirmationService(eventRepo, ticketRepo, provider, deliverer)
	validation := services.NewValidationService(eventRepo, ticketRepo, notifier, cfg.CheckinWindow)
	raffle := services.NewRaffleService(ticketRepo)

	sessions := security.NewSessionManager(cfg.JWTSecret, cfg.SessionTTL, cfg.Environment == "production")

	if err := seedAdmin(cfg, adminRepo); err != nil {
		logrus.WithError(err).Fatal("admin seeding failed")
	}

	// Handlers
	eventHandler := handlers.NewEventHandler(catalog)
	checkoutHandler := handlers.NewCheckoutHandler(checkout)
	webhookHandler := handlers.NewWebhookHandler(confirmation)
	scannerHandler := handlers.NewScannerHandler(validation)
	raffleHandler := handlers.NewRaffleHandler(raffle)
	uploadHandler := handlers.NewUploadHandler(uploader)
	authHandler := handlers.NewAuthHandler(adminRepo, sessions, limiter)

	e := echo.New()
	e.Validator = handlers.NewRequestValidator()
	e.Use(middleware.Recover())

	// Public API
	e.GET("/api/events", eventHandler.ListPublic)
	e.GET("/api/events/:slug", eventHandler.GetBySlug)
	e.POST("/api/create-checkout-session", checkoutHandler.CreateSession)
	e.POST("/api/webhooks/stripe", webhookHandler.HandleStripe)

	// Auth
	e.POST("/api/auth/admin-login", authHandler.Login)
	e.POST("/api/auth/admin-logout", authHandler.Logout)

	// Admin API, behind the session cookie
	admin := e.Group("/api/admin", sessions.RequireAdmin())
	admin.GET("/events", eventHandler.ListAdmin)
	admin.POST("/events", eventHandler.Create)
	admin.GET("/events/:id", eventHandler.Get)
	admin.PUT("/events/:id", eventHandler.Update)
	admin.DELETE("/events/:id", eventHandler.Delete)
	admin.GET("/events/:id/stats", eventHandler.Stats)
	admin.POST("/validate-ticket", scannerHandler.Validate)
	admin.POST("/raffle", raffleHandler.Draw)
	admin.POST("/upload", uploadHandler.Upload)

	// Operational endpoints
	e.GET("/health", healthHandler(db, redisClient))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logrus.WithField("addr", server.Addr).Info("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("server shutdown failed")
	}
	logrus.Info("server stopped")
}

// seedAdmin upserts the bootstrap admin account when credentials are
// configured. Skipped silently otherwise.
func seedAdmin(cfg *config.Config, admins *repository.AdminRepository) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}

	hash, err := security.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = admins.Upsert(ctx, &models.Admin{
		ID:           uuid.NewString(),
		Username:     cfg.AdminUsername,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	logrus.WithField("username", cfg.AdminUsername).Info("admin account seeded")
	return nil
}

func healthHandler(db *dbx.DB, redisClient *redis.Client) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
		defer cancel()

		if err := db.DB().PingContext(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  "database unreachable",
			})
		}
		if redisClient != nil {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{
					"status": "unhealthy",
					"error":  "redis unreachable",
				})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	}
}
