package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string
	AppURL      string

	// Database configuration
	DatabaseDriver string // postgres or sqlite
	DatabaseDSN    string

	// Redis configuration (optional, backs the login rate limiter)
	RedisURL string

	// Admin session configuration
	JWTSecret  string
	SessionTTL time.Duration

	// Login rate limiting
	LoginMaxAttempts int
	LoginWindow      time.Duration

	// Checkout configuration
	Currency string

	// Validation gate
	CheckinWindow time.Duration

	// Stripe configuration
	StripeSecretKey     string
	StripeWebhookSecret string

	// Email configuration
	EmailHost     string
	EmailPort     int
	EmailUser     string
	EmailPassword string
	EmailFrom     string
	EmailFromName string

	// Cloudinary configuration
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	// PubNub configuration (optional, live check-in feed)
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string
	CheckinChannel     string

	// Admin seeding (applied at startup when set)
	AdminUsername string
	AdminPassword string
}

func LoadConfig() *Config {
	// Local development keeps settings in a .env file; missing is fine.
	_ = godotenv.Load()

	return &Config{
		// Server
		Port:        getEnv("PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),
		AppURL:      getEnv("APP_URL", "http://localhost:8090"),

		// Database
		DatabaseDriver: getEnv("DATABASE_DRIVER", "sqlite"),
		DatabaseDSN:    getEnv("DATABASE_DSN", "file:tickets.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// Session
		JWTSecret:  getEnv("JWT_SECRET", "change-me-in-production-minimum-32-chars"),
		SessionTTL: getEnvAsDuration("SESSION_TTL", "24h"),

		// Login rate limiting
		LoginMaxAttempts: getEnvAsInt("LOGIN_MAX_ATTEMPTS", 5),
		LoginWindow:      getEnvAsDuration("LOGIN_WINDOW", "15m"),

		// Checkout
		Currency: getEnv("CURRENCY", "RON"),

		// Validation gate
		CheckinWindow: getEnvAsDuration("CHECKIN_WINDOW", "24h"),

		// Stripe
		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),

		// Email
		EmailHost:     getEnv("EMAIL_HOST", "smtp.gmail.com"),
		EmailPort:     getEnvAsInt("EMAIL_PORT", 587),
		EmailUser:     getEnv("EMAIL_USER", ""),
		EmailPassword: getEnv("EMAIL_PASSWORD", ""),
		EmailFrom:     getEnv("EMAIL_FROM", "tickets@xposure.events"),
		EmailFromName: getEnv("EMAIL_FROM_NAME", "XPOSURE Events"),

		// Cloudinary
		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryFolder:    getEnv("CLOUDINARY_FOLDER", "xposure_events"),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),
		CheckinChannel:     getEnv("CHECKIN_CHANNEL", "checkin-feed"),

		// Admin seeding
		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, fall back to the default value.
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
