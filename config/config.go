package config

import (
	"fmt"
	"os"
)

// Config holds all environment variables for the service.
type Config struct {
	Port                string
	Env                 string
	MongoURL            string
	MongoDB             string
	StripeSecretKey     string
	StripeWebhookSecret string // empty enables unverified dev mode
	FrontendURL         string
	JWTSecret           string
	Currency            string
}

// LoadConfig loads environment variables into Config and validates them.
// STRIPE_WEBHOOK_SECRET is intentionally optional: when unset, webhook
// payloads are trusted unverified, which is only acceptable for local dev.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		Env:                 getEnv("APP_ENV", "development"),
		MongoURL:            os.Getenv("MONGO_URL"),
		MongoDB:             getEnv("MONGO_DB", "marketplace"),
		StripeSecretKey:     os.Getenv("STRIPE_API_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:3000"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		Currency:            getEnv("CURRENCY", "usd"),
	}

	if cfg.MongoURL == "" || cfg.StripeSecretKey == "" || cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing required environment variables (MONGO_URL, STRIPE_API_KEY, JWT_SECRET)")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
