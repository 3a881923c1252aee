package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL     string
	HTTPListenAddr  string
	LogLevel        string
	IyzicoAPIKey    string
	IyzicoSecretKey string
	IyzicoBaseURL   string
	// GatewayTimeout bounds every round trip to the payment gateway.
	GatewayTimeout time.Duration
	// TrialDays is the default trial length applied to new subscriptions
	// unless the caller overrides or skips the trial.
	TrialDays int
	Currency  string
}

func Load() (*Config, error) {
	// Optional .env file for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		HTTPListenAddr:  getEnv("HTTP_LISTEN_ADDR", ":8090"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		IyzicoAPIKey:    getEnv("IYZICO_API_KEY", ""),
		IyzicoSecretKey: getEnv("IYZICO_SECRET_KEY", ""),
		IyzicoBaseURL:   getEnv("IYZICO_BASE_URL", "https://sandbox-api.iyzipay.com"),
		GatewayTimeout:  15 * time.Second,
		TrialDays:       0,
		Currency:        getEnv("CURRENCY", "TRY"),
	}

	if v := os.Getenv("GATEWAY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid GATEWAY_TIMEOUT %q: %w", v, err)
		}
		cfg.GatewayTimeout = d
	}

	if v := os.Getenv("TRIAL_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid TRIAL_DAYS %q", v)
		}
		cfg.TrialDays = n
	}

	return cfg, nil
}

// Validate checks that every variable required to talk to the database and
// the payment gateway is present. A failure here is fatal at startup: no
// gateway call may be attempted with incomplete credentials.
func (c *Config) Validate() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.IyzicoAPIKey == "" {
		missing = append(missing, "IYZICO_API_KEY")
	}
	if c.IyzicoSecretKey == "" {
		missing = append(missing, "IYZICO_SECRET_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	if !strings.HasPrefix(c.IyzicoBaseURL, "http://") && !strings.HasPrefix(c.IyzicoBaseURL, "https://") {
		return fmt.Errorf("IYZICO_BASE_URL must be an http(s) URL")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
