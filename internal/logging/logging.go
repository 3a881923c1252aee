package logging

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/edvin/billing/internal/config"
)

// NewLogger creates a structured zerolog.Logger configured from the config.
func NewLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "billing-api").Logger()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	return logger.Level(level)
}
