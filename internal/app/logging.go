package app

import (
	"go.uber.org/zap"

	"wpmcp/internal/domain"
	"wpmcp/internal/infra/telemetry"
)

// LoggingConfig carries the bootstrap logger used until the configuration
// is loaded.
type LoggingConfig struct {
	Logger *zap.Logger
}

// NewLogger builds the runtime logger from the logging section.
func NewLogger(config domain.Config) (*zap.Logger, error) {
	return telemetry.NewLogger(config.Logging)
}
