package telemetry

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"wpmcp/internal/domain"
)

// NewLogger builds the process logger. Console output always goes to stderr
// so the stdio transport keeps stdout for protocol frames. When cfg.File is
// set, entries are also written to a rotating file.
func NewLogger(cfg domain.LoggingConfig) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.Lock(os.Stderr), level),
	}
	if cfg.File != "" {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderCfg),
			zapcore.AddSync(newRotatingFile(cfg)),
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

func newRotatingFile(cfg domain.LoggingConfig) *lumberjack.Logger {
	maxSize := cfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = domain.DefaultLogMaxSizeMB
	}
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    maxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
}

func parseLevel(raw string) (zapcore.Level, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("parse log level: %w", err)
	}
	return level, nil
}
