package logger

import (
	"fmt"
	"strings"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level       string
	Encoding    string
	ServiceName string
}

// New builds a zap logger wrapped by otelzap, so Ctx(ctx) log lines carry
// the active trace and span ids.
func New(cfg Config) (*otelzap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))

	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.TimeKey = "timestamp"

	if cfg.Encoding == "console" {
		config.Encoding = "console"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapLogger, err := config.Build()

	if err != nil {
		return nil, fmt.Errorf("failed to create zap logger: %w", err)
	}

	if cfg.ServiceName != "" {
		zapLogger = zapLogger.With(zap.String("service", cfg.ServiceName))
	}

	return otelzap.New(zapLogger, otelzap.WithMinLevel(level)), nil
}

func NewNop() *otelzap.Logger {
	return otelzap.New(zap.NewNop())
}
