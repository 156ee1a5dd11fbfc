package utils

import (
	"log"

	"creatorhub/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Global logger instance
var Logger *zap.Logger

// InitializeLogger sets up the logging configuration
func InitializeLogger() {
	var cfg zap.Config

	if config.IsProduction() {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(parseLevel(config.AppConfig.LogLevel, zap.InfoLevel))
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(parseLevel(config.AppConfig.LogLevel, zap.DebugLevel))
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	// Create logger
	var err error
	Logger, err = cfg.Build()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	zap.ReplaceGlobals(Logger)
}

// GetLogger retrieves the global logger
func GetLogger() *zap.Logger {
	if Logger == nil {
		InitializeLogger()
	}
	return Logger
}

func parseLevel(raw string, fallback zapcore.Level) zapcore.Level {
	if raw == "" {
		return fallback
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(raw)); err != nil {
		return fallback
	}
	return lvl
}
