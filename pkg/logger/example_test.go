package logger_test

import (
	"log/slog"

	"github.com/soundprediction/kgcurate/pkg/logger"
)

func ExampleNewDefaultLogger() {
	// Create a logger with default settings
	log := logger.NewDefaultLogger(slog.LevelDebug)

	// Log different levels
	log.Debug("Building entity index")
	log.Info("Wrote split", "split", "train", "count", 48213)
	log.Warn("Quota under-filled", "split", "test", "quota", 500, "got", 312)
	log.Error("Failed to read triplets", "path", "data/fb15k.ttl")
}

func ExampleNewLogger() {
	// Create a logger with custom configuration
	log, err := logger.NewLogger(logger.Options{Level: slog.LevelInfo, Format: "logfmt", Prefix: "kgcurate"})
	if err != nil {
		panic(err)
	}

	// Log with attributes
	log.Info("Pruned split", "split", "valid", "kept", 4870, "kept_off", 487)
}
