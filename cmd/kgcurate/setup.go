package kgcurate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/soundprediction/kgcurate"
	"github.com/soundprediction/kgcurate/pkg/config"
	"github.com/soundprediction/kgcurate/pkg/logger"
	"github.com/soundprediction/kgcurate/pkg/telemetry"
)

// session is the state shared by a command run.
type session struct {
	curator *kgcurate.Curator
	logger  *slog.Logger
	close   func()
}

// newSession loads the configuration and builds the logger and the curator.
func newSession() (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	handler, err := logger.NewHandler(logger.Options{
		Level:           level,
		Format:          cfg.Log.Format,
		ReportTimestamp: true,
	})
	if err != nil {
		return nil, err
	}

	closeFn := func() {}
	if path := cfg.Telemetry.ParquetPath; path != "" {
		ph, err := telemetry.NewParquetHandler(handler, path, uuid.NewString())
		if err != nil {
			return nil, err
		}
		handler = ph
		closeFn = func() {
			if err := ph.Close(); err != nil {
				fmt.Fprintln(os.Stderr, "Failed to flush telemetry:", err)
			}
		}
	}
	log := slog.New(handler)
	slog.SetDefault(log)

	curator, err := kgcurate.NewCurator(cfg, log)
	if err != nil {
		closeFn()
		return nil, err
	}
	return &session{curator: curator, logger: log, close: closeFn}, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
