// Package cli provides the initialization shared by cmd/tracker and
// cmd/tracker-shell.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"expensetracker/internal/backend"
	"expensetracker/internal/config"
	"expensetracker/internal/events"
	applog "expensetracker/internal/log"
	"expensetracker/internal/store"
)

// SetupLogger builds the application logger at the given level, writing text
// records to out, and installs it as the slog default. Unknown levels fall
// back to info.
func SetupLogger(level string, out io.Writer) *applog.Logger {
	lvl, err := applog.ParseLevel(level)
	cfg := applog.DefaultConfig()
	cfg.Level = lvl
	cfg.Component = applog.ComponentApp
	cfg.Output = out
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	if err != nil {
		logger.Warn("Unknown log level, using info", "level", level)
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// NewStore opens the configured record store through the backend factory.
// The returned close function releases it and is never nil.
func NewStore(ctx context.Context, cfg *config.Config, logger *applog.Logger) (store.Store, func() error, error) {
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backend.Config{
		Type:             backend.Type(cfg.DataBackend),
		SQLiteMemoryName: cfg.SQLiteMemoryName,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init %s store: %w", cfg.DataBackend, err)
	}
	return res.Store, res.Cleanup, nil
}

// NewPublisher connects the AMQP publisher when AMQP_URL is set. Events are
// optional: a broker that cannot be reached is logged and replaced by a no-op
// publisher.
func NewPublisher(cfg *config.Config, logger *applog.Logger) events.Publisher {
	if !cfg.EventsEnabled() {
		return events.Nop{}
	}
	p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		logger.Warn("AMQP unavailable, record events disabled",
			applog.FieldOperation, applog.OpStartup,
			applog.FieldError, err)
		return events.Nop{}
	}
	logger.Info("Publishing record events", "exchange", cfg.AMQPExchange)
	return p
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
