// Package backend builds the record store selected by configuration.
package backend

import (
	"context"
	"fmt"

	applog "expensetracker/internal/log"
	"expensetracker/internal/store"
	"expensetracker/internal/store/memory"
	"expensetracker/internal/store/sqlite"
)

// Type names a store implementation.
type Type string

const (
	MemoryBackend Type = "memory"
	SQLiteBackend Type = "sqlite"
)

func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is known.
func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// Config holds what the factory needs to open a store.
type Config struct {
	Type Type

	// SQLite specific: name of the shared in-memory database
	SQLiteMemoryName string
}

// CleanupFunc releases a store's resources.
type CleanupFunc func() error

// Result is an opened store and its cleanup. Cleanup is never nil.
type Result struct {
	Store   store.Store
	Cleanup CleanupFunc
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// DefaultFactory implements Factory for the built-in stores.
type DefaultFactory struct {
	logger *applog.Logger
}

func NewFactory(logger *applog.Logger) *DefaultFactory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentStorage)
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %q", config.Type)
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	default:
		return f.createMemoryBackend(ctx)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*Result, error) {
	repo, err := sqlite.NewRepository(config.SQLiteMemoryName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite in-memory backend",
		applog.FieldBackend, SQLiteBackend,
		"name", config.SQLiteMemoryName)

	return &Result{Store: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context) (*Result, error) {
	f.logger.InfoContext(ctx, "Initialized memory backend", applog.FieldBackend, MemoryBackend)
	return &Result{
		Store:   memory.New(),
		Cleanup: func() error { return nil },
	}, nil
}
