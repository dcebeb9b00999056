package backend

import (
	"context"
	"errors"
	"fmt"

	"expensetracker/internal/amqp"
	"expensetracker/internal/log"
	"expensetracker/internal/storage"
	"expensetracker/internal/store"
	"expensetracker/internal/store/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend implements Factory.CreateBackend. A broker that cannot be
// reached is logged and publishing is disabled; the store still works.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		st      store.Store
		closers []func() error
	)

	switch config.Type {
	case SQLiteBackend:
		dsn := config.SQLiteDSN
		if dsn == "" {
			dsn = storage.MemoryDSN
		}
		repo, err := storage.NewSQLiteRepository(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		st = repo
		closers = append(closers, repo.Close)
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "dsn", dsn)
	case MemoryBackend:
		mem := memory.New()
		st = mem
		closers = append(closers, mem.Close)
		f.logger.InfoContext(ctx, "Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	result := &BackendResult{Store: st}

	if config.AMQPURL != "" {
		pub, err := amqp.NewPublisher(ctx, config.AMQPURL, config.AMQPExchange, config.AMQPRoutingKey, f.logger)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP publisher, continuing without events", log.FieldError, err)
		} else {
			result.Publisher = pub
			closers = append(closers, pub.Close)
		}
	}

	result.Cleanup = func() error {
		var errs []error
		// Reverse order: publisher before store.
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
	return result, nil
}
