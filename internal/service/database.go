package service

import (
	"context"
	"fmt"
	"iter"
	"time"

	"hellmusic/internal/domain"
	"hellmusic/internal/logging"
	"hellmusic/internal/metrics"
	"hellmusic/internal/models"

	"github.com/rs/zerolog"
)

// Database is the persistence facade used by the bot's handlers. Persistent
// records go to store, active voice chats and per-chat toggles to runtime.
type Database struct {
	store   domain.Store
	runtime domain.RuntimeRepository
	bus     domain.EventPublisher
	logger  *zerolog.Logger
	timeout time.Duration
}

// NewDatabase wires the facade. bus may be nil when nobody listens for
// access-list changes.
func NewDatabase(store domain.Store, runtime domain.RuntimeRepository, bus domain.EventPublisher, logger *zerolog.Logger) *Database {
	return &Database{
		store:   store,
		runtime: runtime,
		bus:     bus,
		logger:  logging.Component(logger, "database"),
		timeout: models.DefaultStoreTimeout,
	}
}

// WithTimeout overrides the per-call deadline applied to store operations.
func (d *Database) WithTimeout(timeout time.Duration) *Database {
	if timeout > 0 {
		d.timeout = timeout
	}
	return d
}

func (d *Database) Backend() string {
	return d.store.Backend()
}

// indexer is implemented by stores that keep uniqueness in indexes.
type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// Connect checks that the store is reachable and ensures its indexes.
func (d *Database) Connect(ctx context.Context) error {
	if err := d.Ping(ctx); err != nil {
		return err
	}
	if ix, ok := d.store.(indexer); ok {
		err := observe(ctx, d, "ensure_indexes", ix.EnsureIndexes)
		if err != nil {
			return fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
		}
	}
	d.logger.Info().Str("backend", d.store.Backend()).Msg("Database connected")
	return nil
}

// Ping checks reachability without logging. Health checks call it.
func (d *Database) Ping(ctx context.Context) error {
	err := observe(ctx, d, "ping", d.store.Ping)
	if err != nil {
		return fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}
	return nil
}

func (d *Database) Close(ctx context.Context) error {
	if err := d.store.Close(ctx); err != nil {
		return fmt.Errorf("failed to close %s store: %w", d.store.Backend(), err)
	}
	return nil
}

// observe runs fn under the store deadline and records its outcome.
func observe(ctx context.Context, d *Database, op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	metrics.ObserveStoreOp(d.store.Backend(), op, start, err)
	if err != nil {
		d.logger.Debug().Err(err).Str("op", op).Msg("Store operation failed")
	}
	return err
}

func observeValue[T any](ctx context.Context, d *Database, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var v T
	err := observe(ctx, d, op, func(ctx context.Context) error {
		var err error
		v, err = fn(ctx)
		return err
	})
	return v, err
}

// observeSeq records a cursor once the caller stops iterating. Cursors are not
// bound to the store deadline because the caller controls their lifetime.
func observeSeq[T any](d *Database, op string, seq iter.Seq2[*T, error]) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		start := time.Now()
		var failed error
		defer func() {
			metrics.ObserveStoreOp(d.store.Backend(), op, start, failed)
		}()

		for v, err := range seq {
			if err != nil {
				failed = err
			}
			if !yield(v, err) {
				return
			}
		}
	}
}

func (d *Database) publish(eventType string, payload interface{}) {
	if d.bus == nil {
		return
	}
	if err := d.bus.PublishJSON(eventType, payload); err != nil {
		d.logger.Warn().Err(err).Str("event", eventType).Msg("Failed to publish event")
	}
}
