package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"hellmusic/internal/domain"
	"hellmusic/internal/logging"
	"hellmusic/internal/metrics"
	"hellmusic/internal/models"

	"github.com/rs/zerolog"
)

// FailoverRuntimeRepository serves from primary until it fails, then from
// fallback. The primary is retried once per recheck interval.
type FailoverRuntimeRepository struct {
	primary  domain.RuntimeRepository
	fallback domain.RuntimeRepository
	logger   *zerolog.Logger
	isDown   atomic.Bool

	mu        sync.Mutex
	lastCheck time.Time
	recheck   time.Duration
}

func NewFailoverRuntimeRepository(primary, fallback domain.RuntimeRepository, logger *zerolog.Logger) *FailoverRuntimeRepository {
	return &FailoverRuntimeRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logging.Component(logger, "runtime_failover"),
		recheck:  models.FailoverRecheckInterval,
	}
}

// shouldTryPrimary reports whether the call goes to primary. While down it
// lets one call through per recheck interval.
func (r *FailoverRuntimeRepository) shouldTryPrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if time.Since(r.lastCheck) > r.recheck {
		r.lastCheck = time.Now()
		return true
	}
	return false
}

func (r *FailoverRuntimeRepository) markDown(op string, err error) {
	if !r.isDown.Swap(true) {
		r.logger.Error().Err(err).Str("op", op).Msg("Primary runtime repository failed, falling back to memory")
		metrics.IncRuntimeFailover()
	}
	r.mu.Lock()
	r.lastCheck = time.Now()
	r.mu.Unlock()
}

func (r *FailoverRuntimeRepository) markUp() {
	if r.isDown.Swap(false) {
		r.logger.Info().Msg("Primary runtime repository recovered")
	}
}

func failover[T any](r *FailoverRuntimeRepository, op string, call func(domain.RuntimeRepository) (T, error)) (T, error) {
	if r.shouldTryPrimary() {
		v, err := call(r.primary)
		if err == nil {
			r.markUp()
			return v, nil
		}
		r.markDown(op, err)
	}
	return call(r.fallback)
}

func (r *FailoverRuntimeRepository) GetActiveVC(ctx context.Context) ([]models.ActiveVC, error) {
	return failover(r, "get_active_vc", func(repo domain.RuntimeRepository) ([]models.ActiveVC, error) {
		return repo.GetActiveVC(ctx)
	})
}

func (r *FailoverRuntimeRepository) AddActiveVC(ctx context.Context, vc models.ActiveVC) error {
	_, err := failover(r, "add_active_vc", func(repo domain.RuntimeRepository) (struct{}, error) {
		return struct{}{}, repo.AddActiveVC(ctx, vc)
	})
	return err
}

func (r *FailoverRuntimeRepository) IsActiveVC(ctx context.Context, chatID int64) (bool, error) {
	return failover(r, "is_active_vc", func(repo domain.RuntimeRepository) (bool, error) {
		return repo.IsActiveVC(ctx, chatID)
	})
}

func (r *FailoverRuntimeRepository) RemoveActiveVC(ctx context.Context, chatID int64) error {
	_, err := failover(r, "remove_active_vc", func(repo domain.RuntimeRepository) (struct{}, error) {
		return struct{}{}, repo.RemoveActiveVC(ctx, chatID)
	})
	return err
}

func (r *FailoverRuntimeRepository) SetLoop(ctx context.Context, chatID int64, loop int) error {
	_, err := failover(r, "set_loop", func(repo domain.RuntimeRepository) (struct{}, error) {
		return struct{}{}, repo.SetLoop(ctx, chatID, loop)
	})
	return err
}

func (r *FailoverRuntimeRepository) GetLoop(ctx context.Context, chatID int64) (int, error) {
	return failover(r, "get_loop", func(repo domain.RuntimeRepository) (int, error) {
		return repo.GetLoop(ctx, chatID)
	})
}

func (r *FailoverRuntimeRepository) SetWatcher(ctx context.Context, chatID int64, key string, watch bool) error {
	_, err := failover(r, "set_watcher", func(repo domain.RuntimeRepository) (struct{}, error) {
		return struct{}{}, repo.SetWatcher(ctx, chatID, key, watch)
	})
	return err
}

func (r *FailoverRuntimeRepository) GetWatcher(ctx context.Context, chatID int64, key string) (bool, error) {
	return failover(r, "get_watcher", func(repo domain.RuntimeRepository) (bool, error) {
		return repo.GetWatcher(ctx, chatID, key)
	})
}
