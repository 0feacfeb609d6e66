package repository

import (
	"fmt"

	"hellmusic/internal/config"
	"hellmusic/internal/domain"
	"hellmusic/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NewRuntimeRepository builds the backend named by cfg.Backend. client may be
// nil for the memory backend.
func NewRuntimeRepository(cfg config.RuntimeConfig, client *redis.Client, logger *zerolog.Logger) (domain.RuntimeRepository, error) {
	switch cfg.Backend {
	case "", models.RuntimeBackendMemory:
		return NewMemoryRuntimeRepository(), nil
	case models.RuntimeBackendRedis:
		if client == nil {
			return nil, errNilClient
		}
		return NewRedisRuntimeRepository(client, cfg.TTL), nil
	case models.RuntimeBackendFailover:
		if client == nil {
			return nil, errNilClient
		}
		return NewFailoverRuntimeRepository(
			NewRedisRuntimeRepository(client, cfg.TTL),
			NewMemoryRuntimeRepository(),
			logger,
		), nil
	default:
		return nil, fmt.Errorf("runtime backend %q: %w", cfg.Backend, models.ErrUnknownBackend)
	}
}
