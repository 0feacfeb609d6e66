package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"hellmusic/internal/config"
	"hellmusic/internal/models"

	"github.com/redis/go-redis/v9"
)

const activeVCKey = "active_vc"

// RedisRuntimeRepository shares runtime state between bot processes.
// Active chats live in one hash keyed by chat id, loops in plain keys and
// watcher flags in a hash per chat.
type RedisRuntimeRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisRuntimeRepository(client *redis.Client, ttl time.Duration) *RedisRuntimeRepository {
	return &RedisRuntimeRepository{
		client: client,
		ttl:    ttl,
	}
}

var errNilClient = errors.New("redis client is nil")

func loopKey(chatID int64) string {
	return fmt.Sprintf("loop:%d", chatID)
}

func watcherKey(chatID int64) string {
	return fmt.Sprintf("watcher:%d", chatID)
}

func (r *RedisRuntimeRepository) GetActiveVC(ctx context.Context) ([]models.ActiveVC, error) {
	if r.client == nil {
		return nil, errNilClient
	}
	vals, err := r.client.HGetAll(ctx, activeVCKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get active chats from redis: %w", err)
	}

	out := make([]models.ActiveVC, 0, len(vals))
	for _, raw := range vals {
		var vc models.ActiveVC
		if err := json.Unmarshal([]byte(raw), &vc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal active chat: %w", err)
		}
		out = append(out, vc)
	}

	// Hash order is random; keep insertion order the way the memory backend does.
	sort.Slice(out, func(i, j int) bool {
		if out[i].JoinTime.Equal(out[j].JoinTime) {
			return out[i].ChatID < out[j].ChatID
		}
		return out[i].JoinTime.Before(out[j].JoinTime)
	})
	return out, nil
}

// AddActiveVC uses HSETNX so the first registration of a chat wins.
func (r *RedisRuntimeRepository) AddActiveVC(ctx context.Context, vc models.ActiveVC) error {
	if r.client == nil {
		return errNilClient
	}
	data, err := json.Marshal(vc)
	if err != nil {
		return fmt.Errorf("failed to marshal active chat: %w", err)
	}

	field := strconv.FormatInt(vc.ChatID, 10)
	if err := r.client.HSetNX(ctx, activeVCKey, field, data).Err(); err != nil {
		return fmt.Errorf("failed to add active chat to redis: %w", err)
	}
	return nil
}

func (r *RedisRuntimeRepository) IsActiveVC(ctx context.Context, chatID int64) (bool, error) {
	if r.client == nil {
		return false, errNilClient
	}
	ok, err := r.client.HExists(ctx, activeVCKey, strconv.FormatInt(chatID, 10)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check active chat in redis: %w", err)
	}
	return ok, nil
}

func (r *RedisRuntimeRepository) RemoveActiveVC(ctx context.Context, chatID int64) error {
	if r.client == nil {
		return errNilClient
	}
	if err := r.client.HDel(ctx, activeVCKey, strconv.FormatInt(chatID, 10)).Err(); err != nil {
		return fmt.Errorf("failed to remove active chat from redis: %w", err)
	}
	return nil
}

func (r *RedisRuntimeRepository) SetLoop(ctx context.Context, chatID int64, loop int) error {
	if r.client == nil {
		return errNilClient
	}
	if err := r.client.Set(ctx, loopKey(chatID), loop, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set loop in redis: %w", err)
	}
	return nil
}

func (r *RedisRuntimeRepository) GetLoop(ctx context.Context, chatID int64) (int, error) {
	if r.client == nil {
		return 0, errNilClient
	}
	loop, err := r.client.Get(ctx, loopKey(chatID)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get loop from redis: %w", err)
	}
	return loop, nil
}

func (r *RedisRuntimeRepository) SetWatcher(ctx context.Context, chatID int64, key string, watch bool) error {
	if r.client == nil {
		return errNilClient
	}
	hkey := watcherKey(chatID)
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, hkey, key, strconv.FormatBool(watch))
	if r.ttl > 0 {
		pipe.Expire(ctx, hkey, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set watcher in redis: %w", err)
	}
	return nil
}

func (r *RedisRuntimeRepository) GetWatcher(ctx context.Context, chatID int64, key string) (bool, error) {
	if r.client == nil {
		return false, errNilClient
	}
	val, err := r.client.HGet(ctx, watcherKey(chatID), key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get watcher from redis: %w", err)
	}
	watch, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("failed to parse watcher %q: %w", val, err)
	}
	return watch, nil
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
