// Package storage provides the Redis and filesystem implementations of
// pkg/storage.Storage.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/haunted-mansion/pkg/state"
	"github.com/jwebster45206/haunted-mansion/pkg/storage"
)

const saveKeyPrefix = "mansion:save:"

// Saves expire after a week of inactivity; every persist refreshes the TTL.
const saveTTL = 7 * 24 * time.Hour

// RedisStorage persists session saves in Redis.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
}

// Ensure RedisStorage implements Storage interface
var _ storage.Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(redisURL string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})
	return &RedisStorage{
		client: rdb,
		logger: logger,
	}
}

// NewRedisStorageWithClient wraps an existing client, used by tests.
func NewRedisStorageWithClient(client *redis.Client, logger *slog.Logger) *RedisStorage {
	return &RedisStorage{client: client, logger: logger}
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available during startup.
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)
			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}
		r.logger.Info("Redis connection established")
		return nil
	}
	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

func (r *RedisStorage) SaveGame(ctx context.Context, id string, save *state.Save) error {
	data, err := json.Marshal(save)
	if err != nil {
		r.logger.Error("Failed to marshal save", "id", id, "error", err)
		return fmt.Errorf("failed to marshal save: %w", err)
	}
	if err := r.client.Set(ctx, saveKeyPrefix+id, string(data), saveTTL).Err(); err != nil {
		r.logger.Error("Failed to save game", "id", id, "error", err)
		return fmt.Errorf("failed to save game: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadGame(ctx context.Context, id string) (*state.Save, error) {
	cmd := r.client.Get(ctx, saveKeyPrefix+id)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Not found is not an error
		}
		r.logger.Error("Failed to load game", "id", id, "error", err)
		return nil, fmt.Errorf("failed to load game: %w", err)
	}

	var save state.Save
	if err := json.Unmarshal([]byte(cmd.Val()), &save); err != nil {
		r.logger.Error("Failed to unmarshal save", "id", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal save: %w", err)
	}
	return &save, nil
}

func (r *RedisStorage) DeleteGame(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, saveKeyPrefix+id).Err(); err != nil {
		r.logger.Error("Failed to delete save", "id", id, "error", err)
		return fmt.Errorf("failed to delete save: %w", err)
	}
	return nil
}

// Client exposes the underlying redis client for the event broadcaster.
func (r *RedisStorage) Client() *redis.Client {
	return r.client
}
