package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gigaverse-tools/dungeon-agent/pkg/snapshot"
)

const snapshotKeyPrefix = "snapshot:"

// RedisStorage implements the Storage interface using Redis for
// session snapshots. There is no TTL: snapshots live until the user
// clears the session.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

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

// WaitForConnection waits for Redis to become available (used during startup)
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

func (r *RedisStorage) SaveSnapshot(ctx context.Context, id uuid.UUID, gs *snapshot.GameSnapshot) error {
	gs.UpdatedAt = time.Now()

	data, err := json.Marshal(gs)
	if err != nil {
		r.logger.Error("Failed to marshal snapshot", "uuid", id, "error", err)
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	key := snapshotKeyPrefix + id.String()
	if err := r.client.Set(ctx, key, string(data), 0).Err(); err != nil {
		r.logger.Error("Failed to save snapshot", "uuid", id, "error", err)
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

func (r *RedisStorage) LoadSnapshot(ctx context.Context, id uuid.UUID) (*snapshot.GameSnapshot, error) {
	key := snapshotKeyPrefix + id.String()
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Not found
		}
		r.logger.Error("Failed to load snapshot", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var gs snapshot.GameSnapshot
	if err := json.Unmarshal([]byte(data), &gs); err != nil {
		r.logger.Error("Failed to unmarshal snapshot", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return &gs, nil
}

// DeleteSnapshot removes a session's persisted memory. This is the only
// way a snapshot is destroyed.
func (r *RedisStorage) DeleteSnapshot(ctx context.Context, id uuid.UUID) error {
	key := snapshotKeyPrefix + id.String()
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("Failed to delete snapshot", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

func (r *RedisStorage) ListSessions(ctx context.Context) ([]uuid.UUID, error) {
	keys, err := r.client.Keys(ctx, snapshotKeyPrefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(keys))
	for _, key := range keys {
		id, err := uuid.Parse(strings.TrimPrefix(key, snapshotKeyPrefix))
		if err != nil {
			r.logger.Warn("Skipping malformed snapshot key", "key", key)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
