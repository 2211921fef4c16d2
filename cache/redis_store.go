package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"liquidshuffle/logger"
	"liquidshuffle/model"

	"github.com/redis/go-redis/v9"
)

// albumHashKey is the Redis hash holding every cached album, keyed by the
// derived cache key.
const albumHashKey = "album:cache"

// RedisStore persists albums in a single Redis hash. HSET per entry gives
// merge-not-replace semantics on the map as a whole; concurrent writers are
// last-writer-wins per key, never torn.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed album store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get fetches one cached album. A miss returns (nil, nil).
func (s *RedisStore) Get(ctx context.Context, key string) (*model.Album, error) {
	raw, err := s.client.HGet(ctx, albumHashKey, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached album %s: %w", key, err)
	}

	var album model.Album
	if err := json.Unmarshal([]byte(raw), &album); err != nil {
		// A corrupt entry is treated as a miss; the hydrator will overwrite it.
		logger.Warn("discarding corrupt cache entry",
			logger.String("key", key),
			logger.ErrorField(err))
		return nil, nil
	}

	return &album, nil
}

// Put stores one album under the given key.
func (s *RedisStore) Put(ctx context.Context, key string, album *model.Album) error {
	raw, err := json.Marshal(album)
	if err != nil {
		return fmt.Errorf("failed to marshal album %s: %w", album.ID, err)
	}

	if err := s.client.HSet(ctx, albumHashKey, key, raw).Err(); err != nil {
		return fmt.Errorf("failed to cache album %s: %w", key, err)
	}

	return nil
}

// PutMany stores a batch of albums in one round trip.
func (s *RedisStore) PutMany(ctx context.Context, entries map[string]*model.Album) error {
	if len(entries) == 0 {
		return nil
	}

	fields := make([]interface{}, 0, len(entries)*2)
	for key, album := range entries {
		raw, err := json.Marshal(album)
		if err != nil {
			return fmt.Errorf("failed to marshal album %s: %w", album.ID, err)
		}
		fields = append(fields, key, raw)
	}

	if err := s.client.HSet(ctx, albumHashKey, fields...).Err(); err != nil {
		return fmt.Errorf("failed to cache album batch: %w", err)
	}

	return nil
}
