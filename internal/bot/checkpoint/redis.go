package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"proppanda_backend/internal/bot/state"
	"proppanda_backend/platform/config"
)

const keyPrefix = "checkpoint:"

// RedisStore keeps checkpoints in Redis as JSON with a sliding TTL. A thread
// that stays quiet past the TTL simply starts over.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis using the configured URL.
func NewRedisStore(cfg config.RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return &RedisStore{
		client: redis.NewClient(opts),
		ttl:    cfg.GetCheckpointTTL(),
	}, nil
}

// NewRedisStoreWithClient wraps an existing client. Used by tests.
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Load fetches and decodes a thread's checkpoint.
func (s *RedisStore) Load(ctx context.Context, threadID string) (*state.ConversationState, error) {
	data, err := s.client.Get(ctx, keyPrefix+threadID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	var st state.ConversationState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %w", err)
	}
	return &st, nil
}

// Save encodes and writes the checkpoint, refreshing the TTL.
func (s *RedisStore) Save(ctx context.Context, st *state.ConversationState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+st.ThreadID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// Delete removes a thread's checkpoint.
func (s *RedisStore) Delete(ctx context.Context, threadID string) error {
	if err := s.client.Del(ctx, keyPrefix+threadID).Err(); err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// Ping verifies the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
