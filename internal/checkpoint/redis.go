package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long an unanswered interrupt stays resumable.
const DefaultTTL = 40 * time.Minute

// RedisStore keeps checkpoints as plain values under <prefix><id>.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "checkpoint:"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// Dial parses a redis:// URL and checks the connection.
func Dial(ctx context.Context, redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL environment variable is required")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func (r *RedisStore) key(checkPointID string) string {
	return r.prefix + checkPointID
}

func (r *RedisStore) Get(ctx context.Context, checkPointID string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, r.key(checkPointID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get checkpoint: %w", err)
	}
	return data, true, nil
}

func (r *RedisStore) Set(ctx context.Context, checkPointID string, checkPoint []byte) error {
	if checkPointID == "" {
		return ErrEmptyID
	}
	if err := r.client.Set(ctx, r.key(checkPointID), checkPoint, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set checkpoint: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, checkPointID string) error {
	if err := r.client.Del(ctx, r.key(checkPointID)).Err(); err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// TTL reports the remaining lifetime of a checkpoint.
func (r *RedisStore) TTL(ctx context.Context, checkPointID string) (time.Duration, error) {
	ttl, err := r.client.TTL(ctx, r.key(checkPointID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get TTL: %w", err)
	}
	return ttl, nil
}
