// Package store provides the key-value persistence backends for account
// records. The Redis store is the primary backend; the memory store is the
// degraded-mode fallback used when Redis is unreachable at startup.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const defaultCallTimeout = 5 * time.Second

// RedisConfig captures the settings for establishing a Redis connection.
type RedisConfig struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// Connect initialises a Redis client and validates connectivity with a ping.
// A default timeout is applied when none is provided.
func Connect(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

// RedisStore persists account keys in Redis under a shared prefix. Values are
// stored as JSON without expiry; session lifetime is tracked inside the user
// record itself, not via key TTLs.
type RedisStore struct {
	client *redis.Client
	prefix string
	log    zerolog.Logger
}

func NewRedisStore(client *redis.Client, prefix string, log zerolog.Logger) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, log: log}
}

func (s *RedisStore) key(key string) string {
	return s.prefix + ":" + key
}

// Get returns the raw JSON stored under key. A missing key is (nil, false),
// not an error.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("key", key).Msg("redis read failed")
		}
		return nil, false
	}
	return raw, true
}

// Set marshals value to JSON and writes it. Failures are reported as false so
// callers can queue the write for replay instead of erroring out.
func (s *RedisStore) Set(ctx context.Context, key string, value any) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("value not serialisable")
		return false
	}
	if err := s.client.Set(ctx, s.key(key), raw, 0).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("redis write failed")
		return false
	}
	return true
}

func (s *RedisStore) Remove(ctx context.Context, key string) {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("redis delete failed")
	}
}

func (s *RedisStore) Healthy(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
