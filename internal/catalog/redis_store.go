package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "catalog"

// RedisStore shares catalog entries between service replicas. Each entry is a
// single JSON value, so a SET replaces it atomically.
type RedisStore struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
}

// RedisStoreConfig configures a RedisStore.
type RedisStoreConfig struct {
	// Prefix for keys; defaults to "catalog".
	Prefix string
	// Retention bounds how long Redis keeps an entry. Zero keeps it until the
	// next refresh overwrites it.
	Retention time.Duration
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.UniversalClient, cfg RedisStoreConfig) *RedisStore {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix, retention: cfg.Retention}
}

func (s *RedisStore) redisKey(key Key) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, key.Provider, key.Fingerprint)
}

func (s *RedisStore) Get(ctx context.Context, key Key) (*Entry, bool, error) {
	data, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read catalog entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, fmt.Errorf("failed to decode catalog entry: %w", err)
	}
	return &entry, true, nil
}

func (s *RedisStore) Put(ctx context.Context, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode catalog entry: %w", err)
	}

	if err := s.client.Set(ctx, s.redisKey(entry.Key()), data, s.retention).Err(); err != nil {
		return fmt.Errorf("failed to write catalog entry: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key Key) error {
	if err := s.client.Del(ctx, s.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete catalog entry: %w", err)
	}
	return nil
}
