package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultStaleRetention is how long an entry outlives its TTL in Redis so it
// can still be revalidated by ETag or served stale on upstream failure.
const DefaultStaleRetention = 7 * 24 * time.Hour

// RedisStore keeps JSON-encoded entries in Redis under a namespace prefix.
type RedisStore struct {
	client         redis.UniversalClient
	namespace      string
	staleRetention time.Duration
	now            func() time.Time
}

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Addr           string
	Password       string
	DB             int
	Namespace      string
	StaleRetention time.Duration
}

// NewRedisStore connects to Redis and verifies the connection with PING.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStoreFromClient(client, opts.Namespace, opts.StaleRetention), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client redis.UniversalClient, namespace string, staleRetention time.Duration) *RedisStore {
	if namespace == "" {
		namespace = "haircare"
	}
	if staleRetention <= 0 {
		staleRetention = DefaultStaleRetention
	}
	return &RedisStore{
		client:         client,
		namespace:      namespace,
		staleRetention: staleRetention,
		now:            time.Now,
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("redis get: %w", err)
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("decode cache entry: %w", err)
	}
	return entry, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, entry Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := s.client.Set(ctx, s.key(key), payload, s.expiration(entry)).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) key(key string) string {
	return s.namespace + ":" + key
}

// expiration is the soft TTL remaining plus the stale retention window.
func (s *RedisStore) expiration(entry Entry) time.Duration {
	remaining := entry.ExpiresAt.Sub(s.now())
	if remaining < 0 {
		remaining = 0
	}
	return remaining + s.staleRetention
}

var _ Store = (*RedisStore)(nil)
