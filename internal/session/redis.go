package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the session in a Redis hash at kashi:{namespace}:session.
type RedisStore struct {
	rdb       *redis.Client
	namespace string
	ttl       time.Duration
}

// NewRedisStore creates a store using the given connection options.
//
// Parameters:
//   - redisOpts: Redis connection options (address, password, DB, etc.)
//   - namespace: key namespace, usually the local user name (must not be empty)
//   - ttl: session lifetime; 0 keeps it until logout
func NewRedisStore(redisOpts *redis.Options, namespace string, ttl time.Duration) (*RedisStore, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace cannot be empty")
	}

	return &RedisStore{
		rdb:       redis.NewClient(redisOpts),
		namespace: namespace,
		ttl:       ttl,
	}, nil
}

// NewRedisStoreFromURL parses a redis:// URL and creates a store.
func NewRedisStoreFromURL(url, namespace string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	return NewRedisStore(opts, namespace, ttl)
}

// Key returns the Redis key holding the session of namespace.
func Key(namespace string) string {
	return fmt.Sprintf("kashi:%s:session", namespace)
}

// Close closes the Redis connection.
func (r *RedisStore) Close() error {
	return r.rdb.Close()
}

// Ping verifies Redis connectivity.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// Load implements Store.
func (r *RedisStore) Load(ctx context.Context) (*Session, error) {
	hash, err := r.rdb.HGetAll(ctx, Key(r.namespace)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read session from Redis: %w", err)
	}

	// HGetAll returns an empty map for non-existent keys
	if len(hash) == 0 {
		return nil, ErrNoSession
	}

	s, err := fromHash(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize session: %w", err)
	}
	return s, nil
}

// Save implements Store. The hash is replaced, not merged.
func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid session: %w", err)
	}

	key := Key(r.namespace)
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, toHash(s))
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write session to Redis: %w", err)
	}
	return nil
}

// Clear implements Store.
func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, Key(r.namespace)).Err(); err != nil {
		return fmt.Errorf("failed to remove session from Redis: %w", err)
	}
	return nil
}
