package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisTimeout = 3 * time.Second

// RedisBackend stores values as plain Redis strings. Useful when several
// processes on different hosts share a session.
type RedisBackend struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisBackend returns a Backend talking to the Redis server at addr.
func NewRedisBackend(addr string) *RedisBackend {
	return &RedisBackend{
		client:  redis.NewClient(&redis.Options{Addr: addr}),
		timeout: defaultRedisTimeout,
	}
}

func (r *RedisBackend) Get(key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	v, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return v, err
}

func (r *RedisBackend) Set(key string, value []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	return r.client.Set(ctx, key, value, 0).Err()
}

func (r *RedisBackend) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	return r.client.Del(ctx, key).Err()
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}

// Ping checks that the server is reachable.
func (r *RedisBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
