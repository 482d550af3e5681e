package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "shopfloor:"

// Redis implements storage with redis strings, all keys prefixed
type Redis struct {
	client redis.Cmdable
	prefix string
	closer func() error
}

// RedisParams defines redis connection and key prefix
type RedisParams struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedis makes storage for provided client. The caller owns the client lifecycle.
func NewRedis(client redis.Cmdable, prefix string) *Redis {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix, closer: func() error { return nil }}
}

// NewRedisWithAddr connects to redis and checks it is reachable. Client closed by Close.
func NewRedisWithAddr(ctx context.Context, p RedisParams) (*Redis, error) {
	if p.Addr == "" {
		return nil, errors.New("empty redis address")
	}
	client := redis.NewClient(&redis.Options{Addr: p.Addr, Password: p.Password, DB: p.DB})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", p.Addr, err)
	}
	res := NewRedis(client, p.Prefix)
	res.closer = client.Close
	return res, nil
}

// Get retrieves value for the key
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	res, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return res, nil
}

// Set stores value for the key without expiration
func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Remove deletes the key, no error if missing
func (r *Redis) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// Close closes redis client if it was created by NewRedisWithAddr
func (r *Redis) Close() error {
	return r.closer()
}
