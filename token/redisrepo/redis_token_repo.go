// Package redisrepo keeps the token pair in Redis so several portal processes can share a profile
package redisrepo

import (
	"context"

	"github.com/jrsteele09/go-event-portal/token"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var _ token.Repo = (*RedisTokenRepo)(nil)

type RedisTokenRepo struct {
	client redis.UniversalClient
	prefix string
}

// New wraps an existing client. Keys are stored as prefix+key.
func New(client redis.UniversalClient, prefix string) (*RedisTokenRepo, error) {
	if client == nil {
		return nil, errors.New("[redisrepo.New] client is required")
	}
	return &RedisTokenRepo{client: client, prefix: prefix}, nil
}

// Dial connects to addr and checks the connection with PING
func Dial(ctx context.Context, addr, prefix string) (*RedisTokenRepo, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrapf(err, "[redisrepo.Dial] %s", addr)
	}
	return New(client, prefix)
}

func (r *RedisTokenRepo) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "[RedisTokenRepo.Get]")
	}
	return v, true, nil
}

// Set stores the value without a TTL; expiry is never tracked by the store
func (r *RedisTokenRepo) Set(ctx context.Context, key, value string) error {
	return errors.Wrap(r.client.Set(ctx, r.prefix+key, value, 0).Err(), "[RedisTokenRepo.Set]")
}

func (r *RedisTokenRepo) Remove(ctx context.Context, key string) error {
	return errors.Wrap(r.client.Del(ctx, r.prefix+key).Err(), "[RedisTokenRepo.Remove]")
}

func (r *RedisTokenRepo) Close() error {
	return r.client.Close()
}
