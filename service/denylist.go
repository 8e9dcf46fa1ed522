package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist records revoked token ids until they would have expired anyway.
type Denylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	Revoked(ctx context.Context, jti string) (bool, error)
}

type RedisDenylist struct {
	client *redis.Client
}

func NewRedisDenylist(client *redis.Client) *RedisDenylist {
	return &RedisDenylist{client: client}
}

func denylistKey(jti string) string {
	return "token:revoked:" + jti
}

func (d *RedisDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // already expired
	}
	return d.client.Set(ctx, denylistKey(jti), 1, ttl).Err()
}

func (d *RedisDenylist) Revoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.client.Exists(ctx, denylistKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
