package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gravitas-015/hexcore/hex"
)

// Redis shares conversions between server instances.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis wraps client. Keys are namespaced with prefix and expire after ttl.
func NewRedis(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (r *Redis) cubeKey(x uint64) string {
	return r.prefix + "s2c:" + strconv.FormatUint(x, 10)
}

func (r *Redis) indexKey(c hex.Cube) string {
	return r.prefix + "c2s:" + encodeCube(c)
}

func (r *Redis) GetCube(ctx context.Context, x uint64) (hex.Cube, bool, error) {
	val, err := r.client.Get(ctx, r.cubeKey(x)).Result()
	if errors.Is(err, redis.Nil) {
		return hex.Cube{}, false, nil
	}
	if err != nil {
		return hex.Cube{}, false, fmt.Errorf("redis get cube: %w", err)
	}
	c, err := decodeCube(val)
	if err != nil {
		return hex.Cube{}, false, err
	}
	return c, true, nil
}

func (r *Redis) SetCube(ctx context.Context, x uint64, c hex.Cube) error {
	if err := r.client.Set(ctx, r.cubeKey(x), encodeCube(c), r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cube: %w", err)
	}
	return nil
}

func (r *Redis) GetIndex(ctx context.Context, c hex.Cube) (uint64, bool, error) {
	val, err := r.client.Get(ctx, r.indexKey(c)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis get index: %w", err)
	}
	x, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("malformed index %q: %w", val, err)
	}
	return x, true, nil
}

func (r *Redis) SetIndex(ctx context.Context, c hex.Cube, x uint64) error {
	if err := r.client.Set(ctx, r.indexKey(c), strconv.FormatUint(x, 10), r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set index: %w", err)
	}
	return nil
}
