package blob

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "storefront:blob:"

type redisRepo struct {
	rdb *redis.Client
}

// NewRedis stores blobs as plain Redis strings without expiry.
func NewRedis(rdb *redis.Client) Repository {
	return &redisRepo{rdb: rdb}
}

func (r *redisRepo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (r *redisRepo) Set(ctx context.Context, key string, value []byte) error {
	return r.rdb.Set(ctx, redisKeyPrefix+key, value, 0).Err()
}
