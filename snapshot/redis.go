package snapshot

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ Repository = (*redisRepository)(nil)

type redisRepository struct {
	client redis.Cmdable
	logger *zap.Logger
}

// NewRedisRepository stores snapshots as plain string values. Keys never expire.
func NewRedisRepository(client redis.Cmdable, logger *zap.Logger) Repository {
	return &redisRepository{
		client: client,
		logger: logger,
	}
}

func (r *redisRepository) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		r.logger.Error("failed to get cart snapshot", zap.String("key", key), zap.Error(err))
		return "", false, err
	}
	return val, true, nil
}

func (r *redisRepository) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		r.logger.Error("failed to set cart snapshot", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}
