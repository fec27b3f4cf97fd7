package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"inventory-automation/app/domain"
	"inventory-automation/config"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return rdb, nil
}

type redisJobLocker struct {
	client *redislock.Client
}

func NewRedisJobLocker(rdb redis.UniversalClient) domain.JobLocker {
	return &redisJobLocker{client: redislock.New(rdb)}
}

func (l *redisJobLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (domain.JobLock, error) {
	lock, err := l.client.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: %s", domain.ErrLockNotObtained, key)
	}
	if err != nil {
		slog.ErrorContext(ctx, "[redisJobLocker] Obtain", "key", key, "error", err)
		return nil, err
	}

	return lock, nil
}
