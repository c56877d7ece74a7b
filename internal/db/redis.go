package db

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func NewRedisClient(ctx context.Context, url string, log *zap.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	log.Info("redis connected", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return client, nil
}

// FixedWindowLimiter counts hits per key in fixed windows stored in Redis.
type FixedWindowLimiter struct {
	rdb    redis.Cmdable
	limit  int
	window time.Duration
}

func NewFixedWindowLimiter(rdb redis.Cmdable, limit int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{rdb: rdb, limit: limit, window: window}
}

// Allow records one hit for key and reports whether it is within the
// limit. The counter and its expiry are set in one pipeline.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	var incr *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return false, err
	}
	return incr.Val() <= int64(l.limit), nil
}
