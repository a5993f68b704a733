package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"marketgram/tools/errs"
)

// NewRedisClient builds and pings a redis client for the participants cache.
func NewRedisClient(addr, password string, db, poolSize int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: poolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errs.WrapMsg(err, "redis ping")
	}
	return rdb, nil
}
