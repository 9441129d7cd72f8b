package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "boticord:posted_stats:"
	redisOpTimeout = 5 * time.Second
)

// redisStore shares submitted stats keys between poster replicas. Expiry is
// delegated to Redis key TTLs.
type redisStore struct {
	client   *redis.Client
	statsTTL time.Duration
}

func openRedis(rawURL string, opts Options) (*redisStore, error) {
	rOpts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &redisStore{
		client:   redis.NewClient(rOpts),
		statsTTL: opts.StatsTTL,
	}, nil
}

func (r *redisStore) Close() error {
	return r.client.Close()
}

func (r *redisStore) SeenStats(key string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	n, err := r.client.Exists(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

func (r *redisStore) MarkStats(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := r.client.Set(ctx, redisKeyPrefix+key, 1, r.statsTTL).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Len counts live keys under the store prefix.
func (r *redisStore) Len() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	var (
		n      int
		cursor uint64
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, redisKeyPrefix+"*", 100).Result()
		if err != nil {
			return 0, fmt.Errorf("redis scan: %w", err)
		}
		n += len(keys)
		if next == 0 {
			return n, nil
		}
		cursor = next
	}
}
