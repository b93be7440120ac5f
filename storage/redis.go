package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amirrezaask/cachestore/errors"
	"github.com/amirrezaask/cachestore/retry"
)

type Redis struct {
	*redis.Client
	// ScanCount is the COUNT hint passed to SCAN by GetAllKeys; 0 lets the server pick.
	ScanCount int64
}

type RedisConfig struct {
	Host         string        `env:"REDIS_HOST" envDefault:"localhost"`
	Port         int           `env:"REDIS_PORT" envDefault:"6379"`
	Username     string        `env:"REDIS_USERNAME"`
	Password     string        `env:"REDIS_PASSWORD"`
	DB           int           `env:"REDIS_DB"`
	PingRetries  int           `env:"REDIS_PING_RETRIES" envDefault:"3"`
	PingInterval time.Duration `env:"REDIS_PING_INTERVAL" envDefault:"1s"`
}

// NewRedis connects and pings the server, retrying per c.PingRetries.
func NewRedis(ctx context.Context, c RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		DB:       c.DB,
		Username: c.Username,
		Password: c.Password,
	})
	err := retry.Do(ctx, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}, c.PingRetries, c.PingInterval)
	if err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "cannot reach redis at %s:%d", c.Host, c.Port)
	}
	return &Redis{Client: client}, nil
}

func NewRedisFromClient(client *redis.Client) *Redis {
	return &Redis{Client: client}
}

func (r *Redis) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, err := r.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "redis get %s", key)
	}
	return v, true, nil
}

func (r *Redis) SetItem(ctx context.Context, key string, value string) error {
	return errors.Wrap(r.Client.Set(ctx, key, value, 0).Err(), "redis set %s", key)
}

func (r *Redis) RemoveItem(ctx context.Context, key string) error {
	return errors.Wrap(r.Client.Del(ctx, key).Err(), "redis del %s", key)
}

// MultiRemove issues a single DEL for all keys.
func (r *Redis) MultiRemove(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	return errors.Wrap(r.Client.Del(ctx, keys...).Err(), "redis del %d keys", len(keys))
}

// GetAllKeys walks the keyspace with SCAN. SCAN may report a key more than
// once; callers that need uniqueness must dedupe.
func (r *Redis) GetAllKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := r.Client.Scan(ctx, 0, "*", r.ScanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(err, "redis scan")
	}
	return keys, nil
}
