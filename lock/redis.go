package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/amirrezaask/cachestore/errors"
)

// deletes KEYS[1] only while it still holds this holder's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Redis struct {
	*redis.Client
	newToken func() string
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{Client: client, newToken: uuid.NewString}
}

// Lock takes key for at most ttl with a single SET NX holding a fresh token.
// The returned release deletes key only if that token is still there, so a
// holder whose ttl ran out cannot drop a lock someone else took since.
func (r *Redis) Lock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	token := r.newToken()
	ok, err := r.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, errors.Wrap(err, "cannot acquire lock %s", key)
	}
	if !ok {
		return nil, errors.Wrap(ErrLocked, "key('%s')", key)
	}

	return func(ctx context.Context) error {
		err := releaseScript.Run(ctx, r.Client, []string{key}, token).Err()
		return errors.Wrap(err, "cannot release lock %s", key)
	}, nil
}
