package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisClient(opts RedisOptions) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: opts.Addr, Password: opts.Password, DB: opts.DB})
}

// RedisLocker implements Locker with SET NX PX.
type RedisLocker struct {
	client *redis.Client
	tokens TokenSource
}

func NewRedisLocker(client *redis.Client, tokens TokenSource) *RedisLocker {
	if tokens == nil {
		tokens = RandomToken
	}
	return &RedisLocker{client: client, tokens: tokens}
}

func (c *RedisLocker) AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := c.tokens()
	ok, err := c.client.SetNX(ctx, lockKey(key), token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

func (c *RedisLocker) ReleaseLock(ctx context.Context, key, token string) error {
	return releaseScript.Run(ctx, c.client, []string{lockKey(key)}, token).Err()
}

var _ Locker = (*RedisLocker)(nil)
