// Package lock serialises work keyed by an external identifier using redis.
package lock

import (
	"context"
	"time"

	"github.com/farellandr/tixflow/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "order:lock:"

// releaseScript deletes the key only while it still holds our token, so an
// expired holder never removes a lock taken over by someone else.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client   *redis.Client
	ttl      time.Duration
	newToken func() string
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl, newToken: uuid.NewString}
}

// Acquire takes the lock for key or fails with a ConflictError when another
// holder has it. The returned release func is safe to call once.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := l.newToken()
	ok, err := l.client.SetNX(ctx, keyPrefix+key, token, l.ttl).Result()
	if err != nil {
		return nil, domain.DependencyError{Dependency: "redis", Timeout: ctx.Err() != nil, Err: err}
	}
	if !ok {
		return nil, domain.ConflictError{Resource: "order", Msg: "payment is already being processed"}
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		releaseScript.Run(releaseCtx, l.client, []string{keyPrefix + key}, token)
	}, nil
}
