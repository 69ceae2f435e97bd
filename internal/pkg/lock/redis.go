package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/piresc/ridertrack/internal/pkg/logger"
	"github.com/piresc/ridertrack/internal/pkg/retry"
)

// releaseScript deletes the lock only if it still holds our token, so an
// expired lock taken over by another instance is left alone
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var errNotAcquired = errors.New("lock held elsewhere")

// Redis is a Locker shared by every instance talking to the same Redis. The
// lock expires after ttl even if the holder dies.
type Redis struct {
	client  *redis.Client
	ttl     time.Duration
	wait    time.Duration
	retrier *retry.Retrier
}

// NewRedis creates a Redis locker. Keys expire after ttl and Lock gives up
// with ErrLockTimeout after wait.
func NewRedis(client *redis.Client, ttl, wait time.Duration) *Redis {
	return &Redis{
		client: client,
		ttl:    ttl,
		wait:   wait,
		retrier: retry.New(retry.Config{
			MaxRetries:  1 << 20, // bounded by wait
			BaseDelay:   5 * time.Millisecond,
			MaxDelay:    100 * time.Millisecond,
			Multiplier:  2,
			Jitter:      true,
			IsRetryable: func(err error) bool { return errors.Is(err, errNotAcquired) },
		}, nil),
	}
}

// Lock polls SET NX PX with backoff until acquired. It gives up once the wait elapses or ctx is done.
func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()

	waitCtx, cancel := context.WithTimeout(ctx, r.wait)
	defer cancel()

	err := r.retrier.Execute(waitCtx, func(ctx context.Context) error {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			return fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if !ok {
			return errNotAcquired
		}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, errNotAcquired) {
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		}
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// the caller's ctx may already be cancelled, release regardless
			relCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := releaseScript.Run(relCtx, r.client, []string{key}, token).Err(); err != nil {
				logger.Warn("Failed to release lock", logger.String("key", key), logger.Err(err))
			}
		})
	}, nil
}
