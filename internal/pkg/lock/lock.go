// Package lock serializes work per key. Ping ingestion uses it to make the
// load, score, insert sequence for one rider device atomic.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/piresc/ridertrack/internal/pkg/config"
)

// ErrLockTimeout is returned when a lock could not be acquired in time
var ErrLockTimeout = errors.New("timed out acquiring lock")

// Locker acquires an exclusive lock on key. The returned unlock func is safe
// to call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Noop never blocks. It leaves concurrent pings for one binding unserialized.
type Noop struct{}

// Lock returns immediately with a no-op unlock
func (Noop) Lock(ctx context.Context, key string) (func(), error) {
	return func() {}, nil
}

// New builds the locker selected by mode. client is only needed for redis mode.
func New(mode string, client *redis.Client, ttl, wait time.Duration) (Locker, error) {
	switch mode {
	case "", config.BindingLockLocal:
		return NewKeyed(wait), nil
	case config.BindingLockRedis:
		if client == nil {
			return nil, fmt.Errorf("redis binding lock requires a redis client")
		}
		return NewRedis(client, ttl, wait), nil
	case config.BindingLockNone:
		return Noop{}, nil
	}
	return nil, fmt.Errorf("unknown binding lock mode %q", mode)
}
