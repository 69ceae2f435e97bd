package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Keyed is an in-process Locker holding one semaphore per active key.
// Entries are dropped once nobody holds or waits for them.
type Keyed struct {
	mu      sync.Mutex
	entries map[string]*keyEntry
	wait    time.Duration
}

type keyEntry struct {
	sem  chan struct{}
	refs int
}

// NewKeyed creates an in-process locker. Lock gives up with ErrLockTimeout
// after wait; a non positive wait is bounded by the caller's ctx only.
func NewKeyed(wait time.Duration) *Keyed {
	return &Keyed{entries: make(map[string]*keyEntry), wait: wait}
}

// Lock blocks until key is free. It gives up once the wait elapses or ctx is done.
func (k *Keyed) Lock(ctx context.Context, key string) (func(), error) {
	waitCtx := ctx
	if k.wait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, k.wait)
		defer cancel()
	}

	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &keyEntry{sem: make(chan struct{}, 1)}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-waitCtx.Done():
		k.release(key, e)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		}
		return nil, waitCtx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			k.release(key, e)
		})
	}, nil
}

func (k *Keyed) release(key string, e *keyEntry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
}

// Len returns the number of keys currently held or waited on
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
