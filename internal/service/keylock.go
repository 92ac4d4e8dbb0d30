package service

import (
	"context"
	"sync"
	"time"
)

// KeyLocker serializes reconciliation writes per logical key (instructor name
// key, program id) so concurrent runs cannot race the same insert.
type KeyLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// DistributedLock is satisfied by *redis.Client
type DistributedLock interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// ── In-process ──

type localLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker a per-key mutex table for a single process
func NewLocalLocker() KeyLocker {
	return &localLocker{locks: make(map[string]*keyLock)}
}

func (l *localLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, kl, false)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(key, kl, true) })
	}, nil
}

func (l *localLocker) release(key string, kl *keyLock, held bool) {
	if held {
		<-kl.ch
	}
	l.mu.Lock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()
}

// ── Cross-process ──

type distributedLocker struct {
	local  KeyLocker
	remote DistributedLock
	ttl    time.Duration
}

// NewDistributedLocker takes the in-process lock first, then the redis lock,
// so goroutines of one process do not poll redis against each other.
func NewDistributedLocker(remote DistributedLock, ttl time.Duration) KeyLocker {
	return &distributedLocker{local: NewLocalLocker(), remote: remote, ttl: ttl}
}

func (d *distributedLocker) Lock(ctx context.Context, key string) (func(), error) {
	unlockLocal, err := d.local.Lock(ctx, key)
	if err != nil {
		return nil, err
	}
	unlockRemote, err := d.remote.Lock(ctx, key, d.ttl)
	if err != nil {
		unlockLocal()
		return nil, err
	}
	return func() {
		unlockRemote()
		unlockLocal()
	}, nil
}
