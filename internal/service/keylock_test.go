package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLocalLocker_SerializesSameKey(t *testing.T) {
	locks := NewLocalLocker()
	var (
		inside  int32
		maxSeen int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locks.Lock(context.Background(), "instructor:иванов")
			if err != nil {
				t.Error(err)
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxSeen)
				if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()
	if maxSeen != 1 {
		t.Errorf("expected at most one holder, saw %d", maxSeen)
	}
}

func TestLocalLocker_DistinctKeysIndependent(t *testing.T) {
	locks := NewLocalLocker()
	unlockA, err := locks.Lock(context.Background(), "a")
	if err != nil {
		t.Fatal(err)
	}
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	unlockB, err := locks.Lock(ctx, "b")
	if err != nil {
		t.Fatalf("distinct key must not block: %v", err)
	}
	unlockB()
}

func TestLocalLocker_RespectsContext(t *testing.T) {
	locks := NewLocalLocker()
	unlock, _ := locks.Lock(context.Background(), "k")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := locks.Lock(ctx, "k"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}

	unlock()
	unlock() // second call is a no-op
	again, err := locks.Lock(context.Background(), "k")
	if err != nil {
		t.Fatalf("lock should be free again: %v", err)
	}
	again()
}

type fakeRemoteLock struct {
	mu       sync.Mutex
	held     map[string]bool
	acquired int
	fail     error
}

func (f *fakeRemoteLock) Lock(_ context.Context, key string, _ time.Duration) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	if f.held[key] {
		return nil, errors.New("held")
	}
	f.held[key] = true
	f.acquired++
	return func() {
		f.mu.Lock()
		delete(f.held, key)
		f.mu.Unlock()
	}, nil
}

func TestDistributedLocker(t *testing.T) {
	remote := &fakeRemoteLock{held: make(map[string]bool)}
	locks := NewDistributedLocker(remote, time.Minute)

	unlock, err := locks.Lock(context.Background(), "program:1")
	if err != nil {
		t.Fatal(err)
	}
	if !remote.held["program:1"] {
		t.Error("remote lock should be held")
	}
	unlock()
	if remote.held["program:1"] {
		t.Error("remote lock should be released")
	}

	remote.fail = errors.New("redis down")
	if _, err := locks.Lock(context.Background(), "program:1"); err == nil {
		t.Fatal("expected remote failure to surface")
	}
	remote.fail = nil
	// the local half must have been released on failure
	unlock, err = locks.Lock(context.Background(), "program:1")
	if err != nil {
		t.Fatalf("local lock leaked: %v", err)
	}
	unlock()
}
