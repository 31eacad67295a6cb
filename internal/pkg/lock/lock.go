// Package lock serializes work on a shared key, such as the generation of a
// settlement for one employee and period.
package lock

import (
	"context"
	"errors"
	"sync"
)

// ErrNotObtained is returned when the key stays held by someone else until
// the retry limit is reached or the context ends.
var ErrNotObtained = errors.New("lock not obtained")

// Locker obtains an exclusive lock on key. The returned release func must be
// called exactly once.
type Locker interface {
	Obtain(ctx context.Context, key string) (release func(), err error)
}

// LocalLocker is an in-process Locker for single-instance deployments and tests.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]chan struct{})}
}

func (l *LocalLocker) Obtain(ctx context.Context, key string) (func(), error) {
	for {
		l.mu.Lock()
		held, ok := l.locks[key]
		if !ok {
			ch := make(chan struct{})
			l.locks[key] = ch
			l.mu.Unlock()

			var once sync.Once
			return func() {
				once.Do(func() {
					l.mu.Lock()
					delete(l.locks, key)
					l.mu.Unlock()
					close(ch)
				})
			}, nil
		}
		l.mu.Unlock()

		select {
		case <-held:
		case <-ctx.Done():
			return nil, ErrNotObtained
		}
	}
}
