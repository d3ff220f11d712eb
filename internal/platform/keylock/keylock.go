// Package keylock provides short-lived exclusive locks keyed by string.
package keylock

import (
	"context"
	"sync"
	"time"
)

// Locker grants at most one holder per key. A lock expires after ttl even if never released.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(), ok bool, err error)
}

type entry struct {
	token   uint64
	expires time.Time
}

// Local is an in-process Locker used when no shared store is configured.
type Local struct {
	mu   sync.Mutex
	held map[string]entry
	seq  uint64
	now  func() time.Time
}

func NewLocal() *Local {
	return &Local{held: map[string]entry{}, now: time.Now}
}

func (l *Local) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if e, ok := l.held[key]; ok && now.Before(e.expires) {
		return nil, false, nil
	}
	l.seq++
	tok := l.seq
	l.held[key] = entry{token: tok, expires: now.Add(ttl)}
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if e, ok := l.held[key]; ok && e.token == tok {
				delete(l.held, key)
			}
		})
	}, true, nil
}
