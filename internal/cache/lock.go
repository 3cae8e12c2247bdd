// Package cache provides the short-lived locks that serialize
// read-decide-append on a record list.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Locker grants exclusive, expiring ownership of a key. AcquireLock returns
// ok=false without error when another holder owns the key.
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	ReleaseLock(ctx context.Context, key, token string) error
}

// TokenSource produces lock ownership tokens.
type TokenSource func() string

func RandomToken() string { return uuid.NewString() }

func lockKey(key string) string {
	return "lock:" + key
}

type localLock struct {
	token   string
	expires time.Time
}

// LocalLocker is an in-process Locker for single-instance deployments.
type LocalLocker struct {
	mu     sync.Mutex
	locks  map[string]localLock
	tokens TokenSource
	now    func() time.Time
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{
		locks:  make(map[string]localLock),
		tokens: RandomToken,
		now:    time.Now,
	}
}

func (l *LocalLocker) AcquireLock(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if held, ok := l.locks[lockKey(key)]; ok && now.Before(held.expires) {
		return "", false, nil
	}
	token := l.tokens()
	l.locks[lockKey(key)] = localLock{token: token, expires: now.Add(ttl)}
	return token, true, nil
}

func (l *LocalLocker) ReleaseLock(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if held, ok := l.locks[lockKey(key)]; ok && held.token == token {
		delete(l.locks, lockKey(key))
	}
	return nil
}

var _ Locker = (*LocalLocker)(nil)
