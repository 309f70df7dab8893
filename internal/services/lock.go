package services

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker grants a named lease to at most one holder until it expires.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

const lockKeyPrefix = "hsk:lock:"

// RedisLocker leases keys with SET NX so only one instance runs a job.
type RedisLocker struct {
	client *redis.Client
	owner  string
}

func NewRedisLocker(client *redis.Client, owner string) *RedisLocker {
	return &RedisLocker{client: client, owner: owner}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, lockKeyPrefix+key, l.owner, ttl).Result()
}

// LocalLocker is the single-process Locker.
type LocalLocker struct {
	mu     sync.Mutex
	now    func() time.Time
	leases map[string]time.Time
}

func NewLocalLocker(now func() time.Time) *LocalLocker {
	if now == nil {
		now = time.Now
	}
	return &LocalLocker{now: now, leases: make(map[string]time.Time)}
}

func (l *LocalLocker) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if until, ok := l.leases[key]; ok && now.Before(until) {
		return false, nil
	}
	for k, until := range l.leases {
		if !now.Before(until) {
			delete(l.leases, k)
		}
	}
	l.leases[key] = now.Add(ttl)
	return true, nil
}
