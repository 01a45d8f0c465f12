package appointment

import (
	"context"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// InFlight marks a (visitor, appointment) mutation as pending so a second
// submit of the same mutation is refused until the first one returns.
type InFlight interface {
	Acquire(ctx context.Context, visitorID string, key Key) (release func(), err error)
}

func inFlightID(visitorID string, key Key) string {
	return visitorID + ":" + key.String()
}

type RedisInFlight struct {
	rdb    goredis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedisInFlight(rdb goredis.Cmdable, prefix string, ttl time.Duration) *RedisInFlight {
	return &RedisInFlight{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (f *RedisInFlight) Acquire(ctx context.Context, visitorID string, key Key) (func(), error) {
	k := f.prefix + inFlightID(visitorID, key)
	ok, err := f.rdb.SetNX(ctx, k, 1, f.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("in-flight marker: %w", err)
	}
	if !ok {
		return nil, ErrInFlight
	}
	return func() {
		_ = f.rdb.Del(context.WithoutCancel(ctx), k).Err()
	}, nil
}

type MemoryInFlight struct {
	mu      sync.Mutex
	ttl     time.Duration
	pending map[string]time.Time
}

func NewMemoryInFlight(ttl time.Duration) *MemoryInFlight {
	return &MemoryInFlight{ttl: ttl, pending: make(map[string]time.Time)}
}

func (f *MemoryInFlight) Acquire(_ context.Context, visitorID string, key Key) (func(), error) {
	k := inFlightID(visitorID, key)
	now := time.Now()

	f.mu.Lock()
	defer f.mu.Unlock()
	if exp, ok := f.pending[k]; ok && now.Before(exp) {
		return nil, ErrInFlight
	}
	f.pending[k] = now.Add(f.ttl)

	return func() {
		f.mu.Lock()
		delete(f.pending, k)
		f.mu.Unlock()
	}, nil
}
