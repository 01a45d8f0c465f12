package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ListCache keeps recently fetched lists per scope. Invalidate drops every
// scope at once; any successful mutation calls it.
//
// Get reports the generation it read under, hit or miss. A list fetched after
// a miss is Set under that generation, so a fetch that overlaps an
// invalidation is never stored as current.
type ListCache interface {
	Get(ctx context.Context, scope string) (list []Appointment, gen int64, ok bool)
	Set(ctx context.Context, scope string, gen int64, list []Appointment)
	Invalidate(ctx context.Context) error
}

// NoGeneration marks a generation that could not be read; Set ignores it.
const NoGeneration int64 = -1

// NopCache never hits.
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]Appointment, int64, bool) {
	return nil, NoGeneration, false
}
func (NopCache) Set(context.Context, string, int64, []Appointment) {}
func (NopCache) Invalidate(context.Context) error                  { return nil }

// ---------------------------------------------------------------------------
// Redis
// ---------------------------------------------------------------------------

// RedisCache stores lists under a generation number. Invalidation bumps the
// generation; stale entries are left to expire.
type RedisCache struct {
	rdb    goredis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedisCache(rdb goredis.Cmdable, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) genKey() string { return c.prefix + "gen" }

func (c *RedisCache) listKey(gen int64, scope string) string {
	return c.prefix + "list:" + strconv.FormatInt(gen, 10) + ":" + scope
}

func (c *RedisCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, c.genKey()).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *RedisCache) Get(ctx context.Context, scope string) ([]Appointment, int64, bool) {
	gen, err := c.generation(ctx)
	if err != nil {
		slog.WarnContext(ctx, "list cache generation read failed", "error", err)
		return nil, NoGeneration, false
	}
	raw, err := c.rdb.Get(ctx, c.listKey(gen, scope)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			slog.WarnContext(ctx, "list cache read failed", "error", err)
		}
		return nil, gen, false
	}
	var list []Appointment
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, gen, false
	}
	return list, gen, true
}

// Set writes under gen. Entries of an outdated generation are never read, so
// a late write after an invalidation is harmless; it is skipped when the bump
// is already visible.
func (c *RedisCache) Set(ctx context.Context, scope string, gen int64, list []Appointment) {
	if gen == NoGeneration {
		return
	}
	if cur, err := c.generation(ctx); err != nil || cur != gen {
		return
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.listKey(gen, scope), raw, c.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "list cache write failed", "error", err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, c.genKey()).Err()
}

// ---------------------------------------------------------------------------
// Memory
// ---------------------------------------------------------------------------

type memoryEntry struct {
	list    []Appointment
	expires time.Time
}

type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	gen     int64
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, entries: make(map[string]memoryEntry), now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, scope string) ([]Appointment, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[scope]
	if !ok || c.now().After(e.expires) {
		delete(c.entries, scope)
		return nil, c.gen, false
	}
	return append([]Appointment(nil), e.list...), c.gen, true
}

// Set drops a list fetched under an outdated generation.
func (c *MemoryCache) Set(_ context.Context, scope string, gen int64, list []Appointment) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return
	}
	c.entries[scope] = memoryEntry{list: append([]Appointment(nil), list...), expires: c.now().Add(c.ttl)}
}

func (c *MemoryCache) Invalidate(context.Context) error {
	c.mu.Lock()
	c.gen++
	clear(c.entries)
	c.mu.Unlock()
	return nil
}
