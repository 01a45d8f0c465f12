package credentials

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type RedisStore struct {
	rdb    goredis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedisStore(rdb goredis.Cmdable, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(visitorID, name string) string {
	return s.prefix + visitorID + ":" + name
}

func (s *RedisStore) Load(ctx context.Context, visitorID string) (Tokens, error) {
	if visitorID == "" {
		return Tokens{}, ErrNoCredential
	}

	vals, err := s.rdb.MGet(ctx, s.key(visitorID, KeyAccess), s.key(visitorID, KeyRefresh)).Result()
	if err != nil {
		return Tokens{}, fmt.Errorf("load credentials: %w", err)
	}

	var t Tokens
	if v, ok := vals[0].(string); ok {
		t.Access = v
	}
	if v, ok := vals[1].(string); ok {
		t.Refresh = v
	}
	if t.Empty() {
		return Tokens{}, ErrNoCredential
	}
	return t, nil
}

func (s *RedisStore) Save(ctx context.Context, visitorID string, t Tokens) error {
	_, err := s.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, s.key(visitorID, KeyAccess), t.Access, s.ttl)
		p.Set(ctx, s.key(visitorID, KeyRefresh), t.Refresh, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, visitorID string) error {
	if err := s.rdb.Del(ctx, s.key(visitorID, KeyAccess), s.key(visitorID, KeyRefresh)).Err(); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}
