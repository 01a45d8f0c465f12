package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Alijeyrad/carwash_portal/config"
)

func TestFromCentralConfig(t *testing.T) {
	tests := []struct {
		name string
		in   config.RedisConfig
		want Config
	}{
		{
			name: "defaults",
			in:   config.RedisConfig{Addr: "localhost:6379"},
			want: Config{
				Addr:         "localhost:6379",
				PoolSize:     10,
				MinIdleConns: 2,
				DialTimeout:  5 * time.Second,
				ReadTimeout:  3 * time.Second,
				WriteTimeout: 3 * time.Second,
			},
		},
		{
			name: "explicit values",
			in: config.RedisConfig{
				Addr: "redis:6380", DB: 2, PoolSize: 50, MinIdleConns: 5,
				DialTimeoutSeconds: 1, ReadTimeoutSeconds: 2, WriteTimeoutSeconds: 4,
			},
			want: Config{
				Addr: "redis:6380", DB: 2, PoolSize: 50, MinIdleConns: 5,
				DialTimeout: time.Second, ReadTimeout: 2 * time.Second, WriteTimeout: 4 * time.Second,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromCentralConfig(tt.in); got != tt.want {
				t.Errorf("FromCentralConfig() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNewRedis_EmptyAddr(t *testing.T) {
	_, err := NewRedis(context.Background(), Config{})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("error = %v, want ErrNotConfigured", err)
	}
}
