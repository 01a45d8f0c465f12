package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/carwash_portal/config"
	"github.com/Alijeyrad/carwash_portal/internal/service/appointment"
	"github.com/Alijeyrad/carwash_portal/pkg/authorize"
	"github.com/Alijeyrad/carwash_portal/pkg/backend"
	"github.com/Alijeyrad/carwash_portal/pkg/credentials"
	"github.com/Alijeyrad/carwash_portal/pkg/observability"
	redispkg "github.com/Alijeyrad/carwash_portal/pkg/redis"
)

const (
	listCachePrefix = "carwash:list:"
	inFlightPrefix  = "carwash:inflight:"
)

// InstanceID tells this process's invalidation broadcasts apart from those of
// other portal instances.
type InstanceID string

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideInstanceID),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideBackend),
	fx.Provide(ProvideCredentialStore),
	fx.Provide(ProvideSealer),
	fx.Provide(ProvideAuthorization),
	fx.Provide(ProvideListCache),
	fx.Provide(ProvideInFlight),
	fx.Provide(ProvideNatsClient),
	fx.Provide(ProvidePublisher),
	fx.Provide(ProvideOTel),
)

func ProvideInstanceID() InstanceID {
	return InstanceID(uuid.NewString())
}

// ProvideRedis returns a nil client when no address is configured; every
// consumer then falls back to its in-memory variant.
func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	rdb, err := redispkg.NewRedisFromCentral(context.Background(), cfg.Redis)
	if errors.Is(err, redispkg.ErrNotConfigured) {
		slog.Warn("redis not configured, using in-memory credential store and caches")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideBackend(cfg *config.Config) (backend.API, error) {
	return backend.NewFromCentral(cfg.Backend)
}

func ProvideCredentialStore(cfg *config.Config, rdb *redis.Client) credentials.Store {
	if rdb == nil {
		return credentials.NewMemoryStore()
	}
	ttl := time.Duration(cfg.Credentials.CookieTTLHours) * time.Hour
	return credentials.NewRedisStore(rdb, cfg.Credentials.KeyPrefix, ttl)
}

func ProvideSealer(cfg *config.Config) (*credentials.Sealer, error) {
	ttl := time.Duration(cfg.Credentials.CookieTTLHours) * time.Hour
	return credentials.NewSealer(cfg.Credentials.CookieKeyHex, ttl)
}

func ProvideAuthorization(cfg *config.Config) (authorize.IAuthorization, error) {
	enforcer, err := authorize.NewEnforcer()
	if err != nil {
		return nil, err
	}
	auth, err := authorize.NewAuthorization(enforcer)
	if err != nil {
		return nil, err
	}
	if err := authorize.SeedDefaultPolicies(context.Background(), auth); err != nil {
		return nil, err
	}
	if cfg.Authorization.EnableAudit {
		auth = authorize.NewAuditedAuthorization(auth, slog.Default())
	}
	return auth, nil
}

func ProvideListCache(cfg *config.Config, rdb *redis.Client) appointment.ListCache {
	if !cfg.Cache.Enabled {
		return appointment.NopCache{}
	}
	ttl := time.Duration(cfg.Cache.ListTTLSeconds) * time.Second
	if cfg.Cache.Driver == "memory" || rdb == nil {
		return appointment.NewMemoryCache(ttl)
	}
	return appointment.NewRedisCache(rdb, listCachePrefix, ttl)
}

func ProvideInFlight(cfg *config.Config, rdb *redis.Client) appointment.InFlight {
	ttl := time.Duration(cfg.Cache.InFlightSeconds) * time.Second
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if rdb == nil {
		return appointment.NewMemoryInFlight(ttl)
	}
	return appointment.NewRedisInFlight(rdb, inFlightPrefix, ttl)
}

// ProvideNatsClient returns a nil connection when no URL is configured.
func ProvideNatsClient(lc fx.Lifecycle, cfg *config.Config) (*nats.Conn, error) {
	if cfg.Nats.URL == "" {
		return nil, nil
	}
	nc, err := nats.Connect(cfg.Nats.URL, nats.Name("carwash_portal"))
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("draining NATS connection")
			return nc.Drain()
		},
	})
	return nc, nil
}

func ProvidePublisher(nc *nats.Conn, id InstanceID) appointment.Publisher {
	if nc == nil {
		return appointment.NopPublisher{}
	}
	return appointment.NewNatsPublisher(nc, string(id))
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(),
		observability.FromCentralConfig(cfg.Observability, cfg.Server.Environment))
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}
