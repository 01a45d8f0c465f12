package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configName   = "config"
	configFormat = "yaml"
	envPrefix    = "CARWASH"
)

var GlobalConf *Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.rate_limit.max", 60)
	v.SetDefault("server.rate_limit.window_seconds", 60)
	v.SetDefault("backend.timeout_seconds", 10)
	v.SetDefault("backend.read_retries", 1)
	v.SetDefault("credentials.cookie_name", "carwash_visitor")
	v.SetDefault("credentials.cookie_ttl_hours", 24*30)
	v.SetDefault("credentials.key_prefix", "carwash:cred:")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.driver", "redis")
	v.SetDefault("cache.list_ttl_seconds", 30)
	v.SetDefault("cache.in_flight_seconds", 30)
	v.SetDefault("authorization.enable_audit", true)
	v.SetDefault("profile.phone_region", "US")
	v.SetDefault("observability.service_name", "carwash_portal")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.output.stdout", true)
}

func ReadConfig(configPath string) (*Config, error) {
	// A local .env is optional; values already in the environment win.
	if err := godotenv.Load(filepath.Join(configPath, ".env")); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType(configFormat)
	v.AddConfigPath(configPath)
	setDefaults(v)

	// e.g. CARWASH_BACKEND_BASE_URL overrides backend.base_url
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only overrides keys viper already knows about, so keys
	// without a default are bound explicitly.
	for _, key := range []string{"backend.base_url", "credentials.cookie_key_hex", "redis.addr", "redis.password", "nats.url"} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	// The config file is optional in container deployments.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %v", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %v", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func MustReadConfig(path string) *Config {
	config, err := ReadConfig(path)
	if err != nil {
		panic(err)
	}

	GlobalConf = config

	return config
}
