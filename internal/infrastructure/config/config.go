package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,          default=8080"`
	Env       string        `env:"ENV,           default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	LogLevel  string        `env:"LOG_LEVEL,     default=info"`
	SessionTTL time.Duration `env:"SESSION_TTL,  default=24h"`

	// StoragePrefix namespaces every key this instance writes, so multiple
	// deployments can share one Redis without colliding.
	StoragePrefix string        `env:"STORAGE_PREFIX, default=neuradash"`
	SyncInterval  time.Duration `env:"SYNC_INTERVAL,  default=30s"`
	GatewayDelay  time.Duration `env:"GATEWAY_DELAY,  default=800ms"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=neuradash_accounts"`
}

type RedisConfig struct {
	Addr    string `env:"REDIS_ADDR,    default=localhost:6379"`
	DB      int    `env:"REDIS_DB,      default=0"`
	Channel string `env:"REDIS_CHANNEL, default=neuradash:changes"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
