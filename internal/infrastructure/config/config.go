package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Mongo  MongoConfig
	Redis  RedisConfig
	Token  TokenConfig
	Google GoogleConfig
	Apple  AppleConfig

	// ProviderTimeout bounds every outbound verification call.
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT, default=10s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=auth_service"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type TokenConfig struct {
	// TTL bounds the lifetime of issued bearer tokens. Expired tokens are
	// indistinguishable from revoked ones.
	TTL time.Duration `env:"TOKEN_TTL, default=720h"`
}

type GoogleConfig struct {
	// UserInfoURL is overridable so tests can point at a local fake.
	UserInfoURL string `env:"GOOGLE_USERINFO_URL, default=https://www.googleapis.com/oauth2/v3/userinfo"`
}

type AppleConfig struct {
	// Audience is the app's bundle identifier, checked against the identity
	// token's aud claim. Empty skips the audience check (development only).
	Audience string `env:"APPLE_AUDIENCE"`
	JWKSURL  string `env:"APPLE_JWKS_URL, default=https://appleid.apple.com/auth/keys"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
