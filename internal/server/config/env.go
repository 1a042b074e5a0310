package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig lists the recognised environment variables. Pointer fields stay
// nil when the variable is unset so that earlier sources are kept.
type envConfig struct {
	HTTPAddr          *string        `env:"HTTP_ADDR"`
	Port              *string        `env:"PORT"`
	GRPCHealthAddr    *string        `env:"GRPC_HEALTH_ADDR"`
	DatabaseURL       *string        `env:"DATABASE_URL"`
	AccessTokenSecret *string        `env:"ACCESS_TOKEN_SECRET"`
	AccessTokenTTL    *time.Duration `env:"ACCESS_TOKEN_TTL"`
	HasherConcurrency *int           `env:"HASHER_CONCURRENCY"`

	AuthRateLimit          *int           `env:"AUTH_RATE_LIMIT"`
	AuthRateWindow         *time.Duration `env:"AUTH_RATE_WINDOW"`
	RateLimitRedisAddr     *string        `env:"RATE_LIMIT_REDIS_ADDR"`
	RateLimitRedisPassword *string        `env:"RATE_LIMIT_REDIS_PASSWORD"`
	RateLimitRedisDB       *int           `env:"RATE_LIMIT_REDIS_DB"`

	S3RootUser     *string `env:"S3_ROOT_USER"`
	S3RootPassword *string `env:"S3_ROOT_PASSWORD"`
	S3Bucket       *string `env:"S3_BUCKET"`
	S3Region       *string `env:"S3_REGION"`
	S3BaseEndpoint *string `env:"S3_BASE_ENDPOINT"`

	OtelEndpoint *string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	LogLevel     *string `env:"LOG_LEVEL"`
}

// parseEnv overlays values from the process environment.
func parseEnv(config *Config) error {
	var e envConfig
	if err := env.Parse(&e); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	// PORT is what most hosting platforms set; HTTP_ADDR wins when both are present.
	if e.Port != nil && *e.Port != "" {
		config.EndpointAddrHTTP = ":" + *e.Port
	}
	apply(&config.EndpointAddrHTTP, e.HTTPAddr)
	apply(&config.EndpointAddrGRPC, e.GRPCHealthAddr)
	apply(&config.DatabaseDSN, e.DatabaseURL)
	apply(&config.SecretKey, e.AccessTokenSecret)
	apply(&config.AccessTokenValidityDuration, e.AccessTokenTTL)
	apply(&config.HasherConcurrency, e.HasherConcurrency)
	apply(&config.AuthRateLimit, e.AuthRateLimit)
	apply(&config.AuthRateWindow, e.AuthRateWindow)
	apply(&config.RateLimitRedisAddr, e.RateLimitRedisAddr)
	apply(&config.RateLimitRedisPassword, e.RateLimitRedisPassword)
	apply(&config.RateLimitRedisDB, e.RateLimitRedisDB)
	apply(&config.S3RootUser, e.S3RootUser)
	apply(&config.S3RootPassword, e.S3RootPassword)
	apply(&config.S3Bucket, e.S3Bucket)
	apply(&config.S3Region, e.S3Region)
	apply(&config.S3BaseEndpoint, e.S3BaseEndpoint)
	apply(&config.OtelEndpoint, e.OtelEndpoint)
	apply(&config.LogLevel, e.LogLevel)

	return nil
}

func apply[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
