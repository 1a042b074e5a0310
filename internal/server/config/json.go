package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/bookmarks/internal/flagx"
	"github.com/dmitrijs2005/bookmarks/internal/timex"
)

// JsonConfig is the on-disk shape of the -c/-config file. Durations accept
// "15m" style strings or integer nanoseconds. Fields left out of the file keep
// their previous value.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	HasherConcurrency           int            `json:"hasher_concurrency"`
	AuthRateLimit               *int           `json:"auth_rate_limit"`
	AuthRateWindow              timex.Duration `json:"auth_rate_window"`
	RateLimitRedisAddr          string         `json:"rate_limit_redis_addr"`
	RateLimitRedisPassword      string         `json:"rate_limit_redis_password"`
	RateLimitRedisDB            int            `json:"rate_limit_redis_db"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	OtelEndpoint                string         `json:"otel_endpoint"`
	LogLevel                    string         `json:"log_level"`
}

// parseJson overlays values from the file named by -c/-config, if any.
func parseJson(config *Config) error {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.HasherConcurrency != 0 {
		config.HasherConcurrency = c.HasherConcurrency
	}
	if c.AuthRateLimit != nil {
		config.AuthRateLimit = *c.AuthRateLimit
	}
	if c.AuthRateWindow.Duration != 0 {
		config.AuthRateWindow = c.AuthRateWindow.Duration
	}
	setString(&config.RateLimitRedisAddr, c.RateLimitRedisAddr)
	setString(&config.RateLimitRedisPassword, c.RateLimitRedisPassword)
	if c.RateLimitRedisDB != 0 {
		config.RateLimitRedisDB = c.RateLimitRedisDB
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.OtelEndpoint, c.OtelEndpoint)
	setString(&config.LogLevel, c.LogLevel)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
