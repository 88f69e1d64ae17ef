package config

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig describes the optional Redis used for rate limiting and the
// exchange-rate cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TLS      bool
}

// LoadRedisConfig reads REDIS_HOST/REDIS_PORT or REDIS_ADDR. An empty address
// disables Redis entirely.
func LoadRedisConfig() RedisConfig {
	addr := strings.TrimSpace(getEnv("REDIS_ADDR", ""))
	host := strings.TrimSpace(getEnv("REDIS_HOST", ""))
	port := strings.TrimSpace(getEnv("REDIS_PORT", ""))
	if host != "" && port != "" {
		addr = host + ":" + port
	}
	tlsEnv := strings.TrimSpace(getEnv("REDIS_TLS", ""))
	return RedisConfig{
		Addr:     addr,
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       parseIntEnv("REDIS_DB", 0),
		TLS:      strings.EqualFold(tlsEnv, "true") || tlsEnv == "1",
	}
}

// NewRedisClient connects and pings. It returns nil when Redis is not
// configured or unreachable so callers can degrade.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	var tlsConf *tls.Config
	if cfg.TLS {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      cfg.Addr,
		Password:  cfg.Password,
		DB:        cfg.DB,
		TLSConfig: tlsConf,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
