package config

import "time"

type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
}

func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:      parseBoolEnv("RATE_LIMIT_ENABLED", "true"),
		Capacity:     parseIntEnv("RATE_LIMIT_CAPACITY", 60),
		RefillTokens: parseIntEnv("RATE_LIMIT_REFILL_TOKENS", 1),
		KeyStrategy:  getEnv("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"),
		Prefix:       getEnv("RATE_LIMIT_PREFIX", "rl"),
	}
	var err error
	if cfg.RefillInterval, err = parseDurationEnv("RATE_LIMIT_REFILL_INTERVAL", "1s"); err != nil {
		cfg.RefillInterval = time.Second
	}
	if cfg.TTL, err = parseDurationEnv("RATE_LIMIT_TTL", "10m"); err != nil {
		cfg.TTL = 10 * time.Minute
	}
	return normalizeRateLimit(cfg)
}

func normalizeRateLimit(cfg RateLimitConfig) RateLimitConfig {
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillTokens < 1 {
		cfg.RefillTokens = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	if minTTL := 5 * cfg.RefillInterval; cfg.TTL < minTTL {
		cfg.TTL = minTTL
	}
	return cfg
}
