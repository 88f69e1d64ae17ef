package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config is the full runtime configuration of the API process.
type Config struct {
	AppEnv      string
	HTTPAddr    string
	DatabaseURL string
	UploadsDir  string
	CORSOrigins []string

	Auth      *AuthRuntimeConfig
	OAuth     OAuthConfig
	Payment   PaymentConfig
	Currency  CurrencyConfig
	Redis     RedisConfig
	Rabbit    RabbitConfig
	RateLimit RateLimitConfig
}

type PaymentConfig struct {
	StripeSecretKey     string
	StripeWebhookSecret string
	DefaultCurrency     string
	Currencies          []string
	CommissionRate      decimal.Decimal
}

type CurrencyConfig struct {
	CacheTTL       time.Duration
	DefaultEURRate decimal.Decimal
}

type RabbitConfig struct {
	URL           string
	Exchange      string
	Queue         string
	EarningsQueue string
}

func (c RabbitConfig) Enabled() bool { return c.URL != "" }

func (c *Config) IsProd() bool { return isProdLike(c.AppEnv) }

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}

	cfg := &Config{
		AppEnv:      strings.ToLower(appEnv),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL: getEnv("DATABASE_URL", "maroctour.db"),
		UploadsDir:  getEnv("UPLOADS_DIR", "./uploads"),
		CORSOrigins: parseListEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173,http://localhost:3000"),
	}

	auth, err := LoadAuthRuntimeConfig(cfg.AppEnv)
	if err != nil {
		return nil, err
	}
	cfg.Auth = auth
	cfg.OAuth = loadOAuthConfig(auth.PublicBaseURL)

	cfg.Payment, err = loadPaymentConfig()
	if err != nil {
		return nil, err
	}

	cfg.Currency, err = loadCurrencyConfig()
	if err != nil {
		return nil, err
	}

	cfg.Redis = LoadRedisConfig()
	cfg.RateLimit = LoadRateLimitConfig()
	cfg.Rabbit = RabbitConfig{
		URL:           strings.TrimSpace(getEnv("RABBIT_URL", "")),
		Exchange:      getEnv("RABBIT_EXCHANGE", "payments.exchange"),
		Queue:         getEnv("RABBIT_NOTIFY_QUEUE", "maroctour.notifications"),
		EarningsQueue: getEnv("RABBIT_EARNINGS_QUEUE", "maroctour.earnings"),
	}

	if err := validatePayment(cfg.AppEnv, cfg.Payment); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadPaymentConfig() (PaymentConfig, error) {
	rateRaw := strings.TrimSpace(getEnv("COMMISSION_RATE", "0.10"))
	rate, err := decimal.NewFromString(rateRaw)
	if err != nil {
		return PaymentConfig{}, fmt.Errorf("invalid COMMISSION_RATE value %q: %w", rateRaw, err)
	}

	currencies := parseListEnv("PAYMENT_CURRENCIES", "MAD,EUR,USD")
	for i := range currencies {
		currencies[i] = strings.ToUpper(currencies[i])
	}

	return PaymentConfig{
		StripeSecretKey:     strings.TrimSpace(getEnv("STRIPE_SECRET_KEY", "")),
		StripeWebhookSecret: strings.TrimSpace(getEnv("STRIPE_WEBHOOK_SECRET", "")),
		DefaultCurrency:     strings.ToUpper(strings.TrimSpace(getEnv("DEFAULT_CURRENCY", "MAD"))),
		Currencies:          currencies,
		CommissionRate:      rate,
	}, nil
}

func loadCurrencyConfig() (CurrencyConfig, error) {
	ttl, err := parseDurationEnv("EXCHANGE_RATE_TTL", "1h")
	if err != nil {
		return CurrencyConfig{}, err
	}
	raw := strings.TrimSpace(getEnv("EXCHANGE_RATE_DEFAULT_EUR", "0.09"))
	eur, err := decimal.NewFromString(raw)
	if err != nil {
		return CurrencyConfig{}, fmt.Errorf("invalid EXCHANGE_RATE_DEFAULT_EUR value %q: %w", raw, err)
	}
	return CurrencyConfig{CacheTTL: ttl, DefaultEURRate: eur}, nil
}

func validatePayment(appEnv string, p PaymentConfig) error {
	if !p.CommissionRate.IsPositive() || p.CommissionRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("COMMISSION_RATE must be in (0, 1), got %s", p.CommissionRate)
	}
	if len(p.DefaultCurrency) != 3 {
		return fmt.Errorf("DEFAULT_CURRENCY must be a 3-letter code")
	}
	found := false
	for _, c := range p.Currencies {
		if len(c) != 3 {
			return fmt.Errorf("PAYMENT_CURRENCIES contains invalid code %q", c)
		}
		if c == p.DefaultCurrency {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("DEFAULT_CURRENCY %s is not listed in PAYMENT_CURRENCIES", p.DefaultCurrency)
	}
	if isProdLike(appEnv) && p.StripeSecretKey == "" {
		return fmt.Errorf("in prod/release STRIPE_SECRET_KEY must be set")
	}
	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func parseIntEnv(name string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

// parseListEnv splits a comma separated value, dropping blanks.
func parseListEnv(name, fallback string) []string {
	raw := getEnv(name, fallback)
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
