package config

import (
	"fmt"
	"log"
	"strings"
	"time"
)

const (
	defaultJWTAccessTTL       = "15m"
	defaultRefreshTTL         = "168h"
	defaultAuthTokenTTL       = "1h"
	defaultResendCooldown     = "60s"
	defaultCookieSecure       = "false"
	defaultCookieSameSite     = "Lax"
	defaultCookiePath         = "/api/v1/auth"
	defaultRequireEmailConfig = "true"
	defaultJWTSecret          = "change-me-jwt-secret"
	defaultRefreshTokenPepper = "change-me-refresh-pepper"
	defaultAuthTokenPepper    = "change-me-auth-token-pepper"
)

// AuthRuntimeConfig holds session, one-time token and cookie settings.
type AuthRuntimeConfig struct {
	AppEnv                   string
	JWTSecret                string
	JWTAccessTTL             time.Duration
	RefreshTTL               time.Duration
	RefreshTokenPepper       string
	AuthTokenPepper          string
	AuthTokenTTL             time.Duration
	ResendCooldown           time.Duration
	RequireEmailConfirmation bool
	AdminEmails              []string
	CookieSecure             bool
	CookieSameSite           string
	CookiePath               string
	PublicBaseURL            string
}

// OAuthConfig holds the Google sign-in client registration.
type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	RedirectURL        string
}

func (c OAuthConfig) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func LoadAuthRuntimeConfig(appEnv string) (*AuthRuntimeConfig, error) {
	cfg := &AuthRuntimeConfig{AppEnv: appEnv}

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.RefreshTokenPepper = strings.TrimSpace(getEnv("REFRESH_TOKEN_PEPPER", defaultRefreshTokenPepper))
	cfg.AuthTokenPepper = strings.TrimSpace(getEnv("AUTH_TOKEN_PEPPER", defaultAuthTokenPepper))
	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(getEnv("PUBLIC_BASE_URL", "http://localhost:5173")), "/")

	var err error
	cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", defaultJWTAccessTTL)
	if err != nil {
		return nil, err
	}

	cfg.RefreshTTL, err = parseDurationEnv("REFRESH_TTL", defaultRefreshTTL)
	if err != nil {
		return nil, err
	}

	cfg.AuthTokenTTL, err = parseDurationEnv("AUTH_TOKEN_TTL", defaultAuthTokenTTL)
	if err != nil {
		return nil, err
	}

	cfg.ResendCooldown, err = parseDurationEnv("RESEND_COOLDOWN", defaultResendCooldown)
	if err != nil {
		return nil, err
	}

	cfg.RequireEmailConfirmation = parseBoolEnv("REQUIRE_EMAIL_CONFIRMATION", defaultRequireEmailConfig)
	cfg.AdminEmails = parseListEnv("ADMIN_EMAILS", "admin@maroctour.ma")
	cfg.CookieSecure = parseBoolEnv("COOKIE_SECURE", defaultCookieSecure)
	cfg.CookieSameSite = strings.TrimSpace(getEnv("COOKIE_SAMESITE", defaultCookieSameSite))
	cfg.CookiePath = strings.TrimSpace(getEnv("COOKIE_PATH", defaultCookiePath))

	if err := validateAuthConfig(cfg); err != nil {
		return nil, err
	}

	log.Printf("auth cookie config: secure=%t, sameSite=%s, path=%s", cfg.CookieSecure, cfg.CookieSameSite, cfg.CookiePath)

	return cfg, nil
}

func loadOAuthConfig(publicBaseURL string) OAuthConfig {
	return OAuthConfig{
		GoogleClientID:     strings.TrimSpace(getEnv("GOOGLE_CLIENT_ID", "")),
		GoogleClientSecret: strings.TrimSpace(getEnv("GOOGLE_CLIENT_SECRET", "")),
		RedirectURL:        strings.TrimSpace(getEnv("OAUTH_REDIRECT_URL", publicBaseURL+"/auth/callback")),
	}
}

func validateAuthConfig(cfg *AuthRuntimeConfig) error {
	if cfg.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}
	if cfg.RefreshTTL <= 0 {
		return fmt.Errorf("REFRESH_TTL must be > 0")
	}
	if cfg.AuthTokenTTL <= 0 {
		return fmt.Errorf("AUTH_TOKEN_TTL must be > 0")
	}
	if cfg.ResendCooldown <= 0 {
		return fmt.Errorf("RESEND_COOLDOWN must be > 0")
	}
	if cfg.CookiePath == "" {
		return fmt.Errorf("COOKIE_PATH must not be empty")
	}
	sameSite := strings.ToLower(strings.TrimSpace(cfg.CookieSameSite))
	if sameSite != "lax" && sameSite != "none" && sameSite != "strict" {
		return fmt.Errorf("COOKIE_SAMESITE must be one of: Lax, None, Strict")
	}
	if sameSite == "none" && !cfg.CookieSecure {
		return fmt.Errorf("COOKIE_SECURE must be true when COOKIE_SAMESITE=None")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if isEmptyOrDefault(cfg.RefreshTokenPepper, defaultRefreshTokenPepper) {
			return fmt.Errorf("in prod/release REFRESH_TOKEN_PEPPER must be set and not default")
		}
		if isEmptyOrDefault(cfg.AuthTokenPepper, defaultAuthTokenPepper) {
			return fmt.Errorf("in prod/release AUTH_TOKEN_PEPPER must be set and not default")
		}
		if !cfg.CookieSecure {
			return fmt.Errorf("in prod/release COOKIE_SECURE must be true")
		}
	}

	return nil
}
