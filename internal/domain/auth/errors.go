package auth

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrEmailAlreadyExists  = errors.New("email already exists")
	ErrWeakPassword        = errors.New("password does not meet policy")
	ErrInvalidEmail        = errors.New("invalid email")
	ErrRateLimitExceeded   = errors.New("rate limit exceeded")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrAccountLocked       = errors.New("account locked")
	ErrEmailNotConfirmed   = errors.New("email not confirmed")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenReused  = errors.New("refresh token reused")
	ErrUserNotFound        = errors.New("user not found")
	ErrUnsupportedProvider = errors.New("unsupported oauth provider")
	ErrOAuthExchange       = errors.New("oauth exchange failed")
	ErrInvalidRole         = errors.New("invalid role")
	ErrPasswordNotSet      = errors.New("password not set for this account")
	ErrSameEmail           = errors.New("new email equals current email")
	ErrInvalidOTPType      = errors.New("invalid verification type")
)
