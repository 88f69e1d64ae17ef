package main

import (
	"context"
	"log"
	"time"

	"maroctour/internal/config"
	"maroctour/internal/database"
	"maroctour/internal/domain/auth"
	"maroctour/internal/domain/notification"
	"maroctour/internal/domain/profile"
	jwtsvc "maroctour/internal/pkg/jwt"
)

const notificationRetention = 90 * 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL, false)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	ctx := context.Background()
	profiles := profile.NewService(profile.NewRepository(db), cfg.Auth.AdminEmails)
	j := jwtsvc.New(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := auth.NewService(db, profiles, j, auth.NewDevConsoleMailer(false), auth.Config{
		RefreshTokenPepper: cfg.Auth.RefreshTokenPepper,
		AuthTokenPepper:    cfg.Auth.AuthTokenPepper,
	})

	res, err := authService.Cleanup(ctx)
	if err != nil {
		log.Fatalf("cleanup auth tokens failed: %v", err)
	}

	notifications := notification.NewService(notification.NewRepository(db), profiles, nil, nil)
	removed, err := notifications.Cleanup(ctx, notificationRetention)
	if err != nil {
		log.Fatalf("cleanup notifications failed: %v", err)
	}

	log.Printf("auth cleanup completed: refresh_tokens=%d auth_tokens=%d notifications=%d",
		res.RefreshTokens, res.AuthTokens, removed)
}
