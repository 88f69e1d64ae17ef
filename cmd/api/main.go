package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"maroctour/internal/config"
	"maroctour/internal/database"
	"maroctour/internal/domain/admin"
	"maroctour/internal/domain/auth"
	"maroctour/internal/domain/commission"
	"maroctour/internal/domain/currency"
	"maroctour/internal/domain/earnings"
	"maroctour/internal/domain/notification"
	"maroctour/internal/domain/payment"
	"maroctour/internal/domain/profile"
	"maroctour/internal/domain/upload"
	"maroctour/internal/middleware"
	jwtsvc "maroctour/internal/pkg/jwt"
	"maroctour/internal/pkg/mq"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL, cfg.AppEnv == "dev")
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	if err := database.Migrate(db,
		&auth.User{},
		&auth.RefreshToken{},
		&auth.AuthToken{},
		&profile.Profile{},
		&payment.Payment{},
		&notification.Notification{},
		&currency.ExchangeRate{},
		&upload.Upload{},
		&earnings.Entry{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.Println("redis disabled: rate limiting off, exchange rates cached in memory")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	j := jwtsvc.New(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)

	// profiles and notifications
	profileRepo := profile.NewRepository(db)
	profileService := profile.NewService(profileRepo, cfg.Auth.AdminEmails)
	profileHandler := profile.NewHandler(profileService)
	uploadHandler := upload.NewHandler(upload.NewService(upload.NewRepository(db), profileService, cfg.UploadsDir, upload.StaticURLBase, log.Printf))

	hub := notification.NewHub()
	notificationService := notification.NewService(notification.NewRepository(db), profileService, hub, log.Printf)
	notificationHandler := notification.NewHandler(notificationService)
	wsHandler := notification.NewWSHandler(hub, j)

	// auth
	authService := auth.NewService(db, profileService, j, auth.NewDevConsoleMailer(!cfg.IsProd()), auth.Config{
		RefreshTokenPepper:       cfg.Auth.RefreshTokenPepper,
		AuthTokenPepper:          cfg.Auth.AuthTokenPepper,
		RefreshTTL:               cfg.Auth.RefreshTTL,
		AuthTokenTTL:             cfg.Auth.AuthTokenTTL,
		ResendCooldown:           cfg.Auth.ResendCooldown,
		RequireEmailConfirmation: cfg.Auth.RequireEmailConfirmation,
		PublicBaseURL:            cfg.Auth.PublicBaseURL,
	})
	authService.SetLogger(log.Printf)
	authService.SetNotifier(notificationService)
	if cfg.OAuth.GoogleEnabled() {
		authService.RegisterProvider(auth.NewGoogleProvider(cfg.OAuth.GoogleClientID, cfg.OAuth.GoogleClientSecret, cfg.OAuth.RedirectURL))
	}
	authHandler := auth.NewHandler(authService, auth.CookieConfig{
		Secure:   cfg.Auth.CookieSecure,
		SameSite: cfg.Auth.CookieSameSite,
		Path:     cfg.Auth.CookiePath,
		MaxAge:   cfg.Auth.RefreshTTL,
	})

	// payments
	processor := payment.NewStripeProcessor(cfg.Payment.StripeSecretKey, cfg.Payment.StripeWebhookSecret)
	paymentService := payment.NewService(payment.NewRepository(db), processor, payment.Config{
		CommissionRate:  cfg.Payment.CommissionRate,
		DefaultCurrency: cfg.Payment.DefaultCurrency,
		Currencies:      cfg.Payment.Currencies,
	}, log.Printf)
	paymentHandler := payment.NewHandler(paymentService)
	forwardHandler := payment.NewForwardHandler(processor, cfg.Payment.DefaultCurrency)

	// admin dashboard
	var rateCache currency.Cache = currency.NewMemoryCache()
	if rdb != nil {
		rateCache = currency.NewRedisCache(rdb)
	}
	currencyService := currency.NewService(currency.NewRepository(db), rateCache, currency.Config{
		CacheTTL:       cfg.Currency.CacheTTL,
		DefaultEURRate: cfg.Currency.DefaultEURRate,
	}, log.Printf)
	currencyHandler := currency.NewHandler(currencyService)
	earningsService := earnings.NewService(db, currencyService, log.Printf)
	earningsHandler := earnings.NewHandler(earningsService)
	commissionHandler := commission.NewHandler(commission.NewService(commission.NewRepository(db), log.Printf))
	adminHandler := admin.NewHandler(admin.NewService(admin.NewRepository(db), profileRepo, authService, log.Printf))

	if cfg.Rabbit.Enabled() {
		startPaymentEvents(ctx, cfg.Rabbit, paymentService, []eventConsumer{
			{queue: cfg.Rabbit.Queue, keys: notification.PaymentEventKeys, handle: notificationService.HandlePaymentEvent},
			{queue: cfg.Rabbit.EarningsQueue, keys: earnings.PaymentEventKeys, handle: earningsService.HandlePaymentEvent},
		})
	} else {
		log.Println("RABBIT_URL not set: payment events are not published")
	}

	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.ErrorLogger(), middleware.CORS(cfg.CORSOrigins), middleware.RateLimit(cfg.RateLimit, rdb))

	uploadHandler.RegisterStatic(r)
	forwardHandler.RegisterRoutes(r.Group("/api"))

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterPublicRoutes(v1)
		paymentHandler.RegisterWebhookRoutes(v1)
		currencyHandler.RegisterPublicRoutes(v1)
		wsHandler.RegisterRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			authHandler.RegisterProtectedRoutes(protected, middleware.AdminOnly())
			profileHandler.RegisterRoutes(protected)
			uploadHandler.RegisterRoutes(protected)
			paymentHandler.RegisterRoutes(protected, middleware.AdminOnly(), middleware.PartnerOnly())
			notificationHandler.RegisterRoutes(protected)
			earningsHandler.RegisterRoutes(protected, middleware.PartnerOnly())
		}

		adminGroup := v1.Group("/admin")
		adminGroup.Use(middleware.JWTAuth(j), middleware.AdminOnly())
		{
			adminHandler.RegisterRoutes(adminGroup)
			commissionHandler.RegisterRoutes(adminGroup)
			currencyHandler.RegisterAdminRoutes(adminGroup)
			earningsHandler.RegisterAdminRoutes(adminGroup)
		}
	}

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Printf("level=info msg=\"api listening\" addr=%s env=%s", cfg.HTTPAddr, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("level=error msg=\"shutdown failed\" err=%v", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}

type eventConsumer struct {
	queue  string
	keys   []string
	handle mq.HandlerFunc
}

// startPaymentEvents publishes payment.* events and runs one queue per
// consumer on the same exchange. A broker that is down at boot only
// disables events.
func startPaymentEvents(ctx context.Context, rc config.RabbitConfig, payments *payment.Service, consumers []eventConsumer) {
	pub, err := mq.NewPublisher(rc.URL, rc.Exchange)
	if err != nil {
		log.Printf("level=warn msg=\"rabbit publisher unavailable\" err=%v", err)
		return
	}
	payments.SetPublisher(pub)
	go func() {
		<-ctx.Done()
		_ = pub.Close()
	}()

	for _, ec := range consumers {
		cons, err := mq.NewConsumer(rc.URL, rc.Exchange, ec.queue, ec.keys, 16)
		if err != nil {
			log.Printf("level=warn msg=\"rabbit consumer unavailable\" queue=%s err=%v", ec.queue, err)
			continue
		}
		go func(ec eventConsumer) {
			defer cons.Close()
			if err := cons.Run(ctx, ec.handle); err != nil {
				log.Printf("level=error msg=\"payment consumer stopped\" queue=%s err=%v", ec.queue, err)
			}
		}(ec)
		log.Printf("level=info msg=\"payment consumer started\" exchange=%s queue=%s keys=%v", rc.Exchange, ec.queue, ec.keys)
	}
}
