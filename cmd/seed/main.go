package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"maroctour/internal/config"
	"maroctour/internal/database"
	"maroctour/internal/domain/auth"
	"maroctour/internal/domain/currency"
	"maroctour/internal/domain/earnings"
	"maroctour/internal/domain/notification"
	"maroctour/internal/domain/payment"
	"maroctour/internal/domain/profile"
	jwtsvc "maroctour/internal/pkg/jwt"

	"github.com/shopspring/decimal"
)

const demoPassword = "Maroc2026!Demo"

type partnerSeed struct {
	email   string
	role    profile.Role
	company string
	city    string
	service string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL, false)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := database.Migrate(db,
		&auth.User{},
		&auth.RefreshToken{},
		&auth.AuthToken{},
		&profile.Profile{},
		&payment.Payment{},
		&notification.Notification{},
		&currency.ExchangeRate{},
		&earnings.Entry{},
	); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	// Cleanup old data (children first)
	log.Println("Cleaning old data...")
	for _, table := range []string{"partner_earning_entries", "notifications", "payments", "auth_tokens", "refresh_tokens", "profiles", "users", "exchange_rates"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatalf("cleanup %s: %v", table, err)
		}
	}

	ctx := context.Background()
	profiles := profile.NewService(profile.NewRepository(db), cfg.Auth.AdminEmails)
	j := jwtsvc.New(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := auth.NewService(db, profiles, j, auth.NewDevConsoleMailer(false), auth.Config{
		RefreshTokenPepper: cfg.Auth.RefreshTokenPepper,
		AuthTokenPepper:    cfg.Auth.AuthTokenPepper,
		AuthTokenTTL:       cfg.Auth.AuthTokenTTL,
		PublicBaseURL:      cfg.Auth.PublicBaseURL,
	})

	invite := func(in auth.InviteInput) *profile.Profile {
		in.Password = demoPassword
		in.Verified = true
		p, err := authService.InviteUser(ctx, in)
		if err != nil {
			log.Fatalf("create %s: %v", in.Email, err)
		}
		return p
	}

	// ================== USERS ==================
	log.Println("Creating users...")
	adminEmail := "admin@maroctour.ma"
	if len(cfg.Auth.AdminEmails) > 0 {
		adminEmail = cfg.Auth.AdminEmails[0]
	}
	admin := invite(auth.InviteInput{Email: adminEmail, Role: profile.RoleAdmin, FirstName: "Admin", LastName: "MarocTour"})
	log.Printf("Admin created: %s / %s", adminEmail, demoPassword)

	clients := []*profile.Profile{}
	for i, name := range []string{"Yasmine", "Omar", "Claire"} {
		clients = append(clients, invite(auth.InviteInput{
			Email:     fmt.Sprintf("client%d@example.ma", i+1),
			Role:      profile.RoleClient,
			FirstName: name,
			Phone:     fmt.Sprintf("+212 6 00 00 00 %02d", i+10),
		}))
	}

	// ================== PARTNERS ==================
	log.Println("Creating partners...")
	seeds := []partnerSeed{
		{"riad@example.ma", profile.RolePartnerHotel, "Riad Atlas", "Marrakech", "Suite Atlas"},
		{"dar@example.ma", profile.RolePartnerHotel, "Dar Zitoun", "Fès", "Chambre Medina"},
		{"cars@example.ma", profile.RolePartnerCar, "Atlas Cars", "Agadir", "Dacia Duster 4x4"},
		{"sahara@example.ma", profile.RolePartnerTour, "Sahara Trips", "Merzouga", "Nuit au désert"},
	}
	partners := make([]*profile.Profile, 0, len(seeds))
	for _, s := range seeds {
		partners = append(partners, invite(auth.InviteInput{
			Email:       s.email,
			Role:        s.role,
			CompanyName: s.company,
			City:        s.city,
		}))
	}

	// ================== PAYMENTS ==================
	log.Println("Creating payments...")
	ledger := earnings.NewService(db, currency.NewService(currency.NewRepository(db), currency.NewMemoryCache(), currency.Config{
		CacheTTL:       cfg.Currency.CacheTTL,
		DefaultEURRate: cfg.Currency.DefaultEURRate,
	}, nil), nil)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	statuses := []payment.Status{payment.StatusSucceeded, payment.StatusSucceeded, payment.StatusSucceeded, payment.StatusFailed, payment.StatusRefunded}
	for i := 0; i < 20; i++ {
		idx := rng.Intn(len(partners))
		partner, seed := partners[idx], seeds[idx]
		client := clients[rng.Intn(len(clients))]

		amount := decimal.NewFromInt(int64(500 + rng.Intn(4500)))
		commission, partnerAmount := payment.Split(amount, payment.DefaultCommissionRate)
		created := time.Now().AddDate(0, 0, -rng.Intn(60))
		status := statuses[rng.Intn(len(statuses))]

		p := payment.Payment{
			BookingID:       fmt.Sprintf("booking-%03d", i+1),
			UserID:          client.ID,
			PartnerID:       partner.ID,
			Amount:          amount,
			Currency:        "MAD",
			Status:          status,
			PaymentIntentID: fmt.Sprintf("pi_seed_%03d", i+1),
			AdminCommission: commission,
			PartnerAmount:   partnerAmount,
			CommissionRate:  payment.DefaultCommissionRate,
			ServiceType:     partner.PartnerType,
			ServiceName:     seed.service,
			CreatedAt:       created,
		}
		switch status {
		case payment.StatusSucceeded:
			p.PaidAt = &created
			if rng.Intn(2) == 0 {
				paidOut := created.Add(72 * time.Hour)
				p.IsCommissionPaid = true
				p.CommissionPaidAt = &paidOut
			}
		case payment.StatusRefunded:
			refunded := created.Add(24 * time.Hour)
			p.PaidAt = &created
			p.RefundedAt = &refunded
			p.RefundedAmount = amount
		case payment.StatusFailed:
			p.FailureReason = "card_declined: insufficient_funds"
		}
		if err := db.Create(&p).Error; err != nil {
			log.Fatalf("create payment: %v", err)
		}
		if status == payment.StatusSucceeded {
			if _, _, err := ledger.Credit(ctx, partner.ID, p.ID, partnerAmount, p.Currency); err != nil {
				log.Fatalf("credit earnings: %v", err)
			}
		}
	}

	// ================== EXCHANGE RATES ==================
	if err := currency.NewRepository(db).Upsert(ctx, &currency.ExchangeRate{
		BaseCurrency: currency.BaseCurrency,
		EURRate:      cfg.Currency.DefaultEURRate,
		UpdatedBy:    admin.ID,
	}); err != nil {
		log.Fatalf("seed exchange rate: %v", err)
	}

	log.Printf("Seed completed: %d clients, %d partners, 20 payments (password %s)", len(clients), len(partners), demoPassword)
}
