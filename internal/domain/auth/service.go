package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"maroctour/internal/database"
	"maroctour/internal/domain/profile"
	"maroctour/internal/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxFailedLoginAttempts = 5
	lockoutDuration        = 15 * time.Minute
	maxActiveRefreshTokens = 10
	inviteTTL              = 7 * 24 * time.Hour
)

type tokenIssuer interface {
	GenerateToken(userID, role, email string) (string, error)
	TTL() time.Duration
}

// AdminNotifier fans a notification out to every admin account.
type AdminNotifier interface {
	NotifyAdmins(ctx context.Context, notifType, title, message string, data map[string]any) error
}

type Config struct {
	RefreshTokenPepper       string
	AuthTokenPepper          string
	RefreshTTL               time.Duration
	AuthTokenTTL             time.Duration
	ResendCooldown           time.Duration
	RequireEmailConfirmation bool
	PublicBaseURL            string
}

// Service contains all business logic for authentication
type Service struct {
	db        *gorm.DB
	profiles  *profile.Service
	jwt       tokenIssuer
	mailer    Mailer
	notifier  AdminNotifier
	providers map[string]OAuthProvider
	cfg       Config
	now       func() time.Time
	loggerf   func(format string, args ...interface{})
}

func NewService(db *gorm.DB, profiles *profile.Service, jwt tokenIssuer, mailer Mailer, cfg Config) *Service {
	return &Service{
		db:        db,
		profiles:  profiles,
		jwt:       jwt,
		mailer:    mailer,
		providers: map[string]OAuthProvider{},
		cfg:       cfg,
		now:       time.Now,
		loggerf:   func(string, ...interface{}) {},
	}
}

func (s *Service) SetNotifier(n AdminNotifier) {
	s.notifier = n
}

func (s *Service) SetLogger(loggerf func(format string, args ...interface{})) {
	if loggerf != nil {
		s.loggerf = loggerf
	}
}

func (s *Service) RegisterProvider(p OAuthProvider) {
	s.providers[p.Name()] = p
}

// ClientMeta identifies the device a session was issued to.
type ClientMeta struct {
	UserAgent string
	IP        string
}

type Session struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"-"`
	ExpiresIn    int64            `json:"expires_in"`
	User         *User            `json:"user"`
	Profile      *profile.Profile `json:"profile,omitempty"`
	Role         profile.Role     `json:"role"`
	Destination  string           `json:"destination"`
	RedirectPath string           `json:"redirect_path"`
}

type SignUpInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name" validate:"omitempty,max=100"`
	LastName  string `json:"last_name" validate:"omitempty,max=100"`
	Phone     string `json:"phone" validate:"omitempty,phone"`
	AsPartner bool   `json:"as_partner"`
}

type SignUpResult struct {
	UserID               string   `json:"user_id"`
	ConfirmationRequired bool     `json:"confirmation_required"`
	Session              *Session `json:"session,omitempty"`
}

// SignUp creates the user and its profile together. With email confirmation
// on, a signup link is mailed and no session is returned.
func (s *Service) SignUp(ctx context.Context, in SignUpInput, meta ClientMeta) (*SignUpResult, error) {
	in.Email = normalizeEmail(in.Email)
	if errs := validator.Validate(in); errs != nil {
		if _, bad := errs["Email"]; bad {
			return nil, ErrInvalidEmail
		}
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, in.Email); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &User{Email: in.Email, PasswordHash: hash, Provider: ProviderEmail}
	if !s.cfg.RequireEmailConfirmation {
		user.EmailConfirmedAt = &now
	}
	role := profile.RoleClient
	if in.AsPartner {
		role = profile.RolePartnerNew
	}
	p := &profile.Profile{
		Email:     in.Email,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Phone:     strings.TrimSpace(in.Phone),
		Role:      role,
	}
	if in.AsPartner {
		p.Status = profile.StatusPending
	}

	if err := s.createAccount(ctx, user, p); err != nil {
		return nil, err
	}
	s.loggerf("level=info msg=\"user signed up\" user_id=%s role=%s", user.ID, role)

	if in.AsPartner {
		s.notifyNewPartner(ctx, user.ID, user.Email)
	}

	result := &SignUpResult{UserID: user.ID}
	if s.cfg.RequireEmailConfirmation {
		if err := s.sendLink(ctx, user, PurposeSignup, user.Email, s.cfg.AuthTokenTTL); err != nil {
			return nil, err
		}
		result.ConfirmationRequired = true
		return result, nil
	}

	session, err := s.issueSession(ctx, user, meta)
	if err != nil {
		return nil, err
	}
	result.Session = session
	return result, nil
}

// SignIn checks the password, applies the lockout policy and opens a session.
func (s *Service) SignIn(ctx context.Context, email, password string, meta ClientMeta) (*Session, error) {
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	now := s.now()
	if user.LockedUntil != nil && user.LockedUntil.After(now) {
		return nil, ErrAccountLocked
	}
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		// an expired lockout starts a fresh count
		failedAttempts := user.FailedLoginAttempts + 1
		updates := map[string]any{"failed_login_attempts": failedAttempts}
		if user.LockedUntil != nil {
			failedAttempts = 1
			updates = map[string]any{"failed_login_attempts": failedAttempts, "locked_until": nil}
		}
		if failedAttempts >= maxFailedLoginAttempts {
			updates["locked_until"] = now.Add(lockoutDuration)
		}
		if updateErr := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", user.ID).Updates(updates).Error; updateErr != nil {
			return nil, updateErr
		}
		if failedAttempts >= maxFailedLoginAttempts {
			s.loggerf("level=warn msg=\"account locked\" user_id=%s", user.ID)
			return nil, ErrAccountLocked
		}
		return nil, ErrInvalidCredentials
	}

	if !user.EmailConfirmed() {
		return nil, ErrEmailNotConfirmed
	}

	if err := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", user.ID).Updates(map[string]any{
		"failed_login_attempts": 0,
		"locked_until":          nil,
		"last_sign_in_at":       now,
	}).Error; err != nil {
		return nil, err
	}
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastSignInAt = &now

	return s.issueSession(ctx, user, meta)
}

// Refresh rotates a refresh token. Presenting an already rotated or revoked
// token revokes its whole family.
func (s *Service) Refresh(ctx context.Context, refreshRaw string, meta ClientMeta) (*Session, error) {
	now := s.now()
	hash := hashTokenWithPepper(refreshRaw, s.cfg.RefreshTokenPepper)

	var (
		user     User
		reusedIn string
	)
	newRaw, newHash, err := generateOpaqueToken(s.cfg.RefreshTokenPepper)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current RefreshToken
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("token_hash = ?", hash).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidRefreshToken
			}
			return err
		}

		if !current.ExpiresAt.After(now) {
			return ErrInvalidRefreshToken
		}

		if current.UsedAt != nil || current.RevokedAt != nil {
			reusedIn = current.FamilyID
			return tx.Model(&RefreshToken{}).Where("id = ?", current.ID).Update("reuse_detected_at", now).Error
		}

		if err := tx.Where("id = ?", current.UserID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidRefreshToken
			}
			return err
		}

		if err := tx.Model(&RefreshToken{}).Where("id = ?", current.ID).Updates(map[string]any{
			"used_at":    now,
			"revoked_at": now,
		}).Error; err != nil {
			return err
		}
		rotatedFrom := current.ID
		return tx.Create(&RefreshToken{
			UserID:      current.UserID,
			TokenHash:   newHash,
			FamilyID:    current.FamilyID,
			RotatedFrom: &rotatedFrom,
			ExpiresAt:   now.Add(s.cfg.RefreshTTL),
			UserAgent:   nullableString(meta.UserAgent),
			IP:          nullableString(meta.IP),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	if reusedIn != "" {
		if err := s.revokeFamily(ctx, reusedIn); err != nil {
			return nil, err
		}
		s.loggerf("level=warn msg=\"refresh token reuse detected\" family_id=%s", reusedIn)
		return nil, ErrRefreshTokenReused
	}

	session, err := s.buildSession(ctx, &user)
	if err != nil {
		return nil, err
	}
	session.RefreshToken = newRaw
	return session, nil
}

func (s *Service) SignOut(ctx context.Context, refreshRaw string) error {
	if strings.TrimSpace(refreshRaw) == "" {
		return nil
	}
	hash := hashTokenWithPepper(refreshRaw, s.cfg.RefreshTokenPepper)
	return s.db.WithContext(ctx).Model(&RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", hash).
		Update("revoked_at", s.now()).Error
}

func (s *Service) GetUser(ctx context.Context, userID string) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// issueSession opens a new refresh family for the user.
func (s *Service) issueSession(ctx context.Context, user *User, meta ClientMeta) (*Session, error) {
	session, err := s.buildSession(ctx, user)
	if err != nil {
		return nil, err
	}

	raw, hash, err := generateOpaqueToken(s.cfg.RefreshTokenPepper)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&RefreshToken{
		UserID:    user.ID,
		TokenHash: hash,
		FamilyID:  uuid.NewString(),
		ExpiresAt: s.now().Add(s.cfg.RefreshTTL),
		UserAgent: nullableString(meta.UserAgent),
		IP:        nullableString(meta.IP),
	}).Error; err != nil {
		return nil, err
	}
	s.trimActiveRefreshTokens(ctx, user.ID)

	session.RefreshToken = raw
	return session, nil
}

// buildSession resolves the profile and role and signs an access token.
func (s *Service) buildSession(ctx context.Context, user *User) (*Session, error) {
	res := s.profiles.ResolveForUser(ctx, user.ID, user.Email)
	role := s.profiles.EffectiveRole(user.Email, res.Profile)

	access, err := s.jwt.GenerateToken(user.ID, string(role), user.Email)
	if err != nil {
		return nil, err
	}
	return &Session{
		AccessToken:  access,
		ExpiresIn:    int64(s.jwt.TTL() / time.Second),
		User:         user,
		Profile:      res.Profile,
		Role:         role,
		Destination:  string(res.Destination),
		RedirectPath: res.RedirectPath,
	}, nil
}

// trimActiveRefreshTokens keeps the newest sessions per user and revokes the rest.
func (s *Service) trimActiveRefreshTokens(ctx context.Context, userID string) {
	var stale []string
	err := s.db.WithContext(ctx).Model(&RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Order("created_at DESC").
		Offset(maxActiveRefreshTokens).
		Limit(1000).
		Pluck("id", &stale).Error
	if err != nil || len(stale) == 0 {
		return
	}
	if err := s.db.WithContext(ctx).Model(&RefreshToken{}).Where("id IN ?", stale).Update("revoked_at", s.now()).Error; err != nil {
		s.loggerf("level=warn msg=\"trim refresh tokens failed\" user_id=%s err=%v", userID, err)
	}
}

func (s *Service) revokeFamily(ctx context.Context, familyID string) error {
	return s.db.WithContext(ctx).Model(&RefreshToken{}).
		Where("family_id = ? AND revoked_at IS NULL", familyID).
		Update("revoked_at", s.now()).Error
}

func (s *Service) revokeAllForUser(ctx context.Context, tx *gorm.DB, userID string) error {
	return tx.WithContext(ctx).Model(&RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", s.now()).Error
}

func (s *Service) createAccount(ctx context.Context, user *User, p *profile.Profile) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		p.ID = user.ID
		return tx.Create(p).Error
	})
	if database.IsUniqueViolation(err) {
		return ErrEmailAlreadyExists
	}
	return err
}

func (s *Service) ensureEmailFree(ctx context.Context, email string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrEmailAlreadyExists
	}
	return nil
}

func (s *Service) userByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Service) notifyNewPartner(ctx context.Context, userID, email string) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.NotifyAdmins(ctx, "new_partner", "Nouveau partenaire",
		fmt.Sprintf("Nouveau partenaire en attente: %s", email),
		map[string]any{"user_id": userID, "email": email})
	if err != nil {
		s.loggerf("level=warn msg=\"new partner notification failed\" user_id=%s err=%v", userID, err)
	}
}
