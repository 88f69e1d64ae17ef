package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"maroctour/internal/domain/profile"

	"gorm.io/gorm"
)

// InviteInput creates an account on behalf of someone else. Without a
// password the user receives an invite link and sets one later.
type InviteInput struct {
	Email       string       `json:"email" validate:"required,email"`
	Role        profile.Role `json:"role" validate:"required"`
	Password    string       `json:"password,omitempty"`
	FirstName   string       `json:"first_name" validate:"omitempty,max=100"`
	LastName    string       `json:"last_name" validate:"omitempty,max=100"`
	Phone       string       `json:"phone" validate:"omitempty,phone"`
	CompanyName string       `json:"company_name" validate:"omitempty,max=255"`
	Address     string       `json:"address" validate:"omitempty,max=500"`
	City        string       `json:"city" validate:"omitempty,max=100"`
	Description string       `json:"description" validate:"omitempty,max=2000"`
	Verified    bool         `json:"is_verified"`
}

// InviteUser is used by admins to create clients, partners and other admins.
func (s *Service) InviteUser(ctx context.Context, in InviteInput) (*profile.Profile, error) {
	in.Email = normalizeEmail(in.Email)
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, ErrInvalidEmail
	}
	if !in.Role.Valid() {
		return nil, ErrInvalidRole
	}
	if err := s.ensureEmailFree(ctx, in.Email); err != nil {
		return nil, err
	}

	user := &User{Email: in.Email, Provider: ProviderEmail}
	if in.Password != "" {
		if err := ValidatePassword(in.Password); err != nil {
			return nil, err
		}
		hash, err := HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		now := s.now()
		user.PasswordHash = hash
		user.EmailConfirmedAt = &now
	}

	p := &profile.Profile{
		Email:       in.Email,
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		Phone:       strings.TrimSpace(in.Phone),
		Role:        in.Role,
		CompanyName: strings.TrimSpace(in.CompanyName),
		Address:     strings.TrimSpace(in.Address),
		City:        strings.TrimSpace(in.City),
		Description: strings.TrimSpace(in.Description),
		IsVerified:  in.Verified,
		Status:      profile.StatusActive,
	}
	if in.Role.IsPartner() {
		p.PartnerType = in.Role.PartnerType()
	}

	if err := s.createAccount(ctx, user, p); err != nil {
		return nil, err
	}
	s.loggerf("level=info msg=\"user invited\" user_id=%s role=%s", user.ID, in.Role)

	if user.PasswordHash == "" {
		if err := s.sendLink(ctx, user, PurposeInvite, user.Email, inviteTTL); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// DeleteAccount removes the user, its profile and every token it holds.
func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&RefreshToken{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&AuthToken{}).Error; err != nil {
			return err
		}
		profRes := tx.Where("id = ?", userID).Delete(&profile.Profile{})
		if profRes.Error != nil {
			return profRes.Error
		}
		userRes := tx.Where("id = ?", userID).Delete(&User{})
		if userRes.Error != nil {
			return userRes.Error
		}
		if profRes.RowsAffected == 0 && userRes.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

// CleanupResult reports how many rows Cleanup removed.
type CleanupResult struct {
	RefreshTokens int64
	AuthTokens    int64
}

// Cleanup deletes expired refresh tokens, revoked ones older than 30 days,
// and one-time tokens that are used or expired.
func (s *Service) Cleanup(ctx context.Context) (*CleanupResult, error) {
	now := s.now()
	res1 := s.db.WithContext(ctx).
		Where("expires_at < ? OR (revoked_at IS NOT NULL AND created_at < ?)", now, now.Add(-30*24*time.Hour)).
		Delete(&RefreshToken{})
	if res1.Error != nil {
		return nil, res1.Error
	}
	res2 := s.db.WithContext(ctx).
		Where("expires_at < ? OR used_at IS NOT NULL", now).
		Delete(&AuthToken{})
	if res2.Error != nil {
		return nil, res2.Error
	}
	return &CleanupResult{RefreshTokens: res1.RowsAffected, AuthTokens: res2.RowsAffected}, nil
}

// IsNotFound reports whether err means the account does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}
