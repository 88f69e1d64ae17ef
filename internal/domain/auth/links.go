package auth

import (
	"context"
	"errors"
	"time"

	"maroctour/internal/database"
	"maroctour/internal/domain/profile"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LinkRequestResult is returned by every masked "send me a link" flow.
type LinkRequestResult struct {
	Status string `json:"status"`
}

var accepted = &LinkRequestResult{Status: "accepted"}

// RequestMagicLink mails a passwordless sign-in link. The answer is the same
// whether or not the email belongs to an account.
func (s *Service) RequestMagicLink(ctx context.Context, email string) (*LinkRequestResult, error) {
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.loggerf("level=info msg=\"magic link: email not found (masked)\"")
			return accepted, nil
		}
		return nil, err
	}
	if err := s.checkCooldown(ctx, user.ID, PurposeMagicLink); err != nil {
		return nil, err
	}
	if err := s.sendLink(ctx, user, PurposeMagicLink, user.Email, s.cfg.AuthTokenTTL); err != nil {
		return nil, err
	}
	return accepted, nil
}

// ResendConfirmation re-sends the signup link to an unconfirmed account.
func (s *Service) ResendConfirmation(ctx context.Context, email string) (*LinkRequestResult, error) {
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return accepted, nil
		}
		return nil, err
	}
	if user.EmailConfirmed() {
		s.loggerf("level=info msg=\"resend: already confirmed\" user_id=%s", user.ID)
		return accepted, nil
	}
	if err := s.checkCooldown(ctx, user.ID, PurposeSignup); err != nil {
		return nil, err
	}
	if err := s.sendLink(ctx, user, PurposeSignup, user.Email, s.cfg.AuthTokenTTL); err != nil {
		return nil, err
	}
	return accepted, nil
}

// RequestPasswordReset mails a recovery link (masked like the magic link).
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (*LinkRequestResult, error) {
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return accepted, nil
		}
		return nil, err
	}
	if err := s.checkCooldown(ctx, user.ID, PurposeRecovery); err != nil {
		return nil, err
	}
	if err := s.sendLink(ctx, user, PurposeRecovery, user.Email, s.cfg.AuthTokenTTL); err != nil {
		return nil, err
	}
	return accepted, nil
}

// ResetPassword consumes a recovery token, sets the new password and signs
// out every existing session.
func (s *Service) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	now := s.now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tok, err := s.consumeToken(tx, rawToken, PurposeRecovery)
		if err != nil {
			return err
		}
		if tok.UserID == nil {
			return ErrInvalidToken
		}
		if err := tx.Model(&User{}).Where("id = ?", *tok.UserID).Updates(map[string]any{
			"password_hash":         hash,
			"failed_login_attempts": 0,
			"locked_until":          nil,
			"email_confirmed_at":    gorm.Expr("COALESCE(email_confirmed_at, ?)", now),
		}).Error; err != nil {
			return err
		}
		return s.revokeAllForUser(ctx, tx, *tok.UserID)
	})
}

// VerifyOTP exchanges an emailed token for a session. typ must match the
// purpose the token was issued for.
func (s *Service) VerifyOTP(ctx context.Context, rawToken string, typ TokenPurpose, meta ClientMeta) (*Session, error) {
	if !typ.verifiable() {
		return nil, ErrInvalidOTPType
	}

	now := s.now()
	var user User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tok, err := s.consumeToken(tx, rawToken, typ)
		if err != nil {
			return err
		}
		if tok.UserID == nil {
			return ErrInvalidToken
		}
		if err := tx.Where("id = ?", *tok.UserID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidToken
			}
			return err
		}

		updates := map[string]any{}
		if user.EmailConfirmedAt == nil {
			updates["email_confirmed_at"] = now
			user.EmailConfirmedAt = &now
		}
		if typ == PurposeEmailChange {
			newEmail := normalizeEmail(tok.Email)
			updates["email"] = newEmail
			if err := tx.Model(&profile.Profile{}).Where("id = ?", user.ID).Update("email", newEmail).Error; err != nil {
				return err
			}
			user.Email = newEmail
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&User{}).Where("id = ?", user.ID).Updates(updates).Error
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	s.loggerf("level=info msg=\"otp verified\" user_id=%s type=%s", user.ID, typ)
	return s.issueSession(ctx, &user, meta)
}

// UpdatePassword changes the caller's password. Accounts that already have
// a password must present it; invited and OAuth accounts may set one freely.
func (s *Service) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.PasswordHash != "" {
		if err := CheckPassword(currentPassword, user.PasswordHash); err != nil {
			return ErrInvalidCredentials
		}
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&User{}).Where("id = ?", userID).Update("password_hash", hash).Error; err != nil {
			return err
		}
		return s.revokeAllForUser(ctx, tx, userID)
	})
}

// UpdateEmail re-authenticates with the password and mails a confirmation
// link to the new address. The change applies once the link is verified.
func (s *Service) UpdateEmail(ctx context.Context, userID, newEmail, password string) (*LinkRequestResult, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.PasswordHash != "" {
		if err := CheckPassword(password, user.PasswordHash); err != nil {
			return nil, ErrInvalidCredentials
		}
	}

	newEmail = normalizeEmail(newEmail)
	if newEmail == "" {
		return nil, ErrInvalidEmail
	}
	if newEmail == user.Email {
		return nil, ErrSameEmail
	}
	if err := s.ensureEmailFree(ctx, newEmail); err != nil {
		return nil, err
	}
	if err := s.checkCooldown(ctx, user.ID, PurposeEmailChange); err != nil {
		return nil, err
	}
	if err := s.sendLink(ctx, user, PurposeEmailChange, newEmail, s.cfg.AuthTokenTTL); err != nil {
		return nil, err
	}
	return accepted, nil
}

// checkCooldown rejects a new link while the last one of the same purpose
// is younger than the resend cooldown.
func (s *Service) checkCooldown(ctx context.Context, userID string, purpose TokenPurpose) error {
	var last AuthToken
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND purpose = ?", userID, purpose).
		Order("created_at DESC").
		First(&last).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if last.CreatedAt.Add(s.cfg.ResendCooldown).After(s.now()) {
		return ErrRateLimitExceeded
	}
	return nil
}

// sendLink invalidates older unused tokens of the purpose, stores a new one
// and mails it to target.
func (s *Service) sendLink(ctx context.Context, user *User, purpose TokenPurpose, target string, ttl time.Duration) error {
	raw, hash, err := generateOpaqueToken(s.cfg.AuthTokenPepper)
	if err != nil {
		return err
	}
	now := s.now()
	userID := user.ID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&AuthToken{}).
			Where("user_id = ? AND purpose = ? AND used_at IS NULL", user.ID, purpose).
			Update("used_at", now).Error; err != nil {
			return err
		}
		return tx.Create(&AuthToken{
			UserID:    &userID,
			Purpose:   purpose,
			TokenHash: hash,
			Email:     target,
			ExpiresAt: now.Add(ttl),
			CreatedAt: now,
		}).Error
	})
	if err != nil {
		return err
	}
	return s.mailer.SendAuthLink(ctx, target, purpose, buildLink(s.cfg.PublicBaseURL, purpose, raw))
}

// consumeToken marks a live token of the given purpose as used.
func (s *Service) consumeToken(tx *gorm.DB, rawToken string, purpose TokenPurpose) (*AuthToken, error) {
	if rawToken == "" {
		return nil, ErrInvalidToken
	}
	hash := hashTokenWithPepper(rawToken, s.cfg.AuthTokenPepper)

	var tok AuthToken
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("token_hash = ? AND purpose = ?", hash, purpose).
		First(&tok).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	now := s.now()
	if tok.UsedAt != nil || !tok.ExpiresAt.After(now) {
		return nil, ErrInvalidToken
	}
	res := tx.Model(&AuthToken{}).Where("id = ? AND used_at IS NULL", tok.ID).Update("used_at", now)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidToken
	}
	tok.UsedAt = &now
	return &tok, nil
}
