package auth

import (
	"context"
	"errors"
	"strings"

	"maroctour/internal/domain/profile"

	"gorm.io/gorm"
)

// StartOAuth stores a single-use state and returns the provider URL to
// redirect the browser to. signupRole is "partner" for partner sign-ups.
func (s *Service) StartOAuth(ctx context.Context, providerName, signupRole string) (string, error) {
	provider, ok := s.providers[providerName]
	if !ok {
		return "", ErrUnsupportedProvider
	}

	role := profile.RoleClient
	switch strings.ToLower(strings.TrimSpace(signupRole)) {
	case "", string(profile.RoleClient):
	case string(profile.RolePartner), string(profile.RolePartnerNew):
		role = profile.RolePartnerNew
	default:
		return "", ErrInvalidRole
	}

	raw, hash, err := generateOpaqueToken(s.cfg.AuthTokenPepper)
	if err != nil {
		return "", err
	}
	now := s.now()
	if err := s.db.WithContext(ctx).Create(&AuthToken{
		Purpose:    PurposeOAuthState,
		TokenHash:  hash,
		Provider:   provider.Name(),
		SignupRole: string(role),
		ExpiresAt:  now.Add(s.cfg.AuthTokenTTL),
		CreatedAt:  now,
	}).Error; err != nil {
		return "", err
	}
	return provider.AuthCodeURL(raw), nil
}

// CompleteOAuth consumes the state, exchanges the code and signs the user
// in, creating the account on first use.
func (s *Service) CompleteOAuth(ctx context.Context, state, code string, meta ClientMeta) (*Session, error) {
	var tok *AuthToken
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		tok, err = s.consumeToken(tx, state, PurposeOAuthState)
		return err
	})
	if err != nil {
		return nil, err
	}

	provider, ok := s.providers[tok.Provider]
	if !ok {
		return nil, ErrUnsupportedProvider
	}
	identity, err := provider.Exchange(ctx, code)
	if err != nil {
		s.loggerf("level=warn msg=\"oauth exchange failed\" provider=%s err=%v", tok.Provider, err)
		return nil, err
	}
	email := normalizeEmail(identity.Email)
	if email == "" {
		return nil, ErrOAuthExchange
	}

	now := s.now()
	user, err := s.userByEmail(ctx, email)
	switch {
	case err == nil:
		updates := map[string]any{"last_sign_in_at": now}
		if !user.EmailConfirmed() {
			updates["email_confirmed_at"] = now
			user.EmailConfirmedAt = &now
		}
		if err := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			return nil, err
		}
		user.LastSignInAt = &now
	case errors.Is(err, ErrUserNotFound):
		user, err = s.createOAuthAccount(ctx, tok, identity, email)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return s.issueSession(ctx, user, meta)
}

func (s *Service) createOAuthAccount(ctx context.Context, tok *AuthToken, identity *OAuthIdentity, email string) (*User, error) {
	now := s.now()
	role := profile.Role(tok.SignupRole)
	if role != profile.RolePartnerNew {
		role = profile.RoleClient
	}

	user := &User{Email: email, Provider: tok.Provider, EmailConfirmedAt: &now, LastSignInAt: &now}
	p := &profile.Profile{
		Email:     email,
		FirstName: strings.TrimSpace(identity.FirstName),
		LastName:  strings.TrimSpace(identity.LastName),
		AvatarURL: identity.AvatarURL,
		Role:      role,
	}
	if role == profile.RolePartnerNew {
		p.Status = profile.StatusPending
	}
	if err := s.createAccount(ctx, user, p); err != nil {
		return nil, err
	}
	s.loggerf("level=info msg=\"oauth account created\" user_id=%s provider=%s role=%s", user.ID, tok.Provider, role)

	if role == profile.RolePartnerNew {
		s.notifyNewPartner(ctx, user.ID, email)
	}
	return user, nil
}
