package profile

import (
	"context"
	"errors"
	"strings"
)

// Service owns self-service profile reads and edits and role resolution.
type Service struct {
	repo        *Repository
	adminEmails []string
}

func NewService(repo *Repository, adminEmails []string) *Service {
	return &Service{repo: repo, adminEmails: adminEmails}
}

func (s *Service) AdminEmails() []string {
	return s.adminEmails
}

// AdminIDs lists the accounts that receive admin notifications.
func (s *Service) AdminIDs(ctx context.Context) ([]string, error) {
	return s.repo.AdminIDs(ctx, s.adminEmails)
}

func (s *Service) GetByID(ctx context.Context, id string) (*Profile, error) {
	return s.repo.GetByID(ctx, id)
}

// Resolution is the result of looking up where a user belongs.
type Resolution struct {
	Profile      *Profile    `json:"profile,omitempty"`
	Destination  Destination `json:"destination"`
	RedirectPath string      `json:"redirect_path"`
}

// ResolveForUser never fails on a missing profile: lookup errors degrade to
// the client destination.
func (s *Service) ResolveForUser(ctx context.Context, userID, email string) Resolution {
	p, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		p = nil
	}
	if email == "" && p != nil {
		email = p.Email
	}
	dest := ResolveDestination(email, p, s.adminEmails)
	return Resolution{Profile: p, Destination: dest, RedirectPath: dest.DashboardPath()}
}

// EffectiveRole is the role carried in access tokens: admin-list emails are
// promoted to admin.
func (s *Service) EffectiveRole(email string, p *Profile) Role {
	if ResolveDestination(email, nil, s.adminEmails) == DestinationAdmin {
		return RoleAdmin
	}
	if p == nil {
		return RoleClient
	}
	return p.Role
}

type UpdateMeRequest struct {
	FirstName   *string `json:"first_name" validate:"omitempty,max=100"`
	LastName    *string `json:"last_name" validate:"omitempty,max=100"`
	Phone       *string `json:"phone" validate:"omitempty,phone"`
	CompanyName *string `json:"company_name" validate:"omitempty,max=255"`
	Address     *string `json:"address" validate:"omitempty,max=500"`
	City        *string `json:"city" validate:"omitempty,max=100"`
	AvatarURL   *string `json:"avatar_url" validate:"omitempty,url"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	BankAccount *string `json:"bank_account" validate:"omitempty,max=64"`
	IBAN        *string `json:"iban" validate:"omitempty,iban"`
}

// UpdateMe edits the caller's own profile. Role, status and verification are
// admin-only and not part of the request.
func (s *Service) UpdateMe(ctx context.Context, userID string, req UpdateMeRequest) (*Profile, error) {
	current, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	setString(updates, "first_name", req.FirstName)
	setString(updates, "last_name", req.LastName)
	setString(updates, "phone", req.Phone)
	setString(updates, "address", req.Address)
	setString(updates, "city", req.City)
	setString(updates, "avatar_url", req.AvatarURL)
	setString(updates, "description", req.Description)

	// company and bank details only make sense on partner accounts
	if current.Role.IsPartner() {
		setString(updates, "company_name", req.CompanyName)
		setString(updates, "bank_account", req.BankAccount)
		if req.IBAN != nil {
			updates["iban"] = strings.ToUpper(strings.ReplaceAll(*req.IBAN, " ", ""))
		}
	}

	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID)
}

// SetAvatar points the profile at an uploaded image.
func (s *Service) SetAvatar(ctx context.Context, userID, url string) error {
	return s.repo.Update(ctx, userID, map[string]any{"avatar_url": url})
}

func setString(updates map[string]any, column string, v *string) {
	if v == nil {
		return
	}
	updates[column] = strings.TrimSpace(*v)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrProfileNotFound)
}
