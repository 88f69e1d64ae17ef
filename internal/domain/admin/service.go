package admin

import (
	"context"
	"strings"

	"maroctour/internal/domain/auth"
	"maroctour/internal/domain/profile"
	"maroctour/internal/pkg/pagination"
)

// AccountManager creates and removes accounts; auth.Service implements it.
type AccountManager interface {
	InviteUser(ctx context.Context, in auth.InviteInput) (*profile.Profile, error)
	DeleteAccount(ctx context.Context, userID string) error
}

type Service struct {
	repo     *Repository
	profiles *profile.Repository
	accounts AccountManager
	loggerf  func(format string, args ...interface{})
}

func NewService(repo *Repository, profiles *profile.Repository, accounts AccountManager, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{repo: repo, profiles: profiles, accounts: accounts, loggerf: loggerf}
}

func (s *Service) ListUsers(ctx context.Context, f UserFilter, page pagination.Params) ([]profile.Profile, int64, error) {
	return s.repo.ListUsers(ctx, f, page.Offset(), page.Limit())
}

// manageable loads a profile an admin may act on.
func (s *Service) manageable(ctx context.Context, id string) (*profile.Profile, error) {
	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Role == profile.RoleSystem {
		return nil, ErrSystemAccount
	}
	return p, nil
}

// ChangeRole assigns a role. Partner roles also set the partner type.
func (s *Service) ChangeRole(ctx context.Context, id string, role profile.Role) (*profile.Profile, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if _, err := s.manageable(ctx, id); err != nil {
		return nil, err
	}
	updates := map[string]any{"role": role, "partner_type": role.PartnerType()}
	if err := s.profiles.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	s.loggerf("level=info msg=\"role changed\" user_id=%s role=%s", id, role)
	return s.profiles.GetByID(ctx, id)
}

// ToggleVerification flips is_verified on any manageable profile.
func (s *Service) ToggleVerification(ctx context.Context, id string) (*profile.Profile, error) {
	p, err := s.manageable(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.profiles.Update(ctx, id, map[string]any{"is_verified": !p.IsVerified}); err != nil {
		return nil, err
	}
	return s.profiles.GetByID(ctx, id)
}

// DeleteUser removes the account with its profile and tokens.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if _, err := s.manageable(ctx, id); err != nil {
		return err
	}
	if err := s.accounts.DeleteAccount(ctx, id); err != nil {
		return err
	}
	s.loggerf("level=info msg=\"user deleted\" user_id=%s", id)
	return nil
}

func (s *Service) ListPartners(ctx context.Context, f PartnerFilter, page pagination.Params) ([]profile.Profile, int64, error) {
	return s.repo.ListPartners(ctx, f, page.Offset(), page.Limit())
}

func (s *Service) PartnerStats(ctx context.Context, f PartnerFilter) (PartnerStats, error) {
	return s.repo.PartnerStats(ctx, f)
}

// CreatePartner goes through the invite flow so the partner gets a real
// login. The role must be a partner role.
func (s *Service) CreatePartner(ctx context.Context, in auth.InviteInput) (*profile.Profile, error) {
	if !in.Role.IsPartner() || !in.Role.Valid() {
		return nil, ErrInvalidRole
	}
	return s.accounts.InviteUser(ctx, in)
}

type UpdatePartnerRequest struct {
	FirstName   *string         `json:"first_name" validate:"omitempty,max=100"`
	LastName    *string         `json:"last_name" validate:"omitempty,max=100"`
	CompanyName *string         `json:"company_name" validate:"omitempty,max=255"`
	Phone       *string         `json:"phone" validate:"omitempty,phone"`
	Role        *profile.Role   `json:"role"`
	Address     *string         `json:"address" validate:"omitempty,max=500"`
	City        *string         `json:"city" validate:"omitempty,max=100"`
	Country     *string         `json:"country" validate:"omitempty,max=64"`
	Description *string         `json:"description" validate:"omitempty,max=2000"`
	Status      *profile.Status `json:"status"`
	IsVerified  *bool           `json:"is_verified"`
	BankAccount *string         `json:"bank_account" validate:"omitempty,max=64"`
	IBAN        *string         `json:"iban" validate:"omitempty,iban"`
}

// UpdatePartner applies the non-nil fields of req to a partner profile.
func (s *Service) UpdatePartner(ctx context.Context, id string, req UpdatePartnerRequest) (*profile.Profile, error) {
	p, err := s.manageable(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Role.IsPartner() {
		return nil, ErrNotPartner
	}

	updates := map[string]any{}
	setString(updates, "first_name", req.FirstName)
	setString(updates, "last_name", req.LastName)
	setString(updates, "company_name", req.CompanyName)
	setString(updates, "phone", req.Phone)
	setString(updates, "address", req.Address)
	setString(updates, "city", req.City)
	setString(updates, "country", req.Country)
	setString(updates, "description", req.Description)
	setString(updates, "bank_account", req.BankAccount)
	if req.IBAN != nil {
		updates["iban"] = strings.ToUpper(strings.ReplaceAll(*req.IBAN, " ", ""))
	}
	if req.Role != nil {
		if !req.Role.IsPartner() || !req.Role.Valid() {
			return nil, ErrInvalidRole
		}
		updates["role"] = *req.Role
		updates["partner_type"] = req.Role.PartnerType()
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		updates["status"] = *req.Status
	}
	if req.IsVerified != nil {
		updates["is_verified"] = *req.IsVerified
	}

	if err := s.profiles.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.profiles.GetByID(ctx, id)
}

func (s *Service) TogglePartnerVerification(ctx context.Context, id string) (*profile.Profile, error) {
	p, err := s.manageable(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Role.IsPartner() {
		return nil, ErrNotPartner
	}
	return s.ToggleVerification(ctx, id)
}

func (s *Service) DeletePartner(ctx context.Context, id string) error {
	p, err := s.manageable(ctx, id)
	if err != nil {
		return err
	}
	if !p.Role.IsPartner() {
		return ErrNotPartner
	}
	return s.DeleteUser(ctx, id)
}

func setString(updates map[string]any, column string, v *string) {
	if v == nil {
		return
	}
	updates[column] = strings.TrimSpace(*v)
}
