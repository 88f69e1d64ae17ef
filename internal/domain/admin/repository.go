package admin

import (
	"context"
	"strings"

	"maroctour/internal/domain/profile"

	"gorm.io/gorm"
)

type UserFilter struct {
	Search string
	Role   string
}

type PartnerFilter struct {
	Search string
	Status string
	Role   string
}

type PartnerStats struct {
	Total    int64 `json:"total"`
	Verified int64 `json:"verified"`
	Pending  int64 `json:"pending"`
	Active   int64 `json:"active"`
	Hotels   int64 `json:"hotels"`
	Cars     int64 `json:"cars"`
	Tours    int64 `json:"tours"`
}

// Repository runs the dashboard queries over profiles.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func likePattern(s string) string {
	s = strings.NewReplacer("%", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	return "%" + s + "%"
}

func (r *Repository) usersQuery(ctx context.Context, f UserFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&profile.Profile{}).Where("role <> ?", profile.RoleSystem)
	if f.Role != "" && f.Role != "all" {
		q = q.Where("role = ?", f.Role)
	}
	if strings.TrimSpace(f.Search) != "" {
		p := likePattern(f.Search)
		q = q.Where("LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(company_name) LIKE ? OR LOWER(phone) LIKE ?",
			p, p, p, p, p)
	}
	return q
}

// ListUsers returns one page of non-system profiles, newest first.
func (r *Repository) ListUsers(ctx context.Context, f UserFilter, offset, limit int) ([]profile.Profile, int64, error) {
	var total int64
	if err := r.usersQuery(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []profile.Profile
	if err := r.usersQuery(ctx, f).Order("created_at DESC").Offset(offset).Limit(limit).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *Repository) partnersQuery(ctx context.Context, f PartnerFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&profile.Profile{}).Where("role LIKE ?", string(profile.RolePartner)+"%")
	if f.Status != "" && f.Status != "all" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Role != "" && f.Role != "all" {
		q = q.Where("role = ?", f.Role)
	}
	if strings.TrimSpace(f.Search) != "" {
		p := likePattern(f.Search)
		q = q.Where("LOWER(company_name) LIKE ? OR LOWER(phone) LIKE ? OR LOWER(city) LIKE ?", p, p, p)
	}
	return q
}

func (r *Repository) ListPartners(ctx context.Context, f PartnerFilter, offset, limit int) ([]profile.Profile, int64, error) {
	var total int64
	if err := r.partnersQuery(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []profile.Profile
	if err := r.partnersQuery(ctx, f).Order("created_at DESC").Offset(offset).Limit(limit).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// PartnerStats counts the partners matching f by verification, status and type.
func (r *Repository) PartnerStats(ctx context.Context, f PartnerFilter) (PartnerStats, error) {
	var s PartnerStats
	err := r.partnersQuery(ctx, f).Select(`COUNT(*) AS total,
		COALESCE(SUM(CASE WHEN is_verified THEN 1 ELSE 0 END), 0) AS verified,
		COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS pending,
		COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS active,
		COALESCE(SUM(CASE WHEN role = ? THEN 1 ELSE 0 END), 0) AS hotels,
		COALESCE(SUM(CASE WHEN role = ? THEN 1 ELSE 0 END), 0) AS cars,
		COALESCE(SUM(CASE WHEN role = ? THEN 1 ELSE 0 END), 0) AS tours`,
		profile.StatusPending, profile.StatusActive,
		profile.RolePartnerHotel, profile.RolePartnerCar, profile.RolePartnerTour,
	).Scan(&s).Error
	return s, err
}
