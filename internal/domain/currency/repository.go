package currency

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Get(ctx context.Context, base string) (*ExchangeRate, error) {
	var row ExchangeRate
	if err := r.db.WithContext(ctx).Where("base_currency = ?", base).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRatesNotFound
		}
		return nil, err
	}
	return &row, nil
}

// Upsert writes the quote for row.BaseCurrency, replacing any existing one.
func (r *Repository) Upsert(ctx context.Context, row *ExchangeRate) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "base_currency"}},
		DoUpdates: clause.AssignmentColumns([]string{"eur_rate", "updated_by", "updated_at"}),
	}).Create(row).Error
}
