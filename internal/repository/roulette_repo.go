package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/copasapp/copas-api/internal/db"
)

// RouletteRepository provides data access methods for roulette options.
type RouletteRepository struct {
	db *gorm.DB
}

// NewRouletteRepository creates a new repository bound to the given DB connection.
func NewRouletteRepository(database *gorm.DB) *RouletteRepository {
	return &RouletteRepository{db: database}
}

func (r *RouletteRepository) Create(ctx context.Context, option *db.RouletteOption) error {
	return r.db.WithContext(ctx).Create(option).Error
}

// List returns options newest first, plus the unpaginated total.
func (r *RouletteRepository) List(ctx context.Context, limit, offset int) ([]db.RouletteOption, int64, error) {
	var (
		options []db.RouletteOption
		total   int64
	)

	if err := r.db.WithContext(ctx).Model(&db.RouletteOption{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&options).Error
	if err != nil {
		return nil, 0, err
	}
	return options, total, nil
}

func (r *RouletteRepository) GetByID(ctx context.Context, id uint64) (*db.RouletteOption, error) {
	var option db.RouletteOption
	if err := r.db.WithContext(ctx).First(&option, id).Error; err != nil {
		return nil, err
	}
	return &option, nil
}

func (r *RouletteRepository) Update(ctx context.Context, option *db.RouletteOption) error {
	return r.db.WithContext(ctx).Save(option).Error
}

// Delete removes an option, returning the deleted row.
func (r *RouletteRepository) Delete(ctx context.Context, id uint64) (*db.RouletteOption, error) {
	option, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(option).Error; err != nil {
		return nil, err
	}
	return option, nil
}
