package artisans

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skilledlink/skilledlink-backend/pkg/db/models"
	"github.com/skilledlink/skilledlink-backend/pkg/pagination"
)

// Repository exposes persistence helpers for artisan profiles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, profile *models.ArtisanProfile) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.ArtisanProfile, error)
	Update(ctx context.Context, id uuid.UUID, columns map[string]any) error
	Search(ctx context.Context, params searchProfilesParams) ([]models.ArtisanProfile, *pagination.Cursor, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an artisan profile repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type searchProfilesParams struct {
	// Trade matches the profile trade case-insensitively when set.
	Trade         string
	AvailableOnly bool
	Limit         int
	Cursor        *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, profile *models.ArtisanProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *repositoryImpl) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.ArtisanProfile, error) {
	var profile models.ArtisanProfile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repositoryImpl) Update(ctx context.Context, id uuid.UUID, columns map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.ArtisanProfile{}).
		Where("id = ?", id).
		Updates(columns).Error
}

func (r *repositoryImpl) Search(ctx context.Context, params searchProfilesParams) ([]models.ArtisanProfile, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.ArtisanProfile{})
	if params.Trade != "" {
		query = query.Where("LOWER(trade) = LOWER(?)", params.Trade)
	}
	if params.AvailableOnly {
		query = query.Where("available = ?", true)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var profiles []models.ArtisanProfile
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&profiles).Error; err != nil {
		return nil, nil, err
	}

	if len(profiles) > normalized {
		next := profiles[normalized]
		profiles = profiles[:normalized]
		return profiles, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return profiles, nil, nil
}
