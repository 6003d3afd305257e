package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skilledlink/skilledlink-backend/pkg/db/models"
	"github.com/skilledlink/skilledlink-backend/pkg/pagination"
)

// Repository exposes persistence helpers for reviews.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, review *models.Review) error
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*models.Review, error)
	ListByArtisan(ctx context.Context, params listReviewsParams) ([]models.Review, *pagination.Cursor, error)
	ArtisanAggregate(ctx context.Context, artisanID uuid.UUID) (*ratingAggregate, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a reviews repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listReviewsParams struct {
	ArtisanID uuid.UUID
	Limit     int
	Cursor    *pagination.Cursor
}

type ratingAggregate struct {
	Count   int64
	Average float64
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *repositoryImpl) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, "booking_id = ?", bookingID).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *repositoryImpl) ListByArtisan(ctx context.Context, params listReviewsParams) ([]models.Review, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("artisan_id = ?", params.ArtisanID)
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var reviews []models.Review
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&reviews).Error; err != nil {
		return nil, nil, err
	}

	if len(reviews) > normalized {
		next := reviews[normalized]
		reviews = reviews[:normalized]
		return reviews, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return reviews, nil, nil
}

func (r *repositoryImpl) ArtisanAggregate(ctx context.Context, artisanID uuid.UUID) (*ratingAggregate, error) {
	var row struct {
		Count   int64
		Average *float64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COUNT(*) AS count, AVG(rating) AS average").
		Where("artisan_id = ?", artisanID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	agg := &ratingAggregate{Count: row.Count}
	if row.Average != nil {
		agg.Average = *row.Average
	}
	return agg, nil
}
