package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skilledlink/skilledlink-backend/pkg/db/models"
	"github.com/skilledlink/skilledlink-backend/pkg/enums"
	"github.com/skilledlink/skilledlink-backend/pkg/pagination"
)

// Repository exposes persistence helpers for bookings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, booking *models.Booking) error
	Find(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, update statusUpdate) error
	List(ctx context.Context, params listBookingsParams) ([]models.Booking, *pagination.Cursor, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	CountAcceptedSince(ctx context.Context, artisanID uuid.UUID, since time.Time) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a bookings repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listBookingsParams struct {
	CustomerID *uuid.UUID
	ArtisanID  *uuid.UUID
	Statuses   []enums.BookingStatus
	Limit      int
	Cursor     *pagination.Cursor
}

type statusUpdate struct {
	Status      enums.BookingStatus
	AcceptedAt  *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *repositoryImpl) Find(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).First(&booking, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, update statusUpdate) error {
	columns := map[string]any{"status": update.Status}
	if update.AcceptedAt != nil {
		columns["accepted_at"] = update.AcceptedAt
	}
	if update.CompletedAt != nil {
		columns["completed_at"] = update.CompletedAt
	}
	if update.CancelledAt != nil {
		columns["cancelled_at"] = update.CancelledAt
	}
	return r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Updates(columns).Error
}

func (r *repositoryImpl) List(ctx context.Context, params listBookingsParams) ([]models.Booking, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Booking{})
	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}
	if params.ArtisanID != nil {
		query = query.Where("artisan_id = ?", *params.ArtisanID)
	}
	if len(params.Statuses) > 0 {
		query = query.Where("status IN ?", params.Statuses)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var bookings []models.Booking
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&bookings).Error; err != nil {
		return nil, nil, err
	}

	if len(bookings) > normalized {
		next := bookings[normalized]
		bookings = bookings[:normalized]
		return bookings, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return bookings, nil, nil
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Booking{}, "id = ?", id)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// CountAcceptedSince counts jobs the artisan accepted at or after since,
// regardless of where they are in the lifecycle now.
func (r *repositoryImpl) CountAcceptedSince(ctx context.Context, artisanID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("artisan_id = ? AND accepted_at IS NOT NULL AND accepted_at >= ?", artisanID, since).
		Count(&count).Error
	return count, err
}
