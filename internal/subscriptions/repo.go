package subscriptions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skilledlink/skilledlink-backend/pkg/db/models"
	"github.com/skilledlink/skilledlink-backend/pkg/enums"
)

// Repository exposes persistence helpers for subscriptions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, sub *models.Subscription) error
	FindCurrent(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	FindByReference(ctx context.Context, reference string) (*models.Subscription, error)
	Update(ctx context.Context, id uuid.UUID, columns map[string]any) error
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a subscriptions repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

// FindCurrent loads the newest subscription row for the user. A missing row is
// surfaced as gorm.ErrRecordNotFound and means the free plan.
func (r *repositoryImpl) FindCurrent(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *repositoryImpl) FindByReference(ctx context.Context, reference string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).First(&sub, "paystack_reference = ?", reference).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *repositoryImpl) Update(ctx context.Context, id uuid.UUID, columns map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ?", id).
		Updates(columns).Error
}

// ExpireDue closes out active premium subscriptions whose period has lapsed.
// Rows the user cancelled mid-period end as cancelled, the rest as expired.
func (r *repositoryImpl) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Model(&models.Subscription{}).
			Where("plan = ? AND status = ? AND current_period_end IS NOT NULL AND current_period_end <= ?",
				enums.SubscriptionPlanPremium, enums.SubscriptionStatusActive, now)
	}

	cancelled := base().Where("cancelled_at IS NOT NULL").
		Update("status", enums.SubscriptionStatusCancelled)
	if cancelled.Error != nil {
		return 0, cancelled.Error
	}

	expired := base().Where("cancelled_at IS NULL").
		Update("status", enums.SubscriptionStatusExpired)
	if expired.Error != nil {
		return cancelled.RowsAffected, expired.Error
	}
	return cancelled.RowsAffected + expired.RowsAffected, nil
}
