package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/skilledlink/skilledlink-backend/pkg/enums"
)

// Subscription persists plan state per artisan. Free-plan artisans may have no
// row at all; entitlement checks treat a missing row as the free plan.
type Subscription struct {
	ID                 uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID             uuid.UUID                `gorm:"column:user_id;type:uuid;not null;index"`
	Plan               enums.SubscriptionPlan   `gorm:"column:plan;type:subscription_plan;not null"`
	Status             enums.SubscriptionStatus `gorm:"column:status;type:subscription_status;not null;default:'pending'"`
	Amount             decimal.Decimal          `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency           string                   `gorm:"column:currency;not null;default:'NGN'"`
	PaystackReference  *string                  `gorm:"column:paystack_reference;uniqueIndex"`
	CurrentPeriodStart *time.Time               `gorm:"column:current_period_start"`
	CurrentPeriodEnd   *time.Time               `gorm:"column:current_period_end"`
	CancelledAt        *time.Time               `gorm:"column:cancelled_at"`
	CreatedAt          time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
