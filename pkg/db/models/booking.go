package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/skilledlink/skilledlink-backend/pkg/enums"
)

// Booking links a customer to an artisan for a scheduled job. Status holds the
// wire-facing label verbatim, including legacy values older clients may have
// written, so reads normalize before acting on it.
type Booking struct {
	ID          uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID  uuid.UUID           `gorm:"column:customer_id;type:uuid;not null;index"`
	ArtisanID   uuid.UUID           `gorm:"column:artisan_id;type:uuid;not null;index"`
	Type        enums.BookingType   `gorm:"column:type;type:booking_type;not null;default:'direct'"`
	Service     string              `gorm:"column:service;not null"`
	Description *string             `gorm:"column:description;type:text"`
	Status      enums.BookingStatus `gorm:"column:status;not null;default:'Pending'"`
	ScheduledAt *time.Time          `gorm:"column:scheduled_at"`
	Address     *string             `gorm:"column:address;type:text"`
	Latitude    *float64            `gorm:"column:latitude"`
	Longitude   *float64            `gorm:"column:longitude"`
	Price       *decimal.Decimal    `gorm:"column:price;type:numeric(12,2)"`
	AcceptedAt  *time.Time          `gorm:"column:accepted_at"`
	CompletedAt *time.Time          `gorm:"column:completed_at"`
	CancelledAt *time.Time          `gorm:"column:cancelled_at"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
