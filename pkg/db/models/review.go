package models

import (
	"time"

	"github.com/google/uuid"
)

// Review captures a customer's rating of a completed booking. The unique index
// on booking_id enforces one review per job.
type Review struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID  uuid.UUID `gorm:"column:booking_id;type:uuid;not null;uniqueIndex"`
	CustomerID uuid.UUID `gorm:"column:customer_id;type:uuid;not null;index"`
	ArtisanID  uuid.UUID `gorm:"column:artisan_id;type:uuid;not null;index"`
	Rating     int       `gorm:"column:rating;not null"`
	Comment    *string   `gorm:"column:comment;type:text"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
