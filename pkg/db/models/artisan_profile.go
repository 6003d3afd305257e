package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/skilledlink/skilledlink-backend/pkg/db/types"
)

// ArtisanProfile holds the public-facing trade details for an artisan user.
// Latitude and longitude are captured from the artisan's device and the
// formatted address is resolved server-side.
type ArtisanProfile struct {
	ID               uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID           `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Trade            string              `gorm:"column:trade;not null"`
	Skills           dbtypes.StringArray `gorm:"type:text[];column:skills;not null;default:ARRAY[]::text[]"`
	Bio              *string             `gorm:"column:bio;type:text"`
	Latitude         *float64            `gorm:"column:latitude"`
	Longitude        *float64            `gorm:"column:longitude"`
	FormattedAddress *string             `gorm:"column:formatted_address;type:text"`
	Available        bool                `gorm:"column:available;not null;default:true"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
