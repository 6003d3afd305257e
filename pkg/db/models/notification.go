package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/skilledlink/skilledlink-backend/pkg/enums"
)

// Notification stores in-app notification payloads scoped to users.
type Notification struct {
	ID        uuid.UUID                  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID                  `gorm:"column:user_id;type:uuid;not null;index"`
	Category  enums.NotificationCategory `gorm:"type:notification_category;not null;default:'system'"`
	Type      enums.NotificationType     `gorm:"type:notification_type;not null;default:'info'"`
	Title     string                     `gorm:"type:text;not null"`
	Message   string                     `gorm:"type:text;not null"`
	Important bool                       `gorm:"not null;default:false"`
	ReadAt    *time.Time                 `gorm:"type:timestamptz"`
	CreatedAt time.Time                  `gorm:"type:timestamptz;default:now()"`
}
