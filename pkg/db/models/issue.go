package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/skilledlink/skilledlink-backend/pkg/enums"
)

// Issue tracks a support complaint raised by a customer or artisan.
type Issue struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ReporterID  uuid.UUID         `gorm:"column:reporter_id;type:uuid;not null;index"`
	BookingID   *uuid.UUID        `gorm:"column:booking_id;type:uuid;index"`
	Category    string            `gorm:"column:category;not null"`
	Subject     string            `gorm:"column:subject;not null"`
	Description string            `gorm:"column:description;type:text;not null"`
	EvidenceURL *string           `gorm:"column:evidence_url;type:text"`
	Status      enums.IssueStatus `gorm:"column:status;type:issue_status;not null;default:'open'"`
	ResolvedAt  *time.Time        `gorm:"column:resolved_at"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
