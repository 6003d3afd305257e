package issues

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skilledlink/skilledlink-backend/pkg/db/models"
	"github.com/skilledlink/skilledlink-backend/pkg/enums"
	"github.com/skilledlink/skilledlink-backend/pkg/pagination"
)

// Repository exposes persistence helpers for support issues.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, issue *models.Issue) error
	Find(ctx context.Context, id uuid.UUID) (*models.Issue, error)
	Update(ctx context.Context, id uuid.UUID, columns map[string]any) error
	List(ctx context.Context, params listIssuesParams) ([]models.Issue, *pagination.Cursor, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an issues repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listIssuesParams struct {
	// ReporterID scopes the list to one user; nil lists all (admin view).
	ReporterID *uuid.UUID
	Status     *enums.IssueStatus
	Limit      int
	Cursor     *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, issue *models.Issue) error {
	return r.db.WithContext(ctx).Create(issue).Error
}

func (r *repositoryImpl) Find(ctx context.Context, id uuid.UUID) (*models.Issue, error) {
	var issue models.Issue
	if err := r.db.WithContext(ctx).First(&issue, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *repositoryImpl) Update(ctx context.Context, id uuid.UUID, columns map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Issue{}).
		Where("id = ?", id).
		Updates(columns).Error
}

func (r *repositoryImpl) List(ctx context.Context, params listIssuesParams) ([]models.Issue, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Issue{})
	if params.ReporterID != nil {
		query = query.Where("reporter_id = ?", *params.ReporterID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var issues []models.Issue
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&issues).Error; err != nil {
		return nil, nil, err
	}

	if len(issues) > normalized {
		next := issues[normalized]
		issues = issues[:normalized]
		return issues, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return issues, nil, nil
}
