package issues

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skilledlink/skilledlink-backend/internal/notifications"
	"github.com/skilledlink/skilledlink-backend/pkg/db/models"
	"github.com/skilledlink/skilledlink-backend/pkg/enums"
	pkgerrors "github.com/skilledlink/skilledlink-backend/pkg/errors"
	"github.com/skilledlink/skilledlink-backend/pkg/pagination"
)

type notifier interface {
	Notify(ctx context.Context, params notifications.NotifyParams) (*notifications.NotifyResult, error)
}

// Service defines support issue operations.
type Service interface {
	Report(ctx context.Context, input ReportInput) (*models.Issue, error)
	Get(ctx context.Context, issueID, actorID uuid.UUID, isAdmin bool) (*models.Issue, error)
	Transition(ctx context.Context, issueID uuid.UUID, target enums.IssueStatus) (*models.Issue, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	repo     Repository
	notifier notifier
	now      func() time.Time
}

// ReportInput captures a new support complaint.
type ReportInput struct {
	ReporterID  uuid.UUID
	BookingID   *uuid.UUID
	Category    string
	Subject     string
	Description string
	EvidenceURL *string
}

// ListParams configures issue listings. ReporterID nil is the admin view.
type ListParams struct {
	ReporterID *uuid.UUID
	Status     string
	Limit      int
	Cursor     string
}

// ListResult wraps returned issues and the cursor for the next page.
type ListResult struct {
	Items  []models.Issue `json:"items"`
	Cursor string         `json:"cursor"`
}

// NewService wires issue dependencies.
func NewService(repo Repository, notif notifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("issues repository required")
	}
	if notif == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &service{
		repo:     repo,
		notifier: notif,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Report(ctx context.Context, input ReportInput) (*models.Issue, error) {
	if input.ReporterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if strings.TrimSpace(input.Category) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	if strings.TrimSpace(input.Subject) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}

	issue := &models.Issue{
		ReporterID:  input.ReporterID,
		BookingID:   input.BookingID,
		Category:    strings.TrimSpace(input.Category),
		Subject:     strings.TrimSpace(input.Subject),
		Description: input.Description,
		EvidenceURL: input.EvidenceURL,
		Status:      enums.IssueStatusOpen,
	}
	if err := s.repo.Create(ctx, issue); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create issue")
	}
	return issue, nil
}

func (s *service) Get(ctx context.Context, issueID, actorID uuid.UUID, isAdmin bool) (*models.Issue, error) {
	if issueID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "issue id required")
	}

	issue, err := s.repo.Find(ctx, issueID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "issue not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load issue")
	}
	if !isAdmin && issue.ReporterID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "issue does not belong to user")
	}
	return issue, nil
}

// Transition moves an issue along open -> in_review -> resolved. Admin only;
// role enforcement happens at the route layer.
func (s *service) Transition(ctx context.Context, issueID uuid.UUID, target enums.IssueStatus) (*models.Issue, error) {
	if issueID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "issue id required")
	}
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid issue status %q", target))
	}

	issue, err := s.repo.Find(ctx, issueID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "issue not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load issue")
	}
	if issue.Status == target {
		return issue, nil
	}
	if !allowedTransition(issue.Status, target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("issue cannot move from %s to %s", issue.Status, target))
	}

	columns := map[string]any{"status": target}
	if target == enums.IssueStatusResolved {
		columns["resolved_at"] = s.now()
	}
	if err := s.repo.Update(ctx, issueID, columns); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update issue")
	}

	if target == enums.IssueStatusResolved {
		_, _ = s.notifier.Notify(ctx, notifications.NotifyParams{
			UserID:   issue.ReporterID,
			Category: enums.NotificationCategorySystem,
			Type:     enums.NotificationTypeSuccess,
			Title:    "Issue Resolved",
			Message:  fmt.Sprintf("Your issue %q has been resolved", issue.Subject),
		})
	}

	fresh, err := s.repo.Find(ctx, issueID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload issue")
	}
	return fresh, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listIssuesParams{ReporterID: params.ReporterID, Limit: params.Limit}
	if strings.TrimSpace(params.Status) != "" {
		status, err := enums.ParseIssueStatus(params.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		query.Status = &status
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list issues")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

// allowedTransition encodes the forward-only issue lifecycle.
func allowedTransition(from, to enums.IssueStatus) bool {
	switch from {
	case enums.IssueStatusOpen:
		return to == enums.IssueStatusInReview || to == enums.IssueStatusResolved
	case enums.IssueStatusInReview:
		return to == enums.IssueStatusResolved
	default:
		return false
	}
}
