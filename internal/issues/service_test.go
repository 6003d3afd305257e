package issues

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skilledlink/skilledlink-backend/internal/notifications"
	"github.com/skilledlink/skilledlink-backend/pkg/db/models"
	"github.com/skilledlink/skilledlink-backend/pkg/enums"
	pkgerrors "github.com/skilledlink/skilledlink-backend/pkg/errors"
	"github.com/skilledlink/skilledlink-backend/pkg/pagination"
)

type fakeIssueRepository struct {
	createFn func(ctx context.Context, issue *models.Issue) error
	findFn   func(ctx context.Context, id uuid.UUID) (*models.Issue, error)
	updateFn func(ctx context.Context, id uuid.UUID, columns map[string]any) error
	listFn   func(ctx context.Context, params listIssuesParams) ([]models.Issue, *pagination.Cursor, error)
}

func (f *fakeIssueRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeIssueRepository) Create(ctx context.Context, issue *models.Issue) error {
	return f.createFn(ctx, issue)
}

func (f *fakeIssueRepository) Find(ctx context.Context, id uuid.UUID) (*models.Issue, error) {
	return f.findFn(ctx, id)
}

func (f *fakeIssueRepository) Update(ctx context.Context, id uuid.UUID, columns map[string]any) error {
	if f.updateFn == nil {
		return nil
	}
	return f.updateFn(ctx, id, columns)
}

func (f *fakeIssueRepository) List(ctx context.Context, params listIssuesParams) ([]models.Issue, *pagination.Cursor, error) {
	return f.listFn(ctx, params)
}

type fakeNotifier struct {
	sent []notifications.NotifyParams
}

func (f *fakeNotifier) Notify(ctx context.Context, params notifications.NotifyParams) (*notifications.NotifyResult, error) {
	f.sent = append(f.sent, params)
	return &notifications.NotifyResult{}, nil
}

func TestReport_CreatesOpenIssue(t *testing.T) {
	reporterID := uuid.New()

	var created *models.Issue
	repo := &fakeIssueRepository{
		createFn: func(ctx context.Context, issue *models.Issue) error {
			created = issue
			return nil
		},
	}
	svc, err := NewService(repo, &fakeNotifier{})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	evidence := "https://cdn.example.com/photo.jpg"
	issue, err := svc.Report(context.Background(), ReportInput{
		ReporterID:  reporterID,
		Category:    "payment",
		Subject:     " Overcharged ",
		Description: "Charged twice for the same job",
		EvidenceURL: &evidence,
	})
	if err != nil {
		t.Fatalf("Report returned error: %v", err)
	}
	if issue.Status != enums.IssueStatusOpen {
		t.Fatalf("new issues start open, got %q", issue.Status)
	}
	if created.Subject != "Overcharged" || created.Category != "payment" {
		t.Fatalf("unexpected issue %+v", created)
	}
	if created.EvidenceURL == nil || *created.EvidenceURL != evidence {
		t.Fatalf("evidence url not stored: %v", created.EvidenceURL)
	}
}

func TestReport_Validation(t *testing.T) {
	svc, _ := NewService(&fakeIssueRepository{}, &fakeNotifier{})

	cases := []ReportInput{
		{ReporterID: uuid.New(), Subject: "s", Description: "d"},                  // missing category
		{ReporterID: uuid.New(), Category: "c", Description: "d"},                 // missing subject
		{ReporterID: uuid.New(), Category: "c", Subject: "s", Description: "   "}, // blank description
	}
	for i, input := range cases {
		_, err := svc.Report(context.Background(), input)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestTransition_FollowsForwardLifecycle(t *testing.T) {
	issueID := uuid.New()
	reporterID := uuid.New()
	now := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)

	current := &models.Issue{ID: issueID, ReporterID: reporterID, Subject: "Overcharged", Status: enums.IssueStatusOpen}
	var captured map[string]any
	repo := &fakeIssueRepository{
		findFn: func(ctx context.Context, id uuid.UUID) (*models.Issue, error) {
			return current, nil
		},
		updateFn: func(ctx context.Context, id uuid.UUID, columns map[string]any) error {
			captured = columns
			current.Status = columns["status"].(enums.IssueStatus)
			return nil
		},
	}
	notif := &fakeNotifier{}
	svc, _ := NewService(repo, notif)
	svc.(*service).now = func() time.Time { return now }

	issue, err := svc.Transition(context.Background(), issueID, enums.IssueStatusInReview)
	if err != nil {
		t.Fatalf("Transition returned error: %v", err)
	}
	if issue.Status != enums.IssueStatusInReview {
		t.Fatalf("unexpected status %q", issue.Status)
	}
	if _, ok := captured["resolved_at"]; ok {
		t.Fatal("resolved_at only set on resolution")
	}
	if len(notif.sent) != 0 {
		t.Fatalf("no notification until resolved, got %+v", notif.sent)
	}

	issue, err = svc.Transition(context.Background(), issueID, enums.IssueStatusResolved)
	if err != nil {
		t.Fatalf("Transition returned error: %v", err)
	}
	if issue.Status != enums.IssueStatusResolved {
		t.Fatalf("unexpected status %q", issue.Status)
	}
	if resolvedAt, ok := captured["resolved_at"].(time.Time); !ok || !resolvedAt.Equal(now) {
		t.Fatalf("expected resolved_at=now, got %v", captured["resolved_at"])
	}
	if len(notif.sent) != 1 || notif.sent[0].UserID != reporterID || notif.sent[0].Title != "Issue Resolved" {
		t.Fatalf("unexpected notifications %+v", notif.sent)
	}
}

func TestTransition_RejectsBackwardMoves(t *testing.T) {
	issueID := uuid.New()
	repo := &fakeIssueRepository{
		findFn: func(ctx context.Context, id uuid.UUID) (*models.Issue, error) {
			return &models.Issue{ID: issueID, Status: enums.IssueStatusResolved}, nil
		},
		updateFn: func(ctx context.Context, id uuid.UUID, columns map[string]any) error {
			t.Fatal("no update expected")
			return nil
		},
	}
	svc, _ := NewService(repo, &fakeNotifier{})

	_, err := svc.Transition(context.Background(), issueID, enums.IssueStatusOpen)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}

	// Same status is a no-op, not a conflict.
	issue, err := svc.Transition(context.Background(), issueID, enums.IssueStatusResolved)
	if err != nil {
		t.Fatalf("Transition returned error: %v", err)
	}
	if issue.Status != enums.IssueStatusResolved {
		t.Fatalf("unexpected status %q", issue.Status)
	}
}

func TestGet_ReporterScopedUnlessAdmin(t *testing.T) {
	issueID := uuid.New()
	reporterID := uuid.New()
	repo := &fakeIssueRepository{
		findFn: func(ctx context.Context, id uuid.UUID) (*models.Issue, error) {
			return &models.Issue{ID: issueID, ReporterID: reporterID}, nil
		},
	}
	svc, _ := NewService(repo, &fakeNotifier{})

	if _, err := svc.Get(context.Background(), issueID, reporterID, false); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	_, err := svc.Get(context.Background(), issueID, uuid.New(), false)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	if _, err := svc.Get(context.Background(), issueID, uuid.New(), true); err != nil {
		t.Fatalf("admin Get returned error: %v", err)
	}
}

func TestList_ParsesStatusFilter(t *testing.T) {
	var captured listIssuesParams
	repo := &fakeIssueRepository{
		listFn: func(ctx context.Context, params listIssuesParams) ([]models.Issue, *pagination.Cursor, error) {
			captured = params
			return nil, nil, nil
		},
	}
	svc, _ := NewService(repo, &fakeNotifier{})

	reporterID := uuid.New()
	if _, err := svc.List(context.Background(), ListParams{ReporterID: &reporterID, Status: "in_review"}); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if captured.Status == nil || *captured.Status != enums.IssueStatusInReview {
		t.Fatalf("unexpected params %+v", captured)
	}

	_, err := svc.List(context.Background(), ListParams{Status: "bogus"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
