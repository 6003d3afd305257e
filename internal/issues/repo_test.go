package issues

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skilledlink/skilledlink-backend/pkg/db/models"
	"github.com/skilledlink/skilledlink-backend/pkg/enums"
)

func setupIssuesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS issues (
  id TEXT PRIMARY KEY,
  reporter_id TEXT NOT NULL,
  booking_id TEXT,
  category TEXT NOT NULL,
  subject TEXT NOT NULL,
  description TEXT NOT NULL,
  evidence_url TEXT,
  status TEXT NOT NULL DEFAULT 'open',
  resolved_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(`DROP TABLE IF EXISTS issues`).Error)
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedIssue(t *testing.T, db *gorm.DB, reporterID uuid.UUID, status enums.IssueStatus, createdAt time.Time) models.Issue {
	t.Helper()
	issue := models.Issue{
		ID:          uuid.New(),
		ReporterID:  reporterID,
		Category:    "service",
		Subject:     "No show",
		Description: "Artisan never arrived",
		Status:      status,
		CreatedAt:   createdAt,
	}
	require.NoError(t, db.Create(&issue).Error)
	return issue
}

func TestRepository_CreateFindUpdate(t *testing.T) {
	db := setupIssuesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	issue := seedIssue(t, db, uuid.New(), enums.IssueStatusOpen, time.Now().UTC())

	found, err := repo.Find(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.IssueStatusOpen, found.Status)

	resolvedAt := time.Now().UTC()
	require.NoError(t, repo.Update(ctx, issue.ID, map[string]any{
		"status":      enums.IssueStatusResolved,
		"resolved_at": resolvedAt,
	}))

	found, err = repo.Find(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.IssueStatusResolved, found.Status)
	require.NotNil(t, found.ResolvedAt)

	_, err = repo.Find(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_ListFilters(t *testing.T) {
	db := setupIssuesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	reporterID := uuid.New()
	now := time.Now().UTC()

	mine := seedIssue(t, db, reporterID, enums.IssueStatusOpen, now.Add(-time.Minute))
	seedIssue(t, db, reporterID, enums.IssueStatusResolved, now.Add(-2*time.Minute))
	seedIssue(t, db, uuid.New(), enums.IssueStatusOpen, now.Add(-3*time.Minute))

	rows, _, err := repo.List(ctx, listIssuesParams{ReporterID: &reporterID, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	open := enums.IssueStatusOpen
	rows, _, err = repo.List(ctx, listIssuesParams{ReporterID: &reporterID, Status: &open, Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, mine.ID, rows[0].ID)

	// Admin view: no reporter scope.
	rows, _, err = repo.List(ctx, listIssuesParams{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
