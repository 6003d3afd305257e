package artisans

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
	dbtypes "github.com/skilledlink/skilledlink-backend/pkg/db/types"
)

func setupArtisansTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS artisan_profiles (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  trade TEXT NOT NULL,
  skills TEXT NOT NULL DEFAULT '{}',
  bio TEXT,
  latitude REAL,
  longitude REAL,
  formatted_address TEXT,
  available INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(`DROP TABLE IF EXISTS artisan_profiles`).Error)
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedProfile(t *testing.T, db *gorm.DB, trade string, available bool, createdAt time.Time) models.ArtisanProfile {
	t.Helper()
	p := models.ArtisanProfile{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Trade:     trade,
		Skills:    dbtypes.StringArray{},
		Available: available,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func TestRepository_CreateAndFindByUserID(t *testing.T) {
	db := setupArtisansTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	address := "Lagos, Nigeria"
	profile := models.ArtisanProfile{
		ID:               uuid.New(),
		UserID:           uuid.New(),
		Trade:            "Plumber",
		Skills:           dbtypes.StringArray{"piping", "leak repair"},
		FormattedAddress: &address,
		Available:        true,
		CreatedAt:        time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, &profile))

	found, err := repo.FindByUserID(ctx, profile.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Plumber", found.Trade)
	assert.Equal(t, dbtypes.StringArray{"piping", "leak repair"}, found.Skills)
	require.NotNil(t, found.FormattedAddress)
	assert.Equal(t, "Lagos, Nigeria", *found.FormattedAddress)

	_, err = repo.FindByUserID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_SearchFiltersTradeAndAvailability(t *testing.T) {
	db := setupArtisansTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	plumber := seedProfile(t, db, "Plumber", true, now.Add(-time.Hour))
	seedProfile(t, db, "Plumber", false, now.Add(-2*time.Hour))
	seedProfile(t, db, "Electrician", true, now.Add(-3*time.Hour))

	rows, next, err := repo.Search(ctx, searchProfilesParams{Trade: "plumber", AvailableOnly: true, Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, next)
	assert.Equal(t, plumber.ID, rows[0].ID)

	rows, _, err = repo.Search(ctx, searchProfilesParams{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestRepository_SearchPaginates(t *testing.T) {
	db := setupArtisansTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 3; i++ {
		seedProfile(t, db, "Carpenter", true, now.Add(-time.Duration(i)*time.Minute))
	}

	rows, next, err := repo.Search(ctx, searchProfilesParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotNil(t, next)

	rows, next, err = repo.Search(ctx, searchProfilesParams{Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, next)
}

func TestRepository_Update(t *testing.T) {
	db := setupArtisansTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	profile := seedProfile(t, db, "Tiler", true, time.Now().UTC())

	require.NoError(t, repo.Update(ctx, profile.ID, map[string]any{"available": false, "trade": "Mason"}))

	found, err := repo.FindByUserID(ctx, profile.UserID)
	require.NoError(t, err)
	assert.False(t, found.Available)
	assert.Equal(t, "Mason", found.Trade)
}
