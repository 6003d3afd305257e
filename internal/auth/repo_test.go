package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skilledlink/skilledlink-backend/pkg/db"
	"github.com/skilledlink/skilledlink-backend/pkg/db/models"
	"github.com/skilledlink/skilledlink-backend/pkg/enums"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  phone TEXT,
  role TEXT NOT NULL,
  kyc_status TEXT NOT NULL DEFAULT 'not_submitted',
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(`DROP TABLE IF EXISTS users`).Error)
	require.NoError(t, conn.Exec(schema).Error)
	return conn
}

func seedUser(t *testing.T, conn *gorm.DB, email string, role enums.UserRole) models.User {
	t.Helper()
	u := models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "$argon2id$stub",
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		KYCStatus:    enums.KYCStatusNotSubmitted,
		IsActive:     true,
	}
	require.NoError(t, conn.Create(&u).Error)
	return u
}

func TestRepository_CreateEnforcesUniqueEmail(t *testing.T) {
	conn := setupUsersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	seedUser(t, conn, "jane@example.com", enums.UserRoleCustomer)

	dup := models.User{
		ID:           uuid.New(),
		Email:        "jane@example.com",
		PasswordHash: "$argon2id$stub",
		FirstName:    "Other",
		LastName:     "Jane",
		Role:         enums.UserRoleCustomer,
	}
	err := repo.Create(ctx, &dup)
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err))
}

func TestRepository_FindByEmailIsCaseInsensitive(t *testing.T) {
	conn := setupUsersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	user := seedUser(t, conn, "jane@example.com", enums.UserRoleArtisan)

	found, err := repo.FindByEmail(ctx, "  JANE@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.FindByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_SetKYCStatusAndTouchLastLogin(t *testing.T) {
	conn := setupUsersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	user := seedUser(t, conn, "artisan@example.com", enums.UserRoleArtisan)

	require.NoError(t, repo.SetKYCStatus(ctx, user.ID, enums.KYCStatusApproved))

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.TouchLastLogin(ctx, user.ID, at))

	found, err := repo.Find(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.KYCStatusApproved, found.KYCStatus)
	require.NotNil(t, found.LastLoginAt)
	assert.WithinDuration(t, at, *found.LastLoginAt, time.Second)
}
