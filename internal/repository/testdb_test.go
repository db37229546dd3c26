package repository

import (
	"fmt"
	"sync/atomic"
	"testing"

	"medley/internal/database"
	"medley/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

// testHandle opens a per-test in-memory sqlite database with foreign keys
// enforced. The single-connection pool keeps the shared-cache database alive
// for the test's lifetime.
func testHandle(t *testing.T) *database.Handle {
	t.Helper()

	dsn := fmt.Sprintf("file:repotest%d?mode=memory&cache=shared&_foreign_keys=on", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return database.Wrap(db)
}

func createTestUser(t *testing.T, h *database.Handle, username string) *models.User {
	t.Helper()
	db, err := h.Get()
	require.NoError(t, err)
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$2a$10$testhash",
		Role:         models.RoleUser,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestMedia(t *testing.T, h *database.Handle, userID uint, url string, approved bool) *models.Media {
	t.Helper()
	db, err := h.Get()
	require.NoError(t, err)
	media := &models.Media{
		UserID:     userID,
		Title:      "title for " + url,
		URL:        url,
		Type:       models.MediaTypeImage,
		IsApproved: approved,
	}
	require.NoError(t, db.Create(media).Error)
	return media
}
