package testutil

import (
	"path/filepath"
	"testing"

	"github.com/anonto42/travelsocial/backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated SQLite database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.Schema()...), "migrate")
	return db
}

// SeedUsers inserts users and returns them with ids assigned. Usernames
// must be distinct; a missing email is derived from the username.
func SeedUsers(t *testing.T, db *gorm.DB, users ...models.User) []models.User {
	t.Helper()
	for i := range users {
		if users[i].Email == "" {
			users[i].Email = users[i].Username + "@example.com"
		}
		require.NoError(t, db.Create(&users[i]).Error)
	}
	return users
}
