package repositories_test

import (
	"fmt"
	"testing"

	"ingreedio/internal/database"
	"ingreedio/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestDB opens a private in-memory SQLite database with the schema and roles in place.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Setup(database.Config{
		Driver: database.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String()),
	})
	require.NoError(t, err)
	return db
}

// seedUsers mirrors the fixture used across the repository tests: User1 owns
// "Preference 1", User2 has no preferences.
func seedUsers(t *testing.T, db *gorm.DB) {
	t.Helper()
	users := []models.User{
		{ID: "User1", Email: "user1@a.a", PasswordHash: "x"},
		{ID: "User2", Email: "user2@a.a", PasswordHash: "x"},
	}
	require.NoError(t, db.Create(&users).Error)
	require.NoError(t, db.Create(&models.Preference{ID: "1", Name: "Preference 1", UserID: "User1"}).Error)
}

func seedProduct(t *testing.T, db *gorm.DB, id, name string, price float64) {
	t.Helper()
	require.NoError(t, db.Create(&models.Product{ID: id, Name: name, Price: price}).Error)
}
