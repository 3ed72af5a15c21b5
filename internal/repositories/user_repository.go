package repositories

import (
	"context"
	"time"

	"ingreedio/internal/models"
)

// UserRepository defines the interface for user, role and preference data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetRoles(ctx context.Context, userID string) ([]string, error)
	AssignRole(ctx context.Context, userID, roleName string) error
	SetBlocked(ctx context.Context, userID string, blocked bool) error
	RecordAccessFailure(ctx context.Context, userID string, maxAttempts int, lockoutEnd time.Time) (int, *time.Time, error)
	ResetAccessFailedCount(ctx context.Context, userID string) error
	GetPreferences(ctx context.Context, userID string) ([]models.Preference, error)
	CreatePreference(ctx context.Context, userID, name string) (*models.Preference, error)
	DeletePreference(ctx context.Context, userID, preferenceID string) error
}
