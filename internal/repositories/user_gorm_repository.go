package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ingreedio/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database. A duplicate email surfaces as ErrDuplicate.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit("Roles.*").Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("user with email %s: %w", user.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Roles").First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("User", email)
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return &user, nil
}

// GetByID retrieves a user by their ID with roles and preferences loaded.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Roles").
		Preload("Preferences", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("User", id)
		}
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	return &user, nil
}

// GetRoles returns the names of the roles held by the user, sorted by name.
func (r *GORMUserRepository) GetRoles(ctx context.Context, userID string) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Table("roles").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.name").
		Pluck("roles.name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get roles for user %s: %w", userID, err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// AssignRole grants an existing role to the user. Granting a held role is a no-op.
func (r *GORMUserRepository) AssignRole(ctx context.Context, userID, roleName string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("User", userID)
			}
			return fmt.Errorf("failed to load user %s: %w", userID, err)
		}
		var role models.Role
		if err := tx.First(&role, "name = ?", roleName).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Role", roleName)
			}
			return fmt.Errorf("failed to load role %s: %w", roleName, err)
		}
		if err := tx.Model(&user).Association("Roles").Append(&role); err != nil {
			return fmt.Errorf("failed to assign role %s to user %s: %w", roleName, userID, err)
		}
		return nil
	})
}

// SetBlocked flips the administrative block flag on a user.
func (r *GORMUserRepository) SetBlocked(ctx context.Context, userID string, blocked bool) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("is_blocked", blocked)
	if res.Error != nil {
		return fmt.Errorf("failed to update block state of user %s: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("User", userID)
	}
	return nil
}

// RecordAccessFailure atomically counts one failed password check. When the
// counter reaches maxAttempts it is reset and the user is locked until
// lockoutEnd. The stored counter and lockout deadline are returned.
func (r *GORMUserRepository) RecordAccessFailure(ctx context.Context, userID string, maxAttempts int, lockoutEnd time.Time) (int, *time.Time, error) {
	var state struct {
		AccessFailedCount int
		LockoutEnd        *time.Time
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumn("access_failed_count", gorm.Expr("access_failed_count + ?", 1))
		if res.Error != nil {
			return fmt.Errorf("failed to count access failure of user %s: %w", userID, res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound("User", userID)
		}

		err := tx.Model(&models.User{}).Select("access_failed_count", "lockout_end").
			Where("id = ?", userID).Take(&state).Error
		if err != nil {
			return fmt.Errorf("failed to read lockout of user %s: %w", userID, err)
		}
		if state.AccessFailedCount < maxAttempts {
			return nil
		}

		err = tx.Model(&models.User{}).Where("id = ?", userID).UpdateColumns(map[string]interface{}{
			"access_failed_count": 0,
			"lockout_end":         lockoutEnd,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to lock out user %s: %w", userID, err)
		}
		state.AccessFailedCount = 0
		state.LockoutEnd = &lockoutEnd
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return state.AccessFailedCount, state.LockoutEnd, nil
}

// ResetAccessFailedCount clears the failed-attempt counter and leaves any
// lockout deadline in place.
func (r *GORMUserRepository) ResetAccessFailedCount(ctx context.Context, userID string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).UpdateColumn("access_failed_count", 0)
	if res.Error != nil {
		return fmt.Errorf("failed to reset access failures of user %s: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("User", userID)
	}
	return nil
}

// GetPreferences lists the preferences owned by a user in creation order.
func (r *GORMUserRepository) GetPreferences(ctx context.Context, userID string) ([]models.Preference, error) {
	preferences := []models.Preference{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at, id").Find(&preferences).Error; err != nil {
		return nil, fmt.Errorf("failed to get preferences of user %s: %w", userID, err)
	}
	return preferences, nil
}

// CreatePreference adds a preference for an existing user. An unknown user
// yields a NotFoundError reading "User not found" and nothing is written.
func (r *GORMUserRepository) CreatePreference(ctx context.Context, userID, name string) (*models.Preference, error) {
	preference := &models.Preference{
		ID:     uuid.New().String(),
		Name:   name,
		UserID: userID,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to look up user %s: %w", userID, err)
		}
		if count == 0 {
			return notFound("User", userID)
		}
		if err := tx.Create(preference).Error; err != nil {
			return fmt.Errorf("failed to create preference: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return preference, nil
}

// DeletePreference removes one of the user's own preferences.
func (r *GORMUserRepository) DeletePreference(ctx context.Context, userID, preferenceID string) error {
	res := r.db.WithContext(ctx).Delete(&models.Preference{}, "id = ? AND user_id = ?", preferenceID, userID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete preference: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("Preference", preferenceID)
	}
	return nil
}
