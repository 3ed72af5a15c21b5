package services

import (
	"context"
	"fmt"

	"ingreedio/internal/models"
	"ingreedio/internal/repositories"

	"github.com/sirupsen/logrus"
)

// UserService handles profile, preference and administrative user operations.
type UserService struct {
	repo repositories.UserRepository
	log  logrus.FieldLogger
}

// NewUserService creates a new UserService.
func NewUserService(repo repositories.UserRepository, log logrus.FieldLogger) *UserService {
	return &UserService{
		repo: repo,
		log:  log,
	}
}

// Me returns the caller's own account.
func (s *UserService) Me(ctx context.Context, caller *models.Identity) (*models.User, error) {
	if !caller.Authenticated() {
		return nil, fmt.Errorf("reading profile: %w", repositories.ErrForbidden)
	}
	return s.repo.GetByID(ctx, caller.UserID)
}

// GetPreferences lists a user's preferences.
func (s *UserService) GetPreferences(ctx context.Context, userID string) ([]models.Preference, error) {
	return s.repo.GetPreferences(ctx, userID)
}

// AddPreference creates a preference for the user. An unknown user yields a
// NotFoundError reading "User not found".
func (s *UserService) AddPreference(ctx context.Context, userID, name string) (*models.Preference, error) {
	return s.repo.CreatePreference(ctx, userID, name)
}

// RemovePreference deletes one of the caller's preferences.
func (s *UserService) RemovePreference(ctx context.Context, caller *models.Identity, preferenceID string) error {
	if !caller.Authenticated() {
		return fmt.Errorf("removing preferences: %w", repositories.ErrForbidden)
	}
	return s.repo.DeletePreference(ctx, caller.UserID, preferenceID)
}

// SetBlocked blocks or unblocks a user. Admin only.
func (s *UserService) SetBlocked(ctx context.Context, caller *models.Identity, userID string, blocked bool) error {
	if !caller.HasRole(models.RoleAdmin) {
		return fmt.Errorf("blocking users: %w", repositories.ErrForbidden)
	}
	if err := s.repo.SetBlocked(ctx, userID, blocked); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "blocked": blocked, "admin_id": caller.UserID}).Info("user block state changed")
	return nil
}

// AssignRole grants a role to a user. Admin only.
func (s *UserService) AssignRole(ctx context.Context, caller *models.Identity, userID, role string) error {
	if !caller.HasRole(models.RoleAdmin) {
		return fmt.Errorf("assigning roles: %w", repositories.ErrForbidden)
	}
	if err := s.repo.AssignRole(ctx, userID, role); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "role": role, "admin_id": caller.UserID}).Info("role assigned")
	return nil
}
