package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"ingreedio/internal/models"
	"ingreedio/internal/repositories"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// PasswordPolicy lists the rules a new password must satisfy.
type PasswordPolicy struct {
	MinLength     int
	RequireDigit  bool
	RequireLower  bool
	RequireUpper  bool
	RequireSymbol bool
}

// DefaultPasswordPolicy returns the policy used when none is configured.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{MinLength: 6, RequireDigit: true, RequireLower: true, RequireUpper: true, RequireSymbol: true}
}

// PasswordPolicyError lists every rule a password broke.
type PasswordPolicyError struct {
	Violations []string
}

func (e *PasswordPolicyError) Error() string {
	return "password does not meet policy: " + strings.Join(e.Violations, "; ")
}

// Check returns a *PasswordPolicyError when the password breaks any rule.
func (p PasswordPolicy) Check(password string) error {
	var hasDigit, hasLower, hasUpper, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			hasSymbol = true
		}
	}

	var violations []string
	if len([]rune(password)) < p.MinLength {
		violations = append(violations, fmt.Sprintf("must be at least %d characters", p.MinLength))
	}
	if p.RequireDigit && !hasDigit {
		violations = append(violations, "must contain a digit")
	}
	if p.RequireLower && !hasLower {
		violations = append(violations, "must contain a lowercase letter")
	}
	if p.RequireUpper && !hasUpper {
		violations = append(violations, "must contain an uppercase letter")
	}
	if p.RequireSymbol && !hasSymbol {
		violations = append(violations, "must contain a non-alphanumeric character")
	}
	if len(violations) > 0 {
		return &PasswordPolicyError{Violations: violations}
	}
	return nil
}

// LockoutPolicy controls automatic lockout after repeated password failures.
type LockoutPolicy struct {
	MaxFailedAttempts int
	Duration          time.Duration
}

// DefaultLockoutPolicy returns the policy used when none is configured.
func DefaultLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{MaxFailedAttempts: 5, Duration: 5 * time.Minute}
}

// UserManager is the credential store: it owns password hashing, password
// checks, lockout state and role lookup on top of a UserRepository.
type UserManager struct {
	repo     repositories.UserRepository
	password PasswordPolicy
	lockout  LockoutPolicy
	cost     int
	now      func() time.Time
	log      logrus.FieldLogger
}

// UserManagerOption customises a UserManager.
type UserManagerOption func(*UserManager)

// WithPasswordPolicy overrides the password policy.
func WithPasswordPolicy(p PasswordPolicy) UserManagerOption {
	return func(m *UserManager) { m.password = p }
}

// WithLockoutPolicy overrides the lockout policy.
func WithLockoutPolicy(p LockoutPolicy) UserManagerOption {
	return func(m *UserManager) { m.lockout = p }
}

// WithBcryptCost overrides the bcrypt cost, mostly to speed up tests.
func WithBcryptCost(cost int) UserManagerOption {
	return func(m *UserManager) { m.cost = cost }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) UserManagerOption {
	return func(m *UserManager) { m.now = now }
}

// NewUserManager creates a new UserManager.
func NewUserManager(repo repositories.UserRepository, log logrus.FieldLogger, opts ...UserManagerOption) *UserManager {
	m := &UserManager{
		repo:     repo,
		password: DefaultPasswordPolicy(),
		lockout:  DefaultLockoutPolicy(),
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NormalizeEmail trims and lower-cases an email for lookups and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindByEmail returns the user with that email, or nil when there is none.
func (m *UserManager) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := m.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// Create checks the password policy, hashes the password and stores the user.
// A taken email is reported as repositories.ErrDuplicate.
func (m *UserManager) Create(ctx context.Context, user *models.User, password string) error {
	if err := m.password.Check(password); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Email = NormalizeEmail(user.Email)
	user.PasswordHash = string(hash)

	return m.repo.Create(ctx, user)
}

// CheckPassword compares the password against the stored hash and keeps the
// failed-attempt counter up to date.
func (m *UserManager) CheckPassword(ctx context.Context, user *models.User, password string) (bool, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			m.log.WithFields(logrus.Fields{"user_id": user.ID, "error": err.Error()}).Warn("stored password hash is unusable")
		}
		return false, m.recordFailure(ctx, user)
	}

	if user.AccessFailedCount > 0 {
		if err := m.repo.ResetAccessFailedCount(ctx, user.ID); err != nil {
			return false, err
		}
		user.AccessFailedCount = 0
	}
	return true, nil
}

// recordFailure counts the failure in storage; the loaded copy may be stale.
func (m *UserManager) recordFailure(ctx context.Context, user *models.User) error {
	if m.lockout.MaxFailedAttempts <= 0 {
		return nil
	}

	until := m.now().Add(m.lockout.Duration)
	failed, lockoutEnd, err := m.repo.RecordAccessFailure(ctx, user.ID, m.lockout.MaxFailedAttempts, until)
	if err != nil {
		return err
	}
	if lockoutEnd != nil && lockoutEnd.Equal(until) {
		m.log.WithFields(logrus.Fields{"user_id": user.ID, "until": until}).Warn("user locked out after repeated password failures")
	}
	user.AccessFailedCount = failed
	user.LockoutEnd = lockoutEnd
	return nil
}

// IsLockedOut reports whether the user is blocked by an administrator or is
// inside a lockout window.
func (m *UserManager) IsLockedOut(user *models.User) bool {
	if user.IsBlocked {
		return true
	}
	return user.LockoutEnd != nil && user.LockoutEnd.After(m.now())
}

// GetRoles returns the names of the roles held by the user.
func (m *UserManager) GetRoles(ctx context.Context, user *models.User) ([]string, error) {
	return m.repo.GetRoles(ctx, user.ID)
}
