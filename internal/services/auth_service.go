package services

import (
	"context"
	"errors"

	"ingreedio/internal/models"
	"ingreedio/internal/repositories"

	"github.com/sirupsen/logrus"
)

// Failure messages returned inside AuthResult.
const (
	MsgEmailExists     = "Email already exists"
	MsgServerError     = "Server error"
	MsgUnknownEmail    = "There is no user with this email"
	MsgPasswordInvalid = "Password and email don't match"
	MsgUserDeactivated = "User is deactivated"
)

// AuthResult is the outcome of a registration or login attempt. Expected
// failures are reported here rather than as errors.
type AuthResult struct {
	Success bool     `json:"result"`
	Token   *string  `json:"token,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Roles   []string `json:"roles,omitempty"`
}

func authFailure(msg string) *AuthResult {
	return &AuthResult{Success: false, Errors: []string{msg}}
}

func authSuccess(token string, roles []string) *AuthResult {
	if roles == nil {
		roles = []string{}
	}
	return &AuthResult{Success: true, Token: &token, Errors: []string{}, Roles: roles}
}

// CredentialStore holds user identities and verifies their credentials.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User, password string) error
	CheckPassword(ctx context.Context, user *models.User, password string) (bool, error)
	IsLockedOut(user *models.User) bool
	GetRoles(ctx context.Context, user *models.User) ([]string, error)
}

// TokenIssuer signs identity tokens.
type TokenIssuer interface {
	Issue(user *models.User, roles []string) (string, error)
}

// AuthService handles registration and login.
type AuthService struct {
	store  CredentialStore
	issuer TokenIssuer
	log    logrus.FieldLogger
}

// NewAuthService creates a new AuthService.
func NewAuthService(store CredentialStore, issuer TokenIssuer, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		store:  store,
		issuer: issuer,
		log:    log,
	}
}

// Register creates an account and returns a token for it. Only infrastructure
// failures are returned as errors.
func (s *AuthService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	existing, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return authFailure(MsgEmailExists), nil
	}

	user := &models.User{Email: email, IsBlocked: false}
	if err := s.store.Create(ctx, user, password); err != nil {
		var policyErr *PasswordPolicyError
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			// Lost a race with a concurrent registration.
			return authFailure(MsgEmailExists), nil
		case errors.As(err, &policyErr):
			s.log.WithFields(logrus.Fields{"email": NormalizeEmail(email), "error": err.Error()}).Info("registration rejected")
			return authFailure(MsgServerError), nil
		default:
			return nil, err
		}
	}

	token, err := s.issuer.Issue(user, []string{})
	if err != nil {
		return nil, err
	}
	s.log.WithField("user_id", user.ID).Info("user registered")
	return authSuccess(token, nil), nil
}

// Login verifies credentials and lockout state, then returns a token and the
// user's roles.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return authFailure(MsgUnknownEmail), nil
	}

	ok, err := s.store.CheckPassword(ctx, user, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return authFailure(MsgPasswordInvalid), nil
	}

	if s.store.IsLockedOut(user) {
		s.log.WithField("user_id", user.ID).Info("login refused for locked out user")
		return authFailure(MsgUserDeactivated), nil
	}

	roles, err := s.store.GetRoles(ctx, user)
	if err != nil {
		return nil, err
	}
	token, err := s.issuer.Issue(user, roles)
	if err != nil {
		return nil, err
	}
	return authSuccess(token, roles), nil
}
