package services_test

import (
	"context"
	"time"

	"ingreedio/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
)

func quietLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetRoles(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockUserRepository) AssignRole(ctx context.Context, userID, roleName string) error {
	args := m.Called(ctx, userID, roleName)
	return args.Error(0)
}

func (m *MockUserRepository) SetBlocked(ctx context.Context, userID string, blocked bool) error {
	args := m.Called(ctx, userID, blocked)
	return args.Error(0)
}

func (m *MockUserRepository) RecordAccessFailure(ctx context.Context, userID string, maxAttempts int, lockoutEnd time.Time) (int, *time.Time, error) {
	args := m.Called(ctx, userID, maxAttempts, lockoutEnd)
	var end *time.Time
	if args.Get(1) != nil {
		end = args.Get(1).(*time.Time)
	}
	return args.Int(0), end, args.Error(2)
}

func (m *MockUserRepository) ResetAccessFailedCount(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepository) GetPreferences(ctx context.Context, userID string) ([]models.Preference, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Preference), args.Error(1)
}

func (m *MockUserRepository) CreatePreference(ctx context.Context, userID, name string) (*models.Preference, error) {
	args := m.Called(ctx, userID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Preference), args.Error(1)
}

func (m *MockUserRepository) DeletePreference(ctx context.Context, userID, preferenceID string) error {
	args := m.Called(ctx, userID, preferenceID)
	return args.Error(0)
}

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll(ctx context.Context, query models.ProductQuery) (models.Page[models.Product], error) {
	args := m.Called(ctx, query)
	return args.Get(0).(models.Page[models.Product]), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) ToggleFavourite(ctx context.Context, productID, userID string, add bool) (bool, error) {
	args := m.Called(ctx, productID, userID, add)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) AddToFavourites(ctx context.Context, productID, userID string) (bool, error) {
	args := m.Called(ctx, productID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) RemoveFromFavourites(ctx context.Context, productID, userID string) (bool, error) {
	args := m.Called(ctx, productID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) CheckFavourites(ctx context.Context, productIDs []string, userID string) ([]bool, error) {
	args := m.Called(ctx, productIDs, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]bool), args.Error(1)
}

func (m *MockProductRepository) GetFavourites(ctx context.Context, userID string) ([]models.Product, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetReviews(ctx context.Context, productID string, pageIndex, pageSize int) (models.Page[models.Review], error) {
	args := m.Called(ctx, productID, pageIndex, pageSize)
	return args.Get(0).(models.Page[models.Review]), args.Error(1)
}

func (m *MockProductRepository) AddReview(ctx context.Context, productID, userID, text string, rating float64) (*models.Review, error) {
	args := m.Called(ctx, productID, userID, text, rating)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

// MockReviewRepository is a mock implementation of repositories.ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) reviewResult(args mock.Arguments) (*models.Review, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewRepository) GetAll(ctx context.Context, userID string) ([]models.Review, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Review), args.Error(1)
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	return m.reviewResult(m.Called(ctx, id))
}

func (m *MockReviewRepository) GetForProduct(ctx context.Context, productID string) ([]models.Review, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Review), args.Error(1)
}

func (m *MockReviewRepository) Create(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) Report(ctx context.Context, id string) (*models.Review, error) {
	return m.reviewResult(m.Called(ctx, id))
}

func (m *MockReviewRepository) Rate(ctx context.Context, id string, rating float64) (*models.Review, error) {
	return m.reviewResult(m.Called(ctx, id, rating))
}

func (m *MockReviewRepository) Update(ctx context.Context, id, text string, rating float64) (*models.Review, error) {
	return m.reviewResult(m.Called(ctx, id, text, rating))
}

func (m *MockReviewRepository) ResetReports(ctx context.Context, id string) (*models.Review, error) {
	return m.reviewResult(m.Called(ctx, id))
}

func (m *MockReviewRepository) Delete(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockCredentialStore is a mock implementation of services.CredentialStore
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockCredentialStore) Create(ctx context.Context, user *models.User, password string) error {
	args := m.Called(ctx, user, password)
	return args.Error(0)
}

func (m *MockCredentialStore) CheckPassword(ctx context.Context, user *models.User, password string) (bool, error) {
	args := m.Called(ctx, user, password)
	return args.Bool(0), args.Error(1)
}

func (m *MockCredentialStore) IsLockedOut(user *models.User) bool {
	args := m.Called(user)
	return args.Bool(0)
}

func (m *MockCredentialStore) GetRoles(ctx context.Context, user *models.User) ([]string, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockTokenIssuer is a mock implementation of services.TokenIssuer
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(user *models.User, roles []string) (string, error) {
	args := m.Called(user, roles)
	return args.String(0), args.Error(1)
}

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(routingKey string, payload interface{}) error {
	args := m.Called(routingKey, payload)
	return args.Error(0)
}
