package repositories

import (
	"context"

	"ingreedio/internal/models"
)

// ReviewRepository defines the interface for review data access.
type ReviewRepository interface {
	GetAll(ctx context.Context, userID string) ([]models.Review, error)
	GetByID(ctx context.Context, id string) (*models.Review, error)
	GetForProduct(ctx context.Context, productID string) ([]models.Review, error)
	Create(ctx context.Context, review *models.Review) error
	Report(ctx context.Context, id string) (*models.Review, error)
	Rate(ctx context.Context, id string, rating float64) (*models.Review, error)
	Update(ctx context.Context, id, text string, rating float64) (*models.Review, error)
	ResetReports(ctx context.Context, id string) (*models.Review, error)
	Delete(ctx context.Context, id, userID string) error
}
