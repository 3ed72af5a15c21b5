package repositories

import (
	"context"

	"ingreedio/internal/models"
)

// ProductRepository defines the interface for product, favourite and product review data access.
type ProductRepository interface {
	GetAll(ctx context.Context, query models.ProductQuery) (models.Page[models.Product], error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error

	ToggleFavourite(ctx context.Context, productID, userID string, add bool) (bool, error)
	AddToFavourites(ctx context.Context, productID, userID string) (bool, error)
	RemoveFromFavourites(ctx context.Context, productID, userID string) (bool, error)
	CheckFavourites(ctx context.Context, productIDs []string, userID string) ([]bool, error)
	GetFavourites(ctx context.Context, userID string) ([]models.Product, error)

	GetReviews(ctx context.Context, productID string, pageIndex, pageSize int) (models.Page[models.Review], error)
	AddReview(ctx context.Context, productID, userID, text string, rating float64) (*models.Review, error)
}
