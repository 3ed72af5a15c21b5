package services

import (
	"context"
	"fmt"

	"ingreedio/internal/models"
	"ingreedio/internal/repositories"

	"github.com/sirupsen/logrus"
)

// ProductService handles business logic related to products, favourites and product reviews.
type ProductService struct {
	repo repositories.ProductRepository
	log  logrus.FieldLogger
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, log logrus.FieldLogger) *ProductService {
	return &ProductService{
		repo: repo,
		log:  log,
	}
}

// ListProducts returns one page of products. For an authenticated caller each
// product carries its favourite flag.
func (s *ProductService) ListProducts(ctx context.Context, caller *models.Identity, query models.ProductQuery) (models.Page[models.Product], error) {
	page, err := s.repo.GetAll(ctx, query)
	if err != nil {
		return page, err
	}
	if !caller.Authenticated() || len(page.Contents) == 0 {
		return page, nil
	}

	ids := make([]string, len(page.Contents))
	for i, p := range page.Contents {
		ids[i] = p.ID
	}
	flags, err := s.repo.CheckFavourites(ctx, ids, caller.UserID)
	if err != nil {
		return page, err
	}
	for i := range page.Contents {
		page.Contents[i].Favourite = flags[i]
	}
	return page, nil
}

// GetProduct returns one product, flagged for the caller when authenticated.
func (s *ProductService) GetProduct(ctx context.Context, caller *models.Identity, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller.Authenticated() {
		flags, err := s.repo.CheckFavourites(ctx, []string{product.ID}, caller.UserID)
		if err != nil {
			return nil, err
		}
		product.Favourite = flags[0]
	}
	return product, nil
}

// CreateProduct adds a product to the catalogue. Admin only.
func (s *ProductService) CreateProduct(ctx context.Context, caller *models.Identity, product *models.Product) error {
	if !caller.HasRole(models.RoleAdmin) {
		return fmt.Errorf("creating products: %w", repositories.ErrForbidden)
	}
	return s.repo.Create(ctx, product)
}

// UpdateProduct edits a product. Admin only.
func (s *ProductService) UpdateProduct(ctx context.Context, caller *models.Identity, product *models.Product) error {
	if !caller.HasRole(models.RoleAdmin) {
		return fmt.Errorf("updating products: %w", repositories.ErrForbidden)
	}
	return s.repo.Update(ctx, product)
}

// DeleteProduct removes a product. Admin only.
func (s *ProductService) DeleteProduct(ctx context.Context, caller *models.Identity, id string) error {
	if !caller.HasRole(models.RoleAdmin) {
		return fmt.Errorf("deleting products: %w", repositories.ErrForbidden)
	}
	return s.repo.Delete(ctx, id)
}

// GetReviews returns one page of a product's reviews.
func (s *ProductService) GetReviews(ctx context.Context, productID string, pageIndex, pageSize int) (models.Page[models.Review], error) {
	return s.repo.GetReviews(ctx, productID, pageIndex, pageSize)
}

// AddReview stores a review written by the caller.
func (s *ProductService) AddReview(ctx context.Context, caller *models.Identity, productID, text string, rating float64) (*models.Review, error) {
	if !caller.Authenticated() {
		return nil, fmt.Errorf("adding reviews: %w", repositories.ErrForbidden)
	}
	review, err := s.repo.AddReview(ctx, productID, caller.UserID, text, rating)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"review_id": review.ID, "product_id": productID, "user_id": caller.UserID}).Info("review added")
	return review, nil
}

// SetFavourite adds or removes the product from the caller's favourites. It
// returns false when the product does not exist.
func (s *ProductService) SetFavourite(ctx context.Context, caller *models.Identity, productID string, favourite bool) (bool, error) {
	if !caller.Authenticated() {
		return false, fmt.Errorf("changing favourites: %w", repositories.ErrForbidden)
	}
	return s.repo.ToggleFavourite(ctx, productID, caller.UserID, favourite)
}

// Favourites lists the caller's favourite products.
func (s *ProductService) Favourites(ctx context.Context, caller *models.Identity) ([]models.Product, error) {
	if !caller.Authenticated() {
		return nil, fmt.Errorf("listing favourites: %w", repositories.ErrForbidden)
	}
	return s.repo.GetFavourites(ctx, caller.UserID)
}
