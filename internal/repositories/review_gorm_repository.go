package repositories

import (
	"context"
	"errors"
	"fmt"

	"ingreedio/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	db *gorm.DB
}

// NewGORMReviewRepository creates a new instance of GORMReviewRepository.
func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{
		db: db,
	}
}

// GetAll lists reviews, restricted to one author when userID is set.
func (r *GORMReviewRepository) GetAll(ctx context.Context, userID string) ([]models.Review, error) {
	reviews := []models.Review{}
	tx := r.db.WithContext(ctx)
	if userID != "" {
		tx = tx.Where("user_id = ?", userID)
	}
	if err := tx.Order("reports_count DESC").Order("created_at DESC").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}
	return reviews, nil
}

// GetByID retrieves a single review by its ID.
func (r *GORMReviewRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Review", id)
		}
		return nil, fmt.Errorf("failed to get review by ID %s: %w", id, err)
	}
	return &review, nil
}

// GetForProduct lists every review of a product, newest first.
func (r *GORMReviewRepository) GetForProduct(ctx context.Context, productID string) ([]models.Review, error) {
	reviews := []models.Review{}
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("created_at DESC").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to get reviews of product %s: %w", productID, err)
	}
	return reviews, nil
}

// Create validates and stores a review for an existing product.
func (r *GORMReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if err := ValidateRating(review.Rating); err != nil {
		return err
	}
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	review.ReportsCount = 0

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Product{}).Where("id = ?", review.ProductID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to look up product %s: %w", review.ProductID, err)
		}
		if count == 0 {
			return notFound("Product", review.ProductID)
		}
		if err := tx.Create(review).Error; err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}
		return nil
	})
}

// Report increments the report counter of a review.
func (r *GORMReviewRepository) Report(ctx context.Context, id string) (*models.Review, error) {
	return r.mutate(ctx, id, func(tx *gorm.DB) *gorm.DB {
		return tx.UpdateColumn("reports_count", gorm.Expr("reports_count + ?", 1))
	})
}

// Rate overwrites the rating of a review after validating it.
func (r *GORMReviewRepository) Rate(ctx context.Context, id string, rating float64) (*models.Review, error) {
	if err := ValidateRating(rating); err != nil {
		return nil, err
	}
	return r.mutate(ctx, id, func(tx *gorm.DB) *gorm.DB {
		return tx.Update("rating", rating)
	})
}

// Update replaces the text and rating of a review after validating the rating.
func (r *GORMReviewRepository) Update(ctx context.Context, id, text string, rating float64) (*models.Review, error) {
	if err := ValidateRating(rating); err != nil {
		return nil, err
	}
	return r.mutate(ctx, id, func(tx *gorm.DB) *gorm.DB {
		return tx.Updates(map[string]interface{}{"text": text, "rating": rating})
	})
}

// ResetReports clears the report counter after moderation.
func (r *GORMReviewRepository) ResetReports(ctx context.Context, id string) (*models.Review, error) {
	return r.mutate(ctx, id, func(tx *gorm.DB) *gorm.DB {
		return tx.Update("reports_count", 0)
	})
}

// Delete removes a review written by userID.
func (r *GORMReviewRepository) Delete(ctx context.Context, id, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Review", id)
			}
			return fmt.Errorf("failed to get review by ID %s: %w", id, err)
		}
		if review.UserID != userID {
			return fmt.Errorf("review %s belongs to another user: %w", id, ErrForbidden)
		}
		if err := tx.Delete(&review).Error; err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}
		return nil
	})
}

// mutate applies one update to a single review and returns the stored result.
func (r *GORMReviewRepository) mutate(ctx context.Context, id string, apply func(tx *gorm.DB) *gorm.DB) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := apply(tx.Model(&models.Review{}).Where("id = ?", id))
		if res.Error != nil {
			return fmt.Errorf("failed to update review %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound("Review", id)
		}
		if err := tx.First(&review, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to reload review %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}
