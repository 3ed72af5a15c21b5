package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ingreedio/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// likeEscaper makes user input match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

var productSortColumns = map[string]string{
	"":           "name",
	"name":       "name",
	"price":      "price",
	"created_at": "created_at",
}

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves one page of products matching the query.
func (r *GORMProductRepository) GetAll(ctx context.Context, query models.ProductQuery) (models.Page[models.Product], error) {
	pageIndex, pageSize := models.NormalizePaging(query.PageIndex, query.PageSize)

	column, ok := productSortColumns[query.SortBy]
	if !ok {
		return models.Page[models.Product]{}, &ValidationError{
			Field:   "sortBy",
			Message: fmt.Sprintf("cannot sort products by %q", query.SortBy),
		}
	}

	tx := r.db.WithContext(ctx).Model(&models.Product{})
	if query.Name != "" {
		tx = tx.Where(`LOWER(name) LIKE LOWER(?) ESCAPE '\'`, "%"+likeEscaper.Replace(query.Name)+"%")
	}
	tx = tx.Session(&gorm.Session{})

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return models.Page[models.Product]{}, fmt.Errorf("failed to count products: %w", err)
	}

	var products []models.Product
	err := tx.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: query.Descending}).
		Order("id").
		Offset(pageIndex * pageSize).
		Limit(pageSize).
		Find(&products).Error
	if err != nil {
		return models.Page[models.Product]{}, fmt.Errorf("failed to get products: %w", err)
	}
	return models.NewPage(products, pageIndex, pageSize, total), nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Product", id)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update updates the editable fields of an existing product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", product.ID).Updates(map[string]interface{}{
		"name":        product.Name,
		"description": product.Description,
		"price":       product.Price,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("Product", product.ID)
	}
	return nil
}

// Delete deletes a product by its ID along with its favourites and reviews.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Product{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete product: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound("Product", id)
		}
		if err := tx.Delete(&models.Favourite{}, "product_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete favourites of product %s: %w", id, err)
		}
		if err := tx.Delete(&models.Review{}, "product_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete reviews of product %s: %w", id, err)
		}
		return nil
	})
}

// ToggleFavourite adds or removes the (product, user) membership. Both
// directions are idempotent; false is returned only when the product is missing.
func (r *GORMProductRepository) ToggleFavourite(ctx context.Context, productID, userID string, add bool) (bool, error) {
	found := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to look up product %s: %w", productID, err)
		}
		if count == 0 {
			return nil
		}
		found = true

		if add {
			fav := models.Favourite{UserID: userID, ProductID: productID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&fav).Error; err != nil {
				return fmt.Errorf("failed to add favourite: %w", err)
			}
			return nil
		}
		if err := tx.Delete(&models.Favourite{}, "user_id = ? AND product_id = ?", userID, productID).Error; err != nil {
			return fmt.Errorf("failed to remove favourite: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// AddToFavourites marks the product as a favourite of the user.
func (r *GORMProductRepository) AddToFavourites(ctx context.Context, productID, userID string) (bool, error) {
	return r.ToggleFavourite(ctx, productID, userID, true)
}

// RemoveFromFavourites unmarks the product as a favourite of the user.
func (r *GORMProductRepository) RemoveFromFavourites(ctx context.Context, productID, userID string) (bool, error) {
	return r.ToggleFavourite(ctx, productID, userID, false)
}

// CheckFavourites returns one flag per product id, in input order.
func (r *GORMProductRepository) CheckFavourites(ctx context.Context, productIDs []string, userID string) ([]bool, error) {
	flags := make([]bool, len(productIDs))
	if len(productIDs) == 0 {
		return flags, nil
	}

	var favoured []string
	err := r.db.WithContext(ctx).Model(&models.Favourite{}).
		Where("user_id = ? AND product_id IN ?", userID, productIDs).
		Pluck("product_id", &favoured).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check favourites of user %s: %w", userID, err)
	}

	set := make(map[string]struct{}, len(favoured))
	for _, id := range favoured {
		set[id] = struct{}{}
	}
	for i, id := range productIDs {
		_, flags[i] = set[id]
	}
	return flags, nil
}

// GetFavourites lists the products a user bookmarked.
func (r *GORMProductRepository) GetFavourites(ctx context.Context, userID string) ([]models.Product, error) {
	products := []models.Product{}
	err := r.db.WithContext(ctx).
		Joins("JOIN favourites ON favourites.product_id = products.id").
		Where("favourites.user_id = ?", userID).
		Order("products.name").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get favourites of user %s: %w", userID, err)
	}
	for i := range products {
		products[i].Favourite = true
	}
	return products, nil
}

// GetReviews retrieves one page of reviews for a product, newest first.
func (r *GORMProductRepository) GetReviews(ctx context.Context, productID string, pageIndex, pageSize int) (models.Page[models.Review], error) {
	pageIndex, pageSize = models.NormalizePaging(pageIndex, pageSize)

	tx := r.db.WithContext(ctx).Model(&models.Review{}).Where("product_id = ?", productID).Session(&gorm.Session{})

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return models.Page[models.Review]{}, fmt.Errorf("failed to count reviews of product %s: %w", productID, err)
	}

	var reviews []models.Review
	err := tx.Order("created_at DESC").Order("id").
		Offset(pageIndex * pageSize).
		Limit(pageSize).
		Find(&reviews).Error
	if err != nil {
		return models.Page[models.Review]{}, fmt.Errorf("failed to get reviews of product %s: %w", productID, err)
	}
	return models.NewPage(reviews, pageIndex, pageSize, total), nil
}

// AddReview validates the rating, then stores a review for an existing product.
func (r *GORMProductRepository) AddReview(ctx context.Context, productID, userID, text string, rating float64) (*models.Review, error) {
	if err := ValidateRating(rating); err != nil {
		return nil, err
	}

	review := &models.Review{
		ID:        uuid.New().String(),
		Text:      text,
		Rating:    rating,
		ProductID: productID,
		UserID:    userID,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to look up product %s: %w", productID, err)
		}
		if count == 0 {
			return notFound("Product", productID)
		}
		if err := tx.Create(review).Error; err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}
