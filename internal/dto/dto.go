// Package dto holds the HTTP request and response shapes and the explicit
// conversions from the domain models.
package dto

import (
	"time"

	"ingreedio/internal/models"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProductRequest is the body for creating or updating a product.
type ProductRequest struct {
	Name        string  `json:"name" validate:"required,min=3,max=100"`
	Description string  `json:"description" validate:"omitempty,max=500"`
	Price       float64 `json:"price" validate:"required,gt=0"`
}

// ReviewUpdateRequest carries review text and rating.
type ReviewUpdateRequest struct {
	Text   string  `json:"text" validate:"max=2000"`
	Rating float64 `json:"rating"`
}

// CreateReviewRequest is the body of POST /reviews.
type CreateReviewRequest struct {
	ProductID string  `json:"product_id" validate:"required"`
	Text      string  `json:"text" validate:"max=2000"`
	Rating    float64 `json:"rating"`
}

// RateRequest is the body of PATCH /reviews/:id/rate.
type RateRequest struct {
	Rating float64 `json:"rating"`
}

// CreatePreferenceRequest is the body of POST /users/me/preferences.
type CreatePreferenceRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// AssignRoleRequest is the body of POST /users/:id/roles.
type AssignRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=Admin Moderator"`
}

// ProductDTO is the public view of a product.
type ProductDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Favourite   bool    `json:"favourite"`
}

// ReviewDTO is the public view of a review.
type ReviewDTO struct {
	ID           string    `json:"id"`
	Text         string    `json:"text"`
	Rating       float64   `json:"rating"`
	ReportsCount int       `json:"reports_count"`
	ProductID    string    `json:"product_id"`
	UserID       string    `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// PreferenceDTO is the public view of a preference.
type PreferenceDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	UserID string `json:"user_id"`
}

// UserDTO is the public view of an account. It never carries the password hash.
type UserDTO struct {
	ID          string          `json:"id"`
	Email       string          `json:"email"`
	IsBlocked   bool            `json:"is_blocked"`
	Roles       []string        `json:"roles"`
	Preferences []PreferenceDTO `json:"preferences"`
}

// ToProductDTO converts a product into its public view.
func ToProductDTO(p models.Product) ProductDTO {
	return ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Favourite:   p.Favourite,
	}
}

// ToProductDTOs converts a list of products.
func ToProductDTOs(products []models.Product) []ProductDTO {
	out := make([]ProductDTO, len(products))
	for i, p := range products {
		out[i] = ToProductDTO(p)
	}
	return out
}

// ToReviewDTO converts a review into its public view.
func ToReviewDTO(r models.Review) ReviewDTO {
	return ReviewDTO{
		ID:           r.ID,
		Text:         r.Text,
		Rating:       r.Rating,
		ReportsCount: r.ReportsCount,
		ProductID:    r.ProductID,
		UserID:       r.UserID,
		CreatedAt:    r.CreatedAt,
	}
}

// ToReviewDTOs converts a list of reviews.
func ToReviewDTOs(reviews []models.Review) []ReviewDTO {
	out := make([]ReviewDTO, len(reviews))
	for i, r := range reviews {
		out[i] = ToReviewDTO(r)
	}
	return out
}

// ToPreferenceDTO converts a preference into its public view.
func ToPreferenceDTO(p models.Preference) PreferenceDTO {
	return PreferenceDTO{ID: p.ID, Name: p.Name, UserID: p.UserID}
}

// ToPreferenceDTOs converts a list of preferences.
func ToPreferenceDTOs(preferences []models.Preference) []PreferenceDTO {
	out := make([]PreferenceDTO, len(preferences))
	for i, p := range preferences {
		out[i] = ToPreferenceDTO(p)
	}
	return out
}

// ToUserDTO converts an account with its loaded roles and preferences.
func ToUserDTO(u models.User) UserDTO {
	return UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		IsBlocked:   u.IsBlocked,
		Roles:       u.RoleNames(),
		Preferences: ToPreferenceDTOs(u.Preferences),
	}
}

// ToPage converts every element of a page while keeping its paging metadata.
func ToPage[T, U any](page models.Page[T], convert func(T) U) models.Page[U] {
	out := make([]U, len(page.Contents))
	for i, item := range page.Contents {
		out[i] = convert(item)
	}
	return models.Page[U]{
		Contents:   out,
		PageIndex:  page.PageIndex,
		PageSize:   page.PageSize,
		TotalCount: page.TotalCount,
		TotalPages: page.TotalPages,
	}
}
