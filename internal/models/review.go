package models

import "time"

// Rating bounds, inclusive.
const (
	MinRating = 1.0
	MaxRating = 5.0
)

// Review is a user's rated opinion about a product.
type Review struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Text         string    `json:"text" gorm:"type:text"`
	Rating       float64   `json:"rating" gorm:"not null"`
	ReportsCount int       `json:"reports_count" gorm:"not null;default:0"`
	ProductID    string    `json:"product_id" gorm:"index;type:varchar(36);not null"`
	UserID       string    `json:"user_id" gorm:"index;type:varchar(36);not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RatingInRange reports whether r lies within [MinRating, MaxRating].
func RatingInRange(r float64) bool {
	return r >= MinRating && r <= MaxRating
}
