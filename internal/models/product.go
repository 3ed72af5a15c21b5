package models

import "time"

// Product represents a product in the catalogue.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"index;type:varchar(100);not null"`
	Description string    `json:"description" gorm:"type:varchar(500)"`
	Price       float64   `json:"price"`
	Favourite   bool      `json:"favourite" gorm:"-"` // Resolved per caller, never stored
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Favourite links a user to a product they bookmarked. The composite key
// makes the relation a set.
type Favourite struct {
	UserID    string    `gorm:"primaryKey;type:varchar(36)"`
	ProductID string    `gorm:"primaryKey;type:varchar(36);index"`
	CreatedAt time.Time
}

// TableName specifies the table name
func (Favourite) TableName() string {
	return "favourites"
}

// ProductQuery filters and pages the product listing.
type ProductQuery struct {
	Name       string
	SortBy     string // "name", "price" or "created_at"
	Descending bool
	PageIndex  int
	PageSize   int
}
