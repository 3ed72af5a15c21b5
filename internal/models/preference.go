package models

import "time"

// Preference is a named dietary or product preference owned by a single user.
type Preference struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	UserID    string    `json:"user_id" gorm:"index;type:varchar(36);not null"`
	CreatedAt time.Time `json:"created_at"`
}
