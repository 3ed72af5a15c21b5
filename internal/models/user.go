package models

import "time"

// User represents an account that can sign in to the API.
type User struct {
	ID                string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email             string       `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	PasswordHash      string       `json:"-" gorm:"type:varchar(255);not null"` // Never serialised
	IsBlocked         bool         `json:"is_blocked" gorm:"not null;default:false"`
	AccessFailedCount int          `json:"-" gorm:"not null;default:0"`
	LockoutEnd        *time.Time   `json:"lockout_end,omitempty"`
	Roles             []Role       `json:"roles,omitempty" gorm:"many2many:user_roles;"`
	Preferences       []Preference `json:"preferences,omitempty" gorm:"constraint:OnDelete:CASCADE;"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// RoleNames flattens the loaded roles into their names.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}
