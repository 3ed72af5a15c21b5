package models

// Well-known role names.
const (
	RoleAdmin     = "Admin"
	RoleModerator = "Moderator"
)

// Role is a named group of permissions granted to users.
type Role struct {
	ID   string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name string `json:"name" gorm:"uniqueIndex;type:varchar(64);not null"`
}
