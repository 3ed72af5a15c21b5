package models

// Identity is the authenticated caller, built from verified token claims and
// passed explicitly into operations that need authorization.
type Identity struct {
	UserID string
	Email  string
	Roles  []string
}

// HasRole reports whether the identity carries the named role.
func (i *Identity) HasRole(role string) bool {
	if i == nil {
		return false
	}
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Authenticated reports whether the identity refers to a user.
func (i *Identity) Authenticated() bool {
	return i != nil && i.UserID != ""
}
