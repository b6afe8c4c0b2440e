package domain

import "time"

type User struct {
	ID             string    `json:"user_id"`
	Email          string    `json:"email"`
	Name           *string   `json:"name"`
	HashedPassword *string   `json:"-"` // never rendered
	ExternalID     *string   `json:"google_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// HasPassword reports whether the account can log in with a password.
func (u *User) HasPassword() bool {
	return u.HashedPassword != nil && *u.HashedPassword != ""
}

// DisplayName returns the name or "" when none was given.
func (u *User) DisplayName() string {
	if u.Name == nil {
		return ""
	}
	return *u.Name
}
