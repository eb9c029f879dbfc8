// Package model defines domain entities for the application.
package model

import "time"

// User represents a registered account that owns contacts.
// Password holds the argon2id hash, never the plaintext.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Password     string    `json:"-"`
	RefreshToken *string   `json:"-"`
	Confirmed    bool      `json:"confirmed"`
	Avatar       *string   `json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Clone returns a deep copy of the user. The cache layer hands out
// clones so callers cannot mutate cached state through shared pointers.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	clone := *u
	if u.RefreshToken != nil {
		token := *u.RefreshToken
		clone.RefreshToken = &token
	}
	if u.Avatar != nil {
		avatar := *u.Avatar
		clone.Avatar = &avatar
	}
	return &clone
}
