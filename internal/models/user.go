// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered account in the Anecdote application.
// Password holds the bcrypt hash and is never serialized.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"unique;not null" json:"username"`
	Email     string    `json:"email,omitempty"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Posts     []Post    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"posts,omitempty"`
}

// Summary returns the public identity subset that auth responses expose.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username}
}

// UserSummary is the identity shape returned from signup and login.
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}
