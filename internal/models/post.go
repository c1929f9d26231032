// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Post represents a note owned by a single user. Posts are deleted together
// with their owner (cascade on the UserID foreign key).
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EditableAt reports whether the post is still inside its modification window
// at the given instant. The window is measured from CreatedAt, never from
// UpdatedAt, so editing a post cannot extend it. The comparison is strictly
// "created after cutoff": a post created exactly at the cutoff is locked.
func (p *Post) EditableAt(now time.Time, window time.Duration) bool {
	return p.CreatedAt.After(now.Add(-window))
}
