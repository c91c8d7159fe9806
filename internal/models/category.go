package models

import (
	"time"
)

// Category is read-only from the application's point of view; rows are
// seeded at startup or managed out of band.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Slug        string    `gorm:"uniqueIndex;size:64;not null" json:"slug"`
	Description string    `json:"description"`
	IsPublished bool      `gorm:"not null" json:"is_published"` // Unpublished categories conceal their posts
	CreatedAt   time.Time `json:"created_at"`
}
