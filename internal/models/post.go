package models

import (
	"time"
)

type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AuthorID    uint      `gorm:"not null;index" json:"author_id"`
	Author      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	CategoryID  *uint     `gorm:"index" json:"category_id"` // Nullable, posts may be uncategorized
	Category    *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category"`
	LocationID  *uint     `gorm:"index" json:"location_id"`
	Location    *Location `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"location"`
	Title       string    `gorm:"not null" json:"title"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	PubDate     time.Time `gorm:"index;not null" json:"pub_date"` // May be in the future (scheduled post)
	IsPublished bool      `gorm:"not null" json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Not a database column, filled in by the query helper
	CommentCount int `gorm:"-" json:"comment_count"`
}

// VisibleAt reports whether the post is publicly visible at t: published,
// not future-dated, and its category, if it has one, is published too. The
// author bypasses this check entirely; callers handle that.
func (p *Post) VisibleAt(t time.Time) bool {
	if !p.IsPublished || p.PubDate.After(t) {
		return false
	}
	if p.CategoryID == nil {
		return true
	}
	return p.Category != nil && p.Category.IsPublished
}
