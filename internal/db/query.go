package db

import (
	"time"

	"blogicum/internal/models"

	"gorm.io/gorm"
)

// PostQuery is an explicit query specification for the post store: equality
// filters, a visibility switch, an optional comment-count annotation and
// paging. FindPosts evaluates it eagerly; there is no lazy chaining.
type PostQuery struct {
	// Filters maps column names to required values, e.g. "author_id" -> 3.
	Filters map[string]any
	// OnlyVisible keeps only publicly visible posts: published, not
	// future-dated, and not concealed by an unpublished category.
	OnlyVisible bool
	// WithCommentCount fills Post.CommentCount for every returned post.
	WithCommentCount bool
	// Order is a SQL order clause; empty means newest publication first.
	Order string
	// Page is 1-based. PageSize 0 disables paging.
	Page     int
	PageSize int
}

const defaultOrder = "posts.pub_date DESC"

// FindPosts runs the query and returns one page of posts plus the total
// number of matching posts. An empty result is not an error.
func FindPosts(q PostQuery) ([]models.Post, int64, error) {
	base := func() *gorm.DB {
		tx := DB.Model(&models.Post{})
		if q.OnlyVisible {
			// Uncategorized posts are visible on their own merits, hence
			// the LEFT JOIN
			tx = tx.Joins("LEFT JOIN categories ON categories.id = posts.category_id").
				Where("posts.is_published = ? AND posts.pub_date <= ? AND (posts.category_id IS NULL OR categories.is_published = ?)",
					true, time.Now(), true)
		}
		if len(q.Filters) > 0 {
			tx = tx.Where(q.Filters)
		}
		return tx
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := q.Order
	if order == "" {
		order = defaultOrder
	}

	tx := base().Select("posts.*").
		Preload("Author").Preload("Category").Preload("Location").
		Order(order)
	if q.PageSize > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		tx = tx.Limit(q.PageSize).Offset((page - 1) * q.PageSize)
	}

	var posts []models.Post
	if err := tx.Find(&posts).Error; err != nil {
		return nil, 0, err
	}

	if q.WithCommentCount {
		if err := fillCommentCounts(posts); err != nil {
			return nil, 0, err
		}
	}
	return posts, total, nil
}

// fillCommentCounts batch-fills CommentCount for a page of posts with a
// single grouped query.
func fillCommentCounts(posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countResult struct {
		PostID uint
		Count  int
	}
	var results []countResult
	err := DB.Model(&models.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&results).Error
	if err != nil {
		return err
	}

	countMap := make(map[uint]int)
	for _, r := range results {
		countMap[r.PostID] = r.Count
	}

	for i := range posts {
		posts[i].CommentCount = countMap[posts[i].ID]
	}
	return nil
}
