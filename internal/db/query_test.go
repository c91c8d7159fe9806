package db

import (
	"testing"
	"time"

	"blogicum/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// One connection, one in-memory database
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	DB = gdb
}

func seedPosts(t *testing.T) (models.User, models.Category) {
	t.Helper()

	author := models.User{Username: "alice", Email: "alice@example.com", Password: "x"}
	if err := DB.Create(&author).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	published := models.Category{Title: "Travel", Slug: "travel", IsPublished: true}
	hidden := models.Category{Title: "Secret", Slug: "secret", IsPublished: false}
	DB.Create(&published)
	DB.Create(&hidden)

	now := time.Now()
	posts := []models.Post{
		{Title: "visible", Text: "t", AuthorID: author.ID, CategoryID: &published.ID, PubDate: now.Add(-time.Hour), IsPublished: true},
		{Title: "draft", Text: "t", AuthorID: author.ID, CategoryID: &published.ID, PubDate: now.Add(-time.Hour), IsPublished: false},
		{Title: "scheduled", Text: "t", AuthorID: author.ID, CategoryID: &published.ID, PubDate: now.Add(time.Hour), IsPublished: true},
		{Title: "hidden-category", Text: "t", AuthorID: author.ID, CategoryID: &hidden.ID, PubDate: now.Add(-time.Hour), IsPublished: true},
		{Title: "no-category", Text: "t", AuthorID: author.ID, PubDate: now.Add(-time.Hour), IsPublished: true},
	}
	for i := range posts {
		if err := DB.Create(&posts[i]).Error; err != nil {
			t.Fatalf("failed to create post %s: %v", posts[i].Title, err)
		}
	}
	return author, published
}

func titles(posts []models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Title
	}
	return out
}

func TestFindPostsVisibility(t *testing.T) {
	setupTestDB(t)
	seedPosts(t)

	posts, total, err := FindPosts(PostQuery{OnlyVisible: true})
	if err != nil {
		t.Fatalf("FindPosts failed: %v", err)
	}
	// "visible" and "no-category"; drafts, scheduled posts and posts in
	// unpublished categories stay concealed
	if total != 2 {
		t.Errorf("expected 2 visible posts, got %d (%v)", total, titles(posts))
	}
	seen := make(map[string]bool)
	for _, p := range posts {
		seen[p.Title] = true
	}
	if !seen["visible"] || !seen["no-category"] {
		t.Errorf("expected [visible no-category], got %v", titles(posts))
	}
	if seen["draft"] || seen["scheduled"] || seen["hidden-category"] {
		t.Errorf("concealed post leaked into the visible set: %v", titles(posts))
	}
}

func TestFindPostsUnfiltered(t *testing.T) {
	setupTestDB(t)
	author, _ := seedPosts(t)

	posts, total, err := FindPosts(PostQuery{
		Filters: map[string]any{"author_id": author.ID},
	})
	if err != nil {
		t.Fatalf("FindPosts failed: %v", err)
	}
	if total != 5 || len(posts) != 5 {
		t.Errorf("expected all 5 posts for the author, got total=%d len=%d", total, len(posts))
	}
}

func TestFindPostsCategoryFilter(t *testing.T) {
	setupTestDB(t)
	_, category := seedPosts(t)

	posts, _, err := FindPosts(PostQuery{
		Filters:     map[string]any{"category_id": category.ID},
		OnlyVisible: true,
	})
	if err != nil {
		t.Fatalf("FindPosts failed: %v", err)
	}
	if len(posts) != 1 || posts[0].Title != "visible" {
		t.Errorf("expected the one visible travel post, got %v", titles(posts))
	}
}

func TestFindPostsOrderAndPaging(t *testing.T) {
	setupTestDB(t)

	author := models.User{Username: "bob", Email: "bob@example.com", Password: "x"}
	DB.Create(&author)
	category := models.Category{Title: "Tech", Slug: "tech", IsPublished: true}
	DB.Create(&category)

	base := time.Now().Add(-24 * time.Hour)
	for i := 0; i < 5; i++ {
		post := models.Post{
			Title:       string(rune('a' + i)),
			Text:        "t",
			AuthorID:    author.ID,
			CategoryID:  &category.ID,
			PubDate:     base.Add(time.Duration(i) * time.Hour),
			IsPublished: true,
		}
		if err := DB.Create(&post).Error; err != nil {
			t.Fatalf("failed to create post: %v", err)
		}
	}

	posts, total, err := FindPosts(PostQuery{OnlyVisible: true, Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("FindPosts failed: %v", err)
	}
	if total != 5 {
		t.Errorf("expected total 5, got %d", total)
	}
	if len(posts) != 2 {
		t.Fatalf("expected page of 2, got %d", len(posts))
	}
	// Newest publication first
	if posts[0].Title != "e" || posts[1].Title != "d" {
		t.Errorf("expected [e d], got %v", titles(posts))
	}

	posts, _, err = FindPosts(PostQuery{OnlyVisible: true, Page: 3, PageSize: 2})
	if err != nil {
		t.Fatalf("FindPosts failed: %v", err)
	}
	if len(posts) != 1 || posts[0].Title != "a" {
		t.Errorf("expected last page [a], got %v", titles(posts))
	}
}

func TestFindPostsCommentCounts(t *testing.T) {
	setupTestDB(t)
	author, category := seedPosts(t)

	var post models.Post
	if err := DB.Where("title = ?", "visible").First(&post).Error; err != nil {
		t.Fatalf("failed to load post: %v", err)
	}
	for i := 0; i < 3; i++ {
		comment := models.Comment{PostID: post.ID, AuthorID: author.ID, Text: "hi"}
		if err := DB.Create(&comment).Error; err != nil {
			t.Fatalf("failed to create comment: %v", err)
		}
	}

	posts, _, err := FindPosts(PostQuery{
		Filters:          map[string]any{"category_id": category.ID},
		OnlyVisible:      true,
		WithCommentCount: true,
	})
	if err != nil {
		t.Fatalf("FindPosts failed: %v", err)
	}
	if len(posts) != 1 || posts[0].CommentCount != 3 {
		t.Errorf("expected comment count 3, got %v", posts)
	}
}

func TestFindPostsEmptyResult(t *testing.T) {
	setupTestDB(t)

	posts, total, err := FindPosts(PostQuery{OnlyVisible: true})
	if err != nil {
		t.Fatalf("empty result must not be an error, got %v", err)
	}
	if total != 0 || len(posts) != 0 {
		t.Errorf("expected empty result, got total=%d len=%d", total, len(posts))
	}
}
