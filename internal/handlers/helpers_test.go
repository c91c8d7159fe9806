package handlers_test

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"blogicum/internal/db"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/router"
	"blogicum/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Stand-in pages that print just enough for assertions; the real templates
// live under web/templates and are not what these tests exercise.
const testTemplateSrc = `
{{define "post/list.html"}}{{with .CurrentUser}}USER:{{.Username}};{{end}}LIST{{range .Posts}}[{{.Title}}:{{.CommentCount}}]{{end}}page={{.CurrentPage}}/{{.TotalPages}}{{end}}
{{define "post/detail.html"}}DETAIL:{{.Post.Title}}{{range .Comments}}[c:{{.Text}}]{{end}}{{with .Error}}ERR:{{.}}{{end}}{{end}}
{{define "post/form.html"}}FORM:{{.Title}}{{with .Error}}ERR:{{.}}{{end}}{{end}}
{{define "comment/form.html"}}CFORM:{{.Comment.Text}}{{with .Error}}ERR:{{.}}{{end}}{{end}}
{{define "profile/detail.html"}}PROFILE:{{.Profile.Username}}{{range .Posts}}[{{.Title}}]{{end}}{{end}}
{{define "profile/form.html"}}PFORM{{with .Error}}ERR:{{.}}{{end}}{{end}}
{{define "auth/login.html"}}LOGIN{{with .Error}}ERR:{{.}}{{end}}{{end}}
{{define "auth/register.html"}}REGISTER{{with .Error}}ERR:{{.}}{{end}}{{end}}
{{define "error.html"}}ERROR:{{.Error}}{{end}}
`

func setupApp(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

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
	sqlDB.SetMaxOpenConns(1)
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	db.DB = gdb

	// The page cache is a process singleton; earlier tests must not leak
	// listings into this one
	utils.GetCache().Purge()

	r := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	r.Use(sessions.Sessions("test_session", store))
	r.SetHTMLTemplate(template.Must(template.New("test").Parse(testTemplateSrc)))
	r.Use(middleware.LoadUser())
	router.RegisterRoutes(r)
	return r
}

const testPassword = "password123"

func createUser(t *testing.T, username string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hash,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return &user
}

func createCategory(t *testing.T, slug string, published bool) *models.Category {
	t.Helper()
	category := models.Category{
		Title:       slug,
		Slug:        slug,
		IsPublished: published,
	}
	if err := db.DB.Create(&category).Error; err != nil {
		t.Fatalf("failed to create category %s: %v", slug, err)
	}
	return &category
}

func createLocation(t *testing.T, name string) *models.Location {
	t.Helper()
	location := models.Location{
		Name:        name,
		IsPublished: true,
	}
	if err := db.DB.Create(&location).Error; err != nil {
		t.Fatalf("failed to create location %s: %v", name, err)
	}
	return &location
}

func createPost(t *testing.T, author *models.User, category *models.Category, title string, pubDate time.Time, published bool) *models.Post {
	t.Helper()
	post := models.Post{
		Title:       title,
		Text:        "body of " + title,
		AuthorID:    author.ID,
		PubDate:     pubDate,
		IsPublished: published,
	}
	if category != nil {
		post.CategoryID = &category.ID
	}
	if err := db.DB.Create(&post).Error; err != nil {
		t.Fatalf("failed to create post %s: %v", title, err)
	}
	return &post
}

func createComment(t *testing.T, author *models.User, post *models.Post, text string) *models.Comment {
	t.Helper()
	comment := models.Comment{
		PostID:   post.ID,
		AuthorID: author.ID,
		Text:     text,
	}
	if err := db.DB.Create(&comment).Error; err != nil {
		t.Fatalf("failed to create comment: %v", err)
	}
	return &comment
}

// login signs the user in through the real handler and returns the session
// cookies for later requests.
func login(t *testing.T, r *gin.Engine, username string) []*http.Cookie {
	t.Helper()
	form := url.Values{"username": {username}, "password": {testPassword}}
	w := doRequest(r, http.MethodPost, "/login", form, nil)
	if w.Code != http.StatusFound {
		t.Fatalf("login for %s failed with status %d", username, w.Code)
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("login for %s set no session cookie", username)
	}
	return cookies
}

func doRequest(r *gin.Engine, method, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func wantRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302 redirect, got %d (%s)", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != location {
		t.Errorf("expected redirect to %s, got %s", location, got)
	}
}
