package handlers

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"blogicum/internal/config"
	"blogicum/internal/db"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/policy"
	"blogicum/internal/utils"

	"github.com/gin-gonic/gin"
)

type PostHandler struct{}

func NewPostHandler() *PostHandler {
	return &PostHandler{}
}

func (h *PostHandler) Index(c *gin.Context) {
	page := pageParam(c)

	cacheKey := fmt.Sprintf("post:index:page:%d", page)
	if cachedData := utils.GetCache().Get(cacheKey); cachedData != nil {
		if hData, ok := cachedData.(gin.H); ok {
			Render(c, http.StatusOK, "post/list.html", hData)
			return
		}
	}

	posts, total, err := db.FindPosts(db.PostQuery{
		OnlyVisible:      true,
		WithCommentCount: true,
		Page:             page,
		PageSize:         config.PageSize,
	})
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to load posts")
		return
	}

	renderData := gin.H{
		"Posts":       posts,
		"Title":       "Latest posts",
		"CurrentPage": page,
		"TotalPages":  totalPages(total, config.PageSize),
		"BaseURL":     "/",
	}

	// Cache for one minute; visibility is time-based so keep it short
	utils.GetCache().Set(cacheKey, renderData, 1*time.Minute)

	Render(c, http.StatusOK, "post/list.html", renderData)
}

func (h *PostHandler) ByCategory(c *gin.Context) {
	slug := c.Param("slug")

	var category models.Category
	if err := db.DB.Where("slug = ? AND is_published = ?", slug, true).First(&category).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Category not found")
		return
	}

	page := pageParam(c)

	cacheKey := fmt.Sprintf("post:category:%s:page:%d", slug, page)
	if cachedData := utils.GetCache().Get(cacheKey); cachedData != nil {
		if hData, ok := cachedData.(gin.H); ok {
			Render(c, http.StatusOK, "post/list.html", hData)
			return
		}
	}

	posts, total, err := db.FindPosts(db.PostQuery{
		Filters:          map[string]any{"category_id": category.ID},
		OnlyVisible:      true,
		WithCommentCount: true,
		Page:             page,
		PageSize:         config.PageSize,
	})
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to load posts")
		return
	}

	renderData := gin.H{
		"Posts":       posts,
		"Category":    category,
		"Title":       category.Title,
		"CurrentPage": page,
		"TotalPages":  totalPages(total, config.PageSize),
		"BaseURL":     "/category/" + slug,
	}

	utils.GetCache().Set(cacheKey, renderData, 1*time.Minute)

	Render(c, http.StatusOK, "post/list.html", renderData)
}

func (h *PostHandler) Detail(c *gin.Context) {
	post, ok := h.resolvePost(c)
	if !ok {
		return
	}

	// The author always sees their own post; everyone else only sees it
	// when it is publicly visible. Concealment is a 404, never a 403.
	actor := middleware.CurrentUser(c)
	if (actor == nil || actor.ID != post.AuthorID) && !post.VisibleAt(time.Now()) {
		RenderError(c, http.StatusNotFound, "Post not found")
		return
	}

	data, err := detailData(post)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to load comments")
		return
	}
	Render(c, http.StatusOK, "post/detail.html", data)
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	Render(c, http.StatusOK, "post/form.html", h.formData(nil, "Create post"))
}

func (h *PostHandler) Create(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	post, errMsg := h.bindForm(c, &models.Post{AuthorID: actor.ID})
	if errMsg != "" {
		data := h.formData(post, "Create post")
		data["Error"] = errMsg
		Render(c, http.StatusBadRequest, "post/form.html", data)
		return
	}

	if err := db.DB.Create(post).Error; err != nil {
		data := h.formData(post, "Create post")
		data["Error"] = "Failed to save post"
		Render(c, http.StatusInternalServerError, "post/form.html", data)
		return
	}

	invalidateListings(post)

	c.Redirect(http.StatusFound, "/profile/"+actor.Username)
}

func (h *PostHandler) ShowEdit(c *gin.Context) {
	post, ok := h.resolvePost(c)
	if !ok {
		return
	}
	if !requireOwner(c, post.AuthorID) {
		return
	}

	Render(c, http.StatusOK, "post/form.html", h.formData(post, "Edit post"))
}

func (h *PostHandler) Update(c *gin.Context) {
	post, ok := h.resolvePost(c)
	if !ok {
		return
	}
	if !requireOwner(c, post.AuthorID) {
		return
	}

	post, errMsg := h.bindForm(c, post)
	if errMsg != "" {
		data := h.formData(post, "Edit post")
		data["Error"] = errMsg
		Render(c, http.StatusBadRequest, "post/form.html", data)
		return
	}

	if err := db.DB.Save(post).Error; err != nil {
		data := h.formData(post, "Edit post")
		data["Error"] = "Failed to save post"
		Render(c, http.StatusInternalServerError, "post/form.html", data)
		return
	}

	invalidateListings(post)

	c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d", post.ID))
}

func (h *PostHandler) Delete(c *gin.Context) {
	post, ok := h.resolvePost(c)
	if !ok {
		return
	}
	if !requireOwner(c, post.AuthorID) {
		return
	}

	// Hard delete; comments go with the post via the FK cascade
	if err := db.DB.Unscoped().Delete(post).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to delete post")
		return
	}

	invalidateListings(post)

	c.Redirect(http.StatusFound, "/")
}

// resolvePost loads the post from the :id route param with its relations,
// rendering a 404 page itself when the post does not exist.
func (h *PostHandler) resolvePost(c *gin.Context) (*models.Post, bool) {
	id := utils.StringToUint(c.Param("id"))

	var post models.Post
	err := db.DB.Preload("Author").Preload("Category").Preload("Location").
		First(&post, id).Error
	if err != nil {
		RenderError(c, http.StatusNotFound, "Post not found")
		return nil, false
	}
	return &post, true
}

// bindForm fills post from the submitted form and validates it. A non-empty
// return message means validation failed and nothing was persisted.
func (h *PostHandler) bindForm(c *gin.Context, post *models.Post) (*models.Post, string) {
	post.Title = c.PostForm("title")
	post.Text = c.PostForm("text")

	if post.Title == "" {
		return post, "Title must not be empty"
	}
	if post.Text == "" {
		return post, "Text must not be empty"
	}

	// Scheduled posts carry a future pub date; empty means "now"
	if v := c.PostForm("pub_date"); v != "" {
		pubDate, err := time.ParseInLocation("2006-01-02T15:04", v, time.Local)
		if err != nil {
			return post, "Invalid publication date"
		}
		post.PubDate = pubDate
	} else if post.PubDate.IsZero() {
		post.PubDate = time.Now()
	}

	post.IsPublished = c.PostForm("is_published") != ""

	// Drop any preloaded association too, or Save would restore the old
	// foreign key from it when the field is cleared.
	post.CategoryID = nil
	post.Category = nil
	if v := c.PostForm("category_id"); v != "" {
		var category models.Category
		if err := db.DB.First(&category, utils.StringToUint(v)).Error; err != nil {
			return post, "Unknown category"
		}
		post.CategoryID = &category.ID
		post.Category = &category
	}

	post.LocationID = nil
	post.Location = nil
	if v := c.PostForm("location_id"); v != "" {
		var location models.Location
		if err := db.DB.First(&location, utils.StringToUint(v)).Error; err != nil {
			return post, "Unknown location"
		}
		post.LocationID = &location.ID
		post.Location = &location
	}

	return post, ""
}

// formData assembles the create/edit form context: the categories and
// locations a user may file a post under.
func (h *PostHandler) formData(post *models.Post, title string) gin.H {
	var categories []models.Category
	db.DB.Where("is_published = ?", true).Order("title ASC").Find(&categories)

	var locations []models.Location
	db.DB.Where("is_published = ?", true).Order("name ASC").Find(&locations)

	return gin.H{
		"Title":      title,
		"Post":       post,
		"Categories": categories,
		"Locations":  locations,
	}
}

// detailData builds the detail page context: the rendered post, its
// comments oldest first, and an empty comment form.
func detailData(post *models.Post) (gin.H, error) {
	var comments []models.Comment
	err := db.DB.Preload("Author").
		Where("post_id = ?", post.ID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	type renderedComment struct {
		models.Comment
		TextHTML template.HTML
	}

	rendered := make([]renderedComment, len(comments))
	for i, comment := range comments {
		rendered[i] = renderedComment{
			Comment:  comment,
			TextHTML: utils.RenderMarkdown(comment.Text),
		}
	}

	return gin.H{
		"Post":        post,
		"PostContent": utils.RenderMarkdown(post.Text),
		"Comments":    rendered,
		"Title":       post.Title,
		"CommentText": "",
	}, nil
}

// requireOwner applies the authorization policy for a mutating action and
// renders the failure response itself. Anonymous actors go to the login
// page; signed-in non-owners get an explicit 403, distinct from a 404.
func requireOwner(c *gin.Context, ownerID uint) bool {
	switch policy.CanModify(middleware.CurrentUser(c), ownerID) {
	case policy.RequiresAuth:
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return false
	case policy.Forbidden:
		RenderError(c, http.StatusForbidden, "Only the author can do that")
		return false
	}
	return true
}

// invalidateListings drops the cached first pages that a post mutation can
// change. Deeper pages simply age out.
func invalidateListings(post *models.Post) {
	utils.GetCache().Delete("post:index:page:1")

	if post.CategoryID == nil {
		return
	}
	slug := ""
	if post.Category != nil {
		slug = post.Category.Slug
	} else {
		var category models.Category
		if err := db.DB.First(&category, *post.CategoryID).Error; err == nil {
			slug = category.Slug
		}
	}
	if slug != "" {
		utils.GetCache().Delete(fmt.Sprintf("post:category:%s:page:1", slug))
	}
}
