package handlers

import (
	"net/http"

	"blogicum/internal/config"
	"blogicum/internal/db"
	"blogicum/internal/middleware"
	"blogicum/internal/models"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct{}

func NewProfileHandler() *ProfileHandler {
	return &ProfileHandler{}
}

// View - public profile page /profile/:username
func (h *ProfileHandler) View(c *gin.Context) {
	username := c.Param("username")

	var user models.User
	if err := db.DB.Where("username = ?", username).First(&user).Error; err != nil {
		RenderError(c, http.StatusNotFound, "User not found")
		return
	}

	actor := middleware.CurrentUser(c)
	isOwner := actor != nil && actor.ID == user.ID

	page := pageParam(c)

	// Owners see all of their posts, drafts and scheduled ones included;
	// visitors only see what the index would show
	posts, total, err := db.FindPosts(db.PostQuery{
		Filters:          map[string]any{"author_id": user.ID},
		OnlyVisible:      !isOwner,
		WithCommentCount: true,
		Page:             page,
		PageSize:         config.PageSize,
	})
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to load posts")
		return
	}

	Render(c, http.StatusOK, "profile/detail.html", gin.H{
		"Title":       user.Username,
		"Profile":     user,
		"IsOwner":     isOwner,
		"Posts":       posts,
		"CurrentPage": page,
		"TotalPages":  totalPages(total, config.PageSize),
		"BaseURL":     "/profile/" + user.Username,
	})
}

// ShowEdit - the profile edit form always edits the session user; the URL
// carries no target.
func (h *ProfileHandler) ShowEdit(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	Render(c, http.StatusOK, "profile/form.html", gin.H{
		"Title": "Edit profile",
		"User":  actor,
	})
}

func (h *ProfileHandler) Update(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	email := c.PostForm("email")
	updates := map[string]interface{}{
		"first_name": c.PostForm("first_name"),
		"last_name":  c.PostForm("last_name"),
		"bio":        c.PostForm("bio"),
	}

	if email != "" && email != actor.Email {
		var existingUser models.User
		if err := db.DB.Where("email = ? AND id != ?", email, actor.ID).First(&existingUser).Error; err == nil {
			Render(c, http.StatusBadRequest, "profile/form.html", gin.H{
				"Title": "Edit profile",
				"User":  actor,
				"Error": "That email is already in use",
			})
			return
		}
		updates["email"] = email
	}

	if err := db.DB.Model(actor).Updates(updates).Error; err != nil {
		Render(c, http.StatusInternalServerError, "profile/form.html", gin.H{
			"Title": "Edit profile",
			"User":  actor,
			"Error": "Failed to save profile",
		})
		return
	}

	c.Redirect(http.StatusFound, "/profile/"+actor.Username)
}
