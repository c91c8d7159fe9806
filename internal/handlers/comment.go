package handlers

import (
	"fmt"
	"net/http"

	"blogicum/internal/db"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/utils"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct{}

func NewCommentHandler() *CommentHandler {
	return &CommentHandler{}
}

func (h *CommentHandler) Create(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	postID := utils.StringToUint(c.Param("id"))
	var post models.Post
	err := db.DB.Preload("Author").Preload("Category").Preload("Location").
		First(&post, postID).Error
	if err != nil {
		RenderError(c, http.StatusNotFound, "Post not found")
		return
	}

	text := c.PostForm("text")
	if text == "" {
		// Redisplay the detail page with the inline form error
		data, err := detailData(&post)
		if err != nil {
			RenderError(c, http.StatusInternalServerError, "Failed to load comments")
			return
		}
		data["Error"] = "Comment must not be empty"
		Render(c, http.StatusBadRequest, "post/detail.html", data)
		return
	}

	comment := models.Comment{
		PostID:   post.ID,
		AuthorID: actor.ID,
		Text:     text,
	}
	if err := db.DB.Create(&comment).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to save comment")
		return
	}

	// Comment counts on the cached listings are stale now
	invalidateListings(&post)

	c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d", post.ID))
}

func (h *CommentHandler) ShowEdit(c *gin.Context) {
	comment, ok := h.resolveComment(c)
	if !ok {
		return
	}
	if !requireOwner(c, comment.AuthorID) {
		return
	}

	Render(c, http.StatusOK, "comment/form.html", gin.H{
		"Title":   "Edit comment",
		"Comment": comment,
	})
}

func (h *CommentHandler) Update(c *gin.Context) {
	comment, ok := h.resolveComment(c)
	if !ok {
		return
	}
	if !requireOwner(c, comment.AuthorID) {
		return
	}

	text := c.PostForm("text")
	if text == "" {
		Render(c, http.StatusBadRequest, "comment/form.html", gin.H{
			"Title":   "Edit comment",
			"Comment": comment,
			"Error":   "Comment must not be empty",
		})
		return
	}

	comment.Text = text
	if err := db.DB.Save(comment).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to save comment")
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d", comment.PostID))
}

func (h *CommentHandler) Delete(c *gin.Context) {
	comment, ok := h.resolveComment(c)
	if !ok {
		return
	}
	if !requireOwner(c, comment.AuthorID) {
		return
	}

	if err := db.DB.Unscoped().Delete(comment).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to delete comment")
		return
	}

	// Comment counts on the cached listings are stale now
	var post models.Post
	if err := db.DB.First(&post, comment.PostID).Error; err == nil {
		invalidateListings(&post)
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d", comment.PostID))
}

// resolveComment loads the comment addressed by the route. The comment must
// belong to the post named in the URL; a mismatched pairing is a 404, not a
// silent fallback to the comment's real post.
func (h *CommentHandler) resolveComment(c *gin.Context) (*models.Comment, bool) {
	postID := utils.StringToUint(c.Param("id"))
	commentID := utils.StringToUint(c.Param("comment_id"))

	var comment models.Comment
	err := db.DB.Preload("Author").
		Where("id = ? AND post_id = ?", commentID, postID).
		First(&comment).Error
	if err != nil {
		RenderError(c, http.StatusNotFound, "Comment not found")
		return nil, false
	}
	return &comment, true
}
