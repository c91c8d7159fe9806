package handlers

import (
	"math"
	"strconv"

	"blogicum/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Render helper to inject common variables like 'current user'.
// It copies obj instead of mutating it: listing handlers hand the same
// gin.H to the shared page cache, and per-request values like the
// current user must never end up in a map other viewers render from.
func Render(c *gin.Context, code int, name string, obj gin.H) {
	data := make(gin.H, len(obj)+2)
	for k, v := range obj {
		data[k] = v
	}

	if user := middleware.CurrentUser(c); user != nil {
		data["CurrentUser"] = user
	}
	data["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, data)
}

// RenderError renders the shared error page with the given status.
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message})
}

// pageParam reads ?page=N, defaulting to 1.
func pageParam(c *gin.Context) int {
	page := 1
	if p := c.Query("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			page = pageNum
		}
	}
	return page
}

// totalPages never reports less than one page, even for empty listings.
func totalPages(total int64, perPage int) int {
	pages := int(math.Ceil(float64(total) / float64(perPage)))
	if pages == 0 {
		pages = 1
	}
	return pages
}
