package router

import (
	"blogicum/internal/handlers"
	"blogicum/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	postHandler := handlers.NewPostHandler()
	commentHandler := handlers.NewCommentHandler()
	profileHandler := handlers.NewProfileHandler()

	// Public Routes
	r.GET("/", postHandler.Index)                      // Index, newest visible posts
	r.GET("/category/:slug", postHandler.ByCategory)   // Posts under one category
	r.GET("/posts/:id", postHandler.Detail)            // Post detail with comments
	r.GET("/profile/:username", profileHandler.View)   // Public profile with the user's posts

	r.GET("/signup", authHandler.ShowRegister)
	r.POST("/signup", authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/posts/create", postHandler.ShowCreate)
		authorized.POST("/posts/create", postHandler.Create)
		authorized.GET("/posts/:id/edit", postHandler.ShowEdit)
		authorized.POST("/posts/:id/edit", postHandler.Update)
		authorized.POST("/posts/:id/delete", postHandler.Delete)

		authorized.POST("/posts/:id/comment", commentHandler.Create)
		authorized.GET("/posts/:id/edit_comment/:comment_id", commentHandler.ShowEdit)
		authorized.POST("/posts/:id/edit_comment/:comment_id", commentHandler.Update)
		authorized.POST("/posts/:id/delete_comment/:comment_id", commentHandler.Delete)

		authorized.GET("/accounts/profile", profileHandler.ShowEdit)
		authorized.POST("/accounts/profile", profileHandler.Update)
	}
}
