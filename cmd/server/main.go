package main

import (
	"fmt"
	"html/template"
	"log"
	"path/filepath"
	"time"

	"blogicum/internal/config"
	"blogicum/internal/db"
	"blogicum/internal/middleware"
	"blogicum/internal/router"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	cfg := config.Load()

	// Initialize Database
	db.Init(cfg)

	// Initialize Gin
	r := gin.Default()

	// Setup Sessions
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions(cfg.SessionName, store))

	// Load Templates using Multitemplate to avoid collision and allow handler names
	r.HTMLRender = loadTemplates(cfg.TemplatesDir)

	// Static Assets
	r.Static("/static", cfg.StaticDir)

	// Middleware
	r.Use(middleware.LoadUser())

	router.RegisterRoutes(r)

	log.Printf("Blogicum server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}

func loadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	includes, err := filepath.Glob(templatesDir + "/includes/*.html")
	if err != nil {
		panic(err)
	}

	// Helper to assemble files
	assemble := func(view string) []string {
		files := make([]string, 0)
		files = append(files, layouts...)
		files = append(files, includes...)
		files = append(files, view)
		return files
	}

	// FuncMap
	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"timeAgo": func(t interface{}) string {
			var timeVal time.Time
			switch v := t.(type) {
			case time.Time:
				timeVal = v
			default:
				return ""
			}

			duration := time.Since(timeVal)
			seconds := int(duration.Seconds())

			if seconds < 0 {
				return timeVal.Format("2006-01-02 15:04")
			} else if seconds < 60 {
				return fmt.Sprintf("%ds ago", seconds)
			} else if seconds < 3600 {
				return fmt.Sprintf("%dm ago", seconds/60)
			} else if seconds < 86400 {
				return fmt.Sprintf("%dh ago", seconds/3600)
			} else if seconds < 2592000 {
				return fmt.Sprintf("%dd ago", seconds/86400)
			} else if seconds < 31536000 {
				return fmt.Sprintf("%dmo ago", seconds/2592000)
			}
			return fmt.Sprintf("%dy ago", seconds/31536000)
		},
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
		"deref": func(p *uint) uint {
			if p == nil {
				return 0
			}
			return *p
		},
	}

	// Manual registration to ensure keys match handler expectation
	// Auth
	r.AddFromFilesFuncs("auth/login.html", funcMap, assemble(templatesDir+"/views/auth/login.html")...)
	r.AddFromFilesFuncs("auth/register.html", funcMap, assemble(templatesDir+"/views/auth/register.html")...)

	// Post
	r.AddFromFilesFuncs("post/list.html", funcMap, assemble(templatesDir+"/views/post/list.html")...)
	r.AddFromFilesFuncs("post/detail.html", funcMap, assemble(templatesDir+"/views/post/detail.html")...)
	r.AddFromFilesFuncs("post/form.html", funcMap, assemble(templatesDir+"/views/post/form.html")...)

	// Comment
	r.AddFromFilesFuncs("comment/form.html", funcMap, assemble(templatesDir+"/views/comment/form.html")...)

	// Profile
	r.AddFromFilesFuncs("profile/detail.html", funcMap, assemble(templatesDir+"/views/profile/detail.html")...)
	r.AddFromFilesFuncs("profile/form.html", funcMap, assemble(templatesDir+"/views/profile/form.html")...)

	// Error
	r.AddFromFilesFuncs("error.html", funcMap, assemble(templatesDir+"/views/error.html")...)

	return r
}
