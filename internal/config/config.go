package config

import (
	"os"
)

// PageSize is how many posts a listing page shows. Kept here rather than as
// mutable state on the handlers so every listing paginates the same way.
const PageSize = 10

type Config struct {
	DatabaseURL   string
	Port          string
	SessionSecret string
	SessionName   string
	TemplatesDir  string
	StaticDir     string
}

func Load() *Config {
	return &Config{
		DatabaseURL:   getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=blogicum port=5432 sslmode=disable"),
		Port:          getEnv("PORT", "8080"),
		SessionSecret: getEnv("SESSION_SECRET", "secret_key_change_me"),
		SessionName:   getEnv("SESSION_NAME", "blogicum_session"),
		TemplatesDir:  getEnv("TEMPLATES_DIR", "./web/templates"),
		StaticDir:     getEnv("STATIC_DIR", "./web/static"),
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}
