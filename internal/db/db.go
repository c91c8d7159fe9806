package db

import (
	"log"

	"blogicum/internal/config"
	"blogicum/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error
	DB, err = gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	seedCategories()
	seedLocations()
}

// Migrate is separate from Init so tests can run it against their own store.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Location{},
		&models.Post{},
		&models.Comment{},
	)
}

func seedCategories() {
	var count int64
	DB.Model(&models.Category{}).Count(&count)
	if count > 0 {
		log.Println("Categories already seeded, skipping")
		return
	}

	categories := []models.Category{
		{Title: "Travel", Slug: "travel", Description: "Trips, places and routes", IsPublished: true},
		{Title: "Food", Slug: "food", Description: "Recipes and restaurants", IsPublished: true},
		{Title: "Tech", Slug: "tech", Description: "Software and hardware notes", IsPublished: true},
		{Title: "Life", Slug: "life", Description: "Everything else", IsPublished: true},
	}

	for _, category := range categories {
		if err := DB.Create(&category).Error; err != nil {
			log.Printf("Failed to create category %s: %v", category.Slug, err)
		}
	}
	log.Println("Initial categories created successfully")
}

func seedLocations() {
	var count int64
	DB.Model(&models.Location{}).Count(&count)
	if count > 0 {
		return
	}

	locations := []models.Location{
		{Name: "Moscow", IsPublished: true},
		{Name: "Saint Petersburg", IsPublished: true},
		{Name: "Berlin", IsPublished: true},
		{Name: "Lisbon", IsPublished: true},
	}

	for _, location := range locations {
		if err := DB.Create(&location).Error; err != nil {
			log.Printf("Failed to create location %s: %v", location.Name, err)
		}
	}
	log.Println("Initial locations created successfully")
}
