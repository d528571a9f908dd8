package main

import (
	"log"

	"github.com/cagrik/pazarly/internal/config"
	"github.com/cagrik/pazarly/internal/database"
	"github.com/cagrik/pazarly/internal/models"
)

// Default category taxonomy for a fresh installation
var defaultCategories = []models.Category{
	{Name: "Electronics", Slug: "electronics", Description: "Phones, computers and gadgets"},
	{Name: "Vehicles", Slug: "vehicles", Description: "Cars, motorcycles and spare parts"},
	{Name: "Real Estate", Slug: "real-estate", Description: "Apartments, houses and land"},
	{Name: "Furniture", Slug: "furniture", Description: "Home and office furniture"},
	{Name: "Events", Slug: "events", Description: "Concerts, workshops and gatherings"},
	{Name: "Jobs", Slug: "jobs", Description: "Job offers and services"},
}

func main() {
	cfg := config.Load()
	database.Connect(cfg)
	database.Migrate()

	seeded := 0
	for _, category := range defaultCategories {
		var existing models.Category
		result := database.DB.Where("slug = ?", category.Slug).First(&existing)
		if result.Error == nil {
			continue
		}

		if err := database.DB.Create(&category).Error; err != nil {
			log.Fatal("Failed to create category:", err)
		}
		seeded++
	}
	log.Printf("Categories seeded: %d new, %d total", seeded, len(defaultCategories))
}
