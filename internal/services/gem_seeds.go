package services

import (
	"time"

	"gemora/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SeedGems returns a small built-in catalog used when no MongoDB is
// configured, so the advisor runs end-to-end in development.
func SeedGems() []models.Gem {
	now := time.Now()
	return []models.Gem{
		{
			ID:        primitive.NewObjectID(),
			Name:      "Classic Burmese Ruby",
			Category:  "ruby",
			Color:     "red",
			PriceMin:  45000,
			PriceMax:  90000,
			Active:    true,
			Trending:  true,
			CreatedAt: now.Add(-24 * time.Hour),
		},
		{
			ID:        primitive.NewObjectID(),
			Name:      "Colombian Emerald Oval",
			Category:  "emerald",
			Color:     "green",
			PriceMin:  18000,
			PriceMax:  35000,
			Active:    true,
			Trending:  true,
			CreatedAt: now.Add(-48 * time.Hour),
		},
		{
			ID:        primitive.NewObjectID(),
			Name:      "Ceylon Blue Sapphire",
			Category:  "sapphire",
			Color:     "blue",
			PriceMin:  25000,
			PriceMax:  60000,
			Active:    true,
			CreatedAt: now.Add(-72 * time.Hour),
		},
		{
			ID:        primitive.NewObjectID(),
			Name:      "Freshwater Pearl Strand",
			Category:  "pearl",
			Color:     "white",
			PriceMin:  8000,
			PriceMax:  15000,
			Active:    true,
			CreatedAt: now.Add(-96 * time.Hour),
		},
		{
			ID:        primitive.NewObjectID(),
			Name:      "Estate Opal, uncertified",
			Category:  "opal",
			Color:     "white",
			Active:    true,
			CreatedAt: now.Add(-120 * time.Hour),
		},
	}
}
