package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Gem is a catalog document as stored in MongoDB. The advisor only reads
// gems; their CRUD lifecycle belongs to the storefront admin surface.
type Gem struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Category    string             `bson:"category" json:"category"`
	Color       string             `bson:"color,omitempty" json:"color,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	PriceMin    float64            `bson:"price_min,omitempty" json:"price_min,omitempty"`
	PriceMax    float64            `bson:"price_max,omitempty" json:"price_max,omitempty"`
	Active      bool               `bson:"active" json:"active"`
	Trending    bool               `bson:"trending" json:"trending"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// ToCandidate projects a gem into the shape the advisor hands to callers.
func (g Gem) ToCandidate() CandidateItem {
	return CandidateItem{
		ID:          g.ID.Hex(),
		DisplayName: g.Name,
		Category:    g.Category,
		PriceMin:    g.PriceMin,
		PriceMax:    g.PriceMax,
	}
}
