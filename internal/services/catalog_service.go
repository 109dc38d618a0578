package services

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"
	"time"

	"gemora/internal/database"
	"gemora/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// maxCandidates caps how many catalog matches the advisor surfaces.
const maxCandidates = 3

// catalogTimeout bounds every catalog lookup on the request path.
const catalogTimeout = 5 * time.Second

// CatalogLookup is the external catalog collaborator: query active items by
// extracted attributes, return ranked matches.
type CatalogLookup interface {
	FindActiveItems(ctx context.Context, filter models.CatalogFilter) ([]models.CandidateItem, error)
}

// MongoCatalog implements CatalogLookup against the gems collection.
type MongoCatalog struct {
	db *database.MongoDB
}

// NewMongoCatalog creates the MongoDB-backed catalog lookup.
func NewMongoCatalog(db *database.MongoDB) *MongoCatalog {
	return &MongoCatalog{db: db}
}

// FindActiveItems implements CatalogLookup. Ranking is trending first, then
// most recent; at most maxCandidates items are returned.
func (c *MongoCatalog) FindActiveItems(ctx context.Context, filter models.CatalogFilter) ([]models.CandidateItem, error) {
	clauses := []bson.M{{"active": true}}

	if filter.Category != "" {
		clauses = append(clauses, bson.M{"category": bson.M{
			"$regex":   "^" + regexp.QuoteMeta(filter.Category) + "$",
			"$options": "i",
		}})
	}

	if filter.PriceCeiling > 0 {
		// Inclusive policy: items with no price range set are never hidden
		// by a budget filter.
		clauses = append(clauses, bson.M{"$or": []bson.M{
			{"price_min": bson.M{"$lte": filter.PriceCeiling}},
			{"price_min": bson.M{"$exists": false}},
			{"price_min": 0},
		}})
	}

	if filter.ColorTerm != "" {
		pattern := regexp.QuoteMeta(filter.ColorTerm)
		clauses = append(clauses, bson.M{"$or": []bson.M{
			{"name": bson.M{"$regex": pattern, "$options": "i"}},
			{"category": bson.M{"$regex": pattern, "$options": "i"}},
			{"color": bson.M{"$regex": pattern, "$options": "i"}},
		}})
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "trending", Value: -1}, {Key: "created_at", Value: -1}}).
		SetLimit(maxCandidates)

	collection := c.db.Database().Collection(database.CollectionGems)
	cursor, err := collection.Find(ctx, bson.M{"$and": clauses}, opts)
	if err != nil {
		return nil, fmt.Errorf("gem query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var gems []models.Gem
	if err := cursor.All(ctx, &gems); err != nil {
		return nil, fmt.Errorf("gem decode failed: %w", err)
	}

	candidates := make([]models.CandidateItem, 0, len(gems))
	for _, gem := range gems {
		candidates = append(candidates, gem.ToCandidate())
	}
	return candidates, nil
}

// MemoryCatalog implements CatalogLookup over an in-memory gem list. It
// backs development mode (no MONGODB_URI) and tests, with the same filter
// semantics as MongoCatalog.
type MemoryCatalog struct {
	gems []models.Gem
}

// NewMemoryCatalog creates an in-memory catalog lookup.
func NewMemoryCatalog(gems []models.Gem) *MemoryCatalog {
	return &MemoryCatalog{gems: gems}
}

// FindActiveItems implements CatalogLookup.
func (c *MemoryCatalog) FindActiveItems(_ context.Context, filter models.CatalogFilter) ([]models.CandidateItem, error) {
	var matched []models.Gem
	for _, gem := range c.gems {
		if !gem.Active {
			continue
		}
		if filter.Category != "" && !strings.EqualFold(gem.Category, filter.Category) {
			continue
		}
		if filter.PriceCeiling > 0 && gem.PriceMin > 0 && gem.PriceMin > filter.PriceCeiling {
			continue
		}
		if filter.ColorTerm != "" && !gemMatchesColor(gem, filter.ColorTerm) {
			continue
		}
		matched = append(matched, gem)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Trending != matched[j].Trending {
			return matched[i].Trending
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if len(matched) > maxCandidates {
		matched = matched[:maxCandidates]
	}

	candidates := make([]models.CandidateItem, 0, len(matched))
	for _, gem := range matched {
		candidates = append(candidates, gem.ToCandidate())
	}
	return candidates, nil
}

func gemMatchesColor(gem models.Gem, term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(gem.Name), term) ||
		strings.Contains(strings.ToLower(gem.Category), term) ||
		strings.Contains(strings.ToLower(gem.Color), term)
}

// CatalogMatcher turns extracted parameters into a catalog query and returns
// ranked candidates. Lookup failures degrade to zero candidates; this path
// never surfaces an error to the caller.
type CatalogMatcher struct {
	lookup CatalogLookup
}

// NewCatalogMatcher creates a catalog matcher over a lookup collaborator.
func NewCatalogMatcher(lookup CatalogLookup) *CatalogMatcher {
	return &CatalogMatcher{lookup: lookup}
}

// FindCandidates queries the catalog with the extracted attributes. Returns
// nil when the query is under-specified, on lookup failure, or on timeout.
func (m *CatalogMatcher) FindCandidates(ctx context.Context, params models.ExtractedParameters) []models.CandidateItem {
	if !params.HasCatalogSignal() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, catalogTimeout)
	defer cancel()

	candidates, err := m.lookup.FindActiveItems(ctx, models.CatalogFilter{
		Category:     params.Category,
		PriceCeiling: params.Budget,
		ColorTerm:    params.Color,
	})
	if err != nil {
		log.Printf("⚠️  [CATALOG] Lookup failed, degrading to zero candidates: %v", err)
		return nil
	}

	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	return candidates
}
