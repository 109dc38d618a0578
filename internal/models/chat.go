package models

import "fmt"

// TopicGemstoneRecommendation is the only topic the advisor gateway accepts.
const TopicGemstoneRecommendation = "gemstone_recommendation"

// ChatRequest is the body of POST /api/advisor/chat
type ChatRequest struct {
	Message string `json:"message"`
	Topic   string `json:"topic"`
}

// ChatResult is the advisor's answer to a single chat request
type ChatResult struct {
	Response        string          `json:"response"`
	Candidates      []CandidateItem `json:"candidates"`
	ServedFromCache bool            `json:"served_from_cache"`
}

// CandidateItem is a read-only projection of a catalog gem surfaced as a
// suggestion. The advisor never mutates these; they are owned by the catalog.
type CandidateItem struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Category    string  `json:"category"`
	PriceMin    float64 `json:"price_min,omitempty"`
	PriceMax    float64 `json:"price_max,omitempty"`
}

// PriceDisplay renders the price range for prompts and UI:
// "min - max" when both bounds are set, "min+" when only the minimum is set,
// and "price on request" for unpriced items.
func (c CandidateItem) PriceDisplay() string {
	switch {
	case c.PriceMin > 0 && c.PriceMax > 0:
		return fmt.Sprintf("₹%.0f - ₹%.0f", c.PriceMin, c.PriceMax)
	case c.PriceMin > 0:
		return fmt.Sprintf("₹%.0f+", c.PriceMin)
	default:
		return "price on request"
	}
}

// ExtractedParameters is the structured attribute set pulled from a free-text
// query. Zero values mean "not supplied"; an all-zero value is a valid
// under-specified query.
type ExtractedParameters struct {
	Budget   float64
	Category string
	Color    string
	Occasion string
	Purpose  string
}

// HasBudget reports whether a budget was extracted.
func (p ExtractedParameters) HasBudget() bool {
	return p.Budget > 0
}

// HasCatalogSignal reports whether the query carries enough to build a catalog
// filter. Under-specified queries never touch the catalog.
func (p ExtractedParameters) HasCatalogSignal() bool {
	return p.HasBudget() || p.Category != "" || p.Color != ""
}

// IsEmpty reports whether nothing at all was extracted.
func (p ExtractedParameters) IsEmpty() bool {
	return !p.HasBudget() && p.Category == "" && p.Color == "" && p.Occasion == "" && p.Purpose == ""
}

// CatalogFilter is the query handed to the catalog lookup collaborator.
// PriceCeiling uses inclusive-or-unpriced semantics: items with no price set
// are never excluded by a budget filter.
type CatalogFilter struct {
	Category     string
	PriceCeiling float64
	ColorTerm    string
}

// GenerateOptions constrains a single upstream generation call.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
	Stop        []string
}
