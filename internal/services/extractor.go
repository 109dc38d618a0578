package services

import (
	"regexp"
	"strconv"
	"strings"

	"gemora/internal/models"
)

// Extraction vocabularies. Scan order is fixed and is part of the contract:
// the first vocabulary entry found in the text wins.
var (
	defaultCategories = []string{
		"diamond", "emerald", "ruby", "sapphire", "pearl",
		"topaz", "coral", "opal", "garnet", "amethyst",
	}
	defaultColors = []string{
		"red", "blue", "green", "white", "yellow",
		"pink", "purple", "orange", "black", "golden",
	}
	defaultOccasions = []string{
		"wedding", "engagement", "anniversary", "birthday", "gift",
	}
)

// purposeKeywords is checked in this fixed order with LAST match winning.
// The order is arbitrary but preserved for compatibility with existing
// client behavior; "earring" deliberately follows "ring" so it overrides the
// substring hit.
var purposeKeywords = []struct {
	keyword string
	label   string
}{
	{"ring", "ring"},
	{"necklace", "necklace"},
	{"earring", "earrings"},
	{"investment", "investment"},
}

// Budget rules, tried in order; the first matching rule supplies the budget.
var (
	// A number within ~20 characters after a budget-related keyword.
	budgetKeywordRe = regexp.MustCompile(`(?i)\b(?:budget|price|cost|spend|afford|under|below|within)\b\D{0,20}?(\d[\d,]*(?:\.\d+)?)`)
	// A number directly after a currency symbol.
	currencySymbolRe = regexp.MustCompile(`[₹$€£]\s*(\d[\d,]*(?:\.\d+)?)`)
	// A number directly before a currency word.
	currencyWordRe = regexp.MustCompile(`(?i)(\d[\d,]*(?:\.\d+)?)\s*(?:rs|rupees|inr|dollars)\b`)
)

// Extractor is the pure parameter-extraction pass over free text. Given the
// same input it always produces byte-identical output: no randomness, no
// clock, no external state.
type Extractor struct {
	categories []string
	colors     []string
	occasions  []string
}

// NewExtractor creates an extractor, applying vocabulary overrides from the
// policy when present.
func NewExtractor(policy *models.AdvisorPolicy) *Extractor {
	e := &Extractor{
		categories: defaultCategories,
		colors:     defaultColors,
		occasions:  defaultOccasions,
	}
	if policy != nil {
		if len(policy.Categories) > 0 {
			e.categories = policy.Categories
		}
		if len(policy.Colors) > 0 {
			e.colors = policy.Colors
		}
		if len(policy.Occasions) > 0 {
			e.occasions = policy.Occasions
		}
	}
	return e
}

// Extract pulls the structured attribute set out of a free-text query.
// Total: it always returns a value, possibly all-empty.
func (e *Extractor) Extract(text string) models.ExtractedParameters {
	lowered := strings.ToLower(text)

	params := models.ExtractedParameters{
		Budget:   extractBudget(text),
		Category: firstMatch(lowered, e.categories),
		Color:    firstMatch(lowered, e.colors),
		Occasion: firstMatch(lowered, e.occasions),
	}

	for _, p := range purposeKeywords {
		if strings.Contains(lowered, p.keyword) {
			params.Purpose = p.label
		}
	}

	return params
}

// MentionsDomain reports whether the text touches the gemstone domain at
// all. Used by the prompt builder to decide between a clarifying question
// and a polite redirect.
func (e *Extractor) MentionsDomain(text string) bool {
	lowered := strings.ToLower(text)
	for _, term := range []string{"gem", "stone", "jewel"} {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return firstMatch(lowered, e.categories) != "" ||
		firstMatch(lowered, e.colors) != "" ||
		firstMatch(lowered, e.occasions) != ""
}

func firstMatch(lowered string, vocabulary []string) string {
	for _, term := range vocabulary {
		if strings.Contains(lowered, term) {
			return term
		}
	}
	return ""
}

// extractBudget returns the earliest numeric token in the text that any of
// the three budget rules accepts; rule order only breaks position ties.
func extractBudget(text string) float64 {
	bestPos := -1
	bestToken := ""

	for _, re := range []*regexp.Regexp{budgetKeywordRe, currencySymbolRe, currencyWordRe} {
		loc := re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		// loc[2]:loc[3] is the numeric capture group.
		if bestPos == -1 || loc[2] < bestPos {
			bestPos = loc[2]
			bestToken = text[loc[2]:loc[3]]
		}
	}

	if bestPos == -1 {
		return 0
	}
	return parseAmount(bestToken)
}

// parseAmount strips thousands separators before parsing.
func parseAmount(token string) float64 {
	cleaned := strings.ReplaceAll(token, ",", "")
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return amount
}
