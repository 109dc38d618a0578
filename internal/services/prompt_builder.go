package services

import (
	"fmt"
	"strings"

	"gemora/internal/models"
)

// missingDetailOrder is the fixed priority in which the clarifying branch
// asks for details the customer has not yet supplied.
var missingDetailOrder = []string{"name", "occasion or date", "budget", "purpose", "color preference"}

// PromptBuilder constructs the single constrained prompt handed to the
// upstream generator. Pure and total: same inputs, same prompt, every call.
type PromptBuilder struct {
	extractor *Extractor
}

// NewPromptBuilder creates a prompt builder sharing the advisor's extractor
// vocabularies for its off-topic judgment.
func NewPromptBuilder(extractor *Extractor) *PromptBuilder {
	return &PromptBuilder{extractor: extractor}
}

// Build produces the generation prompt. With candidates it instructs the
// generator to present them; without, to ask a clarifying question or
// redirect off-topic input. Both branches embed the literal original text
// and demand a single line of at most ~40 words.
func (b *PromptBuilder) Build(originalText string, params models.ExtractedParameters, candidates []models.CandidateItem) string {
	if len(candidates) > 0 {
		return b.buildSuggestionPrompt(originalText, candidates)
	}
	return b.buildClarifyPrompt(originalText, params)
}

func (b *PromptBuilder) buildSuggestionPrompt(originalText string, candidates []models.CandidateItem) string {
	var list strings.Builder
	for i, c := range candidates {
		fmt.Fprintf(&list, "%d. %s (%s) - %s\n", i+1, c.DisplayName, c.Category, c.PriceDisplay())
	}

	return fmt.Sprintf(
		"You are a gemstone shopping advisor for an online store.\n"+
			"The customer said: %q\n\n"+
			"These catalog items match their request:\n%s\n"+
			"Respond with exactly one line of at most 40 words. Name each item above, "+
			"mention its price, and invite the customer to take a closer look at them.",
		originalText, list.String())
}

func (b *PromptBuilder) buildClarifyPrompt(originalText string, params models.ExtractedParameters) string {
	if params.IsEmpty() && !b.extractor.MentionsDomain(originalText) {
		// Off-topic input is redirected, not rejected.
		return fmt.Sprintf(
			"You are a gemstone shopping advisor for an online store.\n"+
				"The customer said: %q\n\n"+
				"Their message is not about gemstones. Respond with exactly one line of at "+
				"most 40 words that politely steers the conversation to gemstone jewelry "+
				"and asks what they are looking for.",
			originalText)
	}

	missing := missingDetails(params)

	return fmt.Sprintf(
		"You are a gemstone shopping advisor for an online store.\n"+
			"The customer said: %q\n\n"+
			"You still need these details, in order of importance: %s.\n"+
			"Respond with exactly one line of at most 40 words asking for the most "+
			"important missing detail.",
		originalText, strings.Join(missing, ", "))
}

// missingDetails lists the not-yet-supplied details in fixed priority order.
// The customer's name is never extracted by this stateless gateway, so it is
// always listed first.
func missingDetails(params models.ExtractedParameters) []string {
	missing := make([]string, 0, len(missingDetailOrder))
	for _, detail := range missingDetailOrder {
		switch detail {
		case "occasion or date":
			if params.Occasion != "" {
				continue
			}
		case "budget":
			if params.HasBudget() {
				continue
			}
		case "purpose":
			if params.Purpose != "" {
				continue
			}
		case "color preference":
			if params.Color != "" {
				continue
			}
		}
		missing = append(missing, detail)
	}
	return missing
}
