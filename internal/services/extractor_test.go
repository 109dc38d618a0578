package services

import (
	"reflect"
	"testing"

	"gemora/internal/models"
)

func TestExtractor_Scenarios(t *testing.T) {
	extractor := NewExtractor(nil)

	tests := []struct {
		name string
		text string
		want models.ExtractedParameters
	}{
		{
			name: "budget category occasion",
			text: "What's a good ruby under 50000 for my wedding?",
			want: models.ExtractedParameters{Budget: 50000, Category: "ruby", Occasion: "wedding"},
		},
		{
			name: "color only",
			text: "I like blue stones",
			want: models.ExtractedParameters{Color: "blue"},
		},
		{
			name: "nothing extractable",
			text: "hello",
			want: models.ExtractedParameters{},
		},
		{
			name: "budget keyword with thousands separator",
			text: "my budget is 50,000 for an emerald",
			want: models.ExtractedParameters{Budget: 50000, Category: "emerald"},
		},
		{
			name: "currency symbol",
			text: "something around $1500 maybe",
			want: models.ExtractedParameters{Budget: 1500},
		},
		{
			name: "currency word",
			text: "I can pay 20000 rupees",
			want: models.ExtractedParameters{Budget: 20000},
		},
		{
			name: "bare number without budget context is ignored",
			text: "I saw 20000 reviews for sapphires",
			want: models.ExtractedParameters{Category: "sapphire"},
		},
		{
			name: "purpose keyword",
			text: "looking for a diamond necklace",
			want: models.ExtractedParameters{Category: "diamond", Purpose: "necklace"},
		},
		{
			name: "earring overrides its ring substring",
			text: "pearl earrings please",
			want: models.ExtractedParameters{Category: "pearl", Purpose: "earrings"},
		},
		{
			name: "last purpose keyword wins",
			text: "a ring, or maybe an investment",
			want: models.ExtractedParameters{Purpose: "investment"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractor.Extract(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractor_FirstVocabularyMatchWins(t *testing.T) {
	extractor := NewExtractor(nil)

	// Both diamond and ruby appear; diamond precedes ruby in scan order.
	got := extractor.Extract("ruby or diamond, not sure")
	if got.Category != "diamond" {
		t.Errorf("Expected scan-order winner diamond, got %q", got.Category)
	}
}

func TestExtractor_Deterministic(t *testing.T) {
	extractor := NewExtractor(nil)
	text := "blue sapphire ring under 30,000 rs for an anniversary gift"

	first := extractor.Extract(text)
	for i := 0; i < 10; i++ {
		if got := extractor.Extract(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("Extraction not deterministic: %+v vs %+v", got, first)
		}
	}
}

func TestExtractor_PolicyOverridesVocabulary(t *testing.T) {
	extractor := NewExtractor(&models.AdvisorPolicy{
		Categories: []string{"moonstone"},
	})

	got := extractor.Extract("a moonstone, not a ruby")
	if got.Category != "moonstone" {
		t.Errorf("Expected policy category moonstone, got %q", got.Category)
	}
}

func TestExtractor_MentionsDomain(t *testing.T) {
	extractor := NewExtractor(nil)

	tests := []struct {
		text string
		want bool
	}{
		{"tell me about gemstones", true},
		{"ruby for my wife", true},
		{"I like blue", true},
		{"what's the weather today", false},
	}

	for _, tt := range tests {
		if got := extractor.MentionsDomain(tt.text); got != tt.want {
			t.Errorf("MentionsDomain(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
