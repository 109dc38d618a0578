package models

import "testing"

func TestCandidateItem_PriceDisplay(t *testing.T) {
	tests := []struct {
		name string
		item CandidateItem
		want string
	}{
		{"full range", CandidateItem{PriceMin: 45000, PriceMax: 90000}, "₹45000 - ₹90000"},
		{"minimum only", CandidateItem{PriceMin: 12000}, "₹12000+"},
		{"unpriced", CandidateItem{}, "price on request"},
		{"max without min", CandidateItem{PriceMax: 5000}, "price on request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.PriceDisplay(); got != tt.want {
				t.Errorf("PriceDisplay() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractedParameters_Predicates(t *testing.T) {
	tests := []struct {
		name      string
		params    ExtractedParameters
		hasSignal bool
		isEmpty   bool
	}{
		{"empty", ExtractedParameters{}, false, true},
		{"budget only", ExtractedParameters{Budget: 20000}, true, false},
		{"category only", ExtractedParameters{Category: "ruby"}, true, false},
		{"color only", ExtractedParameters{Color: "blue"}, true, false},
		{"occasion only", ExtractedParameters{Occasion: "wedding"}, false, false},
		{"purpose only", ExtractedParameters{Purpose: "investment"}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.params.HasCatalogSignal(); got != tt.hasSignal {
				t.Errorf("HasCatalogSignal() = %v, want %v", got, tt.hasSignal)
			}
			if got := tt.params.IsEmpty(); got != tt.isEmpty {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.isEmpty)
			}
		})
	}
}
