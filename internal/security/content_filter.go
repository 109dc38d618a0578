package security

import (
	"strings"
)

// denyPatterns contains substrings that mark a query as malicious or abusive.
// Matching is case-insensitive. The list covers script-injection markers,
// attack terminology, and profanity; deployments can append to it via the
// advisor policy file.
var denyPatterns = []string{
	// script / markup injection
	"<script",
	"</script",
	"javascript:",
	"onerror=",
	"onload=",
	"eval(",
	"document.cookie",

	// SQL / command injection probes
	"drop table",
	"union select",
	"'; --",
	"1=1 --",
	"$(",
	"`rm ",

	// attack terminology
	"hack",
	"exploit",
	"injection",
	"malware",
	"phishing",

	// abuse
	"fuck",
	"shit",
	"bitch",
	"bastard",
}

// ContentFilter rejects queries that match a fixed deny-list of malicious or
// abusive patterns. It runs before any quota is consumed.
type ContentFilter struct {
	patterns []string
}

// NewContentFilter creates a content filter with the built-in deny-list plus
// any extra patterns from the policy file.
func NewContentFilter(extra ...string) *ContentFilter {
	patterns := make([]string, 0, len(denyPatterns)+len(extra))
	patterns = append(patterns, denyPatterns...)
	for _, p := range extra {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			patterns = append(patterns, p)
		}
	}
	return &ContentFilter{patterns: patterns}
}

// Rejects reports whether the text matches the deny-list, and the pattern
// that matched (for operator logs only; never exposed to callers).
func (f *ContentFilter) Rejects(text string) (bool, string) {
	lowered := strings.ToLower(text)
	for _, p := range f.patterns {
		if strings.Contains(lowered, p) {
			return true, p
		}
	}
	return false, ""
}
