package models

// AdvisorPolicy is the optional advisor.yaml policy file. Every field
// overrides a built-in default when non-empty; an absent file means
// defaults everywhere.
type AdvisorPolicy struct {
	// Extra deny-list patterns appended to the built-in content filter.
	DenyPatterns []string `yaml:"deny_patterns"`

	// Extraction vocabularies. Order matters: first match wins.
	Categories []string `yaml:"categories"`
	Colors     []string `yaml:"colors"`
	Occasions  []string `yaml:"occasions"`
}
