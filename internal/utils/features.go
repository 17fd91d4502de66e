package utils

import (
	"strings"
	"unicode"
)

// featureSynonyms maps a requested feature to the phrasings that satisfy it
// in a listing's feature tags or description. Unlisted features match on
// their own text.
var featureSynonyms = map[string][]string{
	"backyard":             {"backyard", "yard", "outdoor space", "patio"},
	"pool":                 {"pool", "swimming pool", "swim"},
	"garage":               {"garage", "parking", "carport"},
	"updated kitchen":      {"updated kitchen", "renovated kitchen", "modern kitchen", "new kitchen"},
	"fireplace":            {"fireplace", "wood burning"},
	"hardwood floors":      {"hardwood", "wood floor"},
	"stainless appliances": {"stainless", "stainless steel appliances"},
	"master suite":         {"master suite", "primary suite"},
	"walk-in closet":       {"walk-in closet", "walkin closet"},
	"fenced yard":          {"fenced", "fence"},
}

// MatchesFeature reports whether a wanted feature is satisfied by the
// listing's feature tags or freeform description, via the synonym table.
func MatchesFeature(features []string, description, want string) bool {
	wantLower := strings.ToLower(strings.TrimSpace(want))
	if wantLower == "" {
		return false
	}

	haystack := strings.ToLower(strings.Join(features, " ") + " " + description)

	synonyms, ok := featureSynonyms[wantLower]
	if !ok {
		synonyms = []string{wantLower}
	}
	for _, syn := range synonyms {
		if strings.Contains(haystack, syn) {
			return true
		}
	}
	return false
}

// CapitalizeFeature upper-cases the first letter of a feature name for
// display ("garage" -> "Garage").
func CapitalizeFeature(feature string) string {
	trimmed := strings.TrimSpace(feature)
	if trimmed == "" {
		return trimmed
	}
	runes := []rune(trimmed)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// descriptionKeywords are the features worth surfacing when a listing ships
// with a prose description but no feature tags.
var descriptionKeywords = []string{
	"pool", "garage", "fireplace", "backyard", "basement",
	"deck", "patio", "garden", "renovated", "updated",
}

// DetectFeatures scans a freeform listing description for known feature
// keywords and returns them capitalized. Used when the listing source
// provides no structured feature list.
func DetectFeatures(description string) []string {
	if description == "" {
		return nil
	}
	descLower := strings.ToLower(description)

	var features []string
	for _, kw := range descriptionKeywords {
		if strings.Contains(descLower, kw) {
			features = append(features, CapitalizeFeature(kw))
		}
	}
	return features
}
