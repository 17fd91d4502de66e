package service

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/strivetech/homematch/internal/model"
)

// Fallback extraction patterns. The price pattern requires a $ prefix or a
// k/M suffix so bedroom counts ("3 bed") never parse as budgets.
var (
	dollarPricePattern = regexp.MustCompile(`\$\s?([\d,]+(?:\.\d+)?)\s*([kKmM])?`)
	suffixPricePattern = regexp.MustCompile(`\b([\d,]+(?:\.\d+)?)\s*([kKmM])\b`)
	bedroomPattern     = regexp.MustCompile(`(?i)(\d+)\s*(?:\+\s*)?(?:bed(?:room)?s?|br|bd)\b`)
	bathroomPattern    = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:\+\s*)?(?:bath(?:room)?s?|ba)\b`)
	emailPattern       = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
	phonePattern       = regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
)

// fallbackFeatures are the feature keywords the regex path recognizes. Each
// entry maps the canonical name to the phrasings that trigger it.
var fallbackFeatures = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"pool", regexp.MustCompile(`(?i)\bpool\b`)},
	{"backyard", regexp.MustCompile(`(?i)\b(?:backyard|yard)\b`)},
	{"garage", regexp.MustCompile(`(?i)\bgarage\b`)},
	{"fireplace", regexp.MustCompile(`(?i)\bfireplace\b`)},
}

// FallbackExtract is the deterministic regex extraction path used when the
// LLM call fails or returns nothing usable. Pure function of the message.
func FallbackExtract(message string) model.ExtractionResult {
	result := model.ExtractionResult{Source: model.SourceFallback}
	var fields []string

	if price, ok := parsePrice(message); ok {
		result.Preferences.MaxPrice = &price
		fields = append(fields, "maxPrice")
	}

	if m := bedroomPattern.FindStringSubmatch(message); m != nil {
		if beds, err := strconv.Atoi(m[1]); err == nil && beds > 0 {
			result.Preferences.MinBedrooms = &beds
			fields = append(fields, "minBedrooms")
		}
	}

	if m := bathroomPattern.FindStringSubmatch(message); m != nil {
		if baths, err := strconv.ParseFloat(m[1], 64); err == nil && baths > 0 {
			result.Preferences.MinBathrooms = &baths
			fields = append(fields, "minBathrooms")
		}
	}

	var features []string
	for _, f := range fallbackFeatures {
		if f.pattern.MatchString(message) {
			features = append(features, f.name)
		}
	}
	if len(features) > 0 {
		result.Preferences.MustHaveFeatures = features
		fields = append(fields, "mustHaveFeatures")
	}

	if propType, ok := detectPropertyType(message); ok {
		result.Preferences.PropertyType = &propType
		fields = append(fields, "propertyType")
	}

	if m := emailPattern.FindString(message); m != "" {
		result.Contact.Email = &m
		fields = append(fields, "email")
	}
	if m := phonePattern.FindString(message); m != "" {
		result.Contact.Phone = &m
		fields = append(fields, "phone")
	}

	result.ExtractedFields = fields
	if len(fields) > 0 {
		result.Confidence = 0.6
	} else {
		result.Confidence = 0.3
	}
	return result
}

// parsePrice finds a budget mention and scales shorthand: "$600k" -> 600000,
// "$1.2M" -> 1200000, "$600,000" -> 600000.
func parsePrice(message string) (float64, bool) {
	m := dollarPricePattern.FindStringSubmatch(message)
	if m == nil {
		m = suffixPricePattern.FindStringSubmatch(message)
	}
	if m == nil {
		return 0, false
	}

	raw := strings.ReplaceAll(m[1], ",", "")
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value <= 0 {
		return 0, false
	}

	switch strings.ToLower(m[2]) {
	case "k":
		value *= 1_000
	case "m":
		value *= 1_000_000
	default:
		// "$600" almost certainly means $600k in a home-buying chat.
		if value < 10_000 {
			value *= 1_000
		}
	}
	return value, true
}

// detectPropertyType maps colloquial terms to the canonical type enum.
func detectPropertyType(message string) (model.PropertyType, bool) {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "townhouse") || strings.Contains(lower, "townhome"):
		return model.PropertyTypeTownhouse, true
	case strings.Contains(lower, "condo") || strings.Contains(lower, "apartment"):
		return model.PropertyTypeCondo, true
	case strings.Contains(lower, "house") || strings.Contains(lower, "home"):
		return model.PropertyTypeSingleFamily, true
	}
	return "", false
}
