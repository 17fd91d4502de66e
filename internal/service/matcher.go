package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/strivetech/homematch/internal/model"
	"github.com/strivetech/homematch/internal/utils"
)

const (
	maxMatches    = 5
	maxReasons    = 5
	defaultPPSQFT = 200.0
)

// ruleOutcome is one scoring rule's contribution to a candidate.
type ruleOutcome struct {
	points  float64
	reasons []string
	missing []string
}

// ruleFunc scores one aspect of a candidate against the search parameters.
// Rules are independent; the total is their sum.
type ruleFunc func(p model.Property, params model.SearchParams) ruleOutcome

// Matcher ranks listings against accumulated preferences using a fixed rule
// list. Scoring is pure: identical inputs always produce identical scores.
type Matcher struct {
	ppsqftBaseline float64
	rules          []ruleFunc
}

// NewMatcher creates a matcher. baseline is the market price per square foot
// reference; pass 0 for the default.
func NewMatcher(baseline float64) *Matcher {
	if baseline <= 0 {
		baseline = defaultPPSQFT
	}
	m := &Matcher{ppsqftBaseline: baseline}
	m.rules = []ruleFunc{
		priceFit,
		bedroomFit,
		bathroomFit,
		mustHaveFeatures,
		niceToHaveFeatures,
		propertyTypeFit,
		daysOnMarketFit,
		propertyAgeFit,
		schoolFit,
		m.pricePerSqftFit,
		lotSizeFit,
	}
	return m
}

// Rank scores every candidate and returns at most 5 matches, best first.
// Candidates over budget or under the bedroom minimum are excluded outright.
// Ties keep input order.
func (m *Matcher) Rank(properties []model.Property, params model.SearchParams) []model.PropertyMatch {
	matches := make([]model.PropertyMatch, 0, len(properties))

	for _, p := range properties {
		if p.Price > params.MaxPrice {
			continue
		}
		if p.Bedrooms < params.MinBedrooms {
			continue
		}

		var score float64
		var reasons, missing []string
		for _, rule := range m.rules {
			outcome := rule(p, params)
			score += outcome.points
			reasons = append(reasons, outcome.reasons...)
			missing = append(missing, outcome.missing...)
		}

		if len(reasons) > maxReasons {
			reasons = reasons[:maxReasons]
		}

		matches = append(matches, model.PropertyMatch{
			Property:        p,
			MatchScore:      score,
			MatchReasons:    reasons,
			MissingFeatures: missing,
		})
	}

	// Sort on the raw sum so negative scores keep their relative order,
	// then clamp the returned values.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})
	if len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}
	for i := range matches {
		if matches[i].MatchScore < 0 {
			matches[i].MatchScore = 0
		}
	}
	return matches
}

// priceFit rewards how far under budget the listing sits. The sweet spot is
// 5-15% under: enough savings to matter without signaling a problem listing.
func priceFit(p model.Property, params model.SearchParams) ruleOutcome {
	if params.MaxPrice <= 0 {
		return ruleOutcome{}
	}
	pctUnder := (params.MaxPrice - p.Price) / params.MaxPrice * 100

	switch {
	case pctUnder >= 5 && pctUnder <= 15:
		return ruleOutcome{points: 35, reasons: []string{
			fmt.Sprintf("Great value, %.0f%% under budget", pctUnder),
		}}
	case pctUnder > 15:
		return ruleOutcome{points: 25, reasons: []string{"Well under budget"}}
	default:
		return ruleOutcome{points: 20, reasons: []string{"Within your budget"}}
	}
}

// bedroomFit prefers exactly one spare bedroom over an exact match; more
// than one spare scores lower, signaling upkeep beyond the stated need.
func bedroomFit(p model.Property, params model.SearchParams) ruleOutcome {
	if params.MinBedrooms <= 0 {
		return ruleOutcome{}
	}
	switch extra := p.Bedrooms - params.MinBedrooms; {
	case extra == 0:
		return ruleOutcome{points: 25, reasons: []string{
			fmt.Sprintf("%d bedrooms as requested", p.Bedrooms),
		}}
	case extra == 1:
		return ruleOutcome{points: 30, reasons: []string{
			fmt.Sprintf("Extra bedroom (%d total)", p.Bedrooms),
		}}
	default:
		return ruleOutcome{points: 20, reasons: []string{
			fmt.Sprintf("%d bedrooms", p.Bedrooms),
		}}
	}
}

func bathroomFit(p model.Property, params model.SearchParams) ruleOutcome {
	if params.MinBathrooms == nil || *params.MinBathrooms <= 0 {
		if p.Bathrooms >= 2 {
			return ruleOutcome{points: 10, reasons: []string{"Multiple bathrooms"}}
		}
		return ruleOutcome{}
	}
	if p.Bathrooms < *params.MinBathrooms {
		return ruleOutcome{}
	}
	outcome := ruleOutcome{points: 15}
	if p.Bathrooms > *params.MinBathrooms {
		outcome.points += 5
		outcome.reasons = []string{fmt.Sprintf("%g bathrooms", p.Bathrooms)}
	}
	return outcome
}

// mustHaveFeatures is the only rule that can report missing features. A
// clean sweep across a non-empty list earns a bonus.
func mustHaveFeatures(p model.Property, params model.SearchParams) ruleOutcome {
	if len(params.MustHaveFeatures) == 0 {
		return ruleOutcome{}
	}

	var outcome ruleOutcome
	for _, feature := range params.MustHaveFeatures {
		if utils.MatchesFeature(p.Features, p.Description, feature) {
			outcome.points += 15
			outcome.reasons = append(outcome.reasons, utils.CapitalizeFeature(feature))
		} else {
			outcome.points -= 10
			outcome.missing = append(outcome.missing, utils.CapitalizeFeature(feature))
		}
	}
	if len(outcome.missing) == 0 {
		outcome.points += 10
		outcome.reasons = append(outcome.reasons, "All must-have features present")
	}
	return outcome
}

func niceToHaveFeatures(p model.Property, params model.SearchParams) ruleOutcome {
	var outcome ruleOutcome
	for _, feature := range params.NiceToHaveFeatures {
		if utils.MatchesFeature(p.Features, p.Description, feature) {
			outcome.points += 5
			outcome.reasons = append(outcome.reasons, utils.CapitalizeFeature(feature))
		}
	}
	return outcome
}

func propertyTypeFit(p model.Property, params model.SearchParams) ruleOutcome {
	if params.PropertyType == nil || *params.PropertyType == "" || *params.PropertyType == "any" {
		return ruleOutcome{}
	}
	wanted := normalizeTypeName(*params.PropertyType)
	actual := normalizeTypeName(p.PropertyType)
	if actual == "" {
		return ruleOutcome{}
	}
	if strings.Contains(actual, wanted) || strings.Contains(wanted, actual) {
		return ruleOutcome{points: 15, reasons: []string{
			utils.CapitalizeFeature(*params.PropertyType) + " as requested",
		}}
	}
	return ruleOutcome{points: -5}
}

// normalizeTypeName lowercases and drops hyphens so "single-family" matches
// a listing tagged "Single Family".
func normalizeTypeName(t string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(t)), "-", " ")
}

func daysOnMarketFit(p model.Property, _ model.SearchParams) ruleOutcome {
	switch {
	case p.DaysOnMarket <= 3:
		return ruleOutcome{points: 15, reasons: []string{"Just listed"}}
	case p.DaysOnMarket <= 7:
		return ruleOutcome{points: 10, reasons: []string{"Listed this week"}}
	case p.DaysOnMarket <= 30:
		return ruleOutcome{points: 5, reasons: []string{"Recently listed"}}
	case p.DaysOnMarket > 90:
		return ruleOutcome{points: -5}
	}
	return ruleOutcome{}
}

func propertyAgeFit(p model.Property, _ model.SearchParams) ruleOutcome {
	if p.YearBuilt == nil {
		return ruleOutcome{}
	}
	switch age := time.Now().Year() - *p.YearBuilt; {
	case age <= 5:
		return ruleOutcome{points: 10, reasons: []string{"Newer construction"}}
	case age <= 15:
		return ruleOutcome{points: 7, reasons: []string{"Modern construction"}}
	case age <= 30:
		return ruleOutcome{points: 3}
	case age > 50:
		return ruleOutcome{points: -3}
	}
	return ruleOutcome{}
}

func schoolFit(p model.Property, _ model.SearchParams) ruleOutcome {
	if p.Schools == nil {
		return ruleOutcome{}
	}
	avg := float64(p.Schools.Elementary+p.Schools.Middle+p.Schools.High) / 3

	switch {
	case avg >= 9:
		return ruleOutcome{points: 15, reasons: []string{"Top-rated schools nearby"}}
	case avg >= 8:
		return ruleOutcome{points: 12, reasons: []string{"Excellent schools nearby"}}
	case avg >= 7:
		return ruleOutcome{points: 8, reasons: []string{"Good schools nearby"}}
	case avg >= 6:
		return ruleOutcome{points: 4}
	}
	return ruleOutcome{}
}

func (m *Matcher) pricePerSqftFit(p model.Property, _ model.SearchParams) ruleOutcome {
	if p.Sqft <= 0 {
		return ruleOutcome{}
	}
	ppsqft := p.Price / float64(p.Sqft)

	switch {
	case ppsqft < m.ppsqftBaseline*0.75:
		return ruleOutcome{points: 10, reasons: []string{"Excellent price per square foot"}}
	case ppsqft < m.ppsqftBaseline*0.9:
		return ruleOutcome{points: 7, reasons: []string{"Good price per square foot"}}
	case ppsqft > m.ppsqftBaseline*1.2:
		return ruleOutcome{points: -5}
	}
	return ruleOutcome{}
}

func lotSizeFit(p model.Property, _ model.SearchParams) ruleOutcome {
	if p.LotSize != nil && *p.LotSize > 10000 {
		return ruleOutcome{points: 5, reasons: []string{"Large lot"}}
	}
	return ruleOutcome{}
}
