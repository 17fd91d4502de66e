package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strivetech/homematch/internal/model"
)

func baseProperty(id string, price float64, bedrooms int) model.Property {
	return model.Property{
		ID:       id,
		Address:  id + " Test St",
		City:     "Denver",
		State:    "CO",
		Price:    price,
		Bedrooms: bedrooms,
	}
}

func TestRankHardFilters(t *testing.T) {
	m := NewMatcher(0)
	params := model.SearchParams{Location: "Denver", MaxPrice: 500000, MinBedrooms: 3}

	properties := []model.Property{
		baseProperty("over-budget", 500001, 4),
		baseProperty("too-few-beds", 400000, 2),
		baseProperty("eligible", 450000, 3),
	}

	matches := m.Rank(properties, params)

	require.Len(t, matches, 1)
	assert.Equal(t, "eligible", matches[0].Property.ID)
}

func TestRankAtBudgetBoundaryIsEligible(t *testing.T) {
	m := NewMatcher(0)
	params := model.SearchParams{Location: "Denver", MaxPrice: 500000, MinBedrooms: 2}

	matches := m.Rank([]model.Property{baseProperty("at-budget", 500000, 2)}, params)

	require.Len(t, matches, 1, "price exactly at maxPrice must pass the filter")
}

func TestRankCardinalityAndOrder(t *testing.T) {
	m := NewMatcher(0)
	params := model.SearchParams{Location: "Denver", MaxPrice: 600000, MinBedrooms: 2}

	var properties []model.Property
	for i := 0; i < 8; i++ {
		properties = append(properties, baseProperty(fmt.Sprintf("p%d", i), 400000+float64(i)*20000, 2+i%3))
	}

	matches := m.Rank(properties, params)

	assert.LessOrEqual(t, len(matches), 5)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].MatchScore, matches[i].MatchScore,
			"scores must be non-increasing")
	}
}

func TestRankIsPure(t *testing.T) {
	m := NewMatcher(0)
	params := model.SearchParams{
		Location: "Denver", MaxPrice: 600000, MinBedrooms: 3,
		MustHaveFeatures: []string{"pool", "garage"},
	}
	properties := []model.Property{
		baseProperty("a", 550000, 3),
		baseProperty("b", 480000, 4),
	}

	first := m.Rank(properties, params)
	second := m.Rank(properties, params)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].MatchScore, second[i].MatchScore)
	}
}

func TestRankSweetSpotBeatsNearBudget(t *testing.T) {
	m := NewMatcher(0)
	params := model.SearchParams{Location: "Denver", MaxPrice: 600000, MinBedrooms: 3}

	// X is 8.3% under budget (sweet spot), Y is 0.2% under.
	x := baseProperty("x", 550000, 3)
	y := baseProperty("y", 599000, 3)

	matches := m.Rank([]model.Property{y, x}, params)

	require.Len(t, matches, 2)
	assert.Equal(t, "x", matches[0].Property.ID, "sweet-spot listing must rank first")

	xOutcome := priceFit(x, params)
	yOutcome := priceFit(y, params)
	assert.Equal(t, 35.0, xOutcome.points)
	assert.Equal(t, 20.0, yOutcome.points)
}

func TestRankMustHaveNetAndMissing(t *testing.T) {
	m := NewMatcher(0)
	params := model.SearchParams{
		Location: "Denver", MaxPrice: 600000, MinBedrooms: 0,
		MustHaveFeatures: []string{"pool", "garage"},
	}

	p := baseProperty("d", 550000, 3)
	p.Description = "Gorgeous home with a sparkling pool and mature trees."

	outcome := mustHaveFeatures(p, params)
	assert.Equal(t, 5.0, outcome.points, "+15 for pool, -10 for garage")
	assert.Equal(t, []string{"Garage"}, outcome.missing)
	assert.Equal(t, []string{"Pool"}, outcome.reasons)

	matches := m.Rank([]model.Property{p}, params)
	require.Len(t, matches, 1)
	assert.Equal(t, []string{"Garage"}, matches[0].MissingFeatures)
}

func TestMustHaveCleanSweepBonus(t *testing.T) {
	params := model.SearchParams{MustHaveFeatures: []string{"pool", "garage"}}
	p := model.Property{Features: []string{"Pool", "2-car garage"}}

	outcome := mustHaveFeatures(p, params)
	assert.Equal(t, 40.0, outcome.points, "+15 each plus +10 clean-sweep bonus")
	assert.Empty(t, outcome.missing)
}

func TestPriceFitBands(t *testing.T) {
	params := model.SearchParams{MaxPrice: 100000}
	tests := []struct {
		price float64
		want  float64
	}{
		{90000, 35}, // 10% under, sweet spot
		{85000, 35}, // 15% under, inclusive edge
		{95000, 35}, // 5% under, inclusive edge
		{80000, 25}, // 20% under
		{99000, 20}, // 1% under
		{100000, 20},
	}
	for _, tt := range tests {
		got := priceFit(model.Property{Price: tt.price}, params)
		assert.Equal(t, tt.want, got.points, "price %v", tt.price)
	}
}

func TestBedroomFitBands(t *testing.T) {
	params := model.SearchParams{MinBedrooms: 3}
	assert.Equal(t, 25.0, bedroomFit(model.Property{Bedrooms: 3}, params).points)
	assert.Equal(t, 30.0, bedroomFit(model.Property{Bedrooms: 4}, params).points)
	assert.Equal(t, 20.0, bedroomFit(model.Property{Bedrooms: 5}, params).points)
	assert.Equal(t, 0.0, bedroomFit(model.Property{Bedrooms: 3}, model.SearchParams{}).points)
}

func TestBathroomFit(t *testing.T) {
	min := 2.0
	withMin := model.SearchParams{MinBathrooms: &min}

	assert.Equal(t, 15.0, bathroomFit(model.Property{Bathrooms: 2}, withMin).points)
	assert.Equal(t, 20.0, bathroomFit(model.Property{Bathrooms: 3}, withMin).points)
	assert.Equal(t, 0.0, bathroomFit(model.Property{Bathrooms: 1}, withMin).points)
	assert.Equal(t, 10.0, bathroomFit(model.Property{Bathrooms: 2}, model.SearchParams{}).points)
	assert.Equal(t, 0.0, bathroomFit(model.Property{Bathrooms: 1}, model.SearchParams{}).points)
}

func TestPropertyTypeFit(t *testing.T) {
	want := "single-family"
	params := model.SearchParams{PropertyType: &want}

	match := propertyTypeFit(model.Property{PropertyType: "Single Family"}, params)
	assert.Equal(t, 15.0, match.points)

	mismatch := propertyTypeFit(model.Property{PropertyType: "Condo"}, params)
	assert.Equal(t, -5.0, mismatch.points)

	anyType := "any"
	assert.Equal(t, 0.0,
		propertyTypeFit(model.Property{PropertyType: "Condo"}, model.SearchParams{PropertyType: &anyType}).points)
}

func TestScoreNeverNegative(t *testing.T) {
	m := NewMatcher(0)
	params := model.SearchParams{
		Location: "Denver", MaxPrice: 1000000, MinBedrooms: 0,
		MustHaveFeatures: []string{"pool", "garage", "fireplace", "backyard", "updated kitchen", "master suite", "walk-in closet"},
	}
	// Over baseline $/sqft, stale listing, no features: penalties pile up.
	p := model.Property{
		ID: "bleak", Price: 999999, Bedrooms: 1, Sqft: 1000, DaysOnMarket: 200,
	}

	matches := m.Rank([]model.Property{p}, params)
	require.Len(t, matches, 1)
	assert.GreaterOrEqual(t, matches[0].MatchScore, 0.0)
}

func TestRankOrdersNegativeRawScores(t *testing.T) {
	m := NewMatcher(0)
	params := model.SearchParams{
		Location: "Denver", MaxPrice: 1000000, MinBedrooms: 0,
		MustHaveFeatures: []string{"pool", "garage", "fireplace", "backyard", "updated kitchen"},
	}

	// Both end up with negative raw sums; the one missing fewer must-haves
	// is less bad and has to come out first even though both clamp to zero.
	worse := baseProperty("worse", 999999, 2)
	worse.DaysOnMarket = 45
	better := baseProperty("better", 999999, 2)
	better.DaysOnMarket = 45
	better.Features = []string{"Pool"}

	matches := m.Rank([]model.Property{worse, better}, params)

	require.Len(t, matches, 2)
	assert.Equal(t, "better", matches[0].Property.ID)
	assert.Equal(t, 0.0, matches[0].MatchScore)
	assert.Equal(t, 0.0, matches[1].MatchScore)
}

func TestRankReasonsCapped(t *testing.T) {
	m := NewMatcher(0)
	params := model.SearchParams{
		Location: "Denver", MaxPrice: 600000, MinBedrooms: 3,
		MustHaveFeatures:   []string{"pool", "garage", "fireplace"},
		NiceToHaveFeatures: []string{"backyard", "updated kitchen"},
	}
	p := baseProperty("loaded", 550000, 4)
	p.Features = []string{"Pool", "Garage", "Fireplace", "Backyard", "Updated kitchen"}
	p.DaysOnMarket = 2

	matches := m.Rank([]model.Property{p}, params)
	require.Len(t, matches, 1)
	assert.Len(t, matches[0].MatchReasons, 5)
}
