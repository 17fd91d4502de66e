package rentcast

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strivetech/homematch/internal/model"
)

const sampleListings = `[
	{
		"id": "123-Main-St-Denver-CO-80202",
		"formattedAddress": "123 Main St, Denver, CO 80202",
		"addressLine1": "123 Main St",
		"city": "Denver",
		"state": "CO",
		"zipCode": "80202",
		"price": 550000,
		"bedrooms": 3,
		"bathrooms": 2,
		"squareFootage": 1800,
		"lotSize": 6000,
		"propertyType": "Single Family",
		"yearBuilt": 2015,
		"description": "Updated home with a pool and two-car garage.",
		"photos": [
			{"href": "https://img.example.com/1.jpg"},
			{"url": "https://img.example.com/2.jpg"}
		],
		"listedDate": "2026-08-20T00:00:00Z",
		"daysOnMarket": 12,
		"mlsNumber": "REC123",
		"schools": {
			"elementary": {"rating": 9},
			"middle": {"rating": 8},
			"high": {"rating": 7}
		}
	},
	{
		"id": "456-Oak-Ave-Denver-CO-80203",
		"formattedAddress": "456 Oak Ave, Denver, CO 80203",
		"city": "Denver",
		"state": "CO",
		"zipCode": "80203",
		"price": 480000,
		"bedrooms": 2,
		"bathrooms": 1,
		"squareFootage": 1100,
		"propertyType": "Condo",
		"features": ["Balcony", "Gym"],
		"photos": ["https://img.example.com/3.jpg"],
		"listedDate": "2026-08-28T00:00:00Z"
	}
]`

func newTestServer(t *testing.T, hits *int32, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestSearchNormalizesListings(t *testing.T) {
	var hits int32
	srv := newTestServer(t, &hits, http.StatusOK, sampleListings)
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	properties, err := client.Search(context.Background(), model.SearchParams{
		Location: "Denver, CO", MaxPrice: 600000, MinBedrooms: 2,
	})
	require.NoError(t, err)
	require.Len(t, properties, 2)

	first := properties[0]
	assert.Equal(t, "123 Main St", first.Address)
	assert.Equal(t, 550000.0, first.Price)
	assert.Equal(t, 12, first.DaysOnMarket)
	require.NotNil(t, first.YearBuilt)
	assert.Equal(t, 2015, *first.YearBuilt)
	require.NotNil(t, first.MLSID)
	assert.Equal(t, "REC123", *first.MLSID)
	// No feature tags in source, so they come from the description.
	assert.Contains(t, first.Features, "Pool")
	assert.Contains(t, first.Features, "Garage")
	assert.Equal(t, []string{"https://img.example.com/1.jpg", "https://img.example.com/2.jpg"}, first.Images)
	require.NotNil(t, first.Schools)
	assert.Equal(t, 9, first.Schools.Elementary)
	assert.Equal(t, 8, first.Schools.Middle)
	assert.Equal(t, 7, first.Schools.High)

	second := properties[1]
	assert.Equal(t, "456 Oak Ave, Denver, CO 80203", second.Address)
	assert.Equal(t, []string{"Balcony", "Gym"}, second.Features)
	assert.Equal(t, []string{"https://img.example.com/3.jpg"}, second.Images)
	assert.Nil(t, second.Schools)
	assert.Greater(t, second.DaysOnMarket, 0, "days on market should be derived from list date")
}

func TestSearchCachesResults(t *testing.T) {
	var hits int32
	srv := newTestServer(t, &hits, http.StatusOK, sampleListings)
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	params := model.SearchParams{Location: "Denver, CO", MaxPrice: 600000, MinBedrooms: 2}

	_, err := client.Search(context.Background(), params)
	require.NoError(t, err)
	_, err = client.Search(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "second search should be served from cache")
}

func TestSearchCacheExpiry(t *testing.T) {
	var hits int32
	srv := newTestServer(t, &hits, http.StatusOK, sampleListings)
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithCacheTTL(10*time.Millisecond))
	params := model.SearchParams{Location: "Denver, CO", MaxPrice: 600000, MinBedrooms: 2}

	_, err := client.Search(context.Background(), params)
	require.NoError(t, err)
	time.Sleep(25 * time.Millisecond)
	_, err = client.Search(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&hits), "expired cache entry should refetch")
}

func TestSearchUpstreamErrorIsOpaque(t *testing.T) {
	var hits int32
	srv := newTestServer(t, &hits, http.StatusInternalServerError, `{"error":"boom"}`)
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.Search(context.Background(), model.SearchParams{
		Location: "Denver", MaxPrice: 500000,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrListingFetch))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "no retry on upstream failure")
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name     string
		location string
		city     string
		state    string
		zip      string
	}{
		{"Zip only", "80202", "", "", "80202"},
		{"City only", "Denver", "Denver", "", ""},
		{"City and state", "Denver, CO", "Denver", "CO", ""},
		{"City state zip", "Denver, CO, 80202", "Denver", "CO", "80202"},
		{"Space separated", "Denver CO", "Denver", "CO", ""},
		{"Space separated with zip", "Nashville TN 37209", "Nashville", "TN", "37209"},
		{"Whitespace", "  Austin ,  TX ", "Austin", "TX", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			city, state, zip := parseLocation(tt.location)
			assert.Equal(t, tt.city, city)
			assert.Equal(t, tt.state, state)
			assert.Equal(t, tt.zip, zip)
		})
	}
}

func TestBuildQuery(t *testing.T) {
	baths := 2.0
	propType := "condo"
	q := buildQuery(model.SearchParams{
		Location:     "Denver, CO",
		MaxPrice:     600000,
		MinBedrooms:  3,
		MinBathrooms: &baths,
		PropertyType: &propType,
	})

	assert.Equal(t, "Active", q.Get("status"))
	assert.Equal(t, "50", q.Get("limit"))
	assert.Equal(t, "Denver", q.Get("city"))
	assert.Equal(t, "CO", q.Get("state"))
	assert.Equal(t, "600000", q.Get("maxPrice"))
	assert.Equal(t, "3", q.Get("bedrooms"))
	assert.Equal(t, "2", q.Get("bathrooms"))
	assert.Equal(t, "Condo", q.Get("propertyType"))
}

func TestBuildQueryAnyTypeDropsFilter(t *testing.T) {
	propType := "any"
	q := buildQuery(model.SearchParams{Location: "Denver", MaxPrice: 500000, PropertyType: &propType})
	assert.Empty(t, q.Get("propertyType"))
}

func TestCacheKey(t *testing.T) {
	propType := "condo"
	key := cacheKey(model.SearchParams{
		Location: "Denver, CO", MaxPrice: 600000, MinBedrooms: 3, PropertyType: &propType,
	})
	assert.Equal(t, "rentcast:denver, co:600000:3:condo", key)

	keyAny := cacheKey(model.SearchParams{Location: "Denver", MaxPrice: 500000})
	assert.Equal(t, "rentcast:denver:500000:0:any", keyAny)
}
