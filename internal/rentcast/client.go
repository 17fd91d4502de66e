// Package rentcast fetches active sale listings from the RentCast API and
// normalizes them into the internal Property shape.
package rentcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/sync/singleflight"

	"github.com/strivetech/homematch/internal/cache"
	"github.com/strivetech/homematch/internal/model"
	"github.com/strivetech/homematch/internal/utils"
)

// ErrListingFetch is returned for any listing retrieval failure. Upstream
// details (status codes, transport errors) are logged, not surfaced.
var ErrListingFetch = errors.New("unable to fetch property listings")

const (
	defaultBaseURL  = "https://api.rentcast.io/v1"
	searchLimit     = 50
	defaultCacheTTL = 15 * time.Minute
)

// Client queries RentCast with an in-process TTL cache in front. Concurrent
// misses for the same query are coalesced into a single upstream call.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      *cache.TTLCache[[]model.Property]
	group      singleflight.Group
	cacheTTL   time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithCacheTTL sets how long a query result stays cached.
func WithCacheTTL(d time.Duration) Option {
	return func(c *Client) { c.cacheTTL = d }
}

// NewClient constructs a RentCast client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      cache.NewTTLCache[[]model.Property](),
		cacheTTL:   defaultCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// cacheKey identifies a query by the fields that change its result set.
func cacheKey(params model.SearchParams) string {
	propertyType := "any"
	if params.PropertyType != nil && *params.PropertyType != "" && *params.PropertyType != "any" {
		propertyType = *params.PropertyType
	}
	return fmt.Sprintf("rentcast:%s:%.0f:%d:%s",
		strings.ToLower(params.Location), params.MaxPrice, params.MinBedrooms, propertyType)
}

// Search returns normalized active listings matching params. Results are
// served from cache when fresh; a cache miss triggers exactly one upstream
// call per key regardless of concurrency.
func (c *Client) Search(ctx context.Context, params model.SearchParams) ([]model.Property, error) {
	key := cacheKey(params)
	if cached, ok := c.cache.Get(key); ok {
		log.Printf("🏠 RentCast cache hit: %s (%d listings)", key, len(cached))
		return cached, nil
	}

	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		properties, err := c.fetch(ctx, params)
		if err != nil {
			return nil, err
		}
		c.cache.Set(key, properties, c.cacheTTL)
		return properties, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]model.Property), nil
}

func (c *Client) fetch(ctx context.Context, params model.SearchParams) ([]model.Property, error) {
	reqURL := c.baseURL + "/listings/sale?" + buildQuery(params).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		log.Printf("❌ RentCast request build failed: %v", err)
		return nil, ErrListingFetch
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("❌ RentCast request failed: %v", err)
		return nil, ErrListingFetch
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("❌ RentCast returned %d: %s", resp.StatusCode, string(body))
		return nil, ErrListingFetch
	}

	var listings []listing
	if err := json.NewDecoder(resp.Body).Decode(&listings); err != nil {
		log.Printf("❌ RentCast response decode failed: %v", err)
		return nil, ErrListingFetch
	}

	properties := make([]model.Property, 0, len(listings))
	for _, l := range listings {
		properties = append(properties, l.normalize())
	}
	log.Printf("🏠 RentCast fetched %d listings for %q", len(properties), params.Location)
	return properties, nil
}

// buildQuery translates SearchParams into RentCast query parameters.
func buildQuery(params model.SearchParams) url.Values {
	q := url.Values{}
	q.Set("status", "Active")
	q.Set("limit", strconv.Itoa(searchLimit))

	city, state, zip := parseLocation(params.Location)
	if city != "" {
		q.Set("city", city)
	}
	if state != "" {
		q.Set("state", state)
	}
	if zip != "" {
		q.Set("zipCode", zip)
	}

	if params.MaxPrice > 0 {
		q.Set("maxPrice", strconv.FormatFloat(params.MaxPrice, 'f', 0, 64))
	}
	if params.MinBedrooms > 0 {
		q.Set("bedrooms", strconv.Itoa(params.MinBedrooms))
	}
	if params.MinBathrooms != nil && *params.MinBathrooms > 0 {
		q.Set("bathrooms", strconv.FormatFloat(*params.MinBathrooms, 'f', -1, 64))
	}
	if params.PropertyType != nil {
		if apiType := apiPropertyType(*params.PropertyType); apiType != "" {
			q.Set("propertyType", apiType)
		}
	}
	return q
}

var zipPattern = regexp.MustCompile(`^\d{5}$`)

// parseLocation splits a freeform location into city/state/zip parts.
// Tokens are separated by commas or whitespace, so "Denver, CO" and
// "Nashville TN 37209" both parse. One token is a zip code or a city;
// two tokens are city+state; three are city+state+zip.
func parseLocation(location string) (city, state, zip string) {
	parts := strings.FieldsFunc(location, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})

	switch len(parts) {
	case 0:
	case 1:
		if zipPattern.MatchString(parts[0]) {
			zip = parts[0]
		} else {
			city = parts[0]
		}
	case 2:
		city, state = parts[0], parts[1]
	default:
		city, state, zip = parts[0], parts[1], parts[2]
	}
	return city, state, zip
}

// apiPropertyType maps internal type names to RentCast's enum. "any" and
// unknown values disable the filter.
func apiPropertyType(t string) string {
	switch strings.ToLower(t) {
	case "single-family":
		return "Single Family"
	case "condo":
		return "Condo"
	case "townhouse":
		return "Townhouse"
	case "multi-family":
		return "Multi-Family"
	default:
		return ""
	}
}

// listing is the wire shape of one RentCast sale listing.
type listing struct {
	ID               string   `json:"id"`
	FormattedAddress string   `json:"formattedAddress"`
	AddressLine1     string   `json:"addressLine1"`
	City             string   `json:"city"`
	State            string   `json:"state"`
	ZipCode          string   `json:"zipCode"`
	Price            float64  `json:"price"`
	Bedrooms         int      `json:"bedrooms"`
	Bathrooms        float64  `json:"bathrooms"`
	SquareFootage    int      `json:"squareFootage"`
	LotSize          int      `json:"lotSize"`
	PropertyType     string   `json:"propertyType"`
	YearBuilt        int      `json:"yearBuilt"`
	Description      string   `json:"description"`
	Features         []string `json:"features"`
	Photos           []photo  `json:"photos"`
	ListedDate       string   `json:"listedDate"`
	DaysOnMarket     int      `json:"daysOnMarket"`
	MLSNumber        string   `json:"mlsNumber"`
	Schools          *struct {
		Elementary *schoolEntry `json:"elementary"`
		Middle     *schoolEntry `json:"middle"`
		High       *schoolEntry `json:"high"`
	} `json:"schools"`
	ListingAgent *struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
		Email string `json:"email"`
	} `json:"listingAgent"`
}

type schoolEntry struct {
	Rating int `json:"rating"`
}

// photo accepts both shapes the API has served: a bare URL string or an
// object carrying href/url.
type photo struct {
	href string
}

func (p *photo) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		p.href = s
		return nil
	}
	var obj struct {
		Href string `json:"href"`
		URL  string `json:"url"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	p.href = obj.Href
	if p.href == "" {
		p.href = obj.URL
	}
	return nil
}

// normalize converts a wire listing into the internal Property shape,
// backfilling features from the description and days-on-market from the
// list date when the source omits them.
func (l listing) normalize() model.Property {
	address := l.AddressLine1
	if address == "" {
		address = l.FormattedAddress
	}

	listedDate, _ := time.Parse(time.RFC3339, l.ListedDate)
	daysOnMarket := l.DaysOnMarket
	if daysOnMarket == 0 && !listedDate.IsZero() {
		daysOnMarket = int(time.Since(listedDate).Hours() / 24)
		if daysOnMarket < 0 {
			daysOnMarket = 0
		}
	}

	features := l.Features
	if len(features) == 0 {
		features = utils.DetectFeatures(l.Description)
	}

	var images []string
	for _, ph := range l.Photos {
		if ph.href != "" {
			images = append(images, ph.href)
		}
	}

	p := model.Property{
		ID:           l.ID,
		Address:      address,
		City:         l.City,
		State:        l.State,
		ZipCode:      l.ZipCode,
		Price:        l.Price,
		Bedrooms:     l.Bedrooms,
		Bathrooms:    l.Bathrooms,
		Sqft:         l.SquareFootage,
		PropertyType: l.PropertyType,
		Features:     features,
		Images:       images,
		DaysOnMarket: daysOnMarket,
		ListingDate:  listedDate,
		Description:  l.Description,
	}
	if l.LotSize > 0 {
		p.LotSize = &l.LotSize
	}
	if l.YearBuilt > 0 {
		p.YearBuilt = &l.YearBuilt
	}
	if l.MLSNumber != "" {
		p.MLSID = &l.MLSNumber
	}
	if l.Schools != nil {
		ratings := model.SchoolRatings{}
		if l.Schools.Elementary != nil {
			ratings.Elementary = l.Schools.Elementary.Rating
		}
		if l.Schools.Middle != nil {
			ratings.Middle = l.Schools.Middle.Rating
		}
		if l.Schools.High != nil {
			ratings.High = l.Schools.High.Rating
		}
		p.Schools = &ratings
	}
	if l.ListingAgent != nil {
		p.Agent = &model.AgentInfo{
			Name:  l.ListingAgent.Name,
			Phone: l.ListingAgent.Phone,
			Email: l.ListingAgent.Email,
		}
	}
	return p
}
