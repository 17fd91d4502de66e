package model

import "time"

// SchoolRatings holds 1-10 ratings for the schools assigned to a listing.
type SchoolRatings struct {
	Elementary int `json:"elementary"`
	Middle     int `json:"middle"`
	High       int `json:"high"`
}

// AgentInfo identifies the listing agent when the source provides one.
type AgentInfo struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// Property is a normalized listing as returned by the listing client.
type Property struct {
	ID           string         `json:"id"`
	Address      string         `json:"address"`
	City         string         `json:"city"`
	State        string         `json:"state"`
	ZipCode      string         `json:"zipCode"`
	Price        float64        `json:"price"`
	Bedrooms     int            `json:"bedrooms"`
	Bathrooms    float64        `json:"bathrooms"`
	Sqft         int            `json:"sqft"`
	LotSize      *int           `json:"lotSize,omitempty"`
	PropertyType string         `json:"propertyType"`
	YearBuilt    *int           `json:"yearBuilt,omitempty"`
	Features     []string       `json:"features"`
	Images       []string       `json:"images,omitempty"`
	DaysOnMarket int            `json:"daysOnMarket"`
	ListingDate  time.Time      `json:"listingDate"`
	Description  string         `json:"description,omitempty"`
	Schools      *SchoolRatings `json:"schools,omitempty"`
	MLSID        *string        `json:"mlsId,omitempty"`
	Agent        *AgentInfo     `json:"agent,omitempty"`
}

// PropertyMatch is a scored listing. It is produced once by the matcher and
// never mutated afterwards.
type PropertyMatch struct {
	Property        Property `json:"property"`
	MatchScore      float64  `json:"matchScore"`
	MatchReasons    []string `json:"matchReasons"`
	MissingFeatures []string `json:"missingFeatures"`
}

// SearchParams is the concrete query the listing client and matcher operate
// on, built from accumulated preferences once the readiness gate passes.
type SearchParams struct {
	Location           string   `json:"location"`
	MaxPrice           float64  `json:"maxPrice"`
	MinBedrooms        int      `json:"minBedrooms"`
	MinBathrooms       *float64 `json:"minBathrooms,omitempty"`
	MustHaveFeatures   []string `json:"mustHaveFeatures,omitempty"`
	NiceToHaveFeatures []string `json:"niceToHaveFeatures,omitempty"`
	PropertyType       *string  `json:"propertyType,omitempty"`
}
