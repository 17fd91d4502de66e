package service

import (
	"testing"

	"github.com/strivetech/homematch/internal/model"
)

func TestFallbackExtractPrices(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    float64
	}{
		{"Dollar with k suffix", "somewhere around $600k", 600000},
		{"Dollar with M suffix", "up to $1.2M", 1200000},
		{"Full dollar amount", "my budget is $450,000", 450000},
		{"Bare k suffix", "under 500k would be ideal", 500000},
		{"Small dollar amount scales", "around $600", 600000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FallbackExtract(tt.message)
			if result.Preferences.MaxPrice == nil {
				t.Fatalf("no price extracted from %q", tt.message)
			}
			if *result.Preferences.MaxPrice != tt.want {
				t.Errorf("price = %v, want %v", *result.Preferences.MaxPrice, tt.want)
			}
		})
	}
}

func TestFallbackExtractBedroomCountIsNotABudget(t *testing.T) {
	result := FallbackExtract("3 bed 2 bath in Denver")

	if result.Preferences.MaxPrice != nil {
		t.Errorf("bedroom count parsed as budget: %v", *result.Preferences.MaxPrice)
	}
	if result.Preferences.MinBedrooms == nil || *result.Preferences.MinBedrooms != 3 {
		t.Errorf("minBedrooms = %v, want 3", result.Preferences.MinBedrooms)
	}
	if result.Preferences.MinBathrooms == nil || *result.Preferences.MinBathrooms != 2 {
		t.Errorf("minBathrooms = %v, want 2", result.Preferences.MinBathrooms)
	}
}

func TestFallbackExtractFeaturesAndType(t *testing.T) {
	result := FallbackExtract("looking for a house with a pool and a big yard")

	if result.Preferences.PropertyType == nil || *result.Preferences.PropertyType != model.PropertyTypeSingleFamily {
		t.Errorf("propertyType = %v, want single-family", result.Preferences.PropertyType)
	}

	features := result.Preferences.MustHaveFeatures
	if len(features) != 2 || features[0] != "pool" || features[1] != "backyard" {
		t.Errorf("mustHaveFeatures = %v, want [pool backyard]", features)
	}
}

func TestFallbackExtractTownhouseBeforeHouse(t *testing.T) {
	result := FallbackExtract("a townhouse would be fine")
	if result.Preferences.PropertyType == nil || *result.Preferences.PropertyType != model.PropertyTypeTownhouse {
		t.Errorf("propertyType = %v, want townhouse", result.Preferences.PropertyType)
	}
}

func TestFallbackExtractContact(t *testing.T) {
	result := FallbackExtract("reach me at sam@example.com or (615) 555-0142")

	if result.Contact.Email == nil || *result.Contact.Email != "sam@example.com" {
		t.Errorf("email = %v, want sam@example.com", result.Contact.Email)
	}
	if result.Contact.Phone == nil {
		t.Error("phone not extracted")
	}
}

func TestFallbackExtractConfidence(t *testing.T) {
	withFields := FallbackExtract("3 bed house under $400k")
	if withFields.Confidence != 0.6 {
		t.Errorf("confidence with fields = %v, want 0.6", withFields.Confidence)
	}
	if withFields.Source != model.SourceFallback {
		t.Errorf("source = %v, want fallback", withFields.Source)
	}

	empty := FallbackExtract("hello there")
	if empty.Confidence != 0.3 {
		t.Errorf("confidence without fields = %v, want 0.3", empty.Confidence)
	}
	if len(empty.ExtractedFields) != 0 {
		t.Errorf("extractedFields = %v, want empty", empty.ExtractedFields)
	}
}
