package utils

import (
	"reflect"
	"testing"
)

func TestMatchesFeature(t *testing.T) {
	tests := []struct {
		name        string
		features    []string
		description string
		want        string
		expected    bool
	}{
		{
			name:     "Feature tag match",
			features: []string{"Pool", "Garage"},
			want:     "pool",
			expected: true,
		},
		{
			name:        "Description match",
			description: "Charming home with a large swimming pool.",
			want:        "pool",
			expected:    true,
		},
		{
			name:     "Synonym match yard satisfies backyard",
			features: []string{"Fenced yard"},
			want:     "backyard",
			expected: true,
		},
		{
			name:     "Synonym match carport satisfies garage",
			features: []string{"Carport"},
			want:     "garage",
			expected: true,
		},
		{
			name:        "No garage synonym present",
			features:    []string{"Pool"},
			description: "Lovely home with a pool and big kitchen.",
			want:        "garage",
			expected:    false,
		},
		{
			name:     "Unknown feature matches own text",
			features: []string{"Solar panels"},
			want:     "solar panels",
			expected: true,
		},
		{
			name:     "Empty want",
			features: []string{"Pool"},
			want:     "  ",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchesFeature(tt.features, tt.description, tt.want)
			if got != tt.expected {
				t.Errorf("MatchesFeature(%v, %q, %q) = %v, want %v",
					tt.features, tt.description, tt.want, got, tt.expected)
			}
		})
	}
}

func TestCapitalizeFeature(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"garage", "Garage"},
		{"swimming pool", "Swimming pool"},
		{"  pool  ", "Pool"},
		{"", ""},
		{"Pool", "Pool"},
	}

	for _, tt := range tests {
		if got := CapitalizeFeature(tt.input); got != tt.want {
			t.Errorf("CapitalizeFeature(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDetectFeatures(t *testing.T) {
	desc := "Beautifully renovated home with a sparkling pool and oversized garage."
	got := DetectFeatures(desc)
	want := []string{"Pool", "Garage", "Renovated"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DetectFeatures() = %v, want %v", got, want)
	}

	if got := DetectFeatures(""); got != nil {
		t.Errorf("DetectFeatures(empty) = %v, want nil", got)
	}
}
