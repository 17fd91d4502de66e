package model

// PropertyType classifies a listing. "any" disables type filtering.
type PropertyType string

const (
	PropertyTypeSingleFamily PropertyType = "single-family"
	PropertyTypeCondo        PropertyType = "condo"
	PropertyTypeTownhouse    PropertyType = "townhouse"
	PropertyTypeMultiFamily  PropertyType = "multi-family"
	PropertyTypeAny          PropertyType = "any"
)

// Timeline buckets how soon the buyer wants to move.
type Timeline string

const (
	TimelineASAP          Timeline = "ASAP"
	TimelineWithin1Month  Timeline = "WITHIN_1_MONTH"
	TimelineWithin3Months Timeline = "WITHIN_3_MONTHS"
	TimelineWithin6Months Timeline = "WITHIN_6_MONTHS"
	TimelineFlexible      Timeline = "FLEXIBLE"
)

// Situation describes the buyer's current living situation.
type Situation string

const (
	SituationRenting    Situation = "renting"
	SituationSelling    Situation = "selling"
	SituationFirstTime  Situation = "first-time"
	SituationRelocating Situation = "relocating"
	SituationUnknown    Situation = "unknown"
)

// PropertyPreferences holds the search preferences accumulated from a
// conversation. Every field is optional; nil means "not stated yet", never
// "false" or zero.
type PropertyPreferences struct {
	Location           *string       `json:"location,omitempty"`
	MaxPrice           *float64      `json:"maxPrice,omitempty"`
	MinBedrooms        *int          `json:"minBedrooms,omitempty"`
	MinBathrooms       *float64      `json:"minBathrooms,omitempty"`
	MustHaveFeatures   []string      `json:"mustHaveFeatures,omitempty"`
	NiceToHaveFeatures []string      `json:"niceToHaveFeatures,omitempty"`
	PropertyType       *PropertyType `json:"propertyType,omitempty"`
	Timeline           *Timeline     `json:"timeline,omitempty"`
	IsFirstTimeBuyer   *bool         `json:"isFirstTimeBuyer,omitempty"`
	CurrentSituation   *Situation    `json:"currentSituation,omitempty"`
}

// ContactInfo holds contact details volunteered during the conversation.
type ContactInfo struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// ExtractionSource records which path produced an ExtractionResult.
type ExtractionSource string

const (
	SourceLLM      ExtractionSource = "llm"
	SourceFallback ExtractionSource = "fallback"
)

// ExtractionResult is the outcome of extracting structured data from a single
// chat message.
type ExtractionResult struct {
	Preferences     PropertyPreferences `json:"preferences"`
	Contact         ContactInfo         `json:"contact"`
	ExtractedFields []string            `json:"extracted_fields"`
	Confidence      float64             `json:"confidence"`
	Source          ExtractionSource    `json:"source"`
}

// Message is a single prior chat turn passed to the extractor as context.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// MergePreferences merges newly extracted preferences into the existing
// accumulated state. The rule is last-non-nil-wins per field: a field the new
// extraction did not touch keeps its previous value, a field it did touch is
// overwritten. Slice fields are replaced wholesale, not unioned.
func MergePreferences(existing, extracted PropertyPreferences) PropertyPreferences {
	merged := existing

	if extracted.Location != nil {
		merged.Location = extracted.Location
	}
	if extracted.MaxPrice != nil {
		merged.MaxPrice = extracted.MaxPrice
	}
	if extracted.MinBedrooms != nil {
		merged.MinBedrooms = extracted.MinBedrooms
	}
	if extracted.MinBathrooms != nil {
		merged.MinBathrooms = extracted.MinBathrooms
	}
	if extracted.MustHaveFeatures != nil {
		merged.MustHaveFeatures = extracted.MustHaveFeatures
	}
	if extracted.NiceToHaveFeatures != nil {
		merged.NiceToHaveFeatures = extracted.NiceToHaveFeatures
	}
	if extracted.PropertyType != nil {
		merged.PropertyType = extracted.PropertyType
	}
	if extracted.Timeline != nil {
		merged.Timeline = extracted.Timeline
	}
	if extracted.IsFirstTimeBuyer != nil {
		merged.IsFirstTimeBuyer = extracted.IsFirstTimeBuyer
	}
	if extracted.CurrentSituation != nil {
		merged.CurrentSituation = extracted.CurrentSituation
	}

	return merged
}
