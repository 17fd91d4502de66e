package service

import (
	"context"
	"log"
	"math"
	"strings"
	"time"

	"github.com/strivetech/homematch/internal/model"
	"github.com/strivetech/homematch/internal/utils"
)

// ToolCall is one function invocation requested by the model.
type ToolCall struct {
	Name      string
	Arguments string
}

// ToolCaller issues a single chat completion carrying the extraction tool
// schemas and returns the tool calls the model made. Implemented by the
// OpenAI client; stubbed in tests.
type ToolCaller interface {
	CallTools(ctx context.Context, system string, history []model.Message, message string) ([]ToolCall, error)
}

const (
	toolExtractPreferences = "extract_property_preferences"
	toolExtractContact     = "extract_contact_info"
)

const extractionSystemPrompt = `You extract real-estate search preferences and contact details from chat messages. Call the provided tools with every field the user's latest message states or clearly implies. Rules:
- Convert price shorthand: "$500k" means 500000, "$1.2M" means 1200000.
- Parse bedroom/bathroom patterns like "3 bed 2 bath" or "4BR/3BA".
- Map feature synonyms: "yard" means "backyard".
- Classify property type from colloquial terms: "house" or "home" is single-family, "apartment" is condo.
- Bucket timelines into: ASAP, WITHIN_1_MONTH, WITHIN_3_MONTHS, WITHIN_6_MONTHS, FLEXIBLE.
- Omit any field the message does not mention. Never guess.`

// Extractor turns a freeform chat message into structured preferences. The
// LLM path is primary; any failure degrades to the regex fallback, so
// Extract always returns a usable result.
type Extractor struct {
	caller  ToolCaller
	timeout time.Duration
}

// NewExtractor creates an extractor. A nil caller disables the LLM path
// entirely and every message takes the fallback.
func NewExtractor(caller ToolCaller, timeout time.Duration) *Extractor {
	return &Extractor{caller: caller, timeout: timeout}
}

// Extract parses one user message, with the prior conversation as context.
func (e *Extractor) Extract(ctx context.Context, message string, history []model.Message) model.ExtractionResult {
	message = strings.TrimSpace(message)
	if e.caller == nil {
		return FallbackExtract(message)
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	calls, err := e.caller.CallTools(callCtx, extractionSystemPrompt, history, message)
	if err != nil {
		log.Printf("⚠️  Extraction call failed, using fallback: %v", err)
		return FallbackExtract(message)
	}

	// A response with no tool calls means the model chose to answer
	// conversationally; the message carried nothing to extract.
	if len(calls) == 0 {
		return model.ExtractionResult{Source: model.SourceLLM, Confidence: 0.8}
	}

	result, ok := parseToolCalls(calls)
	if !ok {
		log.Printf("⚠️  No parsable tool calls in extraction response, using fallback")
		return FallbackExtract(message)
	}
	return result
}

// preferenceArgs mirrors the extract_property_preferences tool schema.
type preferenceArgs struct {
	Location           *string  `json:"location"`
	MaxPrice           *float64 `json:"maxPrice"`
	MinBedrooms        *int     `json:"minBedrooms"`
	MinBathrooms       *float64 `json:"minBathrooms"`
	MustHaveFeatures   []string `json:"mustHaveFeatures"`
	NiceToHaveFeatures []string `json:"niceToHaveFeatures"`
	PropertyType       *string  `json:"propertyType"`
	Timeline           *string  `json:"timeline"`
	IsFirstTimeBuyer   *bool    `json:"isFirstTimeBuyer"`
	CurrentSituation   *string  `json:"currentSituation"`
}

// contactArgs mirrors the extract_contact_info tool schema.
type contactArgs struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

// parseToolCalls folds every parsable tool call into one result. Returns
// ok=false when no call could be parsed, which sends the caller to the
// fallback path.
func parseToolCalls(calls []ToolCall) (model.ExtractionResult, bool) {
	result := model.ExtractionResult{Source: model.SourceLLM}
	seen := make(map[string]bool)
	anyParsed := false

	addField := func(name string) {
		if !seen[name] {
			seen[name] = true
			result.ExtractedFields = append(result.ExtractedFields, name)
		}
	}

	for _, call := range calls {
		switch call.Name {
		case toolExtractPreferences:
			var args preferenceArgs
			if err := utils.ParseAIJSON(call.Arguments, &args); err != nil {
				log.Printf("⚠️  Unparsable %s arguments: %v", call.Name, err)
				continue
			}
			anyParsed = true
			applyPreferenceArgs(&result.Preferences, args, addField)
		case toolExtractContact:
			var args contactArgs
			if err := utils.ParseAIJSON(call.Arguments, &args); err != nil {
				log.Printf("⚠️  Unparsable %s arguments: %v", call.Name, err)
				continue
			}
			anyParsed = true
			applyContactArgs(&result.Contact, args, addField)
		}
	}

	if !anyParsed {
		return model.ExtractionResult{}, false
	}
	result.Confidence = math.Min(0.9, 0.6+0.1*float64(len(result.ExtractedFields)))
	return result, true
}

func applyPreferenceArgs(prefs *model.PropertyPreferences, args preferenceArgs, addField func(string)) {
	if args.Location != nil && strings.TrimSpace(*args.Location) != "" {
		loc := strings.TrimSpace(*args.Location)
		prefs.Location = &loc
		addField("location")
	}
	if args.MaxPrice != nil && *args.MaxPrice > 0 {
		prefs.MaxPrice = args.MaxPrice
		addField("maxPrice")
	}
	if args.MinBedrooms != nil && *args.MinBedrooms > 0 {
		prefs.MinBedrooms = args.MinBedrooms
		addField("minBedrooms")
	}
	if args.MinBathrooms != nil && *args.MinBathrooms > 0 {
		prefs.MinBathrooms = args.MinBathrooms
		addField("minBathrooms")
	}
	if len(args.MustHaveFeatures) > 0 {
		prefs.MustHaveFeatures = args.MustHaveFeatures
		addField("mustHaveFeatures")
	}
	if len(args.NiceToHaveFeatures) > 0 {
		prefs.NiceToHaveFeatures = args.NiceToHaveFeatures
		addField("niceToHaveFeatures")
	}
	if args.PropertyType != nil {
		if t, ok := normalizePropertyType(*args.PropertyType); ok {
			prefs.PropertyType = &t
			addField("propertyType")
		}
	}
	if args.Timeline != nil {
		if tl, ok := normalizeTimeline(*args.Timeline); ok {
			prefs.Timeline = &tl
			addField("timeline")
		}
	}
	if args.IsFirstTimeBuyer != nil {
		prefs.IsFirstTimeBuyer = args.IsFirstTimeBuyer
		addField("isFirstTimeBuyer")
	}
	if args.CurrentSituation != nil {
		if s, ok := normalizeSituation(*args.CurrentSituation); ok {
			prefs.CurrentSituation = &s
			addField("currentSituation")
		}
	}
}

func applyContactArgs(contact *model.ContactInfo, args contactArgs, addField func(string)) {
	if args.Name != nil && strings.TrimSpace(*args.Name) != "" {
		name := strings.TrimSpace(*args.Name)
		contact.Name = &name
		addField("name")
	}
	if args.Email != nil && emailPattern.MatchString(*args.Email) {
		contact.Email = args.Email
		addField("email")
	}
	if args.Phone != nil && strings.TrimSpace(*args.Phone) != "" {
		phone := strings.TrimSpace(*args.Phone)
		contact.Phone = &phone
		addField("phone")
	}
}

func normalizePropertyType(raw string) (model.PropertyType, bool) {
	switch model.PropertyType(strings.ToLower(strings.TrimSpace(raw))) {
	case model.PropertyTypeSingleFamily:
		return model.PropertyTypeSingleFamily, true
	case model.PropertyTypeCondo:
		return model.PropertyTypeCondo, true
	case model.PropertyTypeTownhouse:
		return model.PropertyTypeTownhouse, true
	case model.PropertyTypeMultiFamily:
		return model.PropertyTypeMultiFamily, true
	case model.PropertyTypeAny:
		return model.PropertyTypeAny, true
	}
	// The model occasionally answers colloquially despite the enum.
	return detectPropertyType(raw)
}

func normalizeTimeline(raw string) (model.Timeline, bool) {
	switch model.Timeline(strings.ToUpper(strings.TrimSpace(raw))) {
	case model.TimelineASAP:
		return model.TimelineASAP, true
	case model.TimelineWithin1Month:
		return model.TimelineWithin1Month, true
	case model.TimelineWithin3Months:
		return model.TimelineWithin3Months, true
	case model.TimelineWithin6Months:
		return model.TimelineWithin6Months, true
	case model.TimelineFlexible:
		return model.TimelineFlexible, true
	}
	return "", false
}

func normalizeSituation(raw string) (model.Situation, bool) {
	switch model.Situation(strings.ToLower(strings.TrimSpace(raw))) {
	case model.SituationRenting:
		return model.SituationRenting, true
	case model.SituationSelling:
		return model.SituationSelling, true
	case model.SituationFirstTime:
		return model.SituationFirstTime, true
	case model.SituationRelocating:
		return model.SituationRelocating, true
	case model.SituationUnknown:
		return model.SituationUnknown, true
	}
	return "", false
}
