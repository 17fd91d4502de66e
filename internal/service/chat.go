package service

import (
	"context"
	"log"
	"regexp"
	"time"

	"github.com/strivetech/homematch/internal/crm"
	"github.com/strivetech/homematch/internal/model"
	"github.com/strivetech/homematch/internal/session"
	"github.com/strivetech/homematch/internal/utils"
)

// searchUnavailableMessage is the only text ever shown to users for a failed
// listing fetch. Upstream detail stays in the logs.
const searchUnavailableMessage = "I couldn't fetch listings right now. Please try again in a moment."

var searchTriggerPattern = regexp.MustCompile(`(?s)<property_search>(.*?)</property_search>`)

// ListingSearcher fetches candidate listings. Implemented by the RentCast
// client; stubbed in tests.
type ListingSearcher interface {
	Search(ctx context.Context, params model.SearchParams) ([]model.Property, error)
}

// ChatService runs the per-turn pipeline: extract, merge, gate, and when
// ready, search and rank.
type ChatService struct {
	extractor     *Extractor
	sessions      session.Store
	listings      ListingSearcher
	matcher       *Matcher
	leads         crm.LeadStore
	searchTimeout time.Duration
}

// NewChatService wires the pipeline. leads may be nil to disable CRM sync.
func NewChatService(
	extractor *Extractor,
	sessions session.Store,
	listings ListingSearcher,
	matcher *Matcher,
	leads crm.LeadStore,
	searchTimeout time.Duration,
) *ChatService {
	return &ChatService{
		extractor:     extractor,
		sessions:      sessions,
		listings:      listings,
		matcher:       matcher,
		leads:         leads,
		searchTimeout: searchTimeout,
	}
}

// ProcessTurn runs one user message through the pipeline. A failed search
// comes back as an error event inside the result, not as a returned error;
// only session storage failures are fatal.
func (s *ChatService) ProcessTurn(ctx context.Context, sessionID, message string, history []model.Message) (*model.TurnResult, error) {
	extraction := s.extractor.Extract(ctx, message, history)
	log.Printf("💬 Session %s: extracted %v (confidence %.2f, source %s)",
		sessionID, extraction.ExtractedFields, extraction.Confidence, extraction.Source)

	state, err := s.sessions.Merge(ctx, sessionID, extraction)
	if err != nil {
		return nil, err
	}

	result := &model.TurnResult{
		SessionID:     sessionID,
		Extraction:    extraction,
		Preferences:   state.Preferences,
		ReadyToSearch: HasMinimumSearchCriteria(state.Preferences),
		MissingFields: MissingCriticalFields(state.Preferences),
	}

	if result.ReadyToSearch {
		result.Event = s.RunSearch(ctx, BuildSearchParams(state.Preferences))
	}

	s.syncCRM(ctx, sessionID, state, result)
	return result, nil
}

// ParseSearchTrigger scans assistant output for an in-band
// <property_search>{...}</property_search> block.
func (s *ChatService) ParseSearchTrigger(text string) (*model.SearchParams, bool) {
	m := searchTriggerPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}

	var params model.SearchParams
	if err := utils.ParseAIJSON(m[1], &params); err != nil {
		log.Printf("⚠️  Unparsable search trigger block: %v", err)
		return nil, false
	}
	if params.Location == "" || params.MaxPrice <= 0 {
		return nil, false
	}
	return &params, true
}

// RunSearch fetches and ranks listings, always producing an event. Listing
// fetch failures become a user-safe error event.
func (s *ChatService) RunSearch(ctx context.Context, params model.SearchParams) *model.TurnEvent {
	searchCtx, cancel := context.WithTimeout(ctx, s.searchTimeout)
	defer cancel()

	properties, err := s.listings.Search(searchCtx, params)
	if err != nil {
		log.Printf("❌ Listing search failed for %q: %v", params.Location, err)
		return &model.TurnEvent{Type: model.EventPropertySearchError, Error: searchUnavailableMessage}
	}

	matches := s.matcher.Rank(properties, params)
	log.Printf("✅ Ranked %d of %d listings for %q", len(matches), len(properties), params.Location)
	return &model.TurnEvent{Type: model.EventPropertyResults, Properties: matches}
}

// SearchForSession runs a search from the session's accumulated state,
// used when the conversation engine asks for one without a trigger block.
func (s *ChatService) SearchForSession(ctx context.Context, sessionID string) (*model.TurnEvent, bool, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	if !HasMinimumSearchCriteria(state.Preferences) {
		return nil, false, nil
	}
	return s.RunSearch(ctx, BuildSearchParams(state.Preferences)), true, nil
}

// LogActivity records a lead activity row, best-effort.
func (s *ChatService) LogActivity(ctx context.Context, sessionID, activityType string, metadata map[string]interface{}) {
	if s.leads == nil {
		return
	}
	if err := s.leads.LogActivity(ctx, sessionID, activityType, metadata); err != nil {
		log.Printf("⚠️  CRM activity log failed for %s: %v", sessionID, err)
	}
}

// BuildSearchParams converts accumulated preferences into a concrete query.
// Defaults: 2+ bedrooms and 1+ bathrooms when unstated; "any" property type
// drops the filter.
func BuildSearchParams(prefs model.PropertyPreferences) model.SearchParams {
	params := model.SearchParams{
		MinBedrooms:      2,
		MustHaveFeatures: prefs.MustHaveFeatures,
	}
	if prefs.Location != nil {
		params.Location = *prefs.Location
	}
	if prefs.MaxPrice != nil {
		params.MaxPrice = *prefs.MaxPrice
	}
	if prefs.MinBedrooms != nil && *prefs.MinBedrooms > 0 {
		params.MinBedrooms = *prefs.MinBedrooms
	}
	if prefs.MinBathrooms != nil && *prefs.MinBathrooms > 0 {
		params.MinBathrooms = prefs.MinBathrooms
	} else {
		defaultBaths := 1.0
		params.MinBathrooms = &defaultBaths
	}
	if prefs.NiceToHaveFeatures != nil {
		params.NiceToHaveFeatures = prefs.NiceToHaveFeatures
	}
	if prefs.PropertyType != nil && *prefs.PropertyType != model.PropertyTypeAny {
		t := string(*prefs.PropertyType)
		params.PropertyType = &t
	}
	return params
}

// syncCRM pushes the turn into the lead store. Failures are logged only.
func (s *ChatService) syncCRM(ctx context.Context, sessionID string, state session.State, result *model.TurnResult) {
	if s.leads == nil {
		return
	}

	if err := s.leads.SyncLead(ctx, sessionID, state); err != nil {
		log.Printf("⚠️  CRM lead sync failed for %s: %v", sessionID, err)
	}

	s.LogActivity(ctx, sessionID, "message", map[string]interface{}{
		"extracted_fields": result.Extraction.ExtractedFields,
		"confidence":       result.Extraction.Confidence,
	})

	if result.Event != nil && result.Event.Type == model.EventPropertyResults {
		s.LogActivity(ctx, sessionID, "property_search", map[string]interface{}{
			"result_count": len(result.Event.Properties),
		})
	}
}
