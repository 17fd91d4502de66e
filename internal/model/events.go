package model

// Event types emitted on the chat turn stream.
const (
	EventPropertyResults     = "property_results"
	EventPropertySearchError = "property_search_error"
)

// TurnEvent is the machine-readable side channel of a chat turn: either a
// ranked shortlist or a user-safe search failure notice.
type TurnEvent struct {
	Type       string          `json:"type"`
	Properties []PropertyMatch `json:"properties,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// TurnResult is everything one processed chat turn produced.
type TurnResult struct {
	SessionID     string              `json:"session_id"`
	Extraction    ExtractionResult    `json:"extraction"`
	Preferences   PropertyPreferences `json:"preferences"`
	ReadyToSearch bool                `json:"ready_to_search"`
	MissingFields []string            `json:"missing_fields,omitempty"`
	Event         *TurnEvent          `json:"event,omitempty"`
}
