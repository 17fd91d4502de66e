// Package session persists per-conversation preference state across chat
// turns. Implementations must serialize merges for the same session so that
// two concurrent turns cannot drop each other's fields.
package session

import (
	"context"
	"sync"

	"github.com/strivetech/homematch/internal/model"
)

// Store accumulates preferences and contact info per session.
type Store interface {
	// Get returns the accumulated state for sessionID. A session that was
	// never merged into returns zero-value state, not an error.
	Get(ctx context.Context, sessionID string) (State, error)
	// Merge folds one extraction into the session under last-non-nil-wins
	// semantics and returns the post-merge state. Sessions are created
	// lazily on first merge.
	Merge(ctx context.Context, sessionID string, extracted model.ExtractionResult) (State, error)
	// Clear drops all state for sessionID.
	Clear(ctx context.Context, sessionID string) error
}

// State is everything a session has accumulated so far.
type State struct {
	Preferences model.PropertyPreferences `json:"preferences"`
	Contact     model.ContactInfo         `json:"contact"`
	TurnCount   int                       `json:"turn_count"`
}

// mergeContact applies last-non-nil-wins to contact fields.
func mergeContact(existing, extracted model.ContactInfo) model.ContactInfo {
	merged := existing
	if extracted.Name != nil {
		merged.Name = extracted.Name
	}
	if extracted.Email != nil {
		merged.Email = extracted.Email
	}
	if extracted.Phone != nil {
		merged.Phone = extracted.Phone
	}
	return merged
}

// MemoryStore is a process-local Store. Safe for concurrent use; merges are
// serialized under a single mutex. Suited for tests and single-instance
// deployments.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]State
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]State)}
}

// Get returns the current state for sessionID, zero-value if unknown.
func (s *MemoryStore) Get(_ context.Context, sessionID string) (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[sessionID], nil
}

// Merge folds extracted into the session state and returns the result.
func (s *MemoryStore) Merge(_ context.Context, sessionID string, extracted model.ExtractionResult) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.sessions[sessionID]
	state.Preferences = model.MergePreferences(state.Preferences, extracted.Preferences)
	state.Contact = mergeContact(state.Contact, extracted.Contact)
	state.TurnCount++
	s.sessions[sessionID] = state
	return state, nil
}

// Clear removes the session if present.
func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
