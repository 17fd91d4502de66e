// Package crm syncs conversation state into the lead database. The sync is
// best-effort: the chat pipeline must never fail because the CRM is down.
package crm

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/strivetech/homematch/internal/session"
)

// LeadStore records leads and their activity. A nil *PostgresLeadStore is a
// valid no-op store.
type LeadStore interface {
	// SyncLead upserts the lead for a session from its accumulated state.
	SyncLead(ctx context.Context, sessionID string, state session.State) error
	// LogActivity appends one activity row for the session's lead.
	LogActivity(ctx context.Context, sessionID, activityType string, metadata map[string]interface{}) error
}

// PostgresLeadStore is the sqlx-backed LeadStore.
type PostgresLeadStore struct {
	db *sqlx.DB
}

// NewPostgresLeadStore connects to Postgres and verifies the connection.
func NewPostgresLeadStore(dsn string, maxConn, maxIdleConn int) (*PostgresLeadStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresLeadStore{db: db}, nil
}

// Close closes the database connection.
func (s *PostgresLeadStore) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

// SyncLead upserts the lead row keyed by session id. Contact fields and
// preferences overwrite what was stored before; the preference snapshot is
// kept as JSON so downstream tooling sees the full accumulated state.
func (s *PostgresLeadStore) SyncLead(ctx context.Context, sessionID string, state session.State) error {
	if s == nil {
		return nil
	}

	prefs, err := json.Marshal(state.Preferences)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	query := `
		INSERT INTO leads (id, session_id, name, email, phone, preferences, turn_count, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (session_id) DO UPDATE SET
			name        = COALESCE(EXCLUDED.name, leads.name),
			email       = COALESCE(EXCLUDED.email, leads.email),
			phone       = COALESCE(EXCLUDED.phone, leads.phone),
			preferences = EXCLUDED.preferences,
			turn_count  = EXCLUDED.turn_count,
			updated_at  = NOW()`

	_, err = s.db.ExecContext(ctx, query,
		uuid.NewString(),
		sessionID,
		nullableString(state.Contact.Name),
		nullableString(state.Contact.Email),
		nullableString(state.Contact.Phone),
		prefs,
		state.TurnCount,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert lead: %w", err)
	}
	return nil
}

// LogActivity inserts one activity row with JSON metadata.
func (s *PostgresLeadStore) LogActivity(ctx context.Context, sessionID, activityType string, metadata map[string]interface{}) error {
	if s == nil {
		return nil
	}

	encoded, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to encode activity metadata: %w", err)
	}

	query := `
		INSERT INTO lead_activities (id, session_id, activity_type, metadata, created_at)
		VALUES ($1, $2, $3, $4, NOW())`

	if _, err := s.db.ExecContext(ctx, query, uuid.NewString(), sessionID, activityType, encoded); err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}
	return nil
}

func nullableString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

var _ LeadStore = (*PostgresLeadStore)(nil)
