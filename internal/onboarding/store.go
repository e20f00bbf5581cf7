// Package onboarding persists gateway settings and the onboarding state
// in a small SQLite database. The table holds a single JSON row; the
// database file lives under the configured data directory. When the
// database cannot be opened the gateway falls back to an in-memory store
// so the API surface keeps working.
package onboarding

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Settings is the persisted gateway configuration surface.
type Settings struct {
	Completed            bool       `json:"completed"`
	OrgName              string     `json:"org_name"`
	DefaultSquad         string     `json:"default_squad"`
	NotificationsEnabled bool       `json:"notifications_enabled"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
}

// DefaultSettings returns the state of a fresh installation.
func DefaultSettings() Settings {
	return Settings{
		DefaultSquad:         "blue",
		NotificationsEnabled: true,
	}
}

// Store persists Settings. A nil db means in-memory only.
type Store struct {
	mu  sync.Mutex
	db  *sql.DB
	mem Settings
}

// NewStore opens (and if necessary creates) the settings database at path.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open settings db: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		payload TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create settings table: %w", err)
	}
	return &Store{db: db, mem: DefaultSettings()}, nil
}

// NewMemoryStore returns a store with no backing database.
func NewMemoryStore() *Store {
	return &Store{mem: DefaultSettings()}
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the current settings.
func (s *Store) Get() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return s.mem, nil
	}

	var payload string
	err := s.db.QueryRow(`SELECT payload FROM settings WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	var out Settings
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return out, nil
}

// Put replaces the stored settings.
func (s *Store) Put(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		s.mem = settings
		return nil
	}

	payload, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO settings (id, payload, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		string(payload), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Complete marks onboarding finished, recording the org name and squad.
func (s *Store) Complete(orgName, defaultSquad string) (Settings, error) {
	current, err := s.Get()
	if err != nil {
		return Settings{}, err
	}
	now := time.Now().UTC()
	current.Completed = true
	current.CompletedAt = &now
	if orgName != "" {
		current.OrgName = orgName
	}
	if defaultSquad != "" {
		current.DefaultSquad = defaultSquad
	}
	if err := s.Put(current); err != nil {
		return Settings{}, err
	}
	return current, nil
}
