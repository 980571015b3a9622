package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// statePrefix namespaces every persisted key, mirroring the backend web
// client so a bulk clear removes exactly the application's state.
const statePrefix = "melodyCompare_"

// Persisted key names. Login and Analyzing view states are never written
// under KeyAppState; transient states must not survive a restart.
const (
	KeyAppState         = "appState"
	KeyUser             = "user"
	KeySelectedAnalysis = "selectedAnalysis"
	KeyInitialReport    = "initialReport"
	KeyChatHistory      = "assistantChatHistory"
	KeyPromptComposer   = "promptComposer"

	// KeyReportCachePrefix + analysis id stores a generated report so
	// revisiting a library item can reuse it within a session.
	KeyReportCachePrefix = "reportCache_"
)

// StateStore persists JSON-serialized session values in the app_state table.
type StateStore struct {
	db *sql.DB
}

// NewStateStore creates a StateStore backed by the given database.
func NewStateStore(db *sql.DB) *StateStore {
	return &StateStore{db: db}
}

// Save writes value under key, bumping the snapshot version. Writes are
// synchronous; the caller sees the row committed before Save returns.
func (s *StateStore) Save(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", key, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO app_state (key, value, version, updated_at)
		VALUES (?, ?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			version = app_state.version + 1,
			updated_at = CURRENT_TIMESTAMP
	`, statePrefix+key, string(data))
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}

	return nil
}

// Load reads the value stored under key into out. The boolean reports
// whether the key existed; a missing key is not an error.
func (s *StateStore) Load(key string, out any) (bool, error) {
	var data string
	err := s.db.QueryRow("SELECT value FROM app_state WHERE key = ?", statePrefix+key).Scan(&data)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(data), out); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", key, err)
	}

	return true, nil
}

// Version returns the snapshot version for key, or 0 when the key is absent.
func (s *StateStore) Version(key string) (int, error) {
	var version int
	err := s.db.QueryRow("SELECT version FROM app_state WHERE key = ?", statePrefix+key).Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read version for %s: %w", key, err)
	}

	return version, nil
}

// Delete removes a single key. Deleting an absent key is a no-op.
func (s *StateStore) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM app_state WHERE key = ?", statePrefix+key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Clear removes every key under the application prefix.
func (s *StateStore) Clear() error {
	if _, err := s.db.Exec("DELETE FROM app_state WHERE key LIKE ?", statePrefix+"%"); err != nil {
		return fmt.Errorf("failed to clear state: %w", err)
	}
	return nil
}

// Keys lists every stored key under the prefix, without the prefix.
func (s *StateStore) Keys() ([]string, error) {
	rows, err := s.db.Query("SELECT key FROM app_state WHERE key LIKE ? ORDER BY key", statePrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key[len(statePrefix):])
	}

	return keys, rows.Err()
}
