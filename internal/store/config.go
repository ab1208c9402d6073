package store

import (
	"database/sql"
	"fmt"
)

// ConfigEntry is one stored key/value override.
type ConfigEntry struct {
	Key   string
	Value string
}

// ConfigGet looks up a stored config value. found is false when the key
// has no override, which callers treat as "use the default".
func (s *Store) ConfigGet(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, DBError(fmt.Errorf("get config: %w", err))
	}
	return value, true, nil
}

// ConfigSet stores an override, replacing any previous value.
func (s *Store) ConfigSet(key, value string) error {
	if _, err := s.db.Exec(
		`INSERT OR REPLACE INTO config (key, value) VALUES (?, ?)`, key, value,
	); err != nil {
		return DBError(fmt.Errorf("set config: %w", err))
	}
	return nil
}

// ConfigList returns all stored overrides ordered by key.
func (s *Store) ConfigList() ([]ConfigEntry, error) {
	rows, err := s.db.Query(`SELECT key, value FROM config ORDER BY key`)
	if err != nil {
		return nil, DBError(fmt.Errorf("list config: %w", err))
	}
	defer rows.Close()

	entries := []ConfigEntry{}
	for rows.Next() {
		var e ConfigEntry
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, DBError(fmt.Errorf("scan config: %w", err))
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, DBError(err)
	}
	return entries, nil
}

// ConfigReset drops every stored override, restoring defaults.
func (s *Store) ConfigReset() error {
	if _, err := s.db.Exec(`DELETE FROM config`); err != nil {
		return DBError(fmt.Errorf("reset config: %w", err))
	}
	return nil
}
