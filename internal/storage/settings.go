package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// SetSettings JSON-marshals each value and stores it under its key, all
// inside one transaction. Existing keys have their value and updated_at
// overwritten.
func (s *Store) SetSettings(ctx context.Context, values map[string]any) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	for _, key := range keys {
		data, err := json.Marshal(values[key])
		if err != nil {
			return fmt.Errorf("marshaling setting %q: %w", key, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO settings (key, value, updated_at)
			 VALUES (?, ?, datetime('now'))
			 ON CONFLICT(key) DO UPDATE SET
				value      = excluded.value,
				updated_at = excluded.updated_at`,
			key, string(data),
		); err != nil {
			return fmt.Errorf("storing setting %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing settings: %w", err)
	}
	return nil
}

// GetAllSettings returns every stored runtime setting as a map of key to raw
// JSON value. Settings overlay the file configuration at startup.
func (s *Store) GetAllSettings(ctx context.Context) (map[string]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("querying all settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]json.RawMessage)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning setting row: %w", err)
		}
		settings[key] = json.RawMessage(value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating setting rows: %w", err)
	}
	return settings, nil
}
