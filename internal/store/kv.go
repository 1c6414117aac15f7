package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Keys of the persisted records. They match the names the widget reads.
const (
	KeyAppData              = "trading_tracker_data"
	KeyWidgetSettings       = "widget_settings"
	KeyNotificationSettings = "notification_settings"
	KeyAppTheme             = "app_theme"
	KeyNotifyPermission     = "notify_permission"
)

// Get returns the raw value stored under key. ok is false when the key has
// never been written.
func (s *Store) Get(key string) (value string, ok bool, err error) {
	err = s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(s.db, key, value)
}

// Update runs a read-modify-write of key inside one transaction. fn receives
// the current value (ok=false if absent) and returns the replacement. An
// error from fn aborts the update and leaves the stored value untouched.
func (s *Store) Update(key string, fn func(old string, ok bool) (string, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin update %q: %w", key, err)
	}
	defer tx.Rollback()

	var old string
	ok := true
	err = tx.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&old)
	if errors.Is(err, sql.ErrNoRows) {
		ok = false
	} else if err != nil {
		return fmt.Errorf("read %q: %w", key, err)
	}

	next, err := fn(old, ok)
	if err != nil {
		return err
	}
	if err := s.set(tx, key, next); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// Keys lists every stored key in order.
func (s *Store) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (s *Store) set(db execer, key, value string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now,
	)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}
