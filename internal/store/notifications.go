package store

import (
	"fmt"
	"time"
)

func (s *Store) ScheduleNotification(n PendingNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		`INSERT INTO notifications (id, fire_at, title, body) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET fire_at = excluded.fire_at, title = excluded.title, body = excluded.body`,
		n.ID, n.FireAt.UTC().Format(time.RFC3339), n.Title, n.Body,
	)
	if err != nil {
		return fmt.Errorf("schedule notification %q: %w", n.ID, err)
	}
	return nil
}

func (s *Store) CancelNotification(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(`DELETE FROM notifications WHERE id = ?`, id); err != nil {
		return fmt.Errorf("cancel notification %q: %w", id, err)
	}
	return nil
}

// ListNotifications returns pending notifications, soonest first.
func (s *Store) ListNotifications() ([]PendingNotification, error) {
	rows, err := s.db.Query(`SELECT id, fire_at, title, body FROM notifications ORDER BY fire_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []PendingNotification
	for rows.Next() {
		var n PendingNotification
		var fireAt string
		if err := rows.Scan(&n.ID, &fireAt, &n.Title, &n.Body); err != nil {
			return nil, err
		}
		if n.FireAt, err = parseFireAt(n.ID, fireAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// TakeDueNotifications removes and returns every notification whose fire
// time is at or before now.
func (s *Store) TakeDueNotifications(now time.Time) ([]PendingNotification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin take due: %w", err)
	}
	defer tx.Rollback()

	cutoff := now.UTC().Format(time.RFC3339)
	rows, err := tx.Query(
		`SELECT id, fire_at, title, body FROM notifications WHERE fire_at <= ? ORDER BY fire_at, id`, cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("query due notifications: %w", err)
	}
	var due []PendingNotification
	for rows.Next() {
		var n PendingNotification
		var fireAt string
		if err := rows.Scan(&n.ID, &fireAt, &n.Title, &n.Body); err != nil {
			rows.Close()
			return nil, err
		}
		if n.FireAt, err = parseFireAt(n.ID, fireAt); err != nil {
			rows.Close()
			return nil, err
		}
		due = append(due, n)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if _, err := tx.Exec(`DELETE FROM notifications WHERE fire_at <= ?`, cutoff); err != nil {
		return nil, fmt.Errorf("delete due notifications: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit take due: %w", err)
	}
	return due, nil
}

// DeleteNotificationsBefore drops every notification due before t and
// reports how many were removed.
func (s *Store) DeleteNotificationsBefore(t time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.Exec(`DELETE FROM notifications WHERE fire_at < ?`, t.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("delete notifications before %s: %w", t.UTC().Format(time.RFC3339), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted notifications: %w", err)
	}
	return int(n), nil
}

func parseFireAt(id, v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("notification %q fire time: %w", id, err)
	}
	return t, nil
}
