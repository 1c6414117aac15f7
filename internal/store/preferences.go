package store

import (
	"encoding/json"
	"fmt"
)

// WidgetSettings returns the stored widget settings, or the defaults when
// none are stored. Missing fields keep their default values.
func (s *Store) WidgetSettings() (WidgetSettings, error) {
	ws := DefaultWidgetSettings()
	if err := s.getJSON(KeyWidgetSettings, &ws); err != nil {
		return DefaultWidgetSettings(), err
	}
	return ws, nil
}

func (s *Store) SaveWidgetSettings(ws WidgetSettings) error {
	return s.setJSON(KeyWidgetSettings, ws)
}

// NotificationSettings returns the stored reminder settings or the defaults.
func (s *Store) NotificationSettings() (NotificationSettings, error) {
	ns := DefaultNotificationSettings()
	if err := s.getJSON(KeyNotificationSettings, &ns); err != nil {
		return DefaultNotificationSettings(), err
	}
	return ns, nil
}

func (s *Store) SaveNotificationSettings(ns NotificationSettings) error {
	return s.setJSON(KeyNotificationSettings, ns)
}

// AppTheme returns the stored theme, ThemeSystem when absent or unknown.
func (s *Store) AppTheme() (AppTheme, error) {
	theme := ThemeSystem
	if err := s.getJSON(KeyAppTheme, &theme); err != nil {
		return ThemeSystem, err
	}
	if !theme.Valid() {
		return ThemeSystem, nil
	}
	return theme, nil
}

func (s *Store) SaveAppTheme(theme AppTheme) error {
	if !theme.Valid() {
		return fmt.Errorf("save app theme: unknown theme %q", theme)
	}
	return s.setJSON(KeyAppTheme, theme)
}

func (s *Store) getJSON(key string, v any) error {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode %q: %w", key, err)
	}
	return nil
}

func (s *Store) setJSON(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return s.Set(key, string(b))
}
