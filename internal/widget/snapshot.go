package widget

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"github.com/sadopc/tradetrackr/internal/store"
)

// File names inside the widget directory. They mirror the storage keys.
const (
	DataFile     = store.KeyAppData + ".json"
	SettingsFile = store.KeyWidgetSettings + ".json"
)

// Refresher copies the widget's records from the store into the widget
// directory whenever the data changes.
type Refresher struct {
	dir    string
	store  *store.Store
	logger *log.Logger
}

func NewRefresher(dir string, s *store.Store, logger *log.Logger) *Refresher {
	return &Refresher{dir: dir, store: s, logger: logger}
}

// Dir is where the snapshot files are written.
func (r *Refresher) Dir() string { return r.dir }

// NotifyDataChanged rewrites the snapshot. Failures are logged only.
func (r *Refresher) NotifyDataChanged() {
	if err := r.Write(); err != nil {
		r.logger.Printf("widget refresh: %v", err)
	}
}

// Write snapshots the current app data and widget settings.
func (r *Refresher) Write() error {
	data, err := r.store.LoadAppData()
	if err != nil {
		return fmt.Errorf("load app data: %w", err)
	}
	ws, err := r.store.WidgetSettings()
	if err != nil {
		return fmt.Errorf("load widget settings: %w", err)
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create widget directory: %w", err)
	}
	if err := writeJSON(filepath.Join(r.dir, DataFile), data); err != nil {
		return err
	}
	return writeJSON(filepath.Join(r.dir, SettingsFile), ws)
}

func writeJSON(path string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(b)); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// LoadSnapshot reads the files as the widget does. Missing files give empty
// data and default settings.
func LoadSnapshot(dir string) (store.AppData, store.WidgetSettings, error) {
	data := store.AppData{Logs: map[string]store.DayLog{}}
	ws := store.DefaultWidgetSettings()

	if err := readJSON(filepath.Join(dir, DataFile), &data); err != nil {
		return data, ws, err
	}
	if data.Logs == nil {
		data.Logs = map[string]store.DayLog{}
	}
	if err := readJSON(filepath.Join(dir, SettingsFile), &ws); err != nil {
		return data, store.DefaultWidgetSettings(), err
	}
	return data, ws, nil
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
