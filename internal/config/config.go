// Package config loads the tradetrackr configuration file.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tailscale/hujson"

	"github.com/sadopc/tradetrackr/internal/dates"
	"github.com/sadopc/tradetrackr/internal/store"
)

const appDir = "tradetrackr"

var (
	errConfigInvalid  = errors.New("invalid config")
	errConfigNotFound = errors.New("config file not found")
	errSystemTheme    = errors.New(`system_theme must be "light" or "dark"`)
)

// Config is the file-level configuration. Paths left empty fall back to
// locations under the user config directory.
type Config struct {
	DBPath      string `json:"db_path,omitempty"`
	WidgetDir   string `json:"widget_dir,omitempty"`
	LogFile     string `json:"log_file,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	SystemTheme string `json:"system_theme,omitempty"`
}

// Overrides are values from command-line flags. Empty fields do not
// override.
type Overrides struct {
	ConfigPath string
	DBPath     string
	WidgetDir  string
}

// Default returns the configuration used when no file exists.
func Default() (Config, error) {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		return Config{}, fmt.Errorf("resolve default database path: %w", err)
	}
	dir := filepath.Dir(dbPath)
	return Config{
		DBPath:      dbPath,
		WidgetDir:   filepath.Join(dir, "widget"),
		LogFile:     filepath.Join(dir, "tradetrackr.log"),
		Timezone:    dates.DefaultZone,
		SystemTheme: "dark",
	}, nil
}

// DefaultPath is $XDG_CONFIG_HOME/tradetrackr/config.json, or the same file
// under the OS user config directory.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDir, "config.json"), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir, "config.json"), nil
}

// Load merges defaults, the config file and flag overrides, in that order.
// The default config file is optional; one named by a flag must exist.
func Load(o Overrides) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return Config{}, err
	}

	path, mustExist := o.ConfigPath, true
	if path == "" {
		if path, err = DefaultPath(); err != nil {
			return Config{}, fmt.Errorf("resolve config path: %w", err)
		}
		mustExist = false
	}

	fileCfg, loaded, err := loadFile(path, mustExist)
	if err != nil {
		return Config{}, err
	}
	if loaded {
		cfg = merge(cfg, fileCfg)
	}

	cfg = merge(cfg, Config{DBPath: o.DBPath, WidgetDir: o.WidgetDir})

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w %s: %w", errConfigInvalid, path, err)
	}
	return cfg, nil
}

func loadFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if mustExist {
				return Config{}, false, fmt.Errorf("%w: %s", errConfigNotFound, path)
			}
			return Config{}, false, nil
		}
		return Config{}, false, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", errConfigInvalid, path, err)
	}
	return cfg, true, nil
}

// Parse reads JSON with comments and trailing commas. Unknown keys are
// rejected.
func Parse(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.DisallowUnknownFields()

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func merge(base, over Config) Config {
	if over.DBPath != "" {
		base.DBPath = over.DBPath
	}
	if over.WidgetDir != "" {
		base.WidgetDir = over.WidgetDir
	}
	if over.LogFile != "" {
		base.LogFile = over.LogFile
	}
	if over.Timezone != "" {
		base.Timezone = over.Timezone
	}
	if over.SystemTheme != "" {
		base.SystemTheme = over.SystemTheme
	}
	return base
}

// Validate checks the timezone and system theme.
func (c Config) Validate() error {
	if _, err := dates.LoadZone(c.Timezone); err != nil {
		return err
	}
	if c.SystemTheme != "light" && c.SystemTheme != "dark" {
		return fmt.Errorf("%w, got %q", errSystemTheme, c.SystemTheme)
	}
	return nil
}

// Location loads the configured timezone.
func (c Config) Location() (*time.Location, error) {
	return dates.LoadZone(c.Timezone)
}

// SystemDark reports whether the system appearance is dark.
func (c Config) SystemDark() bool { return c.SystemTheme == "dark" }
