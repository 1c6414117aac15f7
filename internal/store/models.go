package store

import (
	"encoding/json"
	"fmt"
	"time"
)

type Rule struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Status is the color of a day.
type Status string

const (
	StatusGreen Status = "green"
	StatusRed   Status = "red"
	StatusGrey  Status = "grey"
	StatusNone  Status = "none"
)

// Outcome is how a day was logged: a filled-in Checklist or a NoTrade day.
type Outcome interface {
	isOutcome()
}

// Checklist holds one result per rule that existed when the day was logged.
type Checklist struct {
	Results map[string]bool
}

// NoTrade marks a day with no setup; it counts as following the plan.
type NoTrade struct{}

func (Checklist) isOutcome() {}
func (NoTrade) isOutcome()   {}

// DayLog is the locked record of one calendar day.
type DayLog struct {
	Date     string
	Status   Status
	Outcome  Outcome
	LockedAt time.Time
}

// IsNoTrade reports whether the day was marked as a no-trade day.
func (l DayLog) IsNoTrade() bool {
	_, ok := l.Outcome.(NoTrade)
	return ok
}

// Results returns the checklist results, or ok=false for a no-trade day.
func (l DayLog) Results() (map[string]bool, bool) {
	c, ok := l.Outcome.(Checklist)
	if !ok {
		return nil, false
	}
	return c.Results, true
}

// dayLogJSON is the wire shape shared with the widget.
type dayLogJSON struct {
	Date        string          `json:"date"`
	Status      Status          `json:"status"`
	RuleResults map[string]bool `json:"ruleResults,omitempty"`
	NoTradeDay  *bool           `json:"noTradeDay,omitempty"`
	LockedAt    string          `json:"lockedAt,omitempty"`
}

func (l DayLog) MarshalJSON() ([]byte, error) {
	w := dayLogJSON{Date: l.Date, Status: l.Status}
	noTrade := false
	switch o := l.Outcome.(type) {
	case NoTrade:
		noTrade = true
	case Checklist:
		w.RuleResults = o.Results
		if w.RuleResults == nil {
			w.RuleResults = map[string]bool{}
		}
	}
	w.NoTradeDay = &noTrade
	if !l.LockedAt.IsZero() {
		w.LockedAt = l.LockedAt.UTC().Format(time.RFC3339)
	}
	return json.Marshal(w)
}

func (l *DayLog) UnmarshalJSON(data []byte) error {
	var w dayLogJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	l.Date = w.Date
	l.Status = w.Status
	if w.NoTradeDay != nil && *w.NoTradeDay {
		l.Outcome = NoTrade{}
	} else {
		l.Outcome = Checklist{Results: w.RuleResults}
	}
	l.LockedAt = time.Time{}
	if w.LockedAt != "" {
		t, err := time.Parse(time.RFC3339Nano, w.LockedAt)
		if err != nil {
			return fmt.Errorf("parse lockedAt: %w", err)
		}
		l.LockedAt = t
	}
	return nil
}

// AppData is the single persisted unit for rules and logs.
type AppData struct {
	Rules []Rule            `json:"rules"`
	Logs  map[string]DayLog `json:"logs"`
}

func (d *AppData) normalize() {
	if d.Rules == nil {
		d.Rules = []Rule{}
	}
	if d.Logs == nil {
		d.Logs = map[string]DayLog{}
	}
}

// dedupeRules keeps the first rule for every ID and reports whether any were
// dropped.
func (d *AppData) dedupeRules() bool {
	seen := make(map[string]bool, len(d.Rules))
	kept := d.Rules[:0]
	for _, r := range d.Rules {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		kept = append(kept, r)
	}
	dropped := len(kept) != len(d.Rules)
	d.Rules = kept
	return dropped
}

type WidgetTheme string

const (
	WidgetLight WidgetTheme = "light"
	WidgetDark  WidgetTheme = "dark"
)

type WidgetSettings struct {
	Theme                   WidgetTheme `json:"theme"`
	AccentColor             string      `json:"accentColor"`
	ShowCompletionIndicator bool        `json:"showCompletionIndicator"`
}

func DefaultWidgetSettings() WidgetSettings {
	return WidgetSettings{
		Theme:                   WidgetDark,
		AccentColor:             "#22c55e",
		ShowCompletionIndicator: true,
	}
}

// AccentColors is the palette offered for the widget accent.
var AccentColors = []string{
	"#ef4444", // red
	"#f97316", // orange
	"#eab308", // yellow
	"#84cc16", // lime
	"#22c55e", // green
	"#14b8a6", // teal
	"#06b6d4", // cyan
	"#3b82f6", // blue
	"#6366f1", // indigo
	"#8b5cf6", // violet
	"#a855f7", // purple
	"#d946ef", // fuchsia
	"#ec4899", // pink
	"#6b7280", // grey
}

type NotificationSettings struct {
	Enabled   bool   `json:"enabled"`
	StartTime string `json:"startTime"` // HH:mm
	Interval  int    `json:"interval"`  // minutes
	EndTime   string `json:"endTime"`   // HH:mm
}

// ReminderIntervals are the allowed reminder spacings in minutes.
var ReminderIntervals = []int{5, 15, 30, 60}

func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		Enabled:   false,
		StartTime: "16:00",
		Interval:  15,
		EndTime:   "23:00",
	}
}

type AppTheme string

const (
	ThemeSystem AppTheme = "system"
	ThemeLight  AppTheme = "light"
	ThemeDark   AppTheme = "dark"
)

// Valid reports whether t is one of the known themes.
func (t AppTheme) Valid() bool {
	switch t {
	case ThemeSystem, ThemeLight, ThemeDark:
		return true
	}
	return false
}

// PendingNotification is a reminder waiting to fire.
type PendingNotification struct {
	ID     string
	FireAt time.Time
	Title  string
	Body   string
}
