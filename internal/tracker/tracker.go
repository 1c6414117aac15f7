// Package tracker holds the application state (rules, day logs and settings)
// and owns every mutation of it. The TUI and the CLI both drive a Tracker.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sadopc/tradetrackr/internal/dates"
	"github.com/sadopc/tradetrackr/internal/id"
	"github.com/sadopc/tradetrackr/internal/reminder"
	"github.com/sadopc/tradetrackr/internal/stats"
	"github.com/sadopc/tradetrackr/internal/store"
)

var (
	ErrEmptyRule           = errors.New("rule cannot be empty")
	ErrDayLocked           = errors.New("today's log has already been recorded")
	ErrIncompleteChecklist = errors.New("please mark all rules before submitting")
	ErrInvalidTime         = dates.ErrInvalidClock
	ErrInvalidInterval     = reminder.ErrInvalidInterval
	ErrInvalidTheme        = errors.New("unknown theme")
	ErrInvalidAccent       = errors.New("accent color must be #rrggbb")
)

// Reminders is the part of the reminder scheduler the tracker drives.
type Reminders interface {
	Reschedule(ctx context.Context, ns store.NotificationSettings, todayLogged bool) (int, error)
	CancelAll(ctx context.Context) error
}

// WidgetNotifier is told whenever the widget's data changed.
type WidgetNotifier interface {
	NotifyDataChanged()
}

// Options configures a Tracker. Zero fields get working defaults.
type Options struct {
	Calendar  dates.Calendar
	Reminders Reminders
	Widget    WidgetNotifier
	Logger    *log.Logger
	NewID     func() string
}

type Tracker struct {
	mu sync.Mutex

	store     *store.Store
	cal       dates.Calendar
	reminders Reminders
	widget    WidgetNotifier
	logger    *log.Logger
	newID     func() string

	data           store.AppData
	widgetSettings store.WidgetSettings
	notifySettings store.NotificationSettings
	theme          store.AppTheme
}

// New builds a Tracker over s with empty state. Call Refresh to load.
func New(s *store.Store, opts Options) *Tracker {
	t := &Tracker{
		store:          s,
		cal:            opts.Calendar,
		reminders:      opts.Reminders,
		widget:         opts.Widget,
		logger:         opts.Logger,
		newID:          opts.NewID,
		data:           store.AppData{Rules: []store.Rule{}, Logs: map[string]store.DayLog{}},
		widgetSettings: store.DefaultWidgetSettings(),
		notifySettings: store.DefaultNotificationSettings(),
		theme:          store.ThemeSystem,
	}
	if t.cal.Location() == nil {
		t.cal = dates.NewCalendar(nil, nil)
	}
	if t.logger == nil {
		t.logger = log.New(io.Discard, "", 0)
	}
	if t.newID == nil {
		t.newID = func() string { return id.At(t.cal.Now()) }
	}
	return t
}

// Refresh reloads every record from storage. A record that cannot be read
// falls back to its defaults; the read errors are logged and returned.
func (t *Tracker) Refresh() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var errs []error
	data, err := t.store.LoadAppData()
	if err != nil {
		errs = append(errs, err)
	}
	ws, err := t.store.WidgetSettings()
	if err != nil {
		errs = append(errs, err)
	}
	ns, err := t.store.NotificationSettings()
	if err != nil {
		errs = append(errs, err)
	}
	theme, err := t.store.AppTheme()
	if err != nil {
		errs = append(errs, err)
	}

	t.data, t.widgetSettings, t.notifySettings, t.theme = data, ws, ns, theme
	if err := errors.Join(errs...); err != nil {
		t.logger.Printf("refresh: %v", err)
		return err
	}
	return nil
}

// --- Reads ---

func (t *Tracker) Calendar() dates.Calendar { return t.cal }

// Today is the current calendar day in the reference timezone.
func (t *Tracker) Today() time.Time { return t.cal.Today() }

// Rules returns the rules in insertion order.
func (t *Tracker) Rules() []store.Rule {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.data.Rules)
}

// Logs returns a copy of the date-keyed logs.
func (t *Tracker) Logs() map[string]store.DayLog {
	t.mu.Lock()
	defer t.mu.Unlock()
	return maps.Clone(t.data.Logs)
}

// Log returns the log of the given day.
func (t *Tracker) Log(day time.Time) (store.DayLog, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.data.Logs[dates.Format(day)]
	return l, ok
}

// TodayLog returns today's log, if today has been logged.
func (t *Tracker) TodayLog() (store.DayLog, bool) {
	return t.Log(t.cal.Today())
}

// CanEditToday reports whether today is still open for logging.
func (t *Tracker) CanEditToday() bool {
	_, logged := t.TodayLog()
	return !logged
}

// DayStatus derives the status of day against today.
func (t *Tracker) DayStatus(day time.Time) store.Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return stats.DayStatus(t.data.Logs, day, t.cal.Today())
}

func (t *Tracker) WidgetSettings() store.WidgetSettings {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.widgetSettings
}

func (t *Tracker) NotificationSettings() store.NotificationSettings {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.notifySettings
}

func (t *Tracker) AppTheme() store.AppTheme {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.theme
}

// EffectiveTheme resolves the app theme to light or dark. systemDark is the
// appearance of the terminal or OS.
func (t *Tracker) EffectiveTheme(systemDark bool) store.AppTheme {
	switch theme := t.AppTheme(); theme {
	case store.ThemeLight, store.ThemeDark:
		return theme
	}
	if systemDark {
		return store.ThemeDark
	}
	return store.ThemeLight
}

// --- Rules ---

// errNoChange aborts an update that would not change anything.
var errNoChange = errors.New("no change")

// AddRule appends a rule with the trimmed text.
func (t *Tracker) AddRule(text string) (store.Rule, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return store.Rule{}, ErrEmptyRule
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	rule := store.Rule{ID: t.newID(), Text: text, CreatedAt: t.cal.Now().UTC()}
	err := t.updateData("add rule", func(d *store.AppData) error {
		d.Rules = append(d.Rules, rule)
		return nil
	})
	if err != nil {
		return store.Rule{}, err
	}
	t.afterChange()
	return rule, nil
}

// UpdateRule replaces a rule's text in place. An unknown id does nothing.
func (t *Tracker) UpdateRule(ruleID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyRule
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	err := t.updateData("update rule", func(d *store.AppData) error {
		i := slices.IndexFunc(d.Rules, func(r store.Rule) bool { return r.ID == ruleID })
		if i < 0 || d.Rules[i].Text == text {
			return errNoChange
		}
		d.Rules[i].Text = text
		return nil
	})
	if errors.Is(err, errNoChange) {
		return nil
	}
	if err != nil {
		return err
	}
	t.afterChange()
	return nil
}

// DeleteRule removes a rule. Deleting an absent rule is not an error.
func (t *Tracker) DeleteRule(ruleID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	err := t.updateData("delete rule", func(d *store.AppData) error {
		n := len(d.Rules)
		d.Rules = slices.DeleteFunc(d.Rules, func(r store.Rule) bool { return r.ID == ruleID })
		if len(d.Rules) == n {
			return errNoChange
		}
		return nil
	})
	if errors.Is(err, errNoChange) {
		return nil
	}
	if err != nil {
		return err
	}
	t.afterChange()
	return nil
}

// --- Day logs ---

// ValidateChecklist checks that results holds an answer for every rule.
func (t *Tracker) ValidateChecklist(results map[string]bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.data.Rules {
		if _, ok := results[r.ID]; !ok {
			return ErrIncompleteChecklist
		}
	}
	return nil
}

// SubmitDayLog locks today with the checklist results. The day is green
// only if every result is true.
func (t *Tracker) SubmitDayLog(results map[string]bool) (store.DayLog, error) {
	status := store.StatusGreen
	for _, ok := range results {
		if !ok {
			status = store.StatusRed
			break
		}
	}
	return t.lockToday("submit day log", status, store.Checklist{Results: maps.Clone(results)})
}

// MarkNoTradeDay locks today as a green day without a checklist.
func (t *Tracker) MarkNoTradeDay() (store.DayLog, error) {
	return t.lockToday("mark no-trade day", store.StatusGreen, store.NoTrade{})
}

func (t *Tracker) lockToday(op string, status store.Status, outcome store.Outcome) (store.DayLog, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.cal.Now()
	entry := store.DayLog{
		Date:     dates.Format(dates.Day(now)),
		Status:   status,
		Outcome:  outcome,
		LockedAt: now.UTC(),
	}
	err := t.updateData(op, func(d *store.AppData) error {
		if _, ok := d.Logs[entry.Date]; ok {
			return ErrDayLocked
		}
		d.Logs[entry.Date] = entry
		return nil
	})
	if errors.Is(err, ErrDayLocked) {
		// Another writer got there first; pick up its log.
		if data, rerr := t.store.LoadAppData(); rerr == nil {
			t.data = data
		}
		return store.DayLog{}, ErrDayLocked
	}
	if err != nil {
		return store.DayLog{}, err
	}
	t.afterChange()
	return entry, nil
}

// ClearLogs deletes every day log. Rules and settings are kept.
func (t *Tracker) ClearLogs() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	err := t.updateData("clear logs", func(d *store.AppData) error {
		d.Logs = map[string]store.DayLog{}
		return nil
	})
	if err != nil {
		return err
	}
	t.afterChange()
	return nil
}

// --- Settings ---

// UpdateWidgetSettings validates and saves the widget settings.
func (t *Tracker) UpdateWidgetSettings(ws store.WidgetSettings) error {
	if ws.Theme != store.WidgetLight && ws.Theme != store.WidgetDark {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, ws.Theme)
	}
	if !isHexColor(ws.AccentColor) {
		return fmt.Errorf("%w: %q", ErrInvalidAccent, ws.AccentColor)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.store.SaveWidgetSettings(ws); err != nil {
		t.logger.Printf("save widget settings: %v", err)
		return err
	}
	t.widgetSettings = ws
	t.notifyWidget()
	return nil
}

// UpdateNotificationSettings validates and saves the reminder settings, then
// reschedules today's reminders.
func (t *Tracker) UpdateNotificationSettings(ns store.NotificationSettings) error {
	if err := reminder.Validate(ns); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.store.SaveNotificationSettings(ns); err != nil {
		t.logger.Printf("save notification settings: %v", err)
		return err
	}
	t.notifySettings = ns
	t.syncReminders()
	return nil
}

// SetAppTheme saves the app theme.
func (t *Tracker) SetAppTheme(theme store.AppTheme) error {
	if !theme.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, theme)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.store.SaveAppTheme(theme); err != nil {
		t.logger.Printf("save app theme: %v", err)
		return err
	}
	t.theme = theme
	return nil
}

// Reschedule recomputes today's reminders and returns how many are pending.
func (t *Tracker) Reschedule(ctx context.Context) (int, error) {
	t.mu.Lock()
	ns := t.notifySettings
	_, logged := t.data.Logs[t.cal.TodayKey()]
	t.mu.Unlock()

	if t.reminders == nil {
		return 0, nil
	}
	return t.reminders.Reschedule(ctx, ns, logged)
}

// --- Internals ---

// updateData runs fn as one read-modify-write of the stored app data and
// adopts the result. Write failures are logged and leave memory untouched.
func (t *Tracker) updateData(op string, fn func(*store.AppData) error) error {
	data, err := t.store.UpdateAppData(fn)
	if err != nil {
		if !errors.Is(err, errNoChange) && !errors.Is(err, ErrDayLocked) {
			t.logger.Printf("%s: %v", op, err)
			return fmt.Errorf("%s: %w", op, err)
		}
		return err
	}
	t.data = data
	return nil
}

// afterChange runs the best-effort side effects of a rule or log change.
// Callers hold mu.
func (t *Tracker) afterChange() {
	t.syncReminders()
	t.notifyWidget()
}

func (t *Tracker) syncReminders() {
	if t.reminders == nil {
		return
	}
	ctx := context.Background()
	if _, logged := t.data.Logs[t.cal.TodayKey()]; logged {
		if err := t.reminders.CancelAll(ctx); err != nil {
			t.logger.Printf("cancel reminders: %v", err)
		}
		return
	}
	if _, err := t.reminders.Reschedule(ctx, t.notifySettings, false); err != nil {
		t.logger.Printf("reschedule reminders: %v", err)
	}
}

func (t *Tracker) notifyWidget() {
	if t.widget != nil {
		t.widget.NotifyDataChanged()
	}
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
