package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/tradetrackr/internal/dates"
	"github.com/sadopc/tradetrackr/internal/store"
	"github.com/sadopc/tradetrackr/internal/tracker"
)

// Permissions asks the user whether reminders may be delivered.
type Permissions interface {
	RequestPermission(ctx context.Context) (bool, error)
}

type settingsModel struct {
	tracker     *tracker.Tracker
	permissions Permissions
	width       int
	height      int

	notify store.NotificationSettings
	widget store.WidgetSettings
	theme  store.AppTheme

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	enabled     *bool
	startTime   *string
	endTime     *string
	interval    *int
	widgetTheme *string
	accent      *string
	indicator   *bool
	appTheme    *string
}

func newSettingsModel(t *tracker.Tracker, p Permissions) settingsModel {
	var enabled, indicator bool
	var start, end, wt, accent, theme string
	var interval int
	return settingsModel{
		tracker:     t,
		permissions: p,
		enabled:     &enabled,
		startTime:   &start,
		endTime:     &end,
		interval:    &interval,
		widgetTheme: &wt,
		accent:      &accent,
		indicator:   &indicator,
		appTheme:    &theme,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	notify store.NotificationSettings
	widget store.WidgetSettings
	theme  store.AppTheme
}

func (s settingsModel) refresh() tea.Cmd {
	t := s.tracker
	return func() tea.Msg {
		return settingsDataMsg{
			notify: t.NotificationSettings(),
			widget: t.WidgetSettings(),
			theme:  t.AppTheme(),
		}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.notify, s.widget, s.theme = msg.notify, msg.widget, msg.theme
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func validateClock(v string) error {
	_, err := dates.ParseClock(v)
	return err
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	// Load current values
	*s.enabled = s.notify.Enabled
	*s.startTime = s.notify.StartTime
	*s.endTime = s.notify.EndTime
	*s.interval = s.notify.Interval
	*s.widgetTheme = string(s.widget.Theme)
	*s.accent = s.widget.AccentColor
	*s.indicator = s.widget.ShowCompletionIndicator
	*s.appTheme = string(s.theme)

	intervals := make([]huh.Option[int], len(store.ReminderIntervals))
	for i, m := range store.ReminderIntervals {
		intervals[i] = huh.NewOption(fmt.Sprintf("Every %d minutes", m), m)
	}
	accents := make([]huh.Option[string], len(store.AccentColors))
	for i, c := range store.AccentColors {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render("●")
		accents[i] = huh.NewOption(dot+" "+c, c)
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title("Remind me to log the day").Value(s.enabled),
			huh.NewInput().Title("Start time (HH:mm)").Validate(validateClock).Value(s.startTime),
			huh.NewInput().Title("End time (HH:mm)").Validate(validateClock).Value(s.endTime),
			huh.NewSelect[int]().Title("Interval").Options(intervals...).Value(s.interval),
		).Title("Reminders"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Widget theme").
				Options(
					huh.NewOption("Dark", string(store.WidgetDark)),
					huh.NewOption("Light", string(store.WidgetLight)),
				).Value(s.widgetTheme),
			huh.NewSelect[string]().Title("Accent color").Options(accents...).Value(s.accent),
			huh.NewConfirm().Title("Show completion indicator").Value(s.indicator),
		).Title("Widget"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("App theme").
				Options(
					huh.NewOption("System", string(store.ThemeSystem)),
					huh.NewOption("Light", string(store.ThemeLight)),
					huh.NewOption("Dark", string(store.ThemeDark)),
				).Value(s.appTheme),
		).Title("Appearance"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		return s, s.save(s.formValues())
	}

	return s, cmd
}

// formSettings is what the settings form submits.
type formSettings struct {
	notify store.NotificationSettings
	widget store.WidgetSettings
	theme  store.AppTheme
}

func (s settingsModel) formValues() formSettings {
	return formSettings{
		notify: store.NotificationSettings{
			Enabled:   *s.enabled,
			StartTime: strings.TrimSpace(*s.startTime),
			EndTime:   strings.TrimSpace(*s.endTime),
			Interval:  *s.interval,
		},
		widget: store.WidgetSettings{
			Theme:                   store.WidgetTheme(*s.widgetTheme),
			AccentColor:             *s.accent,
			ShowCompletionIndicator: *s.indicator,
		},
		theme: store.AppTheme(*s.appTheme),
	}
}

// save writes the three settings records. Turning reminders on asks for
// permission first.
func (s settingsModel) save(v formSettings) tea.Cmd {
	t, perms := s.tracker, s.permissions
	wasEnabled := s.notify.Enabled
	return func() tea.Msg {
		text := "Settings saved"
		if v.notify.Enabled && !wasEnabled && perms != nil {
			granted, err := perms.RequestPermission(context.Background())
			if err != nil {
				return changedMsg{err: err}
			}
			if !granted {
				text = "Settings saved. Notification permission denied, reminders will not be delivered."
			}
		}
		err := errors.Join(
			t.UpdateNotificationSettings(v.notify),
			t.UpdateWidgetSettings(v.widget),
			t.SetAppTheme(v.theme),
		)
		if err != nil {
			return changedMsg{err: err}
		}
		return changedMsg{text: text}
	}
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	reminders := "Off"
	if s.notify.Enabled {
		reminders = fmt.Sprintf("%s–%s, every %d min", s.notify.StartTime, s.notify.EndTime, s.notify.Interval)
	}
	indicator := "hidden"
	if s.widget.ShowCompletionIndicator {
		indicator = "shown"
	}
	accent := lipgloss.NewStyle().Foreground(lipgloss.Color(s.widget.AccentColor)).Render("●")

	items := []struct{ label, value string }{
		{"Reminders", reminders},
		{"Widget theme", string(s.widget.Theme)},
		{"Widget accent", accent + " " + s.widget.AccentColor},
		{"Completion indicator", indicator},
		{"App theme", string(s.theme)},
	}

	rows := []string{title, ""}
	for _, it := range items {
		label := lipgloss.NewStyle().Width(24).Render(it.label)
		rows = append(rows, fmt.Sprintf("  %s %s", label, highlightStyle.Render(it.value)))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
