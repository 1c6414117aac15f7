// Package tui is the interactive terminal UI: today's checklist, the month
// calendar, progress grids, rules and settings.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/tradetrackr/internal/export"
	"github.com/sadopc/tradetrackr/internal/store"
	"github.com/sadopc/tradetrackr/internal/tracker"
)

// Reminders is the queue the tick drains.
type Reminders interface {
	HasPermission(ctx context.Context) (bool, error)
	Due() ([]store.PendingNotification, error)
}

// Options wires the UI to the application.
type Options struct {
	Tracker     *tracker.Tracker
	Reminders   Reminders
	Permissions Permissions
	// SystemDark is the terminal appearance used by the "system" theme.
	SystemDark bool
	// ExportDir is where exports are written. Empty means the home
	// directory.
	ExportDir string
}

// App is the root Bubble Tea model.
type App struct {
	opts   Options
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	today         time.Time

	track    trackModel
	progress progressModel
	rules    rulesModel
	settings settingsModel

	help    help.Model
	status  string
	isError bool
}

func NewApp(opts Options) App {
	h := help.New()
	h.ShowAll = false

	applyTheme(opts.Tracker.EffectiveTheme(opts.SystemDark))

	return App{
		opts:       opts,
		activeView: viewTrack,
		today:      opts.Tracker.Today(),
		track:      newTrackModel(opts.Tracker),
		progress:   newProgressModel(opts.Tracker),
		rules:      newRulesModel(opts.Tracker),
		settings:   newSettingsModel(opts.Tracker, opts.Permissions),
		help:       h,
	}
}

// Run starts the UI and blocks until it exits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(NewApp(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.reloadAll(),
		tickCmd(),
	)
}

const tickInterval = 15 * time.Second

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) reloadAll() tea.Cmd {
	return tea.Batch(
		a.track.loadData(),
		a.progress.refresh(),
		a.rules.refresh(),
		a.settings.refresh(),
	)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.track.setSize(a.width, contentHeight)
		a.progress.setSize(a.width, contentHeight)
		a.rules.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, a.progress.refresh()

	case tea.KeyMsg:
		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewTrack
			return a, a.track.loadData()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewProgress
			return a, a.progress.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewRules
			return a, a.rules.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		return a, tea.Batch(tickCmd(), a.checkDay(), a.pollReminders())

	case dayChangedMsg:
		a.today = msg.today
		a.status, a.isError = "", false
		t := a.opts.Tracker
		return a, tea.Batch(a.reloadAll(), func() tea.Msg {
			if _, err := t.Reschedule(context.Background()); err != nil {
				return errStatus(err)
			}
			return nil
		})

	case remindersDueMsg:
		if len(msg.due) > 0 {
			n := msg.due[len(msg.due)-1]
			a.status, a.isError = fmt.Sprintf("🔔 %s: %s", n.Title, n.Body), false
		}
		return a, nil

	case changedMsg:
		if msg.err != nil {
			a.status, a.isError = errStatus(msg.err).text, true
		} else {
			a.status, a.isError = msg.text, false
		}
		applyTheme(a.opts.Tracker.EffectiveTheme(a.opts.SystemDark))
		return a, a.reloadAll()

	case statusMsg:
		a.status, a.isError = msg.text, msg.isError
		return a, nil

	case exportDoneMsg:
		a.status, a.isError = "Exported to "+msg.path, false
		a.exportPicking = false
		return a, nil

	case trackDataMsg:
		a.track, _ = a.track.update(msg)
		return a, nil

	case progressDataMsg:
		a.progress, _ = a.progress.update(msg)
		return a, nil

	case rulesDataMsg:
		a.rules, _ = a.rules.update(msg)
		return a, nil

	case settingsDataMsg:
		a.settings, _ = a.settings.update(msg)
		return a, nil
	}

	return a.updateActiveView(msg)
}

// checkDay reports a rollover of the reference calendar day.
func (a App) checkDay() tea.Cmd {
	t, last := a.opts.Tracker, a.today
	return func() tea.Msg {
		if today := t.Today(); !today.Equal(last) {
			return dayChangedMsg{today: today}
		}
		return nil
	}
}

// pollReminders pops due reminders. Without permission they stay queued.
func (a App) pollReminders() tea.Cmd {
	r := a.opts.Reminders
	if r == nil {
		return nil
	}
	return func() tea.Msg {
		ok, err := r.HasPermission(context.Background())
		if err != nil || !ok {
			return nil
		}
		due, err := r.Due()
		if err != nil {
			return errStatus(err)
		}
		if len(due) == 0 {
			return nil
		}
		return remindersDueMsg{due: due}
	}
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTrack:
		a.track, cmd = a.track.update(msg)
	case viewProgress:
		a.progress, cmd = a.progress.update(msg)
	case viewRules:
		a.rules, cmd = a.rules.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTrack:
		return a.track.confirming
	case viewRules:
		return a.rules.capturing()
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewTrack:
		return a.track.loadData()
	case viewProgress:
		return a.progress.refresh()
	case viewRules:
		return a.rules.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTrack:
		content = a.track.view()
	case viewProgress:
		content = a.progress.view()
	case viewRules:
		content = a.rules.view()
	case viewSettings:
		content = a.settings.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("tradetrackr")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.isError {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	left := footerStyle.Render(helpView)

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(status) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, status)
}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export Format"), ""}
	for i, f := range export.Formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+string(f)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(export.Formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(export.Formats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(f export.Format) tea.Cmd {
	t, dir := a.opts.Tracker, a.opts.ExportDir
	return func() tea.Msg {
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
			}
			dir = home
		}

		cal := t.Calendar()
		data := store.AppData{Rules: t.Rules(), Logs: t.Logs()}
		path := filepath.Join(dir, export.FileName(f, cal.Today()))
		if err := export.Write(f, data, path, cal.Now()); err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
