package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/tradetrackr/internal/dates"
	"github.com/sadopc/tradetrackr/internal/stats"
	"github.com/sadopc/tradetrackr/internal/store"
	"github.com/sadopc/tradetrackr/internal/tracker"
)

const noTradePrompt = "Mark today as following your plan (no setup)?"

type trackModel struct {
	tracker *tracker.Tracker
	width   int
	height  int

	today time.Time
	month time.Time // first day of the displayed month
	rules []store.Rule
	logs  stats.Logs

	// marks holds today's answers. An absent rule is not marked yet.
	marks  map[string]bool
	cursor int

	confirming bool
}

func newTrackModel(t *tracker.Tracker) trackModel {
	today := t.Today()
	return trackModel{
		tracker: t,
		today:   today,
		month:   dates.StartOfMonth(today),
		marks:   map[string]bool{},
	}
}

func (m *trackModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type trackDataMsg struct {
	today time.Time
	rules []store.Rule
	logs  stats.Logs
}

func (m trackModel) loadData() tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		return trackDataMsg{today: t.Today(), rules: t.Rules(), logs: t.Logs()}
	}
}

func (m trackModel) logged() (store.DayLog, bool) {
	l, ok := m.logs[dates.Format(m.today)]
	return l, ok
}

func (m trackModel) update(msg tea.Msg) (trackModel, tea.Cmd) {
	switch msg := msg.(type) {
	case trackDataMsg:
		if !msg.today.Equal(m.today) {
			m.marks = map[string]bool{}
		}
		m.today, m.rules, m.logs = msg.today, msg.rules, msg.logs
		// Answers for deleted rules no longer count.
		for id := range m.marks {
			if !m.hasRule(id) {
				delete(m.marks, id)
			}
		}
		if m.cursor >= len(m.rules) {
			m.cursor = max(0, len(m.rules)-1)
		}
		return m, nil

	case tea.KeyMsg:
		if m.confirming {
			return m.updateConfirm(msg)
		}

		switch {
		case key.Matches(msg, keys.Left):
			m.month = dates.AddMonths(m.month, -1)
		case key.Matches(msg, keys.Right):
			m.month = dates.AddMonths(m.month, 1)
		case key.Matches(msg, keys.Today):
			m.month = dates.StartOfMonth(m.today)
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.rules)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Toggle), key.Matches(msg, keys.Enter):
			if m.editable() && len(m.rules) > 0 {
				m.toggle(m.rules[m.cursor].ID)
			}
		case key.Matches(msg, keys.Submit):
			if m.editable() {
				return m.submit()
			}
		case key.Matches(msg, keys.NoTrade):
			if m.editable() {
				m.confirming = true
			}
		}
	}
	return m, nil
}

func (m trackModel) hasRule(id string) bool {
	for _, r := range m.rules {
		if r.ID == id {
			return true
		}
	}
	return false
}

// editable reports whether today's checklist can still be changed.
func (m trackModel) editable() bool {
	_, logged := m.logged()
	return !logged && !dates.IsWeekend(m.today)
}

// toggle cycles a rule through unmarked, followed and broken.
func (m *trackModel) toggle(id string) {
	followed, marked := m.marks[id]
	switch {
	case !marked:
		m.marks[id] = true
	case followed:
		m.marks[id] = false
	default:
		delete(m.marks, id)
	}
}

func (m trackModel) submit() (trackModel, tea.Cmd) {
	if len(m.rules) == 0 {
		return m, func() tea.Msg {
			return statusMsg{text: "No rules set up yet. Press 3 to add your trading rules.", isError: true}
		}
	}
	if err := m.tracker.ValidateChecklist(m.marks); err != nil {
		return m, func() tea.Msg { return statusMsg{text: "Please mark all rules before submitting.", isError: true} }
	}
	results := make(map[string]bool, len(m.marks))
	for id, ok := range m.marks {
		results[id] = ok
	}
	return m, m.lock(func() error {
		_, err := m.tracker.SubmitDayLog(results)
		return err
	})
}

func (m trackModel) updateConfirm(msg tea.KeyMsg) (trackModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Yes):
		m.confirming = false
		return m, m.lock(func() error {
			_, err := m.tracker.MarkNoTradeDay()
			return err
		})
	case key.Matches(msg, keys.No):
		m.confirming = false
	}
	return m, nil
}

// lock runs a day-locking mutation and reports the outcome.
func (m trackModel) lock(fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return changedMsg{err: err}
		}
		return changedMsg{text: "Today's log has been recorded"}
	}
}

func (m trackModel) view() string {
	contentWidth := m.width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}

	if m.width >= 100 {
		half := contentWidth/2 - 1
		left := lipgloss.JoinVertical(lipgloss.Left,
			m.renderStatsPanel(half),
			m.renderCalendarPanel(half),
		)
		return lipgloss.JoinHorizontal(lipgloss.Top, left, m.renderTodayPanel(contentWidth-half))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTodayPanel(contentWidth),
		m.renderStatsPanel(contentWidth),
		m.renderCalendarPanel(contentWidth),
	)
}

func (m trackModel) renderStatsPanel(w int) string {
	s := stats.Summarize(m.logs, m.today, stats.MonthRange(m.month))

	cell := func(label, value string, style lipgloss.Style) string {
		return lipgloss.JoinVertical(lipgloss.Center,
			style.Bold(true).Render(value),
			mutedStyle.Render(label),
		)
	}
	cells := []string{
		cell("Streak", fmt.Sprintf("%d", s.Streak), highlightStyle),
		cell("Success", formatPercent(s.Rate), successStyle),
		cell("Missed", fmt.Sprintf("%d", s.Missed), errorStyle),
	}
	colWidth := max((w-6)/len(cells), 8)
	for i, c := range cells {
		cells[i] = lipgloss.NewStyle().Width(colWidth).Align(lipgloss.Center).Render(c)
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(dates.MonthLabel(m.month)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, cells...),
	))
}

func (m trackModel) renderCalendarPanel(w int) string {
	var b strings.Builder
	for _, l := range dates.WeekdayLabels {
		b.WriteString(mutedStyle.Render(fmt.Sprintf(" %3s", l)))
	}

	for i, d := range dates.MonthGrid(m.month) {
		if i%7 == 0 {
			b.WriteString("\n")
		}
		if d.IsZero() {
			b.WriteString("    ")
			continue
		}
		style := statusStyle(stats.DayStatus(m.logs, d, m.today))
		if dates.IsToday(d, m.today) {
			style = style.Inherit(todayCellStyle)
		}
		b.WriteString(" " + style.Render(fmt.Sprintf("%3d", d.Day())))
	}

	legend := successStyle.Render("■ followed") + "  " +
		errorStyle.Render("■ broken") + "  " +
		lipgloss.NewStyle().Foreground(colorGrey).Render("■ not logged")

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		b.String(),
		"",
		legend,
		mutedStyle.Render("←/→: month  g: this month"),
	))
}

func (m trackModel) renderTodayPanel(w int) string {
	title := titleStyle.Render("Today") + "  " + mutedStyle.Render(m.today.Format("Monday, January 2"))

	if l, ok := m.logged(); ok {
		return panelStyle.Width(w).Render(m.renderLogged(title, l))
	}
	if dates.IsWeekend(m.today) {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("Weekend. No trading, nothing to log."),
		))
	}
	if len(m.rules) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("No rules set up yet. Press 3 to add your trading rules."),
		))
	}
	if m.confirming {
		return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", warningStyle.Render(noTradePrompt), "", mutedStyle.Render("y: yes  n: cancel"),
		))
	}

	rows := []string{title, "", mutedStyle.Render("Did you follow your rules?")}
	for i, r := range m.rules {
		box := mutedStyle.Render("[ ]")
		if followed, marked := m.marks[r.ID]; marked {
			if followed {
				box = successStyle.Render("[✓]")
			} else {
				box = errorStyle.Render("[✗]")
			}
		}
		cursor, style := "  ", normalItemStyle
		if i == m.cursor {
			cursor, style = "> ", selectedItemStyle
		}
		rows = append(rows, cursor+box+" "+style.Render(r.Text))
	}
	rows = append(rows, "",
		mutedStyle.Render(fmt.Sprintf("%d/%d marked", len(m.marks), len(m.rules))),
		mutedStyle.Render("space: mark  s: submit  t: no trade day"),
	)
	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m trackModel) renderLogged(title string, l store.DayLog) string {
	status := successStyle.Render("● Green day")
	if l.Status == store.StatusRed {
		status = errorStyle.Render("● Red day")
	}
	rows := []string{title, "", status, mutedStyle.Render("Today's log has been recorded")}

	results, ok := l.Results()
	if !ok {
		rows = append(rows, "", highlightStyle.Render("No Trade Day"))
		return strings.Join(rows, "\n")
	}

	followed, broken := 0, 0
	for _, v := range results {
		if v {
			followed++
		} else {
			broken++
		}
	}
	var brokenRules []string
	for _, r := range m.rules {
		if v, answered := results[r.ID]; answered && !v {
			brokenRules = append(brokenRules, r.Text)
		}
	}
	rows = append(rows, "",
		successStyle.Render(fmt.Sprintf("Rules Followed  %d", followed)),
		errorStyle.Render(fmt.Sprintf("Rules Broken    %d", broken)),
	)
	for _, text := range brokenRules {
		rows = append(rows, mutedStyle.Render("  ✗ "+text))
	}
	return strings.Join(rows, "\n")
}
