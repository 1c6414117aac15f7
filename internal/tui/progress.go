package tui

import (
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/tradetrackr/internal/stats"
	"github.com/sadopc/tradetrackr/internal/tracker"
)

type progressMode int

const (
	progressQuarter progressMode = iota
	progressGoal
)

// chartWeeks is how many weeks, ending with the current one, the weekly
// rate chart shows.
const chartWeeks = 12

type progressModel struct {
	tracker *tracker.Tracker
	width   int
	height  int

	mode  progressMode
	today time.Time
	logs  stats.Logs

	grid  stats.DotGrid
	weeks []stats.WeekRate
	chart barchart.Model
}

func newProgressModel(t *tracker.Tracker) progressModel {
	return progressModel{
		tracker: t,
		chart:   barchart.New(60, 10),
	}
}

func (p *progressModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type progressDataMsg struct {
	today time.Time
	logs  stats.Logs
}

func (p progressModel) refresh() tea.Cmd {
	t := p.tracker
	return func() tea.Msg {
		return progressDataMsg{today: t.Today(), logs: t.Logs()}
	}
}

func (p progressModel) update(msg tea.Msg) (progressModel, tea.Cmd) {
	switch msg := msg.(type) {
	case progressDataMsg:
		p.today, p.logs = msg.today, msg.logs
		p.rebuild()
		return p, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Mode) {
			if p.mode == progressQuarter {
				p.mode = progressGoal
			} else {
				p.mode = progressQuarter
			}
			p.rebuild()
		}
	}
	return p, nil
}

func (p progressModel) columns() int {
	if p.mode == progressGoal {
		return stats.GoalColumns
	}
	return stats.QuarterColumns
}

func (p progressModel) rangeFor() (stats.Range, bool) {
	if p.mode == progressGoal {
		return stats.GoalRange(p.logs)
	}
	return stats.QuarterRange(p.logs, p.today)
}

// rebuild recomputes the dot grid and the weekly chart.
func (p *progressModel) rebuild() {
	r, ok := p.rangeFor()
	if !ok {
		p.grid, p.weeks = stats.DotGrid{}, nil
		return
	}
	p.grid = stats.BuildDotGrid(p.logs, p.today, r)

	var elapsed []stats.WeekRate
	for _, w := range stats.WeeklyRates(p.logs, p.today, r) {
		if !w.Start.After(p.today) {
			elapsed = append(elapsed, w)
		}
	}
	if len(elapsed) > chartWeeks {
		elapsed = elapsed[len(elapsed)-chartWeeks:]
	}
	p.weeks = elapsed
	p.buildChart()
}

func (p *progressModel) buildChart() {
	chartWidth := p.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if p.height > 36 {
		chartHeight = 14
	}

	p.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, w := range p.weeks {
		style := successStyle
		switch {
		case !w.HasRate:
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		case w.Rate < 50:
			style = errorStyle
		case w.Rate < 80:
			style = warningStyle
		}
		bars = append(bars, barchart.BarData{
			Label:  w.Start.Format("01/02"),
			Values: []barchart.BarValue{{Name: w.Label(), Value: float64(w.Rate), Style: style}},
		})
	}

	p.chart.PushAll(bars)
	p.chart.Draw()
}

func (p progressModel) view() string {
	w := p.width - 4

	quarterTab := inactiveTabStyle.Render("Quarter")
	goalTab := inactiveTabStyle.Render("Yearly Goal")
	if p.mode == progressQuarter {
		quarterTab = activeTabStyle.Render("Quarter")
	} else {
		goalTab = activeTabStyle.Render("Yearly Goal")
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Progress"), "  ", quarterTab, goalTab,
	)
	nav := mutedStyle.Render("  v: quarter/yearly goal")

	if len(p.grid.Dots) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header, "", mutedStyle.Render("  Nothing logged yet. Your progress starts with the first logged day."), "", nav,
		))
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		highlightStyle.Render("  "+p.grid.Header()),
		"",
		p.renderGrid(),
		"",
		titleStyle.Render("  Weekly success rate"),
		p.chart.View(),
		p.renderWeekLabels(),
		"",
		nav,
	))
}

var dotStyles = map[stats.DotType]lipgloss.Style{
	stats.DotGreen:  successStyle,
	stats.DotRed:    errorStyle,
	stats.DotBefore: mutedStyle,
	stats.DotFuture: lipgloss.NewStyle().Foreground(colorSubtle),
}

func (p progressModel) renderGrid() string {
	var rows []string
	for _, row := range p.grid.Rows(p.columns()) {
		cells := make([]string, len(row))
		for i, d := range row {
			glyph := "●"
			if d.Type == stats.DotFuture || d.Type == stats.DotBefore {
				glyph = "○"
			}
			cells[i] = dotStyles[d.Type].Render(glyph)
		}
		rows = append(rows, "  "+strings.Join(cells, " "))
	}
	return strings.Join(rows, "\n")
}

func (p progressModel) renderWeekLabels() string {
	if len(p.weeks) == 0 {
		return ""
	}
	labels := make([]string, len(p.weeks))
	for i, w := range p.weeks {
		labels[i] = w.Start.Format("Jan 2") + " " + w.Label()
	}
	return mutedStyle.Render("  " + strings.Join(labels, " · "))
}
