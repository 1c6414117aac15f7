// Package widget keeps the home-screen widget's view of the data: it writes
// the snapshot files the widget reads and renders the widget the way the
// widget itself computes it.
package widget

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tradetrackr/internal/dates"
	"github.com/sadopc/tradetrackr/internal/store"
)

// Summary is what the widget shows: one dot per weekday from the first
// tracking day to today, and the share of green ones.
type Summary struct {
	Green int
	Total int
	Rate  int
	Dots  []bool // true for green
}

// Summarize counts weekdays from the first tracking day through today. An
// unlogged weekday counts as not green. The rate is truncated, not rounded.
func Summarize(logs map[string]store.DayLog, today time.Time) Summary {
	first, ok := dates.FirstTrackingDay(logs)
	if !ok {
		return Summary{}
	}
	var s Summary
	for _, d := range dates.WeekdaysInRange(first, today) {
		green := logs[dates.Format(d)].Status == store.StatusGreen
		s.Total++
		if green {
			s.Green++
		}
		s.Dots = append(s.Dots, green)
	}
	if s.Total > 0 {
		s.Rate = s.Green * 100 / s.Total
	}
	return s
}

type Indicator int

const (
	IndicatorBad Indicator = iota
	IndicatorFair
	IndicatorGood
)

// Indicator grades the rate: good from 80, fair from 50.
func (s Summary) Indicator() Indicator {
	switch {
	case s.Rate >= 80:
		return IndicatorGood
	case s.Rate >= 50:
		return IndicatorFair
	}
	return IndicatorBad
}

type palette struct {
	bg, text, secondary lipgloss.Color
}

var (
	darkPalette  = palette{bg: "#1f2937", text: "#ffffff", secondary: "#9ca3af"}
	lightPalette = palette{bg: "#ffffff", text: "#1f2937", secondary: "#6b7280"}

	colorGood = lipgloss.Color("#22c55e")
	colorBad  = lipgloss.Color("#ef4444")
)

const dot = "●"

// Render draws the widget in a box width cells wide. Green dots use the
// accent color.
func Render(s Summary, ws store.WidgetSettings, width int) string {
	p := darkPalette
	if ws.Theme == store.WidgetLight {
		p = lightPalette
	}
	width = max(width, 16)
	inner := width - 2

	title := lipgloss.NewStyle().Bold(true).Foreground(p.text).Background(p.bg).Render("Trading Rules")
	sub := lipgloss.NewStyle().Foreground(p.secondary).Background(p.bg).
		Render(fmt.Sprintf("%d/%d days", s.Green, s.Total))

	header := title
	if ws.ShowCompletionIndicator {
		color := p.text
		switch s.Indicator() {
		case IndicatorGood:
			color = colorGood
		case IndicatorBad:
			color = colorBad
		}
		pct := lipgloss.NewStyle().Bold(true).Foreground(color).Background(p.bg).Render(fmt.Sprintf("%d%%", s.Rate))
		gap := inner - lipgloss.Width(title) - lipgloss.Width(pct)
		header = title + lipgloss.NewStyle().Background(p.bg).Render(strings.Repeat(" ", max(gap, 1))) + pct
	}

	green := lipgloss.NewStyle().Foreground(lipgloss.Color(ws.AccentColor)).Background(p.bg)
	red := lipgloss.NewStyle().Foreground(colorBad).Background(p.bg)
	sep := lipgloss.NewStyle().Background(p.bg).Render(" ")

	perRow := max((inner+1)/2, 1)
	var rows []string
	for i := 0; i < len(s.Dots); i += perRow {
		end := min(i+perRow, len(s.Dots))
		cells := make([]string, 0, end-i)
		for _, g := range s.Dots[i:end] {
			if g {
				cells = append(cells, green.Render(dot))
			} else {
				cells = append(cells, red.Render(dot))
			}
		}
		rows = append(rows, strings.Join(cells, sep))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, append([]string{header, sub}, rows...)...)
	return lipgloss.NewStyle().
		Background(p.bg).
		Padding(0, 1).
		Width(width).
		Render(body)
}
