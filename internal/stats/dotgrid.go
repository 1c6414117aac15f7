package stats

import (
	"fmt"
	"time"

	"github.com/sadopc/tradetrackr/internal/dates"
	"github.com/sadopc/tradetrackr/internal/store"
)

type DotType int

const (
	DotFuture DotType = iota
	DotBefore
	DotGreen
	DotRed
)

func (t DotType) String() string {
	switch t {
	case DotFuture:
		return "future"
	case DotBefore:
		return "before"
	case DotGreen:
		return "green"
	case DotRed:
		return "red"
	}
	return "unknown"
}

// Column counts used when laying the grids out in rows.
const (
	QuarterColumns = 12
	GoalColumns    = 16
)

type Dot struct {
	Date time.Time
	Type DotType
}

// DotGrid is one dot per weekday of a range.
type DotGrid struct {
	Dots    []Dot
	Green   int
	Tracked int
	Future  int
}

// Rate is round(100*green/tracked), 0 when nothing is tracked.
func (g DotGrid) Rate() int {
	if g.Tracked == 0 {
		return 0
	}
	return rate(g.Green, g.Tracked-g.Green)
}

// Header renders "green/tracked (rate%) • n to go".
func (g DotGrid) Header() string {
	return fmt.Sprintf("%d/%d (%d%%) • %d to go", g.Green, g.Tracked, g.Rate(), g.Future)
}

// Rows splits the dots into rows of the given width.
func (g DotGrid) Rows(columns int) [][]Dot {
	if columns <= 0 {
		columns = 1
	}
	var rows [][]Dot
	for i := 0; i < len(g.Dots); i += columns {
		end := min(i+columns, len(g.Dots))
		rows = append(rows, g.Dots[i:end])
	}
	return rows
}

// BuildDotGrid classifies every weekday of r. Days after today are future,
// days before the first tracking day are before, and every other day is
// tracked: green when its log is green, red otherwise (an unlogged past day
// counts against the rate here). An empty log mapping gives an empty grid.
func BuildDotGrid(logs Logs, today time.Time, r Range) DotGrid {
	first, ok := dates.FirstTrackingDay(logs)
	if !ok {
		return DotGrid{}
	}
	today = dates.Day(today)

	var g DotGrid
	for _, d := range r.Weekdays() {
		dot := Dot{Date: d}
		switch {
		case d.After(today):
			dot.Type = DotFuture
			g.Future++
		case d.Before(first):
			dot.Type = DotBefore
		default:
			g.Tracked++
			if logs[dates.Format(d)].Status == store.StatusGreen {
				dot.Type = DotGreen
				g.Green++
			} else {
				dot.Type = DotRed
			}
		}
		g.Dots = append(g.Dots, dot)
	}
	return g
}
