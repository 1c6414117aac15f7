// Package stats derives day statuses, streaks, rates and dot grids from the
// day logs. Everything here is a pure function of (logs, today, range).
package stats

import (
	"math"
	"strconv"
	"time"

	"github.com/sadopc/tradetrackr/internal/dates"
	"github.com/sadopc/tradetrackr/internal/store"
)

// Logs is the date-keyed log mapping.
type Logs = map[string]store.DayLog

// Range is an inclusive span of calendar days.
type Range struct {
	Start time.Time
	End   time.Time
}

// Weekdays lists the Monday-Friday days of the range.
func (r Range) Weekdays() []time.Time { return dates.WeekdaysInRange(r.Start, r.End) }

// MonthRange covers the whole month containing d.
func MonthRange(d time.Time) Range {
	return Range{Start: dates.StartOfMonth(d), End: dates.EndOfMonth(d)}
}

// QuarterRange runs from three months before today (never earlier than the
// first tracking day) to three months after today. ok is false when nothing
// has been logged yet.
func QuarterRange(logs Logs, today time.Time) (Range, bool) {
	first, ok := dates.FirstTrackingDay(logs)
	if !ok {
		return Range{}, false
	}
	today = dates.Day(today)
	start := dates.AddMonths(today, -3)
	if first.After(start) {
		start = first
	}
	return Range{Start: start, End: dates.AddMonths(today, 3)}, true
}

// GoalRange is the twelve months starting at the first tracking day.
func GoalRange(logs Logs) (Range, bool) {
	first, ok := dates.FirstTrackingDay(logs)
	if !ok {
		return Range{}, false
	}
	return Range{Start: first, End: dates.AddMonths(first, 12)}, true
}

// DayStatus derives the status shown for d: none on weekends whatever is
// stored, the stored status when logged, grey for unlogged past weekdays and
// none for today or later.
func DayStatus(logs Logs, d, today time.Time) store.Status {
	d = dates.Day(d)
	if dates.IsWeekend(d) {
		return store.StatusNone
	}
	if log, ok := logs[dates.Format(d)]; ok {
		return log.Status
	}
	if dates.IsPast(d, today) {
		return store.StatusGrey
	}
	return store.StatusNone
}

// Summary is the headline numbers of a range.
type Summary struct {
	Streak int
	Rate   int
	Missed int
	Green  int
	Red    int
	Grey   int
}

// Summarize computes streak, rate and missed count over the weekdays of r up
// to and including today.
func Summarize(logs Logs, today time.Time, r Range) Summary {
	today = dates.Day(today)
	var s Summary
	elapsed := elapsedWeekdays(r, today)
	for _, d := range elapsed {
		switch logs[dates.Format(d)].Status {
		case store.StatusGreen:
			s.Green++
		case store.StatusRed:
			s.Red++
		default:
			s.Grey++
		}
	}
	s.Rate = rate(s.Green, s.Red)
	s.Missed = s.Red
	s.Streak = streak(logs, elapsed)
	return s
}

// Rate is round(100*green/(green+red)) over the range weekdays up to today.
// Unlogged and grey days count in neither term; no logged days gives 0.
func Rate(logs Logs, today time.Time, r Range) int {
	return Summarize(logs, today, r).Rate
}

// Streak counts green days walking backward from the most recent weekday on
// or before today. Unlogged and grey days are skipped. The first red day ends
// the count for good.
func Streak(logs Logs, today time.Time, r Range) int {
	return streak(logs, elapsedWeekdays(r, dates.Day(today)))
}

// Missed counts red weekdays in the range up to today.
func Missed(logs Logs, today time.Time, r Range) int {
	return Summarize(logs, today, r).Missed
}

func streak(logs Logs, elapsed []time.Time) int {
	n := 0
	for i := len(elapsed) - 1; i >= 0; i-- {
		switch logs[dates.Format(elapsed[i])].Status {
		case store.StatusGreen:
			n++
		case store.StatusRed:
			return n
		}
	}
	return n
}

func elapsedWeekdays(r Range, today time.Time) []time.Time {
	all := r.Weekdays()
	n := 0
	for n < len(all) && !all[n].After(today) {
		n++
	}
	return all[:n]
}

func rate(green, red int) int {
	total := green + red
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(green) / float64(total) * 100))
}

// WeekRate is the rate of one Monday-aligned week.
type WeekRate struct {
	Start   time.Time // Monday
	Green   int
	Red     int
	Rate    int
	HasRate bool // false when no weekday of the week has been logged yet
}

// Label renders the week's rate, or a dash when it has none.
func (w WeekRate) Label() string {
	if !w.HasRate {
		return "–"
	}
	return strconv.Itoa(w.Rate) + "%"
}

// WeeklyRates splits r into Monday-aligned weeks and rates each over its
// weekdays that fall inside r and on or before today.
func WeeklyRates(logs Logs, today time.Time, r Range) []WeekRate {
	today = dates.Day(today)
	start, end := dates.Day(r.Start), dates.Day(r.End)
	if end.Before(start) {
		return nil
	}

	var weeks []WeekRate
	for monday := dates.StartOfWeek(start); !monday.After(end); monday = monday.AddDate(0, 0, 7) {
		w := WeekRate{Start: monday}
		inRange := 0
		for i := 0; i < 5; i++ {
			d := monday.AddDate(0, 0, i)
			if d.Before(start) || d.After(end) {
				continue
			}
			inRange++
			if d.After(today) {
				continue
			}
			switch logs[dates.Format(d)].Status {
			case store.StatusGreen:
				w.Green++
			case store.StatusRed:
				w.Red++
			}
		}
		if inRange == 0 {
			continue
		}
		if w.Green+w.Red > 0 {
			w.HasRate = true
			w.Rate = rate(w.Green, w.Red)
		}
		weeks = append(weeks, w)
	}
	return weeks
}
