package dates

import (
	"fmt"
	"sort"
	"time"
	_ "time/tzdata"
)

// Layout is the storage format for calendar days.
const Layout = "2006-01-02"

// DefaultZone is the reference timezone that decides what "today" is.
const DefaultZone = "America/New_York"

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant. Used by tests and fixtures.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// Calendar resolves instants into calendar days in one fixed timezone so that
// every today/past/future decision in the program agrees, whatever the
// machine's local zone is.
type Calendar struct {
	clock Clock
	loc   *time.Location
}

// NewCalendar builds a Calendar. A nil clock means the system clock and a nil
// location means DefaultZone.
func NewCalendar(clock Clock, loc *time.Location) Calendar {
	if clock == nil {
		clock = SystemClock{}
	}
	if loc == nil {
		loc = MustZone(DefaultZone)
	}
	return Calendar{clock: clock, loc: loc}
}

// LoadZone loads a named timezone, falling back to DefaultZone for "".
func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

// MustZone is LoadZone for names known at compile time.
func MustZone(name string) *time.Location {
	loc, err := LoadZone(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// Location returns the reference timezone.
func (c Calendar) Location() *time.Location { return c.loc }

// Now returns the current instant in the reference timezone.
func (c Calendar) Now() time.Time { return c.clock.Now().In(c.loc) }

// Today returns the current calendar day in the reference timezone.
func (c Calendar) Today() time.Time { return Day(c.Now()) }

// TodayKey is Today formatted as a storage key.
func (c Calendar) TodayKey() string { return Format(c.Today()) }

// Day strips the time of day, keeping the calendar date as seen in t's own
// location. Days are represented as midnight UTC so that AddDate never
// crosses a DST boundary.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Format renders a day as YYYY-MM-DD.
func Format(d time.Time) string { return d.Format(Layout) }

// Parse reads a YYYY-MM-DD key.
func Parse(s string) (time.Time, error) {
	d, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return d, nil
}

// MustParse is Parse for keys known to be valid.
func MustParse(s string) time.Time {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsWeekend reports whether d falls on Saturday or Sunday.
func IsWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsPast reports whether d is strictly before today.
func IsPast(d, today time.Time) bool { return Day(d).Before(Day(today)) }

// IsToday reports whether d and today are the same calendar day.
func IsToday(d, today time.Time) bool { return Day(d).Equal(Day(today)) }

// IsFuture reports whether d is strictly after today.
func IsFuture(d, today time.Time) bool { return Day(d).After(Day(today)) }

// WeekdaysInRange lists every Monday-Friday from start to end inclusive.
func WeekdaysInRange(start, end time.Time) []time.Time {
	start, end = Day(start), Day(end)
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if !IsWeekend(d) {
			days = append(days, d)
		}
	}
	return days
}

// StartOfMonth returns the first day of d's month.
func StartOfMonth(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// EndOfMonth returns the last day of d's month.
func EndOfMonth(d time.Time) time.Time {
	return StartOfMonth(d).AddDate(0, 1, -1)
}

// WeekdaysInMonth lists the Monday-Friday days of d's month.
func WeekdaysInMonth(d time.Time) []time.Time {
	return WeekdaysInRange(StartOfMonth(d), EndOfMonth(d))
}

// StartOfWeek returns the Monday on or before d.
func StartOfWeek(d time.Time) time.Time {
	d = Day(d)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// AddMonths moves d by n months, clamping to the last day of the target
// month (Jan 31 + 1 month is Feb 28/29, not Mar 3).
func AddMonths(d time.Time, n int) time.Time {
	d = Day(d)
	first := time.Date(d.Year(), d.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := EndOfMonth(first).Day()
	day := d.Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// MonthLabel renders "January 2026".
func MonthLabel(d time.Time) string { return d.Format("January 2006") }

// MonthGrid lays out d's month in a Monday-first, 7-column grid. Cells before
// the 1st and after the last day are zero times; the result length is a
// multiple of 7.
func MonthGrid(d time.Time) []time.Time {
	first := StartOfMonth(d)
	last := EndOfMonth(d)

	lead := (int(first.Weekday()) + 6) % 7
	grid := make([]time.Time, lead, lead+42)
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		grid = append(grid, day)
	}
	for len(grid)%7 != 0 {
		grid = append(grid, time.Time{})
	}
	return grid
}

// FirstTrackingDay returns the earliest date key in logs. Keys that do not
// parse are ignored.
func FirstTrackingDay[V any](logs map[string]V) (time.Time, bool) {
	keys := make([]string, 0, len(logs))
	for k := range logs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if d, err := Parse(k); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// WeekdayLabels are the Monday-first column headers of MonthGrid.
var WeekdayLabels = []string{"M", "T", "W", "T", "F", "S", "S"}
