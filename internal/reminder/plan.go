// Package reminder turns the notification settings into a bounded list of
// reminder instants for today and hands them to a Dispatcher.
package reminder

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/sadopc/tradetrackr/internal/dates"
	"github.com/sadopc/tradetrackr/internal/store"
)

// MaxReminders caps how many reminders one day can schedule.
const MaxReminders = 50

var ErrInvalidInterval = errors.New("interval must be 5, 15, 30 or 60 minutes")

// Validate checks the window times and the interval.
func Validate(ns store.NotificationSettings) error {
	if _, err := dates.ParseClock(ns.StartTime); err != nil {
		return fmt.Errorf("start time: %w", err)
	}
	if _, err := dates.ParseClock(ns.EndTime); err != nil {
		return fmt.Errorf("end time: %w", err)
	}
	if !slices.Contains(store.ReminderIntervals, ns.Interval) {
		return fmt.Errorf("%w: got %d", ErrInvalidInterval, ns.Interval)
	}
	return nil
}

// Plan returns today's reminder instants. now must already be in the
// reference timezone. Nothing is planned when reminders are off, today is
// logged, today is a weekend, or the window has closed.
//
// Inside the window the first reminder is now rounded up to the next
// multiple of the interval within the hour, with seconds dropped; before the
// window it is the window start. Reminders repeat every interval while
// strictly before the window end.
func Plan(ns store.NotificationSettings, now time.Time, todayLogged bool) ([]time.Time, error) {
	if !ns.Enabled || todayLogged || dates.IsWeekend(now) {
		return nil, nil
	}
	if err := Validate(ns); err != nil {
		return nil, err
	}
	startClock, _ := dates.ParseClock(ns.StartTime)
	endClock, _ := dates.ParseClock(ns.EndTime)
	start, end := startClock.On(now), endClock.On(now)

	if !now.Before(end) {
		return nil, nil
	}

	step := time.Duration(ns.Interval) * time.Minute
	next := start
	if now.After(start) {
		rounded := (now.Minute() + ns.Interval - 1) / ns.Interval * ns.Interval
		hour := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
		next = hour.Add(time.Duration(rounded) * time.Minute)
	}

	var out []time.Time
	for next.Before(end) && len(out) < MaxReminders {
		out = append(out, next)
		next = next.Add(step)
	}
	return out, nil
}
