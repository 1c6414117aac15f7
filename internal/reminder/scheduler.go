package reminder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sadopc/tradetrackr/internal/dates"
	"github.com/sadopc/tradetrackr/internal/store"
)

// Tag prefixes the id of every reminder this package schedules. Other
// notifications are never touched.
const Tag = "trading-reminder"

const (
	Title = "Trading Rules Check"
	Body  = "Did you follow your trading rules today? Don't forget to log!"
)

// Payload is what the user sees when a reminder fires.
type Payload struct {
	Title string
	Body  string
}

// Dispatcher delivers notifications at a later time.
type Dispatcher interface {
	ScheduleAt(ctx context.Context, id string, secondsFromNow int, p Payload) error
	Cancel(ctx context.Context, id string) error
	ListScheduled(ctx context.Context) ([]string, error)
	HasPermission(ctx context.Context) (bool, error)
	RequestPermission(ctx context.Context) (bool, error)
}

// Scheduler recomputes the day's reminders from scratch on every change.
type Scheduler struct {
	dispatcher Dispatcher
	cal        dates.Calendar
	logger     *log.Logger
}

func NewScheduler(d Dispatcher, cal dates.Calendar, logger *log.Logger) *Scheduler {
	return &Scheduler{dispatcher: d, cal: cal, logger: logger}
}

// ReminderID is the id of the n-th reminder of the day.
func ReminderID(n int) string { return fmt.Sprintf("%s-%d", Tag, n) }

// Reschedule cancels every pending reminder and schedules today's plan. It
// returns how many reminders were scheduled; zero without permission.
func (s *Scheduler) Reschedule(ctx context.Context, ns store.NotificationSettings, todayLogged bool) (int, error) {
	if err := s.CancelAll(ctx); err != nil {
		return 0, err
	}

	now := s.cal.Now()
	if !ns.Enabled || todayLogged || dates.IsWeekend(now) {
		return 0, nil
	}

	granted, err := s.dispatcher.HasPermission(ctx)
	if err != nil {
		return 0, fmt.Errorf("check notification permission: %w", err)
	}
	if !granted {
		s.logger.Printf("reminders enabled but notification permission not granted")
		return 0, nil
	}

	instants, err := Plan(ns, now, todayLogged)
	if err != nil {
		return 0, err
	}

	payload := Payload{Title: Title, Body: Body}
	for i, at := range instants {
		secs := max(1, int(at.Sub(now)/time.Second))
		if err := s.dispatcher.ScheduleAt(ctx, ReminderID(i), secs, payload); err != nil {
			return i, fmt.Errorf("schedule reminder %d: %w", i, err)
		}
	}
	return len(instants), nil
}

// CancelAll cancels every pending reminder carrying Tag.
func (s *Scheduler) CancelAll(ctx context.Context) error {
	ids, err := s.dispatcher.ListScheduled(ctx)
	if err != nil {
		return fmt.Errorf("list scheduled reminders: %w", err)
	}
	var errs []error
	for _, id := range ids {
		if !strings.HasPrefix(id, Tag) {
			continue
		}
		if err := s.dispatcher.Cancel(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("cancel %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// Count returns the number of pending reminders carrying Tag.
func (s *Scheduler) Count(ctx context.Context) (int, error) {
	ids, err := s.dispatcher.ListScheduled(ctx)
	if err != nil {
		return 0, fmt.Errorf("list scheduled reminders: %w", err)
	}
	n := 0
	for _, id := range ids {
		if strings.HasPrefix(id, Tag) {
			n++
		}
	}
	return n, nil
}

// RequestPermission asks the dispatcher for permission to notify.
func (s *Scheduler) RequestPermission(ctx context.Context) (bool, error) {
	return s.dispatcher.RequestPermission(ctx)
}

// HasPermission reports whether notifications may be delivered.
func (s *Scheduler) HasPermission(ctx context.Context) (bool, error) {
	return s.dispatcher.HasPermission(ctx)
}
