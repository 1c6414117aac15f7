// Package notify is the local notification dispatcher. Pending reminders
// live in the database; they are delivered by whoever polls Due (the TUI
// tick or `tradetrackr remind fire`).
package notify

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sadopc/tradetrackr/internal/reminder"
	"github.com/sadopc/tradetrackr/internal/store"
)

// Permission states persisted under store.KeyNotifyPermission.
const (
	PermissionGranted = "granted"
	PermissionDenied  = "denied"
	PermissionUnset   = "unset"
)

// Dispatcher implements reminder.Dispatcher on top of the store.
type Dispatcher struct {
	store *store.Store
	now   func() time.Time

	// available reports whether the delivery channel can reach the user.
	available func() bool
}

var _ reminder.Dispatcher = (*Dispatcher)(nil)

type Option func(*Dispatcher)

// WithNow replaces the wall clock.
func WithNow(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// WithChannel sets the check used by RequestPermission. The terminal bell is
// always available, so the default grants.
func WithChannel(available func() bool) Option {
	return func(d *Dispatcher) { d.available = available }
}

func New(s *store.Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:     s,
		now:       time.Now,
		available: func() bool { return true },
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func (d *Dispatcher) ScheduleAt(_ context.Context, id string, secondsFromNow int, p reminder.Payload) error {
	return d.store.ScheduleNotification(store.PendingNotification{
		ID:     id,
		FireAt: d.now().Add(time.Duration(secondsFromNow) * time.Second),
		Title:  p.Title,
		Body:   p.Body,
	})
}

func (d *Dispatcher) Cancel(_ context.Context, id string) error {
	return d.store.CancelNotification(id)
}

func (d *Dispatcher) ListScheduled(context.Context) ([]string, error) {
	pending, err := d.store.ListNotifications()
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(pending))
	for i, n := range pending {
		ids[i] = n.ID
	}
	return ids, nil
}

// Pending returns the queued notifications, soonest first.
func (d *Dispatcher) Pending() ([]store.PendingNotification, error) {
	return d.store.ListNotifications()
}

// Permission returns the persisted permission state.
func (d *Dispatcher) Permission() (string, error) {
	v, ok, err := d.store.Get(store.KeyNotifyPermission)
	if err != nil {
		return PermissionUnset, err
	}
	if !ok {
		return PermissionUnset, nil
	}
	return v, nil
}

func (d *Dispatcher) HasPermission(context.Context) (bool, error) {
	p, err := d.Permission()
	return p == PermissionGranted, err
}

// RequestPermission records whether the delivery channel is available. A
// granted permission is not asked for again.
func (d *Dispatcher) RequestPermission(ctx context.Context) (bool, error) {
	if ok, err := d.HasPermission(ctx); err != nil || ok {
		return ok, err
	}
	state := PermissionDenied
	if d.available() {
		state = PermissionGranted
	}
	if err := d.store.Set(store.KeyNotifyPermission, state); err != nil {
		return false, fmt.Errorf("save notification permission: %w", err)
	}
	return state == PermissionGranted, nil
}

// Revoke withdraws permission. Pending notifications stay queued but are not
// delivered by Deliver.
func (d *Dispatcher) Revoke() error {
	return d.store.Set(store.KeyNotifyPermission, PermissionDenied)
}

// DropBefore discards pending notifications due before t, such as a
// previous day's reminders that were never delivered.
func (d *Dispatcher) DropBefore(t time.Time) (int, error) {
	return d.store.DeleteNotificationsBefore(t)
}

// Due removes and returns every notification whose fire time has passed.
func (d *Dispatcher) Due() ([]store.PendingNotification, error) {
	return d.store.TakeDueNotifications(d.now())
}

// Deliver pops due notifications and writes each one to w followed by a
// terminal bell. Without permission nothing is popped.
func (d *Dispatcher) Deliver(ctx context.Context, w io.Writer) (int, error) {
	ok, err := d.HasPermission(ctx)
	if err != nil || !ok {
		return 0, err
	}
	due, err := d.Due()
	if err != nil {
		return 0, err
	}
	for _, n := range due {
		fmt.Fprintf(w, "\a%s: %s\n", n.Title, n.Body)
	}
	return len(due), nil
}
