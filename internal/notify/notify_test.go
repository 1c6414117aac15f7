package notify

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sadopc/tradetrackr/internal/reminder"
	"github.com/sadopc/tradetrackr/internal/store"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestDispatcher(t *testing.T, opts ...Option) (*Dispatcher, *clock) {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	c := &clock{t: time.Date(2026, 10, 16, 20, 7, 0, 0, time.UTC)}
	return New(s, append([]Option{WithNow(c.now)}, opts...)...), c
}

var payload = reminder.Payload{Title: reminder.Title, Body: reminder.Body}

func TestScheduleListCancel(t *testing.T) {
	d, _ := newTestDispatcher(t)
	ctx := context.Background()

	d.ScheduleAt(ctx, "trading-reminder-1", 1800, payload)
	d.ScheduleAt(ctx, "trading-reminder-0", 480, payload)

	ids, err := d.ListScheduled(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"trading-reminder-0", "trading-reminder-1"}, ids); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}

	if err := d.Cancel(ctx, "trading-reminder-0"); err != nil {
		t.Fatal(err)
	}
	ids, _ = d.ListScheduled(ctx)
	if len(ids) != 1 || ids[0] != "trading-reminder-1" {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestDropBefore(t *testing.T) {
	d, c := newTestDispatcher(t)
	ctx := context.Background()

	d.ScheduleAt(ctx, "trading-reminder-0", 600, payload)
	c.t = c.t.Add(24 * time.Hour)
	d.ScheduleAt(ctx, "trading-reminder-1", 600, payload)

	n, err := d.DropBefore(c.t.Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("dropped %d, want 1", n)
	}
	ids, _ := d.ListScheduled(ctx)
	if diff := cmp.Diff([]string{"trading-reminder-1"}, ids); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestPermissionFlow(t *testing.T) {
	d, _ := newTestDispatcher(t)
	ctx := context.Background()

	p, _ := d.Permission()
	if p != PermissionUnset {
		t.Fatalf("expected unset, got %s", p)
	}
	if ok, _ := d.HasPermission(ctx); ok {
		t.Fatal("unset should not count as granted")
	}

	ok, err := d.RequestPermission(ctx)
	if err != nil || !ok {
		t.Fatalf("expected grant, got %v %v", ok, err)
	}
	p, _ = d.Permission()
	if p != PermissionGranted {
		t.Fatalf("expected granted, got %s", p)
	}

	d.Revoke()
	if ok, _ := d.HasPermission(ctx); ok {
		t.Fatal("revoked permission should not count")
	}
}

func TestRequestPermissionUnavailableChannel(t *testing.T) {
	d, _ := newTestDispatcher(t, WithChannel(func() bool { return false }))
	ok, err := d.RequestPermission(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected denial")
	}
	p, _ := d.Permission()
	if p != PermissionDenied {
		t.Fatalf("expected denied, got %s", p)
	}
}

func TestDeliver(t *testing.T) {
	d, c := newTestDispatcher(t)
	ctx := context.Background()
	d.RequestPermission(ctx)

	d.ScheduleAt(ctx, "trading-reminder-0", 60, payload)
	d.ScheduleAt(ctx, "trading-reminder-1", 3600, payload)

	var out bytes.Buffer
	n, err := d.Deliver(ctx, &out)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("nothing should be due yet, got %d", n)
	}

	c.t = c.t.Add(2 * time.Minute)
	n, _ = d.Deliver(ctx, &out)
	if n != 1 {
		t.Fatalf("expected 1 delivered, got %d", n)
	}
	if !strings.Contains(out.String(), "Trading Rules Check") || !strings.HasPrefix(out.String(), "\a") {
		t.Fatalf("unexpected output %q", out.String())
	}

	pending, _ := d.Pending()
	if len(pending) != 1 || pending[0].ID != "trading-reminder-1" {
		t.Fatalf("unexpected pending %+v", pending)
	}
}

func TestDeliverWithoutPermissionKeepsQueue(t *testing.T) {
	d, c := newTestDispatcher(t)
	ctx := context.Background()
	d.ScheduleAt(ctx, "trading-reminder-0", 1, payload)
	c.t = c.t.Add(time.Hour)

	n, err := d.Deliver(ctx, &bytes.Buffer{})
	if err != nil || n != 0 {
		t.Fatalf("expected nothing delivered, got %d %v", n, err)
	}
	if ids, _ := d.ListScheduled(ctx); len(ids) != 1 {
		t.Fatal("queue should be untouched")
	}
}

func TestSchedulerIntegration(t *testing.T) {
	d, c := newTestDispatcher(t)
	ctx := context.Background()
	d.RequestPermission(ctx)
	d.ScheduleAt(ctx, "other-app", 10, payload)

	// 20:07 UTC is 16:07 in New York.
	c.t = time.Date(2026, 10, 16, 20, 7, 0, 0, time.UTC)
	sched := reminder.NewScheduler(d, calendarAt(c.t), discardLogger())
	n, err := sched.Reschedule(ctx, store.NotificationSettings{
		Enabled: true, StartTime: "16:00", EndTime: "17:00", Interval: 15,
	}, false)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("expected 3, got %d", n)
	}

	pending, _ := d.Pending()
	var fire []string
	for _, p := range pending {
		fire = append(fire, p.ID+"@"+p.FireAt.UTC().Format("15:04"))
	}
	want := []string{"other-app@20:07", "trading-reminder-0@20:15", "trading-reminder-1@20:30", "trading-reminder-2@20:45"}
	if diff := cmp.Diff(want, fire); diff != "" {
		t.Fatalf("pending mismatch (-want +got):\n%s", diff)
	}
}
