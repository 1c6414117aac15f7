package widget

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sadopc/tradetrackr/internal/dates"
	"github.com/sadopc/tradetrackr/internal/store"
)

func mustDay(s string) time.Time {
	d, err := dates.Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func green(date string) store.DayLog {
	return store.DayLog{Date: date, Status: store.StatusGreen, Outcome: store.NoTrade{}}
}

func red(date string) store.DayLog {
	return store.DayLog{Date: date, Status: store.StatusRed, Outcome: store.Checklist{Results: map[string]bool{"a": false}}}
}

// ============================================================
// Summary
// ============================================================

func TestSummarize(t *testing.T) {
	logs := map[string]store.DayLog{
		"2026-10-12": green("2026-10-12"),
		"2026-10-14": red("2026-10-14"),
	}
	got := Summarize(logs, mustDay("2026-10-16"))
	want := Summary{Green: 1, Total: 5, Rate: 20, Dots: []bool{true, false, false, false, false}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarizeTruncatesRate(t *testing.T) {
	logs := map[string]store.DayLog{
		"2026-10-14": green("2026-10-14"),
		"2026-10-15": green("2026-10-15"),
	}
	// Wed-Fri: 2 of 3 green is 66.6%.
	got := Summarize(logs, mustDay("2026-10-16"))
	if got.Rate != 66 {
		t.Fatalf("expected 66, got %d", got.Rate)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(map[string]store.DayLog{}, mustDay("2026-10-16"))
	if got.Total != 0 || got.Rate != 0 || len(got.Dots) != 0 {
		t.Fatalf("expected empty summary, got %+v", got)
	}
}

func TestIndicator(t *testing.T) {
	tests := []struct {
		rate int
		want Indicator
	}{
		{100, IndicatorGood},
		{80, IndicatorGood},
		{79, IndicatorFair},
		{50, IndicatorFair},
		{49, IndicatorBad},
		{0, IndicatorBad},
	}
	for _, tt := range tests {
		if got := (Summary{Rate: tt.rate}).Indicator(); got != tt.want {
			t.Errorf("rate %d: got %v, want %v", tt.rate, got, tt.want)
		}
	}
}

func TestRender(t *testing.T) {
	s := Summary{Green: 4, Total: 5, Rate: 80, Dots: []bool{true, true, false, true, true}}
	out := Render(s, store.DefaultWidgetSettings(), 30)
	for _, want := range []string{"Trading Rules", "4/5 days", "80%", dot} {
		if !strings.Contains(out, want) {
			t.Fatalf("render missing %q:\n%s", want, out)
		}
	}
	if strings.Count(out, dot) != 5 {
		t.Fatalf("expected 5 dots:\n%s", out)
	}

	ws := store.DefaultWidgetSettings()
	ws.ShowCompletionIndicator = false
	ws.Theme = store.WidgetLight
	if out := Render(s, ws, 30); strings.Contains(out, "80%") {
		t.Fatalf("indicator should be hidden:\n%s", out)
	}
}

// ============================================================
// Snapshot files
// ============================================================

func newTestRefresher(t *testing.T) (*Refresher, *store.Store) {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	dir := filepath.Join(t.TempDir(), "widget")
	return NewRefresher(dir, s, log.New(io.Discard, "", 0)), s
}

func TestWriteAndLoadSnapshot(t *testing.T) {
	r, s := newTestRefresher(t)
	data := store.AppData{
		Rules: []store.Rule{{ID: "a", Text: "Stop at 2 losses"}},
		Logs:  map[string]store.DayLog{"2026-10-14": red("2026-10-14")},
	}
	s.SaveAppData(data)
	ws := store.WidgetSettings{Theme: store.WidgetLight, AccentColor: "#3b82f6"}
	s.SaveWidgetSettings(ws)

	if err := r.Write(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(r.Dir(), DataFile)); err != nil {
		t.Fatalf("data file missing: %v", err)
	}

	gotData, gotWS, err := LoadSnapshot(r.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if gotWS != ws {
		t.Fatalf("settings mismatch: %+v", gotWS)
	}
	if diff := cmp.Diff(data, gotData); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSnapshotMissing(t *testing.T) {
	data, ws, err := LoadSnapshot(filepath.Join(t.TempDir(), "none"))
	if err != nil {
		t.Fatal(err)
	}
	if len(data.Logs) != 0 || ws != store.DefaultWidgetSettings() {
		t.Fatalf("expected empty defaults, got %+v %+v", data, ws)
	}
}

func TestNotifyDataChangedSwallowsErrors(t *testing.T) {
	_, s := newTestRefresher(t)
	// A regular file where the directory should be makes MkdirAll fail.
	blocker := filepath.Join(t.TempDir(), "file")
	os.WriteFile(blocker, []byte("x"), 0o644)
	r := NewRefresher(filepath.Join(blocker, "widget"), s, log.New(io.Discard, "", 0))
	r.NotifyDataChanged()
	if err := r.Write(); err == nil {
		t.Fatal("expected write error")
	}
}
