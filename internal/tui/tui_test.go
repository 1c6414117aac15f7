package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/tradetrackr/internal/dates"
	"github.com/sadopc/tradetrackr/internal/export"
	"github.com/sadopc/tradetrackr/internal/store"
	"github.com/sadopc/tradetrackr/internal/tracker"
)

// 20:07 UTC on Friday 2026-10-16 is 16:07 in New York.
var friday = time.Date(2026, 10, 16, 20, 7, 0, 0, time.UTC)

func newTestTracker(t *testing.T, now time.Time) *tracker.Tracker {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	n := 0
	tr := tracker.New(s, tracker.Options{
		Calendar: dates.NewCalendar(dates.FixedClock(now), nil),
		NewID: func() string {
			n++
			return fmt.Sprintf("rule-%d", n)
		},
	})
	if err := tr.Refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	return tr
}

func addRules(t *testing.T, tr *tracker.Tracker, texts ...string) {
	t.Helper()
	for _, text := range texts {
		if _, err := tr.AddRule(text); err != nil {
			t.Fatalf("add rule %q: %v", text, err)
		}
	}
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var spaceKey = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}

// loadedTrack returns a track model that has received its data.
func loadedTrack(t *testing.T, tr *tracker.Tracker) trackModel {
	t.Helper()
	m := newTrackModel(tr)
	m.setSize(120, 40)
	m, _ = m.update(m.loadData()())
	return m
}

func run(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	return cmd()
}

// ============================================================
// Track model
// ============================================================

func TestTrackToggleCycles(t *testing.T) {
	tr := newTestTracker(t, friday)
	addRules(t, tr, "Wait for the setup")
	m := loadedTrack(t, tr)

	want := []struct {
		marked, followed bool
	}{{true, true}, {true, false}, {false, false}}
	for i, w := range want {
		m, _ = m.update(spaceKey)
		followed, marked := m.marks["rule-1"]
		if marked != w.marked || followed != w.followed {
			t.Fatalf("press %d: marked=%v followed=%v, want %v %v", i+1, marked, followed, w.marked, w.followed)
		}
	}
}

func TestTrackSubmitIncomplete(t *testing.T) {
	tr := newTestTracker(t, friday)
	addRules(t, tr, "Wait for the setup", "Size by the stop")
	m := loadedTrack(t, tr)

	m, _ = m.update(spaceKey)
	_, cmd := m.update(runeKey("s"))

	msg, ok := run(t, cmd).(statusMsg)
	if !ok || !msg.isError {
		t.Fatalf("expected error status, got %#v", msg)
	}
	if msg.text != "Please mark all rules before submitting." {
		t.Fatalf("status = %q", msg.text)
	}
	if _, logged := tr.TodayLog(); logged {
		t.Fatal("incomplete checklist should not lock the day")
	}
}

func TestTrackSubmitLocksDay(t *testing.T) {
	tr := newTestTracker(t, friday)
	addRules(t, tr, "Wait for the setup", "Size by the stop")
	m := loadedTrack(t, tr)

	m, _ = m.update(spaceKey) // rule 1 followed
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.update(spaceKey)
	m, _ = m.update(spaceKey) // rule 2 broken
	_, cmd := m.update(runeKey("s"))

	msg, ok := run(t, cmd).(changedMsg)
	if !ok || msg.err != nil {
		t.Fatalf("expected success, got %#v", msg)
	}
	if msg.text != "Today's log has been recorded" {
		t.Fatalf("text = %q", msg.text)
	}

	l, logged := tr.TodayLog()
	if !logged {
		t.Fatal("day should be logged")
	}
	if l.Status != store.StatusRed {
		t.Fatalf("status = %s, want red", l.Status)
	}

	m, _ = m.update(m.loadData()())
	if m.editable() {
		t.Fatal("a logged day is not editable")
	}
	view := m.view()
	if !strings.Contains(view, "Red day") || !strings.Contains(view, "Size by the stop") {
		t.Fatalf("logged view missing details:\n%s", view)
	}
}

func TestTrackSubmitWithoutRules(t *testing.T) {
	tr := newTestTracker(t, friday)
	m := loadedTrack(t, tr)

	_, cmd := m.update(runeKey("s"))
	msg := run(t, cmd).(statusMsg)
	if !strings.Contains(msg.text, "No rules set up yet") {
		t.Fatalf("status = %q", msg.text)
	}
}

func TestTrackNoTradeConfirm(t *testing.T) {
	tr := newTestTracker(t, friday)
	addRules(t, tr, "Wait for the setup")
	m := loadedTrack(t, tr)

	m, _ = m.update(runeKey("t"))
	if !m.confirming {
		t.Fatal("t should ask for confirmation")
	}
	if !strings.Contains(m.view(), noTradePrompt) {
		t.Fatal("confirmation prompt not shown")
	}

	// n cancels
	m, _ = m.update(runeKey("n"))
	if m.confirming {
		t.Fatal("n should cancel")
	}

	m, _ = m.update(runeKey("t"))
	m, cmd := m.update(runeKey("y"))
	if m.confirming {
		t.Fatal("y should close the prompt")
	}
	if msg := run(t, cmd).(changedMsg); msg.err != nil {
		t.Fatalf("no trade: %v", msg.err)
	}

	l, logged := tr.TodayLog()
	if !logged || !l.IsNoTrade() || l.Status != store.StatusGreen {
		t.Fatalf("expected green no-trade log, got %#v", l)
	}
}

func TestTrackWeekendNotEditable(t *testing.T) {
	saturday := friday.AddDate(0, 0, 1)
	tr := newTestTracker(t, saturday)
	addRules(t, tr, "Wait for the setup")
	m := loadedTrack(t, tr)

	m, _ = m.update(spaceKey)
	if len(m.marks) != 0 {
		t.Fatal("weekend checklist should not toggle")
	}
	m, _ = m.update(runeKey("t"))
	if m.confirming {
		t.Fatal("weekend should not offer a no-trade day")
	}
	if !strings.Contains(m.view(), "Weekend") {
		t.Fatal("weekend message missing")
	}
}

func TestTrackDropsMarksOfDeletedRules(t *testing.T) {
	tr := newTestTracker(t, friday)
	addRules(t, tr, "Wait for the setup", "Size by the stop")
	m := loadedTrack(t, tr)

	m, _ = m.update(spaceKey)
	if err := tr.DeleteRule("rule-1"); err != nil {
		t.Fatal(err)
	}
	m, _ = m.update(m.loadData()())
	if len(m.marks) != 0 {
		t.Fatalf("marks = %v, want none", m.marks)
	}
}

func TestTrackMonthNavigation(t *testing.T) {
	tr := newTestTracker(t, friday)
	m := loadedTrack(t, tr)

	m, _ = m.update(tea.KeyMsg{Type: tea.KeyLeft})
	if got := dates.MonthLabel(m.month); got != "September 2026" {
		t.Fatalf("month = %q", got)
	}
	m, _ = m.update(runeKey("g"))
	if got := dates.MonthLabel(m.month); got != "October 2026" {
		t.Fatalf("month = %q", got)
	}
}

// ============================================================
// Rules model
// ============================================================

func TestValidateRuleText(t *testing.T) {
	if err := validateRuleText("  "); err != tracker.ErrEmptyRule {
		t.Fatalf("blank text: got %v", err)
	}
	if err := validateRuleText("Journal every trade"); err != nil {
		t.Fatalf("valid text: got %v", err)
	}
}

func TestRulesSaveAndEdit(t *testing.T) {
	tr := newTestTracker(t, friday)
	r := newRulesModel(tr)

	msg := r.save("", "  Wait for the setup ")()
	if got := msg.(changedMsg); got.err != nil || got.text != "Added rule: Wait for the setup" {
		t.Fatalf("add: %#v", got)
	}

	msg = r.save("rule-1", "Wait for a confirmed setup")()
	if got := msg.(changedMsg); got.err != nil || got.text != "Rule updated" {
		t.Fatalf("edit: %#v", got)
	}
	if rules := tr.Rules(); len(rules) != 1 || rules[0].Text != "Wait for a confirmed setup" {
		t.Fatalf("rules = %#v", rules)
	}

	if got := r.save("", "   ")().(changedMsg); got.err == nil {
		t.Fatal("blank rule should fail")
	}
}

func TestRulesFormOpens(t *testing.T) {
	tr := newTestTracker(t, friday)
	r := newRulesModel(tr)
	r.setSize(120, 40)

	r, _ = r.update(runeKey("n"))
	if !r.formActive || !r.capturing() {
		t.Fatal("n should open the form")
	}
	r, _ = r.update(tea.KeyMsg{Type: tea.KeyEsc})
	if r.formActive {
		t.Fatal("esc should close the form")
	}
}

func TestRulesDeleteConfirm(t *testing.T) {
	tr := newTestTracker(t, friday)
	addRules(t, tr, "Wait for the setup")
	r := newRulesModel(tr)
	r.setSize(120, 40)
	r, _ = r.update(r.refresh()())

	r, _ = r.update(runeKey("d"))
	if !r.confirmDelete {
		t.Fatal("d should ask for confirmation")
	}
	r, cmd := r.update(runeKey("y"))
	if r.confirmDelete {
		t.Fatal("y should close the prompt")
	}
	if got := run(t, cmd).(changedMsg); got.text != "Deleted rule: Wait for the setup" {
		t.Fatalf("delete: %#v", got)
	}
	if len(tr.Rules()) != 0 {
		t.Fatal("rule should be deleted")
	}
}

func TestRulesEmptyView(t *testing.T) {
	tr := newTestTracker(t, friday)
	r := newRulesModel(tr)
	r.setSize(120, 40)
	if !strings.Contains(r.view(), "No rules set up yet") {
		t.Fatal("empty state missing")
	}
}

// ============================================================
// Settings model
// ============================================================

type fakePermissions struct {
	granted bool
	asked   int
}

func (f *fakePermissions) RequestPermission(context.Context) (bool, error) {
	f.asked++
	return f.granted, nil
}

func validForm() formSettings {
	return formSettings{
		notify: store.NotificationSettings{Enabled: true, StartTime: "15:00", EndTime: "22:00", Interval: 30},
		widget: store.WidgetSettings{Theme: store.WidgetLight, AccentColor: "#3b82f6", ShowCompletionIndicator: false},
		theme:  store.ThemeDark,
	}
}

func TestSettingsSave(t *testing.T) {
	tr := newTestTracker(t, friday)
	perms := &fakePermissions{granted: true}
	s := newSettingsModel(tr, perms)
	s, _ = s.update(s.refresh()())

	got := s.save(validForm())().(changedMsg)
	if got.err != nil || got.text != "Settings saved" {
		t.Fatalf("save: %#v", got)
	}
	if perms.asked != 1 {
		t.Fatalf("permission asked %d times, want 1", perms.asked)
	}
	if ns := tr.NotificationSettings(); ns != validForm().notify {
		t.Fatalf("notification settings = %#v", ns)
	}
	if ws := tr.WidgetSettings(); ws != validForm().widget {
		t.Fatalf("widget settings = %#v", ws)
	}
	if tr.AppTheme() != store.ThemeDark {
		t.Fatalf("theme = %s", tr.AppTheme())
	}
}

func TestSettingsSavePermissionDenied(t *testing.T) {
	tr := newTestTracker(t, friday)
	s := newSettingsModel(tr, &fakePermissions{granted: false})

	got := s.save(validForm())().(changedMsg)
	if got.err != nil || !strings.Contains(got.text, "permission denied") {
		t.Fatalf("save: %#v", got)
	}
}

func TestSettingsSaveInvalid(t *testing.T) {
	tr := newTestTracker(t, friday)
	s := newSettingsModel(tr, nil)

	v := validForm()
	v.notify.StartTime = "25:00"
	v.widget.AccentColor = "blue"
	got := s.save(v)().(changedMsg)
	if got.err == nil {
		t.Fatal("invalid settings should fail")
	}
}

func TestSettingsFormLoadsCurrentValues(t *testing.T) {
	tr := newTestTracker(t, friday)
	s := newSettingsModel(tr, nil)
	s, _ = s.update(s.refresh()())

	s, _ = s.update(tea.KeyMsg{Type: tea.KeyEnter})
	if !s.formActive {
		t.Fatal("enter should open the form")
	}
	if *s.startTime != "16:00" || *s.interval != 15 || *s.accent != "#22c55e" {
		t.Fatalf("form values = %q %d %q", *s.startTime, *s.interval, *s.accent)
	}
}

// ============================================================
// Progress model
// ============================================================

func TestProgressEmpty(t *testing.T) {
	tr := newTestTracker(t, friday)
	p := newProgressModel(tr)
	p.setSize(120, 40)
	p, _ = p.update(p.refresh()())

	if !strings.Contains(p.view(), "Nothing logged yet") {
		t.Fatal("empty state missing")
	}
}

func TestProgressGrid(t *testing.T) {
	tr := newTestTracker(t, friday)
	if _, err := tr.MarkNoTradeDay(); err != nil {
		t.Fatal(err)
	}
	p := newProgressModel(tr)
	p.setSize(120, 40)
	p, _ = p.update(p.refresh()())

	if len(p.grid.Dots) == 0 {
		t.Fatal("quarter grid should have dots")
	}
	view := p.view()
	if !strings.Contains(view, "1/1") || !strings.Contains(view, "to go") {
		t.Fatalf("header missing:\n%s", view)
	}

	p, _ = p.update(runeKey("v"))
	if p.mode != progressGoal {
		t.Fatal("v should switch to the yearly goal")
	}
	if p.columns() != 16 {
		t.Fatalf("goal columns = %d", p.columns())
	}
}

// ============================================================
// App model
// ============================================================

type fakeReminders struct {
	permitted bool
	due       []store.PendingNotification
}

func (f *fakeReminders) HasPermission(context.Context) (bool, error) { return f.permitted, nil }

func (f *fakeReminders) Due() ([]store.PendingNotification, error) {
	due := f.due
	f.due = nil
	return due, nil
}

func newTestApp(t *testing.T) (App, *tracker.Tracker) {
	t.Helper()
	tr := newTestTracker(t, friday)
	return NewApp(Options{Tracker: tr, ExportDir: t.TempDir()}), tr
}

func sized(a App) App {
	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m.(App)
}

func TestAppLoadingState(t *testing.T) {
	app, _ := newTestApp(t)
	if got := app.View(); got != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", got)
	}
}

func TestAppViewStates(t *testing.T) {
	app, _ := newTestApp(t)
	app = sized(app)
	for _, v := range []viewState{viewTrack, viewProgress, viewRules, viewSettings} {
		app.activeView = v
		if app.View() == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	app, _ := newTestApp(t)
	app = sized(app)
	header := app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppTabKeys(t *testing.T) {
	app, _ := newTestApp(t)
	m, _ := app.Update(runeKey("3"))
	app = m.(App)
	if app.activeView != viewRules {
		t.Fatalf("active view = %d", app.activeView)
	}
	m, _ = app.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.(App).activeView != viewSettings {
		t.Fatal("tab should move to settings")
	}
}

func TestAppChangedMsgSetsStatus(t *testing.T) {
	app, _ := newTestApp(t)
	app = sized(app)

	m, cmd := app.Update(changedMsg{text: "Rule updated"})
	app = m.(App)
	if app.status != "Rule updated" || app.isError {
		t.Fatalf("status = %q error=%v", app.status, app.isError)
	}
	if cmd == nil {
		t.Fatal("changes should reload the views")
	}
	if !strings.Contains(app.renderFooter(), "Rule updated") {
		t.Fatal("footer should contain status message")
	}

	m, _ = app.Update(changedMsg{err: tracker.ErrDayLocked})
	app = m.(App)
	if !app.isError || app.status != "Today's log has already been recorded" {
		t.Fatalf("status = %q error=%v", app.status, app.isError)
	}
}

func TestAppPollReminders(t *testing.T) {
	tr := newTestTracker(t, friday)
	r := &fakeReminders{due: []store.PendingNotification{{ID: "trading-reminder-0", Title: "Trading Rules Check", Body: "Log it"}}}
	app := NewApp(Options{Tracker: tr, Reminders: r})

	if msg := app.pollReminders()(); msg != nil {
		t.Fatalf("without permission got %#v", msg)
	}

	r.permitted = true
	msg, ok := app.pollReminders()().(remindersDueMsg)
	if !ok || len(msg.due) != 1 {
		t.Fatalf("expected one due reminder, got %#v", msg)
	}
	m, _ := app.Update(msg)
	if got := m.(App).status; !strings.Contains(got, "Trading Rules Check") {
		t.Fatalf("status = %q", got)
	}
}

func TestAppCheckDay(t *testing.T) {
	app, tr := newTestApp(t)
	if msg := app.checkDay()(); msg != nil {
		t.Fatalf("same day got %#v", msg)
	}
	app.today = tr.Today().AddDate(0, 0, -1)
	if _, ok := app.checkDay()().(dayChangedMsg); !ok {
		t.Fatal("expected a day change")
	}
}

func TestAppFormBlocksTabs(t *testing.T) {
	app, _ := newTestApp(t)
	app.activeView = viewRules
	app.rules.confirmDelete = true
	if !app.isFormActive() {
		t.Fatal("delete prompt should capture keys")
	}
	m, _ := app.Update(runeKey("1"))
	if m.(App).activeView != viewRules {
		t.Fatal("tab key should not switch views while capturing")
	}
}

func TestAppExport(t *testing.T) {
	app, tr := newTestApp(t)
	addRules(t, tr, "Wait for the setup")
	app = sized(app)

	m, _ := app.Update(runeKey("e"))
	app = m.(App)
	if !app.exportPicking {
		t.Fatal("e should open the export picker")
	}
	m, _ = app.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := m.(App).Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.(App).exportPicking {
		t.Fatal("enter should close the picker")
	}

	done, ok := run(t, cmd).(exportDoneMsg)
	if !ok {
		t.Fatal("expected export to finish")
	}
	if !strings.HasSuffix(done.path, export.FileName(export.FormatJSON, tr.Today())) {
		t.Fatalf("path = %q", done.path)
	}
	b, err := os.ReadFile(done.path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "Wait for the setup") {
		t.Fatal("export should contain the rules")
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapShortHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
}

func TestKeyMapFullHelp(t *testing.T) {
	for i, group := range keys.FullHelp() {
		if len(group) == 0 {
			t.Fatalf("help group %d is empty", i)
		}
	}
}

// ============================================================
// Helpers and styles
// ============================================================

func TestCapitalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"rule cannot be empty", "Rule cannot be empty"},
		{"Already", "Already"},
		{"#hash", "#hash"},
	}
	for _, tt := range tests {
		if got := capitalize(tt.in); got != tt.want {
			t.Errorf("capitalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := formatPercent(67); got != "67%" {
		t.Fatalf("got %q", got)
	}
}

func TestStylesRender(t *testing.T) {
	styles := []func(...string) string{
		activeTabStyle.Render, inactiveTabStyle.Render, panelStyle.Render,
		activePanelStyle.Render, titleStyle.Render, successStyle.Render,
		warningStyle.Render, errorStyle.Render, mutedStyle.Render,
		highlightStyle.Render, headerStyle.Render, footerStyle.Render,
		selectedItemStyle.Render, normalItemStyle.Render, todayCellStyle.Render,
	}
	for _, render := range styles {
		if render("test") == "" {
			t.Fatal("style rendered empty")
		}
	}
	for _, s := range []store.Status{store.StatusGreen, store.StatusRed, store.StatusGrey, store.StatusNone} {
		_ = statusStyle(s).Render("1")
	}
	applyTheme(store.ThemeLight)
	applyTheme(store.ThemeDark)
}
