package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/tradetrackr/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTrack viewState = iota
	viewProgress
	viewRules
	viewSettings
)

var viewNames = []string{"Track", "Progress", "Rules", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// changedMsg reports the outcome of a mutation. Every view reloads after
// it, failed or not, since a failed write may mean another writer won.
type changedMsg struct {
	text string
	err  error
}

// remindersDueMsg carries reminders popped from the queue on a tick.
type remindersDueMsg struct {
	due []store.PendingNotification
}

// dayChangedMsg is sent when the reference calendar day rolls over while
// the app is open.
type dayChangedMsg struct {
	today time.Time
}

// --- Helpers ---

func errStatus(err error) statusMsg {
	return statusMsg{text: capitalize(err.Error()), isError: true}
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

func formatPercent(rate int) string {
	return fmt.Sprintf("%d%%", rate)
}
