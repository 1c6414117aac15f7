package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/tradetrackr/internal/store"
	"github.com/sadopc/tradetrackr/internal/tracker"
)

type rulesModel struct {
	tracker *tracker.Tracker
	width   int
	height  int

	rules  []store.Rule
	cursor int

	formActive bool
	form       *huh.Form
	editingID  string // empty for a new rule

	// Form field pointers (survive value copies)
	formText *string

	confirmDelete bool
}

func newRulesModel(t *tracker.Tracker) rulesModel {
	text := ""
	return rulesModel{
		tracker:  t,
		formText: &text,
	}
}

func (r *rulesModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type rulesDataMsg struct {
	rules []store.Rule
}

func (r rulesModel) refresh() tea.Cmd {
	t := r.tracker
	return func() tea.Msg {
		return rulesDataMsg{rules: t.Rules()}
	}
}

func (r rulesModel) capturing() bool {
	return r.formActive || r.confirmDelete
}

func (r rulesModel) update(msg tea.Msg) (rulesModel, tea.Cmd) {
	if r.formActive && r.form != nil {
		return r.updateForm(msg)
	}

	switch msg := msg.(type) {
	case rulesDataMsg:
		r.rules = msg.rules
		if r.cursor >= len(r.rules) {
			r.cursor = max(0, len(r.rules)-1)
		}
		return r, nil

	case tea.KeyMsg:
		if r.confirmDelete {
			return r.updateConfirmDelete(msg)
		}
		switch {
		case key.Matches(msg, keys.Up):
			if r.cursor > 0 {
				r.cursor--
			}
		case key.Matches(msg, keys.Down):
			if r.cursor < len(r.rules)-1 {
				r.cursor++
			}
		case key.Matches(msg, keys.New):
			return r.showForm(store.Rule{})
		case key.Matches(msg, keys.Enter):
			if len(r.rules) > 0 {
				return r.showForm(r.rules[r.cursor])
			}
		case key.Matches(msg, keys.Delete):
			if len(r.rules) > 0 {
				r.confirmDelete = true
			}
		}
	}
	return r, nil
}

func (r rulesModel) updateConfirmDelete(msg tea.KeyMsg) (rulesModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Yes):
		r.confirmDelete = false
		rule := r.rules[r.cursor]
		t := r.tracker
		return r, func() tea.Msg {
			if err := t.DeleteRule(rule.ID); err != nil {
				return changedMsg{err: err}
			}
			return changedMsg{text: "Deleted rule: " + rule.Text}
		}
	case key.Matches(msg, keys.No):
		r.confirmDelete = false
	}
	return r, nil
}

func validateRuleText(s string) error {
	if strings.TrimSpace(s) == "" {
		return tracker.ErrEmptyRule
	}
	return nil
}

func (r rulesModel) showForm(rule store.Rule) (rulesModel, tea.Cmd) {
	*r.formText = rule.Text
	r.editingID = rule.ID

	title := "New Rule"
	if rule.ID != "" {
		title = "Edit Rule"
	}

	r.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Description("One thing you commit to on every trading day.").
				CharLimit(280).
				Validate(validateRuleText).
				Value(r.formText),
		),
	).WithShowHelp(true).WithShowErrors(true)

	r.formActive = true
	return r, r.form.Init()
}

func (r rulesModel) updateForm(msg tea.Msg) (rulesModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			r.formActive = false
			r.form = nil
			return r, nil
		}
	}

	form, cmd := r.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		r.form = f
	}

	if r.form.State == huh.StateCompleted {
		r.formActive = false
		return r, r.save(r.editingID, *r.formText)
	}

	return r, cmd
}

func (r rulesModel) save(id, text string) tea.Cmd {
	t := r.tracker
	return func() tea.Msg {
		if id == "" {
			rule, err := t.AddRule(text)
			if err != nil {
				return changedMsg{err: err}
			}
			return changedMsg{text: "Added rule: " + rule.Text}
		}
		if err := t.UpdateRule(id, text); err != nil {
			return changedMsg{err: err}
		}
		return changedMsg{text: "Rule updated"}
	}
}

func (r rulesModel) view() string {
	w := r.width - 4
	if r.formActive && r.form != nil {
		return panelStyle.Width(w).Render(r.form.View())
	}

	title := titleStyle.Render("Trading Rules")
	if len(r.rules) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No rules set up yet. Press n to add your first trading rule."),
		)
		return panelStyle.Width(w).Render(content)
	}

	rows := []string{title, ""}
	for i, rule := range r.rules {
		cursor := "  "
		style := normalItemStyle
		if i == r.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%d. %s", cursor, i+1, rule.Text)))
	}

	rows = append(rows, "")
	if r.confirmDelete {
		rows = append(rows,
			warningStyle.Render(fmt.Sprintf("  Delete %q? Logged days keep their results.", r.rules[r.cursor].Text)),
			mutedStyle.Render("  y: delete  n: cancel"),
		)
	} else {
		rows = append(rows, mutedStyle.Render("  n: new  enter: edit  d: delete"))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
