package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sadopc/tradetrackr/internal/dates"
	"github.com/sadopc/tradetrackr/internal/store"
	"github.com/sadopc/tradetrackr/internal/tracker"
)

func newTodayCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's log or the open checklist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := e.app.Tracker
			out := cmd.OutOrStdout()
			today := t.Today()

			fmt.Fprintln(out, today.Format("Monday, January 2, 2006"))
			if l, ok := t.TodayLog(); ok {
				fmt.Fprintln(out, "Today's log has been recorded")
				printLog(out, l, t.Rules(), e.app.Calendar)
				return nil
			}
			if dates.IsWeekend(today) {
				fmt.Fprintln(out, "Weekend: nothing to track.")
				return nil
			}

			rules := t.Rules()
			if len(rules) == 0 {
				fmt.Fprintln(out, "No rules set up yet. Add one with: tradetrackr rules add <text>")
				return nil
			}
			fmt.Fprintln(out, "Not logged yet. Did you follow your rules?")
			for i, r := range rules {
				fmt.Fprintf(out, "  [ ] %d. %s\n", i+1, r.Text)
			}
			return nil
		},
	}
}

func printLog(w io.Writer, l store.DayLog, rules []store.Rule, cal dates.Calendar) {
	fmt.Fprintf(w, "Status: %s", l.Status)
	if !l.LockedAt.IsZero() {
		fmt.Fprintf(w, " (locked %s)", l.LockedAt.In(cal.Location()).Format("15:04"))
	}
	fmt.Fprintln(w)

	results, ok := l.Results()
	if !ok {
		fmt.Fprintln(w, "  No Trade Day: followed the plan, no setup.")
		return
	}
	for _, r := range rules {
		followed, answered := results[r.ID]
		switch {
		case !answered:
			continue
		case followed:
			fmt.Fprintf(w, "  ✓ %s\n", r.Text)
		default:
			fmt.Fprintf(w, "  ✗ %s\n", r.Text)
		}
	}
}

func newSubmitCmd(e *env) *cobra.Command {
	var pass, fail []string
	var allPass bool

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Lock today's checklist",
		Long: `Lock today's checklist. Every rule must be marked with --pass or --fail
(by ID or list position). The day is green only if every rule passed.
A day can be logged once.`,
		Example: `  tradetrackr submit --pass 1,2 --fail 3
  tradetrackr submit --all-pass`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := e.app.Tracker
			if !t.CanEditToday() {
				return tracker.ErrDayLocked
			}

			rules := t.Rules()
			results := make(map[string]bool, len(rules))
			if allPass {
				for _, r := range rules {
					results[r.ID] = true
				}
			}
			mark := func(refs []string, followed bool) error {
				for _, ref := range refs {
					r, err := resolveRule(rules, ref)
					if err != nil {
						return err
					}
					if prev, ok := results[r.ID]; ok && prev != followed && !allPass {
						return fmt.Errorf("rule %q marked both pass and fail", r.Text)
					}
					results[r.ID] = followed
				}
				return nil
			}
			if err := mark(pass, true); err != nil {
				return err
			}
			if err := mark(fail, false); err != nil {
				return err
			}

			if err := t.ValidateChecklist(results); err != nil {
				return err
			}
			l, err := t.SubmitDayLog(results)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Today's log has been recorded")
			printLog(cmd.OutOrStdout(), l, rules, e.app.Calendar)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&pass, "pass", nil, "rules you followed")
	cmd.Flags().StringSliceVar(&fail, "fail", nil, "rules you broke")
	cmd.Flags().BoolVar(&allPass, "all-pass", false, "mark every rule followed (combine with --fail to override)")
	return cmd
}

func newNoTradeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "no-trade",
		Short: "Mark today as following your plan (no setup)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := e.app.Tracker.MarkNoTradeDay(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Today's log has been recorded: No Trade Day (green)")
			return nil
		},
	}
}
