package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/tradetrackr/internal/store"
)

func newRulesCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage your trading rules",
		Long: `Rules make up the daily checklist. Commands that take a rule accept
either its ID or its position in "rules list" (1, 2, ...).`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "List rules in checklist order",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				rules := e.app.Tracker.Rules()
				out := cmd.OutOrStdout()
				if len(rules) == 0 {
					fmt.Fprintln(out, "No rules set up yet. Add one with: tradetrackr rules add <text>")
					return nil
				}
				for i, r := range rules {
					fmt.Fprintf(out, "%2d. %s  (%s)\n", i+1, r.Text, r.ID)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "add <text>",
			Short: "Add a rule to the end of the checklist",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				rule, err := e.app.Tracker.AddRule(strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added rule %s: %s\n", rule.ID, rule.Text)
				return nil
			},
		},
		&cobra.Command{
			Use:   "edit <rule> <text>",
			Short: "Change the text of a rule",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				rule, err := resolveRule(e.app.Tracker.Rules(), args[0])
				if err != nil {
					return err
				}
				text := strings.Join(args[1:], " ")
				if err := e.app.Tracker.UpdateRule(rule.ID, text); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated rule %s: %s\n", rule.ID, strings.TrimSpace(text))
				return nil
			},
		},
		&cobra.Command{
			Use:     "rm <rule>",
			Aliases: []string{"delete"},
			Short:   "Delete a rule",
			Long:    "Delete a rule. Days already logged keep their results for it.",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				rule, err := resolveRule(e.app.Tracker.Rules(), args[0])
				if err != nil {
					return err
				}
				if err := e.app.Tracker.DeleteRule(rule.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted rule: %s\n", rule.Text)
				return nil
			},
		},
	)
	return cmd
}

// resolveRule finds a rule by ID, or by its 1-based position.
func resolveRule(rules []store.Rule, ref string) (store.Rule, error) {
	ref = strings.TrimSpace(ref)
	for _, r := range rules {
		if r.ID == ref {
			return r, nil
		}
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(rules) {
		return rules[n-1], nil
	}
	return store.Rule{}, fmt.Errorf("no rule %q", ref)
}
