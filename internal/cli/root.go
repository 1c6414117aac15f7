// Package cli is the tradetrackr command line. With no subcommand it opens
// the terminal UI.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sadopc/tradetrackr/internal/config"
	"github.com/sadopc/tradetrackr/internal/dates"
)

// Options configures the root command.
type Options struct {
	// Clock overrides the wall clock. Nil means the system clock.
	Clock dates.Clock
	// RunTUI starts the interactive UI.
	RunTUI func(ctx context.Context, app *App) error
}

// env is shared by every subcommand. app is opened before a command runs
// and closed after it.
type env struct {
	opts      Options
	overrides config.Overrides
	app       *App
	needsApp  map[*cobra.Command]bool
}

func New(opts Options) *cobra.Command {
	e := &env{opts: opts, needsApp: map[*cobra.Command]bool{}}

	cmd := &cobra.Command{
		Use:   "tradetrackr",
		Short: "Track whether you followed your trading rules, one weekday at a time",
		Long: `tradetrackr keeps a checklist of your trading rules. Log each weekday
once: green when every rule was followed (or you sat out with no setup),
red otherwise. Streaks, rates, calendars and reminders keep you honest.

Run without a command to open the terminal UI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !e.needsApp[cmd] {
				return nil
			}
			app, err := Open(e.overrides, e.opts.Clock)
			if err != nil {
				return err
			}
			e.app = app
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.opts.RunTUI == nil {
				return cmd.Help()
			}
			if _, err := e.app.Tracker.Reschedule(cmd.Context()); err != nil {
				e.app.Logger.Printf("reschedule on start: %v", err)
			}
			return e.opts.RunTUI(cmd.Context(), e.app)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&e.overrides.DBPath, "db", "", "path to the SQLite database")
	flags.StringVar(&e.overrides.ConfigPath, "config", "", "path to the config file")
	flags.StringVar(&e.overrides.WidgetDir, "widget-dir", "", "directory the widget snapshot is written to")

	cmd.AddCommand(
		newRulesCmd(e),
		newTodayCmd(e),
		newSubmitCmd(e),
		newNoTradeCmd(e),
		newStatsCmd(e),
		newCalendarCmd(e),
		newRemindCmd(e),
		newSettingsCmd(e),
		newWidgetCmd(e),
		newExportCmd(e),
		newAdminCmd(e),
	)
	e.manage(cmd)
	return cmd
}

// manage marks every runnable command under c as needing the app and makes
// it close the app when done, whether or not it failed.
func (e *env) manage(c *cobra.Command) {
	if run := c.RunE; run != nil {
		e.needsApp[c] = true
		c.RunE = func(cmd *cobra.Command, args []string) error {
			defer e.close()
			return run(cmd, args)
		}
	}
	for _, sub := range c.Commands() {
		e.manage(sub)
	}
}

func (e *env) close() {
	if e.app == nil {
		return
	}
	if err := e.app.Close(); err != nil {
		e.app.Logger.Printf("close: %v", err)
	}
	e.app = nil
}

// Execute runs the command line with the given arguments.
func Execute(ctx context.Context, opts Options, args []string) error {
	cmd := New(opts)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}
