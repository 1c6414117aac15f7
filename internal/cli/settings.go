package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sadopc/tradetrackr/internal/store"
)

func newSettingsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change reminder, widget and theme settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := e.app.Tracker
			ns, ws := t.NotificationSettings(), t.WidgetSettings()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Reminders  enabled=%t start=%s end=%s interval=%d\n", ns.Enabled, ns.StartTime, ns.EndTime, ns.Interval)
			fmt.Fprintf(out, "Widget     theme=%s accent=%s indicator=%t\n", ws.Theme, ws.AccentColor, ws.ShowCompletionIndicator)
			fmt.Fprintf(out, "Theme      %s (%s)\n", t.AppTheme(), t.EffectiveTheme(e.app.Config.SystemDark()))
			return nil
		},
	}
	cmd.AddCommand(newNotifySettingsCmd(e), newWidgetSettingsCmd(e), newThemeCmd(e))
	return cmd
}

func newNotifySettingsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Change the reminder window",
		Example: `  tradetrackr settings notify --enabled --start 16:00 --end 23:00 --interval 15
  tradetrackr settings notify --enabled=false`,
		Args: cobra.NoArgs,
	}
	flags := cmd.Flags()
	flags.Bool("enabled", false, "turn reminders on or off")
	flags.String("start", "", "window start, HH:mm")
	flags.String("end", "", "window end, HH:mm")
	flags.Int("interval", 0, "minutes between reminders: 5, 15, 30 or 60")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ns := e.app.Tracker.NotificationSettings()
		var err error
		cmd.Flags().Visit(func(f *pflag.Flag) {
			if err != nil {
				return
			}
			switch f.Name {
			case "enabled":
				ns.Enabled, err = cmd.Flags().GetBool(f.Name)
			case "start":
				ns.StartTime = f.Value.String()
			case "end":
				ns.EndTime = f.Value.String()
			case "interval":
				ns.Interval, err = cmd.Flags().GetInt(f.Name)
			}
		})
		if err != nil {
			return err
		}
		if err := e.app.Tracker.UpdateNotificationSettings(ns); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Reminders  enabled=%t start=%s end=%s interval=%d\n", ns.Enabled, ns.StartTime, ns.EndTime, ns.Interval)
		return nil
	}
	return cmd
}

func newWidgetSettingsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "widget",
		Short: "Change the widget appearance",
		Long: "Change the widget appearance. Accent presets: " +
			strings.Join(store.AccentColors, " "),
		Args: cobra.NoArgs,
	}
	flags := cmd.Flags()
	flags.String("theme", "", "light or dark")
	flags.String("accent", "", "accent color, #rrggbb")
	flags.Bool("indicator", true, "show the completion percentage")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ws := e.app.Tracker.WidgetSettings()
		var err error
		cmd.Flags().Visit(func(f *pflag.Flag) {
			switch f.Name {
			case "theme":
				ws.Theme = store.WidgetTheme(strings.ToLower(f.Value.String()))
			case "accent":
				ws.AccentColor = strings.ToLower(f.Value.String())
			case "indicator":
				ws.ShowCompletionIndicator, err = cmd.Flags().GetBool(f.Name)
			}
		})
		if err != nil {
			return err
		}
		if err := e.app.Tracker.UpdateWidgetSettings(ws); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Widget     theme=%s accent=%s indicator=%t\n", ws.Theme, ws.AccentColor, ws.ShowCompletionIndicator)
		return nil
	}
	return cmd
}

func newThemeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [system|light|dark]",
		Short:     "Show or set the app theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(store.ThemeSystem), string(store.ThemeLight), string(store.ThemeDark)},
		RunE: func(cmd *cobra.Command, args []string) error {
			t := e.app.Tracker
			if len(args) == 1 {
				if err := t.SetAppTheme(store.AppTheme(strings.ToLower(args[0]))); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Theme      %s (%s)\n", t.AppTheme(), t.EffectiveTheme(e.app.Config.SystemDark()))
			return nil
		},
	}
}
