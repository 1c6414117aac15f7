package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/tradetrackr/internal/notify"
)

func newRemindCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Inspect and deliver logging reminders",
		Long: `Reminders nag you to log the day. They are planned for weekdays inside
the configured window and are delivered by "remind fire", which prints
due reminders with a terminal bell. Each run also drops reminders left from
earlier days and plans today's when none are queued. Run it from cron every
few minutes:

  */5 * * * 1-5  tradetrackr remind fire`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show reminder settings and pending reminders",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				out := cmd.OutOrStdout()
				ns := e.app.Tracker.NotificationSettings()
				perm, err := e.app.Dispatcher.Permission()
				if err != nil {
					return err
				}
				pending, err := e.app.Dispatcher.Pending()
				if err != nil {
					return err
				}

				state := "off"
				if ns.Enabled {
					state = "on"
				}
				fmt.Fprintf(out, "Reminders   %s\n", state)
				fmt.Fprintf(out, "Window      %s-%s every %d min\n", ns.StartTime, ns.EndTime, ns.Interval)
				fmt.Fprintf(out, "Permission  %s\n", perm)
				fmt.Fprintf(out, "Pending     %d\n", len(pending))
				if len(pending) > 0 {
					fmt.Fprintf(out, "Next        %s\n", pending[0].FireAt.In(e.app.Calendar.Location()).Format("Mon 15:04"))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "reschedule",
			Short: "Recompute today's reminders",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := e.app.Tracker.Reschedule(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d reminders scheduled\n", n)
				return nil
			},
		},
		&cobra.Command{
			Use:   "fire",
			Short: "Deliver reminders that are due",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := e.planToday(cmd.Context()); err != nil {
					return err
				}
				_, err := e.app.Dispatcher.Deliver(cmd.Context(), cmd.OutOrStdout())
				return err
			},
		},
		newPermissionCmd(e),
	)
	return cmd
}

func newPermissionCmd(e *env) *cobra.Command {
	var revoke bool

	cmd := &cobra.Command{
		Use:   "permission",
		Short: "Grant or revoke permission to deliver reminders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if revoke {
				if err := e.app.Dispatcher.Revoke(); err != nil {
					return err
				}
				if err := e.app.Scheduler.CancelAll(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(out, "Permission %s\n", notify.PermissionDenied)
				return nil
			}

			granted, err := e.app.Scheduler.RequestPermission(cmd.Context())
			if err != nil {
				return err
			}
			if !granted {
				fmt.Fprintf(out, "Permission %s: no terminal to deliver reminders to\n", notify.PermissionDenied)
				return nil
			}
			fmt.Fprintf(out, "Permission %s\n", notify.PermissionGranted)
			_, err = e.app.Tracker.Reschedule(cmd.Context())
			return err
		},
	}
	cmd.Flags().BoolVar(&revoke, "revoke", false, "withdraw permission and cancel pending reminders")
	return cmd
}

// planToday drops reminders left over from earlier days and, when nothing
// is queued, plans today's. Reminders still queued for today are kept so a
// due one is not replaced by the next interval.
func (e *env) planToday(ctx context.Context) error {
	cal := e.app.Calendar
	today := cal.Today()
	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, cal.Location())

	dropped, err := e.app.Dispatcher.DropBefore(midnight)
	if err != nil {
		return err
	}
	if dropped > 0 {
		e.app.Logger.Printf("dropped %d reminders from earlier days", dropped)
	}

	pending, err := e.app.Dispatcher.Pending()
	if err != nil {
		return err
	}
	if len(pending) > 0 {
		return nil
	}
	_, err = e.app.Tracker.Reschedule(ctx)
	return err
}
