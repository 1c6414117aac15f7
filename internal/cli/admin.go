package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newAdminCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:    "admin",
		Short:  "Maintenance commands",
		Hidden: true,
	}

	var yes bool
	clearLogs := &cobra.Command{
		Use:   "clear-logs",
		Short: "Delete every day log; rules and settings are kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to delete all logs without --yes")
			}
			if err := e.app.Tracker.ClearLogs(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All logs cleared")
			return nil
		},
	}
	clearLogs.Flags().BoolVar(&yes, "yes", false, "confirm deleting all logs")

	cmd.AddCommand(clearLogs)
	return cmd
}
