package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/tradetrackr/internal/export"
)

func newExportCmd(e *env) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export day logs to CSV, JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			data, err := e.app.Store.LoadAppData()
			if err != nil {
				return fmt.Errorf("load app data: %w", err)
			}
			if out == "" {
				out = export.FileName(f, e.app.Calendar.Today())
			}
			if err := export.Write(f, data, out, e.app.Calendar.Now()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d days to %s\n", len(data.Logs), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatCSV), "csv, json or yaml")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default tradetrackr-export-<date>.<format>)")
	return cmd
}
