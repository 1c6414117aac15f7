package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/tradetrackr/internal/widget"
)

func newWidgetCmd(e *env) *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "widget",
		Short: "Refresh the widget snapshot and print the widget",
		Long: `Write the widget snapshot files and render the widget from them, the
way a desktop or status-bar widget reading the same directory would.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.app.Widget.Write(); err != nil {
				return err
			}
			data, ws, err := widget.LoadSnapshot(e.app.Widget.Dir())
			if err != nil {
				return err
			}
			s := widget.Summarize(data.Logs, e.app.Calendar.Today())
			fmt.Fprintln(cmd.OutOrStdout(), widget.Render(s, ws, width))
			return nil
		},
	}
	cmd.Flags().IntVarP(&width, "width", "w", 34, "widget width in cells")
	return cmd
}
