package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/tradetrackr/internal/dates"
	"github.com/sadopc/tradetrackr/internal/stats"
	"github.com/sadopc/tradetrackr/internal/store"
)

// monthFlag parses --month as YYYY-MM, defaulting to today's month.
func monthFlag(value string, today time.Time) (time.Time, error) {
	if value == "" {
		return dates.StartOfMonth(today), nil
	}
	m, err := time.Parse("2006-01", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("month must be YYYY-MM, got %q", value)
	}
	return m, nil
}

func newStatsCmd(e *env) *cobra.Command {
	var month, view string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show streak, rate and progress",
		Long: `Show statistics for one view:

  month    streak, success rate, missed days and weekly rates of a month
  quarter  dot grid from three months back to three months ahead
  year     dot grid of the twelve months since you started tracking`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := e.app.Tracker
			today := t.Today()
			logs := t.Logs()
			out := cmd.OutOrStdout()

			switch view {
			case "month":
				m, err := monthFlag(month, today)
				if err != nil {
					return err
				}
				printMonthStats(out, logs, today, m)
				return nil
			case "quarter", "year", "goal":
				var (
					r  stats.Range
					ok bool
				)
				columns := stats.QuarterColumns
				title := "Quarter"
				if view == "quarter" {
					r, ok = stats.QuarterRange(logs, today)
				} else {
					r, ok = stats.GoalRange(logs)
					columns, title = stats.GoalColumns, "Yearly Goal"
				}
				if !ok {
					fmt.Fprintln(out, "Nothing logged yet. Your progress starts with the first logged day.")
					return nil
				}
				printDotGrid(out, title, stats.BuildDotGrid(logs, today, r), columns)
				return nil
			}
			return fmt.Errorf("unknown view %q (want month, quarter or year)", view)
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "month to show, as YYYY-MM")
	cmd.Flags().StringVarP(&view, "view", "v", "month", "month, quarter or year")
	return cmd
}

func printMonthStats(w io.Writer, logs stats.Logs, today, month time.Time) {
	r := stats.MonthRange(month)
	s := stats.Summarize(logs, today, r)

	fmt.Fprintln(w, dates.MonthLabel(month))
	fmt.Fprintf(w, "  Streak   %d days\n", s.Streak)
	fmt.Fprintf(w, "  Rate     %d%%\n", s.Rate)
	fmt.Fprintf(w, "  Missed   %d\n", s.Missed)

	weeks := stats.WeeklyRates(logs, today, r)
	if len(weeks) == 0 {
		return
	}
	fmt.Fprintln(w, "Weekly")
	for _, wk := range weeks {
		fmt.Fprintf(w, "  %s  %s\n", wk.Start.Format("Jan 02"), wk.Label())
	}
}

var dotGlyphs = map[stats.DotType]string{
	stats.DotGreen:  "●",
	stats.DotRed:    "×",
	stats.DotBefore: "·",
	stats.DotFuture: "○",
}

func printDotGrid(w io.Writer, title string, g stats.DotGrid, columns int) {
	fmt.Fprintf(w, "%s  %s\n", title, g.Header())
	for _, row := range g.Rows(columns) {
		cells := make([]string, len(row))
		for i, d := range row {
			cells[i] = dotGlyphs[d.Type]
		}
		fmt.Fprintln(w, "  "+strings.Join(cells, " "))
	}
}

var statusMarks = map[store.Status]string{
	store.StatusGreen: "●",
	store.StatusRed:   "×",
	store.StatusGrey:  "·",
	store.StatusNone:  " ",
}

func newCalendarCmd(e *env) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show a month of logged days",
		Long: `Show a month as a Monday-first calendar. Each weekday is marked:
● green, × red, · past and not logged. Today is bracketed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := e.app.Tracker
			today := t.Today()
			m, err := monthFlag(month, today)
			if err != nil {
				return err
			}
			printCalendar(cmd.OutOrStdout(), t.Logs(), today, m)
			return nil
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "month to show, as YYYY-MM")
	return cmd
}

func printCalendar(w io.Writer, logs stats.Logs, today, month time.Time) {
	fmt.Fprintln(w, dates.MonthLabel(month))
	for _, l := range dates.WeekdayLabels {
		fmt.Fprintf(w, "  %-3s", l)
	}
	fmt.Fprintln(w)

	grid := dates.MonthGrid(month)
	for i, d := range grid {
		switch {
		case d.IsZero():
			fmt.Fprint(w, "     ")
		case dates.IsToday(d, today):
			fmt.Fprintf(w, "[%2d%s]", d.Day(), statusMarks[stats.DayStatus(logs, d, today)])
		default:
			fmt.Fprintf(w, " %2d%s ", d.Day(), statusMarks[stats.DayStatus(logs, d, today)])
		}
		if i%7 == 6 {
			fmt.Fprintln(w)
		}
	}
}
