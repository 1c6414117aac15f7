package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sadopc/tradetrackr/internal/cli"
	"github.com/sadopc/tradetrackr/internal/tui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := cli.Options{
		RunTUI: func(ctx context.Context, app *cli.App) error {
			return tui.Run(ctx, tui.Options{
				Tracker:     app.Tracker,
				Reminders:   app.Dispatcher,
				Permissions: app.Scheduler,
				SystemDark:  app.Config.SystemDark(),
			})
		},
	}

	if err := cli.Execute(ctx, opts, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
