package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/sadopc/tradetrackr/internal/config"
	"github.com/sadopc/tradetrackr/internal/dates"
	"github.com/sadopc/tradetrackr/internal/notify"
	"github.com/sadopc/tradetrackr/internal/reminder"
	"github.com/sadopc/tradetrackr/internal/store"
	"github.com/sadopc/tradetrackr/internal/tracker"
	"github.com/sadopc/tradetrackr/internal/widget"
)

// App is the wired application: storage, reminders, widget snapshot and the
// tracker on top of them.
type App struct {
	Config     config.Config
	Store      *store.Store
	Calendar   dates.Calendar
	Logger     *log.Logger
	Dispatcher *notify.Dispatcher
	Scheduler  *reminder.Scheduler
	Widget     *widget.Refresher
	Tracker    *tracker.Tracker

	logFile io.Closer
}

// Open loads the configuration and wires every component. clock may be nil.
func Open(o config.Overrides, clock dates.Clock) (*App, error) {
	cfg, err := config.Load(o)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	logger, logFile, err := openLog(cfg.LogFile)
	if err != nil {
		return nil, err
	}

	s, err := store.New(cfg.DBPath)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	cal := dates.NewCalendar(clock, loc)
	if clock == nil {
		clock = dates.SystemClock{}
	}
	dispatcher := notify.New(s, notify.WithNow(clock.Now))
	scheduler := reminder.NewScheduler(dispatcher, cal, logger)
	refresher := widget.NewRefresher(cfg.WidgetDir, s, logger)

	t := tracker.New(s, tracker.Options{
		Calendar:  cal,
		Reminders: scheduler,
		Widget:    refresher,
		Logger:    logger,
	})
	// Read errors fall back to defaults and are already logged.
	_ = t.Refresh()

	return &App{
		Config:     cfg,
		Store:      s,
		Calendar:   cal,
		Logger:     logger,
		Dispatcher: dispatcher,
		Scheduler:  scheduler,
		Widget:     refresher,
		Tracker:    t,
		logFile:    logFile,
	}, nil
}

func (a *App) Close() error {
	err := a.Store.Close()
	if a.logFile != nil {
		a.logFile.Close()
	}
	return err
}

func openLog(path string) (*log.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return log.New(f, "tradetrackr: ", log.LstdFlags|log.Lmsgprefix), f, nil
}
