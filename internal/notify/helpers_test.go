package notify

import (
	"io"
	"log"
	"time"

	"github.com/sadopc/tradetrackr/internal/dates"
)

func calendarAt(t time.Time) dates.Calendar {
	return dates.NewCalendar(dates.FixedClock(t), nil)
}

func discardLogger() *log.Logger { return log.New(io.Discard, "", 0) }
