package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/sadopc/tradetrackr/internal/store"
)

// ToCSV writes one row per logged day.
func ToCSV(data store.AppData, path string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Date", "Status", "No Trade", "Followed", "Total", "Broken Rules", "Locked At"}); err != nil {
		return err
	}

	for _, d := range days(data) {
		row := []string{
			d.Date,
			d.Status,
			strconv.FormatBool(d.NoTrade),
			strconv.Itoa(d.Followed),
			strconv.Itoa(d.Total),
			strings.Join(d.BrokenRules, "; "),
			d.LockedAt,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	return writeFile(path, buf.Bytes(), "csv")
}
