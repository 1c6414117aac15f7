package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sadopc/tradetrackr/internal/store"
)

// ToJSON writes the rules and day logs as an indented document.
func ToJSON(data store.AppData, path string, now time.Time) error {
	b, err := json.MarshalIndent(newDocument(data, now), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	return writeFile(path, b, "json")
}
