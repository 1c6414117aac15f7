package export

import (
	"bytes"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/tradetrackr/internal/store"
)

// ToYAML writes the same document as ToJSON in YAML.
func ToYAML(data store.AppData, path string, now time.Time) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(newDocument(data, now)); err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	return writeFile(path, buf.Bytes(), "yaml")
}
