// Package export writes the day logs to CSV, JSON or YAML files.
package export

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"github.com/sadopc/tradetrackr/internal/store"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the supported formats in menu order.
var Formats = []Format{FormatCSV, FormatJSON, FormatYAML}

// ParseFormat accepts csv, json, yaml or yml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Write exports data in the given format to path.
func Write(f Format, data store.AppData, path string, now time.Time) error {
	switch f {
	case FormatCSV:
		return ToCSV(data, path)
	case FormatJSON:
		return ToJSON(data, path, now)
	case FormatYAML:
		return ToYAML(data, path, now)
	}
	return fmt.Errorf("unknown export format %q", f)
}

// FileName is the default export file name for a day.
func FileName(f Format, today time.Time) string {
	return fmt.Sprintf("tradetrackr-export-%s.%s", today.Format("2006-01-02"), f)
}

// day is one exported day log, shared by the JSON and YAML encoders.
type day struct {
	Date        string   `json:"date" yaml:"date"`
	Status      string   `json:"status" yaml:"status"`
	NoTrade     bool     `json:"no_trade" yaml:"no_trade"`
	Followed    int      `json:"followed" yaml:"followed"`
	Total       int      `json:"total" yaml:"total"`
	BrokenRules []string `json:"broken_rules,omitempty" yaml:"broken_rules,omitempty"`
	LockedAt    string   `json:"locked_at,omitempty" yaml:"locked_at,omitempty"`
}

type rule struct {
	ID        string `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
}

type document struct {
	ExportedAt string `json:"exported_at" yaml:"exported_at"`
	Count      int    `json:"count" yaml:"count"`
	Rules      []rule `json:"rules" yaml:"rules"`
	Days       []day  `json:"days" yaml:"days"`
}

// days flattens the logs into date order. Rule ids that no longer exist are
// shown as "(deleted rule)".
func days(data store.AppData) []day {
	texts := make(map[string]string, len(data.Rules))
	for _, r := range data.Rules {
		texts[r.ID] = r.Text
	}

	keys := make([]string, 0, len(data.Logs))
	for k := range data.Logs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]day, 0, len(keys))
	for _, k := range keys {
		l := data.Logs[k]
		d := day{Date: l.Date, Status: string(l.Status), NoTrade: l.IsNoTrade()}
		if d.Date == "" {
			d.Date = k
		}
		if results, ok := l.Results(); ok {
			ids := make([]string, 0, len(results))
			for id := range results {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				d.Total++
				if results[id] {
					d.Followed++
					continue
				}
				text, ok := texts[id]
				if !ok {
					text = "(deleted rule)"
				}
				d.BrokenRules = append(d.BrokenRules, text)
			}
		}
		if !l.LockedAt.IsZero() {
			d.LockedAt = l.LockedAt.UTC().Format(time.RFC3339)
		}
		out = append(out, d)
	}
	return out
}

func newDocument(data store.AppData, now time.Time) document {
	doc := document{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Rules:      []rule{},
		Days:       days(data),
	}
	doc.Count = len(doc.Days)
	for _, r := range data.Rules {
		doc.Rules = append(doc.Rules, rule{ID: r.ID, Text: r.Text, CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339)})
	}
	return doc
}

func writeFile(path string, b []byte, what string) error {
	if err := atomic.WriteFile(path, bytes.NewReader(b)); err != nil {
		return fmt.Errorf("write %s file: %w", what, err)
	}
	return nil
}
