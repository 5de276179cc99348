package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"
)

// Mode selects how command results are rendered.
type Mode string

const (
	// ModeTable renders human-readable tables and summary boxes.
	ModeTable Mode = "table"
	// ModeJSON renders indented JSON, suitable for piping.
	ModeJSON Mode = "json"
	// ModeYAML renders YAML.
	ModeYAML Mode = "yaml"
)

// ParseMode validates an --output flag value.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ModeTable):
		return ModeTable, nil
	case string(ModeJSON):
		return ModeJSON, nil
	case string(ModeYAML), "yml":
		return ModeYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (expected table, json or yaml)", s)
	}
}

// InitStyles applies global rendering settings before anything prints.
// NO_COLOR is honored for terminals and CI logs that cannot take ANSI
// escapes.
func InitStyles() {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		pterm.DisableColor()
	}
}

// EmitJSON writes v to w as indented JSON.
func EmitJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// EmitYAML writes v to w as YAML.
func EmitYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(v)
}

// metricBadge renders a bold count for summary lines.
func metricBadge(label string, value int, color pterm.Color) string {
	return pterm.NewStyle(color, pterm.Bold).Sprintf("%d %s", value, label)
}

// statusBadge renders a short label on a colored background.
func statusBadge(label string, bg, fg pterm.Color) string {
	return pterm.NewStyle(bg, fg, pterm.Bold).Sprintf(" %s ", label)
}

// styledTable renders rows with a header and box borders.
func styledTable(data pterm.TableData) (string, error) {
	return pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithData(data).
		Srender()
}
