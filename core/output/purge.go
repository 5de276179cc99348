package output

import (
	"fmt"
	"io"
	"strings"

	"cmdb-sync/feature/opsview"

	"github.com/pterm/pterm"
)

// RenderPurge writes a purge result in the requested mode.
func RenderPurge(w io.Writer, mode Mode, result *opsview.PurgeResult) error {
	switch mode {
	case ModeJSON:
		return EmitJSON(w, result)
	case ModeYAML:
		return EmitYAML(w, result)
	}

	var lines []string
	lines = append(lines, strings.Join([]string{
		metricBadge("hosts deleted", result.HostsDeleted, pterm.FgRed),
		metricBadge("hashtags pruned", result.HashtagsPruned, pterm.FgMagenta),
	}, "   "))

	lines = append(lines, "")
	if result.ReloadIssued {
		lines = append(lines, statusBadge("RELOAD ISSUED", pterm.BgGreen, pterm.FgBlack))
	} else {
		lines = append(lines, statusBadge("NOTHING TO DO", pterm.BgGray, pterm.FgBlack))
	}

	box := pterm.DefaultBox.
		WithTitle(" Purge ").
		WithTitleTopCenter().
		Sprint(strings.Join(lines, "\n"))
	if _, err := fmt.Fprintln(w, box); err != nil {
		return err
	}

	if len(result.HostNames) == 0 {
		return nil
	}

	data := pterm.TableData{{"DELETED HOST"}}
	for _, name := range result.HostNames {
		data = append(data, []string{name})
	}
	table, err := styledTable(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, table)
	return err
}
