package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"cmdb-sync/core/history"
	"cmdb-sync/core/reconcile"

	"github.com/pterm/pterm"
)

// maxTableActions caps the per-action table so huge runs stay readable.
const maxTableActions = 50

// RenderReport writes one run report in the requested mode.
func RenderReport(w io.Writer, mode Mode, report *reconcile.RunReport) error {
	switch mode {
	case ModeJSON:
		return EmitJSON(w, report)
	case ModeYAML:
		return EmitYAML(w, report)
	default:
		return renderReportTable(w, report)
	}
}

func renderReportTable(w io.Writer, report *reconcile.RunReport) error {
	title := " Sync Run "
	if report.DryRun {
		title = " Sync Plan (dry run) "
	}

	var lines []string
	lines = append(lines,
		fmt.Sprintf("Run       %s", report.RunID),
		fmt.Sprintf("Instance  %s", report.Instance),
	)
	if !report.FinishedAt.IsZero() {
		lines = append(lines, fmt.Sprintf("Took      %s", report.Duration().Round(time.Millisecond)))
	}
	lines = append(lines, "")

	if report.DryRun {
		lines = append(lines, strings.Join([]string{
			metricBadge("to create", report.Planned.Creates, pterm.FgGreen),
			metricBadge("to update", report.Planned.Updates, pterm.FgYellow),
			metricBadge("in sync", report.Planned.Noops, pterm.FgCyan),
		}, "   "))
	} else {
		lines = append(lines, strings.Join([]string{
			metricBadge("created", report.Created, pterm.FgGreen),
			metricBadge("updated", report.Updated, pterm.FgYellow),
			metricBadge("in sync", report.Noops, pterm.FgCyan),
		}, "   "))
	}
	lines = append(lines, strings.Join([]string{
		metricBadge("skipped", report.SkippedInvalid, pterm.FgMagenta),
		metricBadge("failed", report.Failed, pterm.FgRed),
		metricBadge("warnings", report.Warnings, pterm.FgYellow),
		metricBadge("unmatched", len(report.UnmatchedKeys), pterm.FgGray),
	}, "   "))

	lines = append(lines, "")
	switch {
	case report.DryRun:
		lines = append(lines, statusBadge("DRY RUN", pterm.BgBlue, pterm.FgBlack))
	case report.ReloadIssued:
		lines = append(lines, statusBadge("RELOAD ISSUED", pterm.BgGreen, pterm.FgBlack))
	default:
		lines = append(lines, statusBadge("NO RELOAD", pterm.BgGray, pterm.FgBlack))
	}

	box := pterm.DefaultBox.
		WithTitle(title).
		WithTitleTopCenter().
		Sprint(strings.Join(lines, "\n"))
	if _, err := fmt.Fprintln(w, box); err != nil {
		return err
	}

	if len(report.Actions) > 0 {
		if err := renderActionsTable(w, report.Actions); err != nil {
			return err
		}
	}
	if len(report.Failures) > 0 {
		if err := renderFailuresTable(w, report.Failures); err != nil {
			return err
		}
	}
	if len(report.UnmatchedKeys) > 0 {
		fmt.Fprintf(w, "%d target host(s) have no matching CMDB record; they were left untouched.\n",
			len(report.UnmatchedKeys))
	}
	return nil
}

func renderActionsTable(w io.Writer, actions []reconcile.ActionRecord) error {
	data := pterm.TableData{{"ACTION", "KEY", "HOST", "REASON"}}
	for i, a := range actions {
		if i == maxTableActions {
			break
		}
		data = append(data, []string{strings.ToUpper(string(a.Type)), string(a.Key), a.Name, a.Reason})
	}

	table, err := styledTable(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, table); err != nil {
		return err
	}
	if len(actions) > maxTableActions {
		fmt.Fprintf(w, "... and %d more action(s); use --output json for the full list.\n",
			len(actions)-maxTableActions)
	}
	return nil
}

func renderFailuresTable(w io.Writer, failures []reconcile.Failure) error {
	data := pterm.TableData{{"KEY", "STAGE", "CAUSE"}}
	for _, f := range failures {
		data = append(data, []string{string(f.Key), string(f.Stage), f.Cause})
	}

	table, err := styledTable(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, table)
	return err
}

// RenderHistory writes past runs in the requested mode.
func RenderHistory(w io.Writer, mode Mode, runs []history.Run) error {
	switch mode {
	case ModeJSON:
		return EmitJSON(w, runs)
	case ModeYAML:
		return EmitYAML(w, runs)
	}

	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No recorded runs.")
		return err
	}

	data := pterm.TableData{{"RUN", "STARTED", "INSTANCE", "CREATED", "UPDATED", "IN SYNC", "FAILED", "MODE"}}
	for _, r := range runs {
		runMode := "sync"
		if r.DryRun {
			runMode = "dry-run"
		}
		data = append(data, []string{
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Instance,
			fmt.Sprintf("%d", r.Created),
			fmt.Sprintf("%d", r.Updated),
			fmt.Sprintf("%d", r.Noops),
			fmt.Sprintf("%d", r.Failed),
			runMode,
		})
	}

	table, err := styledTable(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, table)
	return err
}
