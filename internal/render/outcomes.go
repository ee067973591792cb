package render

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/redstone-os/ignitectl/internal/eventlog"
	"github.com/redstone-os/ignitectl/internal/history"
	"github.com/redstone-os/ignitectl/internal/metrics"
	"github.com/redstone-os/ignitectl/internal/orchestrator"
)

func (w *Writer) newTable() table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w.out)
	if w.pretty {
		tw.SetStyle(table.StyleLight)
	}
	return tw
}

// Outcome renders the generic success/failure line for an action.
func (w *Writer) Outcome(o orchestrator.Outcome) {
	if o.Success {
		w.Successf("%s", o.Summary)
		return
	}
	w.Failf("%s", o.Summary)
	if o.Err != nil {
		w.Dimf("  %v", o.Err)
	}
}

// Build renders a build outcome with its artifact descriptor.
func (w *Writer) Build(out orchestrator.BuildOutcome) {
	w.Outcome(out.Outcome)
	if out.Artifact == nil {
		return
	}
	tw := w.newTable()
	tw.AppendRow(table.Row{"Binary", out.Artifact.Path})
	tw.AppendRow(table.Row{"Size", formatSize(out.Artifact.Size)})
	tw.AppendRow(table.Row{"SHA-256", out.Artifact.SHA256})
	tw.AppendRow(table.Row{"Duration", formatDuration(out.Duration)})
	if out.CacheHit {
		tw.AppendRow(table.Row{"Prerequisite", "verified (cached)"})
	}
	tw.Render()
	if out.Warnings > 0 {
		w.Warnf("%d warnings", out.Warnings)
	}
}

// Test renders a test outcome.
func (w *Writer) Test(out orchestrator.TestOutcome) {
	w.Outcome(out.Outcome)
	if out.Success && out.PassedKnown {
		w.Dimf("  %d tests passed", out.Passed)
	}
}

// Check renders the per-item outcomes of a check action.
func (w *Writer) Check(out orchestrator.CheckOutcome) {
	for _, item := range out.Items {
		switch item.Status {
		case orchestrator.ItemPassed:
			w.Successf("%s (%s)", item.Name, formatDuration(item.Duration))
		case orchestrator.ItemSkipped:
			w.Dimf("- %s: not applicable (tool not installed)", item.Name)
		default:
			w.Failf("%s (exit code %d)", item.Name, item.ExitCode)
		}
	}
	w.Outcome(out.Outcome)
}

// Distribute renders a distribution outcome and its manifest.
func (w *Writer) Distribute(out orchestrator.DistOutcome) {
	w.Outcome(out.Outcome)
	if out.Manifest == nil {
		return
	}
	tw := w.newTable()
	tw.AppendRow(table.Row{"Directory", out.Dir})
	tw.AppendRow(table.Row{"Bootloader", "EFI/BOOT/BOOTX64.EFI"})
	tw.AppendRow(table.Row{"Version", out.Manifest.Version})
	tw.AppendRow(table.Row{"SHA-256", out.Manifest.BinaryHash})
	tw.AppendRow(table.Row{"Size", formatSize(out.Manifest.BinarySize)})
	tw.Render()
}

// Diagnose renders the doctor report: tools, project, session stats,
// historical metrics and the health score.
func (w *Writer) Diagnose(report orchestrator.DiagnoseReport) {
	w.Headerf("Tools")
	tw := w.newTable()
	tw.AppendHeader(table.Row{"Component", "Status", "Version"})
	for _, tool := range report.Tools {
		status := "missing"
		if tool.Available {
			status = "ok"
		}
		tw.AppendRow(table.Row{tool.Name, status, tool.Version})
	}
	target := "missing"
	if report.TargetInstalled {
		target = "ok"
	}
	tw.AppendRow(table.Row{"target", target, ""})
	tw.Render()

	w.Headerf("Project")
	tw = w.newTable()
	descriptor := "missing"
	if report.DescriptorPresent {
		descriptor = "found"
	}
	tw.AppendRow(table.Row{"Descriptor", descriptor})
	tw.AppendRow(table.Row{"Test files", report.TestFiles})
	tw.AppendRow(table.Row{"Session logs", report.LogFiles})
	if report.SessionLog != "" {
		tw.AppendRow(table.Row{"Current log", report.SessionLog})
	}
	tw.Render()

	w.Headerf("Session")
	tw = w.newTable()
	tw.AppendRow(table.Row{"Builds", report.Session.Builds})
	tw.AppendRow(table.Row{"Tests", report.Session.Tests})
	tw.AppendRow(table.Row{"Checks", report.Session.Checks})
	tw.AppendRow(table.Row{"Commands run", report.Session.CommandsRun})
	tw.AppendRow(table.Row{"Cache hits", report.Session.CacheHits})
	tw.AppendRow(table.Row{"Errors", report.Session.Errors})
	tw.AppendRow(table.Row{"Warnings", report.Session.Warnings})
	tw.AppendRow(table.Row{"Uptime", formatDuration(report.Session.Uptime())})
	tw.Render()

	w.Headerf("History")
	tw = w.newTable()
	tw.AppendRow(table.Row{"Total builds", report.Historical.TotalBuilds})
	tw.AppendRow(table.Row{"Total tests", report.Historical.TotalTests})
	tw.AppendRow(table.Row{"Total errors", report.Historical.TotalErrors})
	if report.AvgBuildKnown {
		tw.AppendRow(table.Row{"Avg build (last 5)", formatSeconds(report.AvgBuild)})
	} else {
		tw.AppendRow(table.Row{"Avg build (last 5)", "no samples"})
	}
	if report.AvgTestKnown {
		tw.AppendRow(table.Row{"Avg test (last 5)", formatSeconds(report.AvgTest)})
	} else {
		tw.AppendRow(table.Row{"Avg test (last 5)", "no samples"})
	}
	if report.Historical.LastSuccess != "" {
		tw.AppendRow(table.Row{"Last success", report.Historical.LastSuccess})
	}
	if report.MetricsStatus == metrics.StatusCorrupt {
		tw.AppendRow(table.Row{"Metrics file", "CORRUPT (reset to defaults)"})
	}
	tw.Render()
	if report.MetricsStatus == metrics.StatusCorrupt {
		w.Warnf("historical metrics file was unreadable and has been reset")
	}

	w.Headerf("Health")
	score := report.Health.Score
	line := w.Successf
	switch {
	case score < 60:
		line = w.Failf
	case score < 80:
		line = w.Warnf
	}
	line("score %d/100 (%s)", score, report.Health.Tier())
	for _, issue := range report.Health.Issues {
		w.Dimf("  - %s", issue)
	}
}

// logListLimit caps the logs listing to the most recent entries.
const logListLimit = 10

// Logs renders the recent session log listing, newest first, at most
// logListLimit entries.
func (w *Writer) Logs(infos []eventlog.Info) {
	if len(infos) == 0 {
		w.Dimf("no session logs found")
		return
	}
	total := len(infos)
	if total > logListLimit {
		infos = infos[:logListLimit]
	}
	tw := w.newTable()
	tw.AppendHeader(table.Row{"File", "Size", "Modified"})
	for _, info := range infos {
		tw.AppendRow(table.Row{info.Name, formatSize(info.Size), info.Modified.Format("2006-01-02 15:04:05")})
	}
	tw.Render()
	if total > logListLimit {
		w.Dimf("showing %d of %d session logs", logListLimit, total)
	}
}

// History renders recorded actions from past sessions.
func (w *Writer) History(entries []history.Entry) {
	if len(entries) == 0 {
		w.Dimf("no recorded actions")
		return
	}
	tw := w.newTable()
	tw.AppendHeader(table.Row{"When", "Action", "Outcome", "Duration", "Errors"})
	for _, e := range entries {
		outcome := "ok"
		if !e.Success {
			outcome = "failed"
		}
		name := e.Action
		if e.Detail != "" {
			name += " " + e.Detail
		}
		tw.AppendRow(table.Row{
			e.StartedAt.Local().Format("2006-01-02 15:04"),
			name,
			outcome,
			formatDuration(e.Duration),
			e.Errors,
		})
	}
	tw.Render()
}

func formatSeconds(s float64) string {
	return formatDuration(time.Duration(s * float64(time.Second)))
}
