package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/redstone-os/ignitectl/internal/eventlog"
	"github.com/redstone-os/ignitectl/internal/health"
	"github.com/redstone-os/ignitectl/internal/metrics"
)

// rollingWindow is the sample count for the diagnose report's averages.
const rollingWindow = 5

// Diagnose composes tool availability, project descriptor checks,
// session stats, historical metrics and the health score into one
// report. Read-only apart from the diagnostics counter.
func (o *Orchestrator) Diagnose(ctx context.Context) DiagnoseReport {
	started := time.Now()
	o.stats.Diagnostics++

	report := DiagnoseReport{
		Historical:    o.store.Snapshot(),
		MetricsStatus: o.store.Status(),
	}

	for _, tool := range []string{"rustc", cargoProgram} {
		report.Tools = append(report.Tools, o.probeTool(ctx, tool))
	}
	report.TargetInstalled = o.probeTarget(ctx)

	if _, err := os.Stat(o.project.DescriptorPath(o.paths)); err == nil {
		report.DescriptorPresent = true
	}

	report.TestFiles = countTestFiles(o.paths.Root)
	if infos, err := eventlog.List(o.paths.Logs); err == nil {
		report.LogFiles = len(infos)
	}
	if o.log != nil {
		report.SessionLog = filepath.Base(o.log.Path())
	}

	report.AvgBuild, report.AvgBuildKnown = o.store.RollingAverage(metrics.KindBuild, rollingWindow)
	report.AvgTest, report.AvgTestKnown = o.store.RollingAverage(metrics.KindTest, rollingWindow)

	report.Health = health.Compute(o.stats.Errors, o.store.TotalErrors(), report.DescriptorPresent)
	report.Session = *o.stats

	d := time.Since(started)
	report.Outcome = outcome("diagnose", true, d, "health %d/100 (%s)",
		report.Health.Score, report.Health.Tier())
	return report
}

func (o *Orchestrator) probeTool(ctx context.Context, tool string) ToolStatus {
	status := ToolStatus{Name: tool}
	if !o.runner.Available(tool) {
		return status
	}

	o.stats.CommandsRun++
	out, err := o.runner.Probe(ctx, tool, "--version")
	if err != nil {
		return status
	}
	status.Available = true
	if line, _, found := strings.Cut(out, "\n"); found || line != "" {
		status.Version = strings.TrimSpace(line)
	}
	return status
}

func (o *Orchestrator) probeTarget(ctx context.Context) bool {
	if !o.runner.Available(rustupProgram) {
		return false
	}
	o.stats.CommandsRun++
	out, err := o.runner.Probe(ctx, rustupProgram, "target", "list", "--installed")
	if err != nil {
		return false
	}
	return strings.Contains(out, o.project.Target)
}

func countTestFiles(root string) int {
	matches, err := doublestar.FilepathGlob(filepath.Join(root, "tests", "**", "*.rs"))
	if err != nil {
		return 0
	}
	return len(matches)
}
