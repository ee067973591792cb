package orchestrator

import (
	"fmt"
	"time"

	"github.com/redstone-os/ignitectl/internal/dist"
	"github.com/redstone-os/ignitectl/internal/health"
	"github.com/redstone-os/ignitectl/internal/metrics"
)

// Outcome is the structured result every action returns to the caller.
type Outcome struct {
	Action   string
	Success  bool
	Duration time.Duration
	Summary  string
	Err      error
}

// Artifact describes the binary a successful build produced.
type Artifact struct {
	Path   string
	Size   int64
	SHA256 string
}

// BuildOutcome is the result of a Build action.
type BuildOutcome struct {
	Outcome
	Profile  string
	Features []string
	CacheHit bool
	Artifact *Artifact
	Errors   int
	Warnings int
}

// TestOutcome is the result of a Test action. Passed is best-effort,
// extracted from the tool's result line when present.
type TestOutcome struct {
	Outcome
	Kind        string
	Parallel    bool
	Passed      int
	PassedKnown bool
}

// ItemStatus is the per-item outcome of a verification step.
type ItemStatus string

const (
	ItemPassed ItemStatus = "passed"
	ItemFailed ItemStatus = "failed"
	// ItemSkipped means the tool is not installed; never conflated with
	// failure.
	ItemSkipped ItemStatus = "not applicable"
)

// CheckItem is one verification command's outcome, in submission order.
type CheckItem struct {
	Name     string
	Status   ItemStatus
	Duration time.Duration
	ExitCode int
	Err      error
}

// CheckOutcome aggregates the per-item outcomes of a Check action.
// Success requires every applicable item to pass.
type CheckOutcome struct {
	Outcome
	Kind       string
	Items      []CheckItem
	Passed     int
	Applicable int
}

// DistOutcome is the result of a Distribute action.
type DistOutcome struct {
	Outcome
	Profile  string
	Dir      string
	Manifest *dist.Manifest
}

// CleanOutcome is the result of a Clean action.
type CleanOutcome struct {
	Outcome
	Scope        string
	RemovedDist  bool
	CacheCleared bool
	MetricsReset bool
}

// ToolStatus reports one external tool's availability and version.
type ToolStatus struct {
	Name      string
	Available bool
	Version   string
}

// DiagnoseReport is the read-only environment and health report.
type DiagnoseReport struct {
	Outcome
	Tools             []ToolStatus
	TargetInstalled   bool
	DescriptorPresent bool
	TestFiles         int
	LogFiles          int
	SessionLog        string
	Session           metrics.SessionStats
	Historical        metrics.Historical
	MetricsStatus     metrics.LoadStatus
	AvgBuild          float64
	AvgBuildKnown     bool
	AvgTest           float64
	AvgTestKnown      bool
	Health            health.Report
}

func outcome(action string, success bool, d time.Duration, format string, args ...any) Outcome {
	return Outcome{
		Action:   action,
		Success:  success,
		Duration: d,
		Summary:  fmt.Sprintf(format, args...),
	}
}
