package orchestrator

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/redstone-os/ignitectl/internal/command"
)

// Test kinds.
const (
	TestAll         = "all"
	TestUnit        = "unit"
	TestIntegration = "integration"
)

var passCountRe = regexp.MustCompile(`test result:.*?(\d+) passed`)

// Test runs the test suite scoped to kind. The parallel flag only
// controls the invoked tool's own internal concurrency.
func (o *Orchestrator) Test(ctx context.Context, kind string, parallel bool) TestOutcome {
	started := time.Now()
	out := TestOutcome{Kind: kind, Parallel: parallel}

	args := []string{"test", "--package", o.project.Package}
	switch kind {
	case TestAll:
	case TestUnit:
		args = append(args, "--lib")
	case TestIntegration:
		args = append(args, "--test", "*")
	default:
		out.Outcome = outcome("test", false, 0, "unknown test kind %q", kind)
		out.Err = fmt.Errorf("unknown test kind %q", kind)
		return out
	}
	if !parallel {
		args = append(args, "--", "--test-threads=1")
	}

	eventID := o.begin("test " + kind)
	o.stats.Tests++

	res, err := o.runStep(ctx, "test "+kind, command.Spec{
		Program: cargoProgram,
		Args:    args,
		Dir:     o.paths.Root,
	})
	d := time.Since(started)

	if err != nil {
		o.flush()
		out.Outcome = outcome("test", false, d, "tests %s did not complete", kind)
		out.Err = err
		if !interrupted(err) {
			o.recordHistory(ctx, "test", kind, false, started, d, res)
		}
		o.end("test "+kind, eventID, false, d)
		return out
	}

	if !res.Success {
		o.flush()
		out.Outcome = outcome("test", false, d, "tests %s failed with exit code %d", kind, res.ExitCode)
		out.Err = &command.NonZeroExitError{Program: cargoProgram, ExitCode: res.ExitCode}
		o.recordHistory(ctx, "test", kind, false, started, d, res)
		o.end("test "+kind, eventID, false, d)
		return out
	}

	o.store.RecordTest(res.Duration)
	o.flush()
	o.recordHistory(ctx, "test", kind, true, started, d, res)

	// best-effort pass count; absence is not an error
	if m := passCountRe.FindStringSubmatch(res.Output); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			out.Passed = n
			out.PassedKnown = true
		}
	}

	if out.PassedKnown {
		out.Outcome = outcome("test", true, d, "tests %s passed (%d passed) in %.2fs", kind, out.Passed, d.Seconds())
	} else {
		out.Outcome = outcome("test", true, d, "tests %s passed in %.2fs", kind, d.Seconds())
	}
	o.end("test "+kind, eventID, true, d)
	return out
}
