package orchestrator

import (
	"context"
	"os"
	"time"

	"github.com/redstone-os/ignitectl/internal/command"
)

// Clean scopes.
const (
	CleanStandard = "standard"
	CleanFull     = "full"
)

// Clean removes transient build output. The full scope additionally
// removes the distribution tree, invalidates the prerequisite cache and
// resets the historical metrics record.
func (o *Orchestrator) Clean(ctx context.Context, scope string) CleanOutcome {
	started := time.Now()
	out := CleanOutcome{Scope: scope}

	if scope != CleanStandard && scope != CleanFull {
		out.Outcome = outcome("clean", false, 0, "unknown clean scope %q", scope)
		return out
	}

	eventID := o.begin("clean " + scope)

	res, err := o.runStep(ctx, "clean target", command.Spec{
		Program: cargoProgram,
		Args:    []string{"clean"},
		Dir:     o.paths.Root,
	})
	d := time.Since(started)

	if err != nil || !res.Success {
		o.flush()
		out.Outcome = outcome("clean", false, d, "clean failed")
		out.Err = err
		if err == nil {
			out.Err = &command.NonZeroExitError{Program: cargoProgram, ExitCode: res.ExitCode}
		}
		o.end("clean "+scope, eventID, false, d)
		return out
	}

	if scope == CleanFull {
		if _, statErr := os.Stat(o.paths.Dist); statErr == nil {
			if err := os.RemoveAll(o.paths.Dist); err != nil {
				o.logError("remove dist: %v", err)
			} else {
				out.RemovedDist = true
				o.logf("removed %s", o.paths.Dist)
			}
		}
		if o.cache != nil {
			if err := o.cache.InvalidateAll(); err != nil {
				o.logError("invalidate cache: %v", err)
			} else {
				out.CacheCleared = true
			}
		}
		if err := o.store.Reset(); err != nil {
			o.logError("reset metrics: %v", err)
		} else {
			out.MetricsReset = true
		}
	}

	d = time.Since(started)
	out.Outcome = outcome("clean", true, d, "clean %s completed", scope)
	o.recordHistory(ctx, "clean", scope, true, started, d, res)
	o.end("clean "+scope, eventID, true, d)
	return out
}
