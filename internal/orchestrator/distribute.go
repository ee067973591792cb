package orchestrator

import (
	"context"
	"time"

	"github.com/redstone-os/ignitectl/internal/command"
	"github.com/redstone-os/ignitectl/internal/dist"
)

// Distribute builds the profile, stages the artifact and auxiliary
// files into the distribution tree, and writes the manifest last so a
// failed staging step never leaves a partial manifest behind.
func (o *Orchestrator) Distribute(ctx context.Context, profile string) DistOutcome {
	started := time.Now()
	out := DistOutcome{Profile: profile, Dir: o.paths.Dist}

	eventID := o.begin("distribute " + profile)

	built := o.Build(ctx, profile, nil)
	if !built.Success {
		d := time.Since(started)
		out.Outcome = outcome("distribute", false, d, "build failed, distribution aborted")
		out.Err = built.Err
		o.end("distribute "+profile, eventID, false, d)
		return out
	}

	layout := dist.DefaultLayout(o.paths.Dist)
	if err := dist.Stage(layout, built.Artifact.Path, o.project.AuxFiles, o.paths.Root); err != nil {
		d := time.Since(started)
		o.logError("staging failed: %v", err)
		out.Outcome = outcome("distribute", false, d, "staging failed, distribution aborted")
		out.Err = err
		o.recordHistory(ctx, "distribute", profile, false, started, d, command.Result{})
		o.end("distribute "+profile, eventID, false, d)
		return out
	}

	// hash the staged copy; the manifest must describe what ships
	hash, size, err := dist.HashFile(layout.BinaryPath())
	if err != nil {
		d := time.Since(started)
		out.Outcome = outcome("distribute", false, d, "staged artifact unreadable, distribution aborted")
		out.Err = err
		o.recordHistory(ctx, "distribute", profile, false, started, d, command.Result{})
		o.end("distribute "+profile, eventID, false, d)
		return out
	}

	manifest := dist.NewManifest(o.project.Name, o.project.Version, profile, hash, size, time.Now())
	if err := manifest.Write(layout.Root); err != nil {
		d := time.Since(started)
		out.Outcome = outcome("distribute", false, d, "manifest write failed")
		out.Err = err
		o.recordHistory(ctx, "distribute", profile, false, started, d, command.Result{})
		o.end("distribute "+profile, eventID, false, d)
		return out
	}

	d := time.Since(started)
	out.Manifest = &manifest
	out.Outcome = outcome("distribute", true, d, "distribution %s staged to %s (%d bytes)",
		profile, o.paths.Dist, size)
	o.recordHistory(ctx, "distribute", profile, true, started, d, command.Result{})
	o.end("distribute "+profile, eventID, true, d)
	return out
}
