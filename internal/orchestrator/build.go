package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redstone-os/ignitectl/internal/command"
	"github.com/redstone-os/ignitectl/internal/dist"
)

// Profiles accepted by Build and Distribute.
const (
	ProfileDebug   = "debug"
	ProfileRelease = "release"
	ProfileVerbose = "verbose"
)

func validProfile(profile string) bool {
	return profile == ProfileDebug || profile == ProfileRelease || profile == ProfileVerbose
}

// Build runs the cache-gated prerequisite check, compiles the project
// for the given profile and optional features, and on success hashes
// the produced artifact and records the build duration.
func (o *Orchestrator) Build(ctx context.Context, profile string, features []string) BuildOutcome {
	started := time.Now()
	out := BuildOutcome{Profile: profile, Features: features}

	if !validProfile(profile) {
		out.Outcome = outcome("build", false, 0, "unknown profile %q", profile)
		out.Err = fmt.Errorf("unknown profile %q", profile)
		return out
	}

	eventID := o.begin("build " + profile)
	o.stats.Builds++

	hit, err := o.ensureTarget(ctx)
	out.CacheHit = hit
	if err != nil {
		o.flush()
		d := time.Since(started)
		out.Outcome = outcome("build", false, d, "prerequisite failed: target %s not installed", o.project.Target)
		out.Err = err
		o.end("build "+profile, eventID, false, d)
		return out
	}

	args := []string{"build", "--package", o.project.Package, "--target", o.project.Target}
	switch profile {
	case ProfileRelease:
		args = append(args, "--release")
	case ProfileVerbose:
		args = append(args, "--verbose")
	}
	if len(features) > 0 {
		args = append(args, "--features", strings.Join(features, ","))
	}

	res, err := o.runStep(ctx, "build "+profile, command.Spec{
		Program: cargoProgram,
		Args:    args,
		Dir:     o.paths.Root,
	})
	out.Errors = res.ErrorCount
	out.Warnings = res.WarningCount
	d := time.Since(started)

	if err != nil {
		o.flush()
		out.Outcome = outcome("build", false, d, "build %s did not complete", profile)
		out.Err = err
		if !interrupted(err) {
			o.recordHistory(ctx, "build", profile, false, started, d, res)
		}
		o.end("build "+profile, eventID, false, d)
		return out
	}

	if !res.Success {
		o.flush()
		out.Outcome = outcome("build", false, d, "build %s failed with exit code %d (%d errors, %d warnings)",
			profile, res.ExitCode, res.ErrorCount, res.WarningCount)
		out.Err = &command.NonZeroExitError{Program: cargoProgram, ExitCode: res.ExitCode}
		o.recordHistory(ctx, "build", profile, false, started, d, res)
		o.end("build "+profile, eventID, false, d)
		return out
	}

	artifactPath := o.project.ArtifactPath(o.paths, profile)
	hash, size, err := dist.HashFile(artifactPath)
	if err != nil {
		o.flush()
		out.Outcome = outcome("build", false, d, "build %s succeeded but artifact %s is missing", profile, artifactPath)
		out.Err = err
		o.recordHistory(ctx, "build", profile, false, started, d, res)
		o.end("build "+profile, eventID, false, d)
		return out
	}

	o.store.RecordBuild(res.Duration)
	o.store.MarkSuccess(time.Now())
	o.flush()
	o.recordHistory(ctx, "build", profile, true, started, d, res)

	out.Artifact = &Artifact{Path: artifactPath, Size: size, SHA256: hash}
	out.Outcome = outcome("build", true, d, "build %s completed in %.2fs (%s, %d bytes)",
		profile, d.Seconds(), hash[:12], size)
	o.end("build "+profile, eventID, true, d)
	return out
}

// ensureTarget verifies the compilation target is installed, installing
// it on first use. Success is cached under a TTL marker so the probe is
// skipped for subsequent actions in the window.
func (o *Orchestrator) ensureTarget(ctx context.Context) (cacheHit bool, err error) {
	key := "target-" + o.project.Target
	if o.cache != nil && o.cache.Check(key) {
		o.logf("target %s verified (cached)", o.project.Target)
		return true, nil
	}

	o.stats.CommandsRun++
	installed, err := o.runner.Probe(ctx, rustupProgram, "target", "list", "--installed")
	if err != nil {
		return false, err
	}

	if !strings.Contains(installed, o.project.Target) {
		res, err := o.runStep(ctx, "install target "+o.project.Target, command.Spec{
			Program: rustupProgram,
			Args:    []string{"target", "add", o.project.Target},
		})
		if err != nil {
			return false, err
		}
		if !res.Success {
			return false, &command.NonZeroExitError{Program: rustupProgram, ExitCode: res.ExitCode}
		}
	} else {
		o.logf("target %s already installed", o.project.Target)
	}

	if o.cache != nil {
		if err := o.cache.Set(key); err != nil {
			o.logError("cache target marker: %v", err)
		}
	}
	return false, nil
}
