// Package orchestrator composes command execution, caching, metrics and
// health scoring into the named high-level actions: build, test, check,
// distribute, clean and diagnose.
package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redstone-os/ignitectl/internal/cache"
	"github.com/redstone-os/ignitectl/internal/command"
	"github.com/redstone-os/ignitectl/internal/config"
	"github.com/redstone-os/ignitectl/internal/eventlog"
	"github.com/redstone-os/ignitectl/internal/history"
	"github.com/redstone-os/ignitectl/internal/metrics"
)

// Toolchain program names. The programs themselves are opaque external
// tools; only their argument conventions are known here.
const (
	cargoProgram  = "cargo"
	rustupProgram = "rustup"
)

// Orchestrator issues at most one external command at a time and routes
// every result through the session counters and the metrics store.
type Orchestrator struct {
	runner  command.Runner
	cache   *cache.Store
	store   *metrics.Store
	stats   *metrics.SessionStats
	log     *eventlog.Log
	hist    *history.Store
	project config.Project
	paths   config.Paths
	session string
	verbose bool
}

// Options wires the orchestrator's collaborators. Runner, Cache,
// Metrics and Stats are required; Log and History are optional.
type Options struct {
	Runner  command.Runner
	Cache   *cache.Store
	Metrics *metrics.Store
	Stats   *metrics.SessionStats
	Log     *eventlog.Log
	History *history.Store
	Project config.Project
	Paths   config.Paths

	// SessionID identifies this process session in history records;
	// defaults to the event log's session when unset
	SessionID string

	// Verbose adds per-step classification detail to the event log
	Verbose bool
}

// New creates an orchestrator and connects the cache-hit counter to the
// session stats.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		runner:  opts.Runner,
		cache:   opts.Cache,
		store:   opts.Metrics,
		stats:   opts.Stats,
		log:     opts.Log,
		hist:    opts.History,
		project: opts.Project,
		paths:   opts.Paths,
		session: opts.SessionID,
		verbose: opts.Verbose,
	}
	if o.session == "" && o.log != nil {
		o.session = o.log.SessionID()
	}
	if o.cache != nil {
		o.cache.OnHit = func() { o.stats.CacheHits++ }
	}
	return o
}

// runStep executes one external command and folds its classified counts
// into the session stats. A non-zero exit additionally counts one
// session error and one historical error, mirroring the per-command
// failure accounting of the interactive tool.
func (o *Orchestrator) runStep(ctx context.Context, desc string, spec command.Spec) (command.Result, error) {
	o.stats.CommandsRun++
	o.logf("▶ %s: %s %s", desc, spec.Program, strings.Join(spec.Args, " "))

	res, err := o.runner.Run(ctx, spec)
	o.stats.Errors += res.ErrorCount
	o.stats.Warnings += res.WarningCount

	if o.verbose {
		o.logf("%s classified %d error and %d warning lines in %.2fs",
			desc, res.ErrorCount, res.WarningCount, res.Duration.Seconds())
	}

	if err != nil {
		var interrupted *command.InterruptedError
		if errors.As(err, &interrupted) {
			o.logError("%s interrupted", desc)
			return res, err
		}
		o.stats.Errors++
		o.store.RecordError()
		o.logError("%s failed to start: %v", desc, err)
		return res, err
	}

	if !res.Success {
		o.stats.Errors++
		o.store.RecordError()
		o.logError("%s failed (exit code %d)", desc, res.ExitCode)
		return res, nil
	}

	o.logf("%s succeeded in %.2fs", desc, res.Duration.Seconds())
	return res, nil
}

// flush persists accumulated metrics. Called after every completed
// action and before propagating a cancellation, so no action is left
// half-recorded.
func (o *Orchestrator) flush() {
	if err := o.store.Save(); err != nil {
		o.logError("persist metrics: %v", err)
	}
}

func (o *Orchestrator) recordHistory(ctx context.Context, action, detail string, success bool, started time.Time, d time.Duration, res command.Result) {
	if o.hist == nil {
		return
	}
	err := o.hist.Record(ctx, history.Entry{
		SessionID: o.session,
		Action:    action,
		Detail:    detail,
		Success:   success,
		Duration:  d,
		Errors:    res.ErrorCount,
		Warnings:  res.WarningCount,
		StartedAt: started,
	})
	if err != nil {
		o.logError("record history: %v", err)
	}
}

func (o *Orchestrator) logf(format string, args ...any) {
	if o.log != nil {
		o.log.Infof(format, args...)
	}
}

func (o *Orchestrator) logError(format string, args ...any) {
	if o.log != nil {
		o.log.Errorf(format, args...)
	}
}

func (o *Orchestrator) begin(action string) string {
	if o.log == nil {
		return ""
	}
	return o.log.Begin(action)
}

func (o *Orchestrator) end(action, eventID string, success bool, d time.Duration) {
	if o.log != nil {
		o.log.End(action, eventID, success, d)
	}
}

// interrupted reports whether err carries an InterruptedError. Actions
// skip history recording in that case; the metrics flush still lands.
func interrupted(err error) bool {
	var ie *command.InterruptedError
	return errors.As(err, &ie)
}
