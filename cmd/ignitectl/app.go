package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/redstone-os/ignitectl/internal/cache"
	"github.com/redstone-os/ignitectl/internal/command"
	"github.com/redstone-os/ignitectl/internal/config"
	"github.com/redstone-os/ignitectl/internal/eventlog"
	"github.com/redstone-os/ignitectl/internal/history"
	"github.com/redstone-os/ignitectl/internal/metrics"
	"github.com/redstone-os/ignitectl/internal/orchestrator"
	"github.com/redstone-os/ignitectl/internal/render"
)

// errActionFailed signals a failed action to main without a duplicate
// error message; the outcome has already been rendered.
var errActionFailed = errors.New("action failed")

// app holds the wired collaborators for one invocation.
type app struct {
	project config.Project
	paths   config.Paths
	stats   *metrics.SessionStats
	store   *metrics.Store
	log     *eventlog.Log
	hist    *history.Store
	orch    *orchestrator.Orchestrator
	out     *render.Writer
}

func projectRoot() string {
	if flagRoot != "" {
		return flagRoot
	}
	if envRoot := config.Environment().Root; envRoot != "" {
		return envRoot
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// openApp loads configuration and opens the session log, metrics store,
// prerequisite cache and action history.
func openApp() (*app, error) {
	out := render.New(!flagPlain && !config.Environment().NoColor)

	root := projectRoot()
	project, err := config.LoadProject(root)
	if err != nil {
		out.Warnf("%v (using defaults)", err)
	}
	paths := config.DefaultPaths(root)

	log, err := eventlog.Open(paths.Logs, config.Environment().SessionID)
	if err != nil {
		return nil, fmt.Errorf("open session log: %w", err)
	}

	store := metrics.NewStore(paths.MetricsFile)
	if status, err := store.Load(); err != nil {
		var corrupt *metrics.CorruptStateError
		if !errors.As(err, &corrupt) {
			// permission problems fail loudly rather than silently
			// dropping history
			log.Close()
			return nil, err
		}
		out.Warnf("%v — historical metrics reset to defaults", err)
		log.Errorf("metrics load: %v (status %s)", err, status)
	}

	hist, err := history.Open(paths.HistoryDB)
	if err != nil {
		out.Warnf("action history unavailable: %v", err)
		log.Errorf("open history: %v", err)
		hist = nil
	}

	runner := command.NewOSRunner()
	runner.Sink = log
	if !flagPlain {
		runner.Echo = os.Stdout
	}

	stats := metrics.NewSessionStats()
	orch := orchestrator.New(orchestrator.Options{
		Runner:  runner,
		Cache:   cache.New(paths.Cache),
		Metrics: store,
		Stats:   stats,
		Log:     log,
		History: hist,
		Project: project,
		Paths:   paths,
		Verbose: flagVerbose,
	})

	return &app{
		project: project,
		paths:   paths,
		stats:   stats,
		store:   store,
		log:     log,
		hist:    hist,
		orch:    orch,
		out:     out,
	}, nil
}

// close writes the session summary and releases resources.
func (a *app) close() {
	a.log.Infof("session summary: builds=%d tests=%d checks=%d commands=%d errors=%d warnings=%d cache_hits=%d",
		a.stats.Builds, a.stats.Tests, a.stats.Checks, a.stats.CommandsRun,
		a.stats.Errors, a.stats.Warnings, a.stats.CacheHits)
	if a.hist != nil {
		a.hist.Close()
	}
	a.log.Close()
}
