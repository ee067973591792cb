package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/redstone-os/ignitectl/internal/command"
)

// Check kinds. "all" additionally runs the optional audit and
// dependency-freshness tools.
const (
	CheckStatic = "check"
	CheckFormat = "fmt"
	CheckLint   = "clippy"
	CheckAll    = "all"
)

type checkDef struct {
	name string
	args []string
	// probe is the binary whose PATH presence decides applicability
	probe string
}

func (o *Orchestrator) checkDefs(kind string) []checkDef {
	pkg := o.project.Package
	var defs []checkDef

	if kind == CheckStatic || kind == CheckAll {
		defs = append(defs, checkDef{"cargo check", []string{"check", "--package", pkg}, cargoProgram})
	}
	if kind == CheckFormat || kind == CheckAll {
		defs = append(defs, checkDef{"rustfmt", []string{"fmt", "--package", pkg, "--", "--check"}, "cargo-fmt"})
	}
	if kind == CheckLint || kind == CheckAll {
		defs = append(defs, checkDef{"clippy", []string{"clippy", "--package", pkg}, "cargo-clippy"})
	}
	if kind == CheckAll {
		defs = append(defs,
			checkDef{"cargo audit", []string{"audit"}, "cargo-audit"},
			checkDef{"cargo outdated", []string{"outdated", "--exit-code", "1"}, "cargo-outdated"},
		)
	}
	return defs
}

// Check runs the ordered verification commands for kind, one after
// another. A missing tool yields a "not applicable" item, never a
// failure; overall success requires every applicable item to pass.
func (o *Orchestrator) Check(ctx context.Context, kind string) CheckOutcome {
	started := time.Now()
	out := CheckOutcome{Kind: kind}

	defs := o.checkDefs(kind)
	if len(defs) == 0 {
		out.Outcome = outcome("check", false, 0, "unknown check kind %q", kind)
		out.Err = fmt.Errorf("unknown check kind %q", kind)
		return out
	}

	eventID := o.begin("check " + kind)
	o.stats.Checks++

	for _, def := range defs {
		if !o.runner.Available(def.probe) {
			o.logf("%s skipped: not installed", def.name)
			out.Items = append(out.Items, CheckItem{
				Name:   def.name,
				Status: ItemSkipped,
				Err:    &ToolUnavailableError{Tool: def.probe},
			})
			continue
		}

		res, err := o.runStep(ctx, def.name, command.Spec{
			Program: cargoProgram,
			Args:    def.args,
			Dir:     o.paths.Root,
		})
		if err != nil {
			d := time.Since(started)
			o.flush()
			out.Items = append(out.Items, CheckItem{Name: def.name, Status: ItemFailed, Duration: res.Duration, Err: err})
			out.Applicable++
			out.Outcome = outcome("check", false, d, "check %s aborted at %s", kind, def.name)
			out.Err = err
			o.end("check "+kind, eventID, false, d)
			return out
		}

		item := CheckItem{Name: def.name, Duration: res.Duration, ExitCode: res.ExitCode}
		out.Applicable++
		if res.Success {
			item.Status = ItemPassed
			out.Passed++
		} else {
			item.Status = ItemFailed
		}
		out.Items = append(out.Items, item)
	}

	d := time.Since(started)
	o.flush()

	success := out.Passed == out.Applicable
	out.Outcome = outcome("check", success, d, "%d/%d checks passed", out.Passed, out.Applicable)
	o.recordHistory(ctx, "check", kind, success, started, d, command.Result{})
	o.end("check "+kind, eventID, success, d)
	return out
}
