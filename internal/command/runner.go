package command

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// Spec describes a single external command invocation.
type Spec struct {
	Program string
	Args    []string
	Dir     string
}

// Result is the outcome of one completed invocation. Output-text
// classification and exit-status success are orthogonal signals: a
// process may exit 0 while having printed lines counted as errors.
type Result struct {
	Success      bool
	ExitCode     int
	Duration     time.Duration
	Output       string
	ErrorCount   int
	WarningCount int

	// Truncated reports that line capture stopped early (a line
	// exceeded the scan buffer); Output is incomplete but the process
	// still ran to completion.
	Truncated bool
}

// Sink receives every output line of every executed command, verbatim
// and in order, regardless of classification.
type Sink interface {
	CommandLine(sev Severity, line string)
}

// Runner executes external commands. Inject this instead of calling
// exec.Command directly.
type Runner interface {
	// Run executes a command, streaming and classifying combined
	// stdout/stderr line by line as it is produced. The returned error is
	// nil for a process that ran to completion, whatever its exit code;
	// spawn failures yield ExecutionError and cancellation
	// InterruptedError.
	Run(ctx context.Context, spec Spec) (Result, error)

	// Probe executes a short query command and returns its combined
	// output, for tool version and availability checks.
	Probe(ctx context.Context, program string, args ...string) (string, error)

	// Available reports whether a program can be found on PATH.
	Available(program string) bool
}

// OSRunner implements Runner using os/exec.
type OSRunner struct {
	// Classifiers selects the per-tool line classifier (nil = default
	// vocabulary for every program)
	Classifiers *Registry

	// Sink receives every output line (nil = discard)
	Sink Sink

	// Echo mirrors output lines for live progress display (nil = quiet)
	Echo io.Writer
}

// NewOSRunner creates a runner with the default classifier vocabulary.
func NewOSRunner() *OSRunner {
	return &OSRunner{Classifiers: NewRegistry(DefaultClassifier())}
}

func (r *OSRunner) classifier(program string) Classifier {
	if r.Classifiers == nil {
		return DefaultClassifier()
	}
	return r.Classifiers.For(program)
}

// Run executes the command, reading combined output line by line so
// partial progress is observable while the process runs.
func (r *OSRunner) Run(ctx context.Context, spec Spec) (Result, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, spec.Program, spec.Args...)
	cmd.Dir = spec.Dir

	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return Result{Duration: time.Since(start)}, &ExecutionError{Program: spec.Program, Err: err}
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		if ctx.Err() != nil {
			return Result{Duration: time.Since(start)}, &InterruptedError{Program: spec.Program, Err: ctx.Err()}
		}
		return Result{Duration: time.Since(start)}, &ExecutionError{Program: spec.Program, Err: err}
	}

	var (
		res        Result
		out        strings.Builder
		classifier = r.classifier(spec.Program)
	)

	scanner := bufio.NewScanner(pipe)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		out.WriteString(line)
		out.WriteByte('\n')

		sev := classifier.Classify(line)
		switch sev {
		case SeverityError:
			res.ErrorCount++
		case SeverityWarning:
			res.WarningCount++
		}

		if r.Sink != nil {
			r.Sink.CommandLine(sev, line)
		}
		if r.Echo != nil {
			fmt.Fprintln(r.Echo, line)
		}
	}

	scanErr := scanner.Err()
	if scanErr != nil {
		// the child keeps writing; the pipe must stay drained or Wait
		// deadlocks on a full pipe buffer
		io.Copy(io.Discard, pipe)
	}

	waitErr := cmd.Wait()
	res.Duration = time.Since(start)
	res.Output = out.String()

	if scanErr != nil {
		res.Truncated = true
		res.WarningCount++
		note := fmt.Sprintf("output capture stopped: %v", scanErr)
		if r.Sink != nil {
			r.Sink.CommandLine(SeverityWarning, note)
		}
		if r.Echo != nil {
			fmt.Fprintln(r.Echo, note)
		}
	}

	if ctx.Err() != nil {
		return res, &InterruptedError{Program: spec.Program, Err: ctx.Err()}
	}

	if waitErr != nil {
		exitErr, ok := waitErr.(*exec.ExitError)
		if !ok {
			return res, &ExecutionError{Program: spec.Program, Err: waitErr}
		}
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}

	res.Success = true
	return res, nil
}

// Probe runs a short query command and returns combined output.
func (r *OSRunner) Probe(ctx context.Context, program string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, program, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return string(out), &NonZeroExitError{Program: program, ExitCode: cmd.ProcessState.ExitCode()}
		}
		return "", &ExecutionError{Program: program, Err: err}
	}
	return string(out), nil
}

// Available reports whether program resolves on PATH.
func (r *OSRunner) Available(program string) bool {
	_, err := exec.LookPath(program)
	return err == nil
}
