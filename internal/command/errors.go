package command

import "fmt"

// ExecutionError reports that a process could not be spawned at all
// (missing executable, permission denied). Fatal to the action; the
// runner never retries.
type ExecutionError struct {
	Program string
	Err     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("start %s: %v", e.Program, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// NonZeroExitError reports a process that ran to completion and exited
// non-zero. Produced by callers that treat a failed step as fatal to a
// composite action; the runner itself reports exit status via Result.
type NonZeroExitError struct {
	Program  string
	ExitCode int
}

func (e *NonZeroExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Program, e.ExitCode)
}

// InterruptedError reports a command terminated by cancellation. The
// child process has been killed and no partial durable state remains.
type InterruptedError struct {
	Program string
	Err     error
}

func (e *InterruptedError) Error() string {
	return fmt.Sprintf("%s interrupted: %v", e.Program, e.Err)
}

func (e *InterruptedError) Unwrap() error { return e.Err }
