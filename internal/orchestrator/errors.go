package orchestrator

import "fmt"

// ToolUnavailableError reports an optional verification tool that is
// not installed. Downgraded to a "not applicable" item outcome, never
// counted as failure.
type ToolUnavailableError struct {
	Tool string
}

func (e *ToolUnavailableError) Error() string {
	return fmt.Sprintf("tool %s is not installed", e.Tool)
}
