package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	lines []string
	sevs  []Severity
}

func (s *recordingSink) CommandLine(sev Severity, line string) {
	s.sevs = append(s.sevs, sev)
	s.lines = append(s.lines, line)
}

func TestRunSuccessWithErrorTextIsStillSuccess(t *testing.T) {
	// Classification and exit status are orthogonal: a process exiting 0
	// after printing an "error:" line still reports success.
	r := NewOSRunner()

	res, err := r.Run(context.Background(), Spec{
		Program: "sh",
		Args:    []string{"-c", `echo "error: something informational"; exit 0`},
	})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, 1, res.ErrorCount)
	assert.Equal(t, 0, res.WarningCount)
	assert.Contains(t, res.Output, "error: something informational")
}

func TestRunNonZeroExit(t *testing.T) {
	r := NewOSRunner()

	res, err := r.Run(context.Background(), Spec{
		Program: "sh",
		Args:    []string{"-c", `echo building; exit 3`},
	})

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 3, res.ExitCode)
	assert.Contains(t, res.Output, "building")
	assert.Greater(t, res.Duration, time.Duration(0))
}

func TestRunSpawnFailure(t *testing.T) {
	r := NewOSRunner()

	res, err := r.Run(context.Background(), Spec{Program: "definitely-not-a-real-binary-4711"})

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "definitely-not-a-real-binary-4711", execErr.Program)
	assert.False(t, res.Success)
}

func TestRunInterrupted(t *testing.T) {
	r := NewOSRunner()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := r.Run(ctx, Spec{Program: "sh", Args: []string{"-c", "sleep 30"}})

	var intErr *InterruptedError
	require.ErrorAs(t, err, &intErr)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRunOversizedLineDoesNotHang(t *testing.T) {
	// A single line past the scan buffer cap must not leave the child
	// blocked on a full pipe: the pipe keeps draining, the process runs
	// to completion, and the truncation is reported.
	r := NewOSRunner()

	script := `head -c 3000000 /dev/zero | tr '\0' a; echo; echo done`
	res, err := r.Run(context.Background(), Spec{Program: "sh", Args: []string{"-c", script}})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.Truncated)
	assert.GreaterOrEqual(t, res.WarningCount, 1)
}

func TestRunCancelledBeforeStart(t *testing.T) {
	r := NewOSRunner()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, Spec{Program: "sh", Args: []string{"-c", "echo never"}})

	var intErr *InterruptedError
	require.ErrorAs(t, err, &intErr)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunForwardsEveryLineInOrder(t *testing.T) {
	sink := &recordingSink{}
	r := NewOSRunner()
	r.Sink = sink

	script := `echo "first"; echo "warning: second"; echo "error[E0308]: third"`
	res, err := r.Run(context.Background(), Spec{Program: "sh", Args: []string{"-c", script}})

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "warning: second", "error[E0308]: third"}, sink.lines)
	assert.Equal(t, []Severity{SeverityInfo, SeverityWarning, SeverityError}, sink.sevs)
	assert.Equal(t, 1, res.ErrorCount)
	assert.Equal(t, 1, res.WarningCount)
}

func TestRunInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	r := NewOSRunner()

	res, err := r.Run(context.Background(), Spec{Program: "pwd", Dir: dir})

	require.NoError(t, err)
	assert.Contains(t, res.Output, dir)
}

func TestProbeCapturesOutput(t *testing.T) {
	r := NewOSRunner()

	out, err := r.Probe(context.Background(), "sh", "-c", "echo probed")

	require.NoError(t, err)
	assert.Contains(t, out, "probed")
}

func TestProbeMissingTool(t *testing.T) {
	r := NewOSRunner()

	_, err := r.Probe(context.Background(), "definitely-not-a-real-binary-4711")

	var execErr *ExecutionError
	assert.ErrorAs(t, err, &execErr)
}

func TestAvailable(t *testing.T) {
	r := NewOSRunner()

	assert.True(t, r.Available("sh"))
	assert.False(t, r.Available("definitely-not-a-real-binary-4711"))
}
