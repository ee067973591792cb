package command

import (
	"context"
	"strings"
	"time"
)

// MockRunner implements Runner for testing. Scripted responses are
// classified and forwarded to the sink exactly like real output so
// callers observe the same counts and event-log traffic.
type MockRunner struct {
	// Calls records all invocations in order
	Calls []Spec

	// Responses maps "program arg0 arg1..." prefixes to responses;
	// the longest matching prefix wins
	Responses map[string]MockResponse

	// Missing lists programs Available reports as not installed
	Missing []string

	// Classifiers and Sink mirror the OSRunner fields
	Classifiers *Registry
	Sink        Sink
}

// MockResponse defines the scripted outcome for a command pattern.
type MockResponse struct {
	Output   string
	ExitCode int
	Err      error
	Duration time.Duration
}

// NewMockRunner creates an empty mock runner.
func NewMockRunner() *MockRunner {
	return &MockRunner{
		Responses:   make(map[string]MockResponse),
		Classifiers: NewRegistry(DefaultClassifier()),
	}
}

// AddResponse scripts the response for a command-line prefix.
func (m *MockRunner) AddResponse(prefix string, resp MockResponse) {
	m.Responses[prefix] = resp
}

func (m *MockRunner) lookup(program string, args []string) MockResponse {
	full := strings.TrimSpace(program + " " + strings.Join(args, " "))
	best, bestLen := MockResponse{}, -1
	for prefix, resp := range m.Responses {
		if strings.HasPrefix(full, prefix) && len(prefix) > bestLen {
			best, bestLen = resp, len(prefix)
		}
	}
	return best
}

func (m *MockRunner) classifier(program string) Classifier {
	if m.Classifiers == nil {
		return DefaultClassifier()
	}
	return m.Classifiers.For(program)
}

// Run replays the scripted response through the classifier and sink.
func (m *MockRunner) Run(ctx context.Context, spec Spec) (Result, error) {
	m.Calls = append(m.Calls, spec)
	resp := m.lookup(spec.Program, spec.Args)
	if resp.Err != nil {
		return Result{Duration: resp.Duration}, resp.Err
	}

	res := Result{
		Success:  resp.ExitCode == 0,
		ExitCode: resp.ExitCode,
		Duration: resp.Duration,
		Output:   resp.Output,
	}

	classifier := m.classifier(spec.Program)
	for _, line := range strings.Split(strings.TrimRight(resp.Output, "\n"), "\n") {
		if resp.Output == "" {
			break
		}
		sev := classifier.Classify(line)
		switch sev {
		case SeverityError:
			res.ErrorCount++
		case SeverityWarning:
			res.WarningCount++
		}
		if m.Sink != nil {
			m.Sink.CommandLine(sev, line)
		}
	}
	return res, nil
}

// Probe replays the scripted response as captured output.
func (m *MockRunner) Probe(ctx context.Context, program string, args ...string) (string, error) {
	m.Calls = append(m.Calls, Spec{Program: program, Args: args})
	resp := m.lookup(program, args)
	if resp.Err != nil {
		return "", resp.Err
	}
	if resp.ExitCode != 0 {
		return resp.Output, &NonZeroExitError{Program: program, ExitCode: resp.ExitCode}
	}
	return resp.Output, nil
}

// Available reports true unless the program is listed as missing.
func (m *MockRunner) Available(program string) bool {
	for _, p := range m.Missing {
		if p == program {
			return false
		}
	}
	return true
}
