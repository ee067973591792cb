// Package command provides streaming execution of external toolchain
// commands with per-line output classification.
package command

import "strings"

// Severity is the classification assigned to a single output line.
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARN"
	SeverityError   Severity = "ERROR"
)

// Classifier assigns a severity to each output line of a command.
//
// Classification is purely textual and best-effort: it depends on the
// invoked tool's output format, carries no stability guarantee, and is
// deliberately independent of the process exit code.
type Classifier interface {
	Classify(line string) Severity
}

// VocabularyClassifier matches case-insensitive substrings against fixed
// error and warning vocabularies.
type VocabularyClassifier struct {
	Errors   []string
	Warnings []string
}

// Classify returns the first matching severity, errors before warnings.
func (c *VocabularyClassifier) Classify(line string) Severity {
	lower := strings.ToLower(line)
	for _, m := range c.Errors {
		if strings.Contains(lower, m) {
			return SeverityError
		}
	}
	for _, m := range c.Warnings {
		if strings.Contains(lower, m) {
			return SeverityWarning
		}
	}
	return SeverityInfo
}

// DefaultClassifier returns the stock vocabulary shared by the supported
// toolchain programs.
func DefaultClassifier() *VocabularyClassifier {
	return &VocabularyClassifier{
		Errors:   []string{"error:", "error["},
		Warnings: []string{"warning:", "warning["},
	}
}

// Registry maps program names to tool-specific classifiers, falling back
// to a default for unknown programs.
type Registry struct {
	fallback Classifier
	byTool   map[string]Classifier
}

// NewRegistry creates a registry with the given fallback classifier.
func NewRegistry(fallback Classifier) *Registry {
	return &Registry{
		fallback: fallback,
		byTool:   make(map[string]Classifier),
	}
}

// Register installs a classifier for a program name.
func (r *Registry) Register(program string, c Classifier) {
	r.byTool[program] = c
}

// For returns the classifier for a program.
func (r *Registry) For(program string) Classifier {
	if c, ok := r.byTool[program]; ok {
		return c
	}
	return r.fallback
}
