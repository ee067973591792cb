package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVocabularyClassifier(t *testing.T) {
	c := DefaultClassifier()

	tests := []struct {
		line string
		want Severity
	}{
		{"error: expected `;`", SeverityError},
		{"ERROR: loud variant", SeverityError},
		{"error[E0308]: mismatched types", SeverityError},
		{"warning: unused variable `x`", SeverityWarning},
		{"warning[W0612]: style", SeverityWarning},
		{"   Compiling ignite v0.4.0", SeverityInfo},
		{"no errors here, just prose", SeverityInfo},
		{"", SeverityInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Classify(tt.line), "line %q", tt.line)
	}
}

func TestVocabularyClassifierErrorWinsOverWarning(t *testing.T) {
	c := DefaultClassifier()
	assert.Equal(t, SeverityError, c.Classify("warning: promoted to error: denied"))
}

func TestRegistryPerToolOverride(t *testing.T) {
	reg := NewRegistry(DefaultClassifier())
	reg.Register("qemu-system-x86_64", &VocabularyClassifier{
		Errors: []string{"qemu: fatal"},
	})

	assert.Equal(t, SeverityError, reg.For("qemu-system-x86_64").Classify("qemu: fatal corruption"))
	// the default vocabulary no longer applies for the overridden tool
	assert.Equal(t, SeverityInfo, reg.For("qemu-system-x86_64").Classify("error: ignored"))
	// unknown tools fall back to the default
	assert.Equal(t, SeverityError, reg.For("cargo").Classify("error: real"))
}

func TestMockRunnerClassifiesScriptedOutput(t *testing.T) {
	sink := &recordingSink{}
	m := NewMockRunner()
	m.Sink = sink
	m.AddResponse("cargo build", MockResponse{
		Output: "Compiling ignite\nwarning: unused import\nerror: oh no\n",
	})

	res, err := m.Run(context.Background(), Spec{Program: "cargo", Args: []string{"build", "--release"}})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.ErrorCount)
	assert.Equal(t, 1, res.WarningCount)
	assert.Len(t, sink.lines, 3)
}

func TestMockRunnerLongestPrefixWins(t *testing.T) {
	m := NewMockRunner()
	m.AddResponse("cargo", MockResponse{ExitCode: 1})
	m.AddResponse("cargo test", MockResponse{Output: "test result: ok. 81 passed\n"})

	res, err := m.Run(context.Background(), Spec{Program: "cargo", Args: []string{"test", "--lib"}})
	require.NoError(t, err)
	assert.True(t, res.Success)

	res, err = m.Run(context.Background(), Spec{Program: "cargo", Args: []string{"build"}})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 1, res.ExitCode)
}
