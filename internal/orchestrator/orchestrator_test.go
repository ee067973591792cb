package orchestrator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redstone-os/ignitectl/internal/cache"
	"github.com/redstone-os/ignitectl/internal/command"
	"github.com/redstone-os/ignitectl/internal/config"
	"github.com/redstone-os/ignitectl/internal/eventlog"
	"github.com/redstone-os/ignitectl/internal/metrics"
)

type fixture struct {
	orch   *Orchestrator
	runner *command.MockRunner
	stats  *metrics.SessionStats
	store  *metrics.Store
	cache  *cache.Store
	paths  config.Paths
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	state := filepath.Join(root, ".ignitectl")
	paths := config.Paths{
		Root:        root,
		Target:      filepath.Join(root, "target"),
		Dist:        filepath.Join(root, "dist"),
		State:       state,
		Logs:        filepath.Join(state, "log"),
		Cache:       filepath.Join(state, "cache"),
		MetricsFile: filepath.Join(state, "metrics.json"),
		HistoryDB:   filepath.Join(state, "history.db"),
	}

	runner := command.NewMockRunner()
	stats := metrics.NewSessionStats()
	store := metrics.NewStore(paths.MetricsFile)
	markers := cache.New(paths.Cache)

	orch := New(Options{
		Runner:    runner,
		Cache:     markers,
		Metrics:   store,
		Stats:     stats,
		Project:   config.DefaultProject(),
		Paths:     paths,
		SessionID: "sess-test",
	})
	return &fixture{orch: orch, runner: runner, stats: stats, store: store, cache: markers, paths: paths}
}

// writeArtifact places a stub build output where the profile expects it
// and returns its content hash.
func (f *fixture) writeArtifact(t *testing.T, profile string, content []byte) string {
	t.Helper()
	path := config.DefaultProject().ArtifactPath(f.paths, profile)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func (f *fixture) scriptHappyToolchain() {
	f.runner.AddResponse("rustup target list", command.MockResponse{Output: "x86_64-unknown-uefi\n"})
	f.runner.AddResponse("cargo build", command.MockResponse{Output: "Compiling ignite v0.4.0\nFinished\n", Duration: 2 * time.Second})
}

func TestBuildEndToEnd(t *testing.T) {
	f := newFixture(t)
	f.scriptHappyToolchain()
	wantHash := f.writeArtifact(t, "debug", []byte("stub efi binary"))

	out := f.orch.Build(context.Background(), "debug", nil)

	require.True(t, out.Success, out.Summary)
	assert.Equal(t, 1, f.stats.Builds)
	require.NotNil(t, out.Artifact)
	assert.Equal(t, wantHash, out.Artifact.SHA256)
	assert.Equal(t, int64(len("stub efi binary")), out.Artifact.Size)

	hist := f.store.Snapshot()
	assert.Equal(t, 1, hist.TotalBuilds)
	require.Len(t, hist.BuildTimes, 1)
	assert.InDelta(t, 2.0, hist.BuildTimes[0], 0.01)
	assert.NotEmpty(t, hist.LastSuccess)

	// metrics were flushed to disk
	assert.FileExists(t, f.paths.MetricsFile)
}

func TestBuildProfileArgs(t *testing.T) {
	f := newFixture(t)
	f.scriptHappyToolchain()
	f.writeArtifact(t, "release", []byte("x"))

	out := f.orch.Build(context.Background(), "release", []string{"serial", "gfx"})

	require.True(t, out.Success, out.Summary)
	var buildCall *command.Spec
	for i := range f.runner.Calls {
		if len(f.runner.Calls[i].Args) > 0 && f.runner.Calls[i].Args[0] == "build" {
			buildCall = &f.runner.Calls[i]
		}
	}
	require.NotNil(t, buildCall)
	assert.Contains(t, buildCall.Args, "--release")
	assert.Contains(t, buildCall.Args, "--features")
	assert.Contains(t, buildCall.Args, "serial,gfx")
}

func TestBuildUnknownProfile(t *testing.T) {
	f := newFixture(t)

	out := f.orch.Build(context.Background(), "turbo", nil)

	assert.False(t, out.Success)
	assert.Zero(t, f.stats.Builds)
	assert.Empty(t, f.runner.Calls)
}

func TestBuildPrerequisiteFailureAbortsBuild(t *testing.T) {
	f := newFixture(t)
	f.runner.AddResponse("rustup target list", command.MockResponse{Output: "thumbv7em-none-eabi\n"})
	f.runner.AddResponse("rustup target add", command.MockResponse{ExitCode: 1, Output: "error: could not download\n"})

	out := f.orch.Build(context.Background(), "debug", nil)

	require.False(t, out.Success)
	var nz *command.NonZeroExitError
	assert.ErrorAs(t, out.Err, &nz)
	// the build command itself never ran
	for _, call := range f.runner.Calls {
		assert.NotEqual(t, "cargo", call.Program)
	}
}

func TestBuildPrerequisiteCached(t *testing.T) {
	f := newFixture(t)
	f.scriptHappyToolchain()
	f.writeArtifact(t, "debug", []byte("x"))

	first := f.orch.Build(context.Background(), "debug", nil)
	require.True(t, first.Success)
	assert.False(t, first.CacheHit)

	f.runner.Calls = nil
	second := f.orch.Build(context.Background(), "debug", nil)
	require.True(t, second.Success)
	assert.True(t, second.CacheHit)
	assert.Equal(t, 1, f.stats.CacheHits)

	// rustup is not consulted on a cache hit
	for _, call := range f.runner.Calls {
		assert.NotEqual(t, "rustup", call.Program)
	}
}

func TestBuildFailureRecordsNoSample(t *testing.T) {
	f := newFixture(t)
	f.runner.AddResponse("rustup target list", command.MockResponse{Output: "x86_64-unknown-uefi\n"})
	f.runner.AddResponse("cargo build", command.MockResponse{
		ExitCode: 101,
		Output:   "error[E0308]: mismatched types\nerror: aborting due to previous error\n",
	})

	out := f.orch.Build(context.Background(), "debug", nil)

	require.False(t, out.Success)
	assert.Equal(t, 2, out.Errors)
	assert.Equal(t, 1, f.stats.Builds)
	// classified lines plus the failed exit itself
	assert.Equal(t, 3, f.stats.Errors)

	hist := f.store.Snapshot()
	assert.Zero(t, hist.TotalBuilds)
	assert.Empty(t, hist.BuildTimes)
	assert.Equal(t, 1, hist.TotalErrors)
	assert.Empty(t, hist.LastSuccess)
}

func TestBuildSuccessWithErrorLinesIsStillSuccess(t *testing.T) {
	f := newFixture(t)
	f.runner.AddResponse("rustup target list", command.MockResponse{Output: "x86_64-unknown-uefi\n"})
	f.runner.AddResponse("cargo build", command.MockResponse{
		Output: "note: error: strings can appear in passing output\nFinished\n",
	})
	f.writeArtifact(t, "debug", []byte("x"))

	out := f.orch.Build(context.Background(), "debug", nil)

	assert.True(t, out.Success)
	assert.Equal(t, 1, out.Errors)
}

func TestBuildInterruptedFlushesMetrics(t *testing.T) {
	f := newFixture(t)
	f.store.RecordTest(3 * time.Second) // pre-existing sample from an earlier sub-step
	f.runner.AddResponse("rustup target list", command.MockResponse{Output: "x86_64-unknown-uefi\n"})
	f.runner.AddResponse("cargo build", command.MockResponse{
		Err: &command.InterruptedError{Program: "cargo", Err: context.Canceled},
	})

	out := f.orch.Build(context.Background(), "debug", nil)

	require.False(t, out.Success)
	var ie *command.InterruptedError
	assert.ErrorAs(t, out.Err, &ie)

	// accumulated metrics hit the disk before the cancellation surfaced
	fresh := metrics.NewStore(f.paths.MetricsFile)
	status, err := fresh.Load()
	require.NoError(t, err)
	assert.Equal(t, metrics.StatusLoaded, status)
	assert.Equal(t, 1, fresh.Snapshot().TotalTests)
}

func TestTestPassCountExtraction(t *testing.T) {
	f := newFixture(t)
	f.runner.AddResponse("cargo test", command.MockResponse{
		Output:   "running 81 tests\ntest result: ok. 81 passed; 0 failed; 0 ignored\n",
		Duration: 4 * time.Second,
	})

	out := f.orch.Test(context.Background(), "all", true)

	require.True(t, out.Success)
	assert.True(t, out.PassedKnown)
	assert.Equal(t, 81, out.Passed)
	assert.Equal(t, 1, f.stats.Tests)

	hist := f.store.Snapshot()
	assert.Equal(t, 1, hist.TotalTests)
	require.Len(t, hist.TestTimes, 1)
	assert.InDelta(t, 4.0, hist.TestTimes[0], 0.01)
}

func TestTestPassCountAbsentIsNotAnError(t *testing.T) {
	f := newFixture(t)
	f.runner.AddResponse("cargo test", command.MockResponse{Output: "ok\n"})

	out := f.orch.Test(context.Background(), "unit", false)

	assert.True(t, out.Success)
	assert.False(t, out.PassedKnown)
}

func TestTestKindAndParallelArgs(t *testing.T) {
	f := newFixture(t)
	f.runner.AddResponse("cargo test", command.MockResponse{Output: "ok\n"})

	f.orch.Test(context.Background(), "unit", false)

	require.Len(t, f.runner.Calls, 1)
	args := f.runner.Calls[0].Args
	assert.Contains(t, args, "--lib")
	assert.Contains(t, args, "--test-threads=1")

	f.runner.Calls = nil
	f.orch.Test(context.Background(), "integration", true)
	args = f.runner.Calls[0].Args
	assert.Contains(t, args, "--test")
	assert.NotContains(t, args, "--test-threads=1")
}

func TestCheckAllPassing(t *testing.T) {
	f := newFixture(t)
	f.runner.AddResponse("cargo", command.MockResponse{Output: "ok\n"})

	out := f.orch.Check(context.Background(), "all")

	require.True(t, out.Success, out.Summary)
	assert.Equal(t, 5, out.Applicable)
	assert.Equal(t, 5, out.Passed)
	assert.Equal(t, "5/5 checks passed", out.Summary)
	assert.Equal(t, 1, f.stats.Checks)

	// submission order is preserved
	names := make([]string, 0, len(out.Items))
	for _, item := range out.Items {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"cargo check", "rustfmt", "clippy", "cargo audit", "cargo outdated"}, names)
}

func TestCheckMissingToolIsNotApplicable(t *testing.T) {
	f := newFixture(t)
	f.runner.Missing = []string{"cargo-audit", "cargo-outdated"}
	f.runner.AddResponse("cargo", command.MockResponse{Output: "ok\n"})

	out := f.orch.Check(context.Background(), "all")

	require.True(t, out.Success, "unavailable tools must not fail the check")
	assert.Equal(t, 3, out.Applicable)
	assert.Equal(t, 3, out.Passed)

	skipped := 0
	for _, item := range out.Items {
		if item.Status == ItemSkipped {
			skipped++
			var unavailable *ToolUnavailableError
			assert.ErrorAs(t, item.Err, &unavailable)
		}
	}
	assert.Equal(t, 2, skipped)
}

func TestCheckFailingItemFailsOverall(t *testing.T) {
	f := newFixture(t)
	f.runner.AddResponse("cargo", command.MockResponse{Output: "ok\n"})
	f.runner.AddResponse("cargo clippy", command.MockResponse{
		ExitCode: 1,
		Output:   "warning: this looks sketchy\nerror: lint failed\n",
	})

	out := f.orch.Check(context.Background(), "all")

	assert.False(t, out.Success)
	assert.Equal(t, 5, out.Applicable)
	assert.Equal(t, 4, out.Passed)
	assert.Equal(t, ItemFailed, out.Items[2].Status)
	assert.Equal(t, 1, out.Items[2].ExitCode)
}

func TestDistributeHappyPath(t *testing.T) {
	f := newFixture(t)
	f.scriptHappyToolchain()
	content := []byte("release efi payload")
	f.writeArtifact(t, "release", content)
	require.NoError(t, os.WriteFile(filepath.Join(f.paths.Root, "ignite.conf"), []byte("timeout=3\n"), 0o644))

	out := f.orch.Distribute(context.Background(), "release")

	require.True(t, out.Success, out.Summary)
	require.NotNil(t, out.Manifest)
	assert.Equal(t, "ignite", out.Manifest.Name)
	assert.Equal(t, "release", out.Manifest.Profile)
	assert.Equal(t, int64(len(content)), out.Manifest.BinarySize)
	assert.Len(t, out.Manifest.BinaryHash, 64)

	staged, err := os.ReadFile(filepath.Join(f.paths.Dist, "EFI", "BOOT", "BOOTX64.EFI"))
	require.NoError(t, err)
	assert.Equal(t, content, staged)
	assert.FileExists(t, filepath.Join(f.paths.Dist, "boot", "ignite.conf"))
	assert.FileExists(t, filepath.Join(f.paths.Dist, "manifest.json"))
}

func TestDistributeAbortsWithoutManifestWhenBuildFails(t *testing.T) {
	f := newFixture(t)
	f.runner.AddResponse("rustup target list", command.MockResponse{Output: "x86_64-unknown-uefi\n"})
	f.runner.AddResponse("cargo build", command.MockResponse{ExitCode: 101, Output: "error: broken\n"})

	out := f.orch.Distribute(context.Background(), "release")

	assert.False(t, out.Success)
	assert.NoFileExists(t, filepath.Join(f.paths.Dist, "manifest.json"))
}

func TestCleanStandardKeepsCacheAndMetrics(t *testing.T) {
	f := newFixture(t)
	f.runner.AddResponse("cargo clean", command.MockResponse{Output: "Removed target\n"})
	require.NoError(t, f.cache.Set("target-x86_64-unknown-uefi"))
	f.store.RecordBuild(time.Second)
	require.NoError(t, f.store.Save())

	out := f.orch.Clean(context.Background(), "standard")

	require.True(t, out.Success)
	assert.False(t, out.CacheCleared)
	assert.False(t, out.MetricsReset)
	assert.True(t, f.cache.Check("target-x86_64-unknown-uefi"))
	assert.FileExists(t, f.paths.MetricsFile)
}

func TestCleanFull(t *testing.T) {
	f := newFixture(t)
	f.runner.AddResponse("cargo clean", command.MockResponse{Output: "Removed target\n"})
	require.NoError(t, f.cache.Set("target-x86_64-unknown-uefi"))
	f.store.RecordBuild(time.Second)
	require.NoError(t, f.store.Save())
	require.NoError(t, os.MkdirAll(f.paths.Dist, 0o755))

	out := f.orch.Clean(context.Background(), "full")

	require.True(t, out.Success)
	assert.True(t, out.RemovedDist)
	assert.True(t, out.CacheCleared)
	assert.True(t, out.MetricsReset)
	assert.NoDirExists(t, f.paths.Dist)
	assert.False(t, f.cache.Check("target-x86_64-unknown-uefi"))
	assert.NoFileExists(t, f.paths.MetricsFile)
}

func TestDiagnose(t *testing.T) {
	f := newFixture(t)
	f.runner.AddResponse("rustc --version", command.MockResponse{Output: "rustc 1.82.0 (f6e511eec 2024-10-15)\n"})
	f.runner.AddResponse("cargo --version", command.MockResponse{Output: "cargo 1.82.0\n"})
	f.runner.AddResponse("rustup target list", command.MockResponse{Output: "x86_64-unknown-uefi\n"})
	require.NoError(t, os.WriteFile(filepath.Join(f.paths.Root, "Cargo.toml"), []byte("[package]\n"), 0o644))
	testsDir := filepath.Join(f.paths.Root, "tests", "unit")
	require.NoError(t, os.MkdirAll(testsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(testsDir, "boot_tests.rs"), []byte("// t\n"), 0o644))

	report := f.orch.Diagnose(context.Background())

	require.True(t, report.Success)
	assert.Equal(t, 1, report.Session.Diagnostics)
	assert.True(t, report.DescriptorPresent)
	assert.True(t, report.TargetInstalled)
	assert.Equal(t, 1, report.TestFiles)
	assert.Equal(t, 100, report.Health.Score)
	assert.Equal(t, "excellent", report.Health.Tier())

	require.Len(t, report.Tools, 2)
	assert.True(t, report.Tools[0].Available)
	assert.Equal(t, "rustc 1.82.0 (f6e511eec 2024-10-15)", report.Tools[0].Version)

	assert.False(t, report.AvgBuildKnown, "no samples must be reported as unknown, not zero")
}

func TestDiagnoseDegraded(t *testing.T) {
	f := newFixture(t)
	f.runner.Missing = []string{"rustc", "cargo", "rustup"}
	f.stats.Errors = 3
	for i := 0; i < 12; i++ {
		f.store.RecordError()
	}

	report := f.orch.Diagnose(context.Background())

	assert.False(t, report.DescriptorPresent)
	assert.False(t, report.TargetInstalled)
	assert.False(t, report.Tools[0].Available)
	// 100 - 20 (session) - 10 (historical) - 30 (descriptor)
	assert.Equal(t, 40, report.Health.Score)
	assert.Equal(t, "attention", report.Health.Tier())
	assert.ElementsMatch(t, []string{
		"session errors",
		"elevated historical error count",
		"missing project descriptor",
	}, report.Health.Issues)
}

func TestVerboseLogsStepDetail(t *testing.T) {
	f := newFixture(t)
	log, err := eventlog.Open(f.paths.Logs, "sess-verbose")
	require.NoError(t, err)
	defer log.Close()

	runner := command.NewMockRunner()
	runner.AddResponse("rustup target list", command.MockResponse{Output: "x86_64-unknown-uefi\n"})
	runner.AddResponse("cargo build", command.MockResponse{Output: "warning: unused\nFinished\n"})

	orch := New(Options{
		Runner:  runner,
		Cache:   f.cache,
		Metrics: f.store,
		Stats:   metrics.NewSessionStats(),
		Log:     log,
		Project: config.DefaultProject(),
		Paths:   f.paths,
		Verbose: true,
	})
	f.writeArtifact(t, "debug", []byte("stub efi binary"))

	out := orch.Build(context.Background(), "debug", nil)
	require.True(t, out.Success, out.Summary)

	data, err := os.ReadFile(log.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "classified 0 error and 1 warning lines")
}
