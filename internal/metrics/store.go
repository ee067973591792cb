// Package metrics tracks session counters and durable cross-session
// build metrics.
package metrics

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Kind selects a duration-sample series.
type Kind string

const (
	KindBuild Kind = "build"
	KindTest  Kind = "test"
)

// Historical is the durable cross-session record. Duration samples are
// append-only within a session; only Reset removes entries.
type Historical struct {
	TotalBuilds int       `json:"total_builds"`
	TotalTests  int       `json:"total_tests"`
	TotalErrors int       `json:"total_errors"`
	BuildTimes  []float64 `json:"build_times"`
	TestTimes   []float64 `json:"test_times"`
	LastSuccess string    `json:"last_success,omitempty"`
}

// LoadStatus reports how the persisted record was obtained. Absent and
// Corrupt both yield zero defaults, but operators must be able to tell
// them apart to notice silent data loss.
type LoadStatus int

const (
	// StatusLoaded means the record was read and parsed.
	StatusLoaded LoadStatus = iota
	// StatusAbsent means no record existed yet; defaults apply.
	StatusAbsent
	// StatusCorrupt means the record existed but was unparseable;
	// defaults apply and the condition is surfaced.
	StatusCorrupt
)

func (s LoadStatus) String() string {
	switch s {
	case StatusLoaded:
		return "loaded"
	case StatusAbsent:
		return "absent"
	case StatusCorrupt:
		return "corrupt"
	default:
		return "unknown"
	}
}

// CorruptStateError reports an unparseable persisted record that was
// recovered by resetting to defaults.
type CorruptStateError struct {
	Path string
	Err  error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("corrupt metrics file %s: %v", e.Path, e.Err)
}

func (e *CorruptStateError) Unwrap() error { return e.Err }

// Store owns the in-memory Historical record and its file on disk.
type Store struct {
	mu     sync.Mutex
	path   string
	data   Historical
	status LoadStatus
}

// NewStore creates a store persisting to path. Call Load before use.
func NewStore(path string) *Store {
	return &Store{path: path, status: StatusAbsent}
}

// Load reads the persisted record. A missing file yields defaults with
// StatusAbsent and no error; an unparseable file yields defaults with
// StatusCorrupt and a CorruptStateError the caller may surface as a
// warning; permission failures fail loudly.
func (s *Store) Load() (LoadStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.data = Historical{}
			s.status = StatusAbsent
			return StatusAbsent, nil
		}
		return StatusAbsent, fmt.Errorf("read metrics: %w", err)
	}

	var h Historical
	if err := json.Unmarshal(data, &h); err != nil {
		s.data = Historical{}
		s.status = StatusCorrupt
		return StatusCorrupt, &CorruptStateError{Path: s.path, Err: err}
	}

	s.data = h
	s.status = StatusLoaded
	return StatusLoaded, nil
}

// Status returns the outcome of the last Load.
func (s *Store) Status() LoadStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Save writes the record, whole-file-replaced via a temp file and an
// atomic rename so a concurrent reader never sees a half-written file.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}

	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".metrics-*")
	if err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write metrics: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write metrics: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace metrics: %w", err)
	}
	return nil
}

// RecordBuild appends a build duration sample and bumps the counter.
func (s *Store) RecordBuild(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.TotalBuilds++
	s.data.BuildTimes = append(s.data.BuildTimes, d.Seconds())
}

// RecordTest appends a test duration sample and bumps the counter.
func (s *Store) RecordTest(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.TotalTests++
	s.data.TestTimes = append(s.data.TestTimes, d.Seconds())
}

// RecordError bumps the historical error total. Independent of session
// error counting.
func (s *Store) RecordError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.TotalErrors++
}

// MarkSuccess records the timestamp of the last successful build.
func (s *Store) MarkSuccess(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.LastSuccess = t.UTC().Format(time.RFC3339)
}

// Snapshot returns a copy of the current record.
func (s *Store) Snapshot() Historical {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.data
	h.BuildTimes = append([]float64(nil), s.data.BuildTimes...)
	h.TestTimes = append([]float64(nil), s.data.TestTimes...)
	return h
}

// TotalErrors returns the historical error total.
func (s *Store) TotalErrors() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.TotalErrors
}

// RollingAverage returns the arithmetic mean of the most recent n
// samples for kind. ok is false when no samples exist; callers must not
// treat that as zero.
func (s *Store) RollingAverage(kind Kind, n int) (avg float64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var samples []float64
	switch kind {
	case KindBuild:
		samples = s.data.BuildTimes
	case KindTest:
		samples = s.data.TestTimes
	}
	if len(samples) == 0 || n <= 0 {
		return 0, false
	}
	if n > len(samples) {
		n = len(samples)
	}

	var sum float64
	for _, v := range samples[len(samples)-n:] {
		sum += v
	}
	return sum / float64(n), true
}

// Reset discards the in-memory record and removes the file. Used only
// by the full clean action.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = Historical{}
	s.status = StatusAbsent
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove metrics: %w", err)
	}
	return nil
}
