package metrics

import "time"

// SessionStats holds the in-memory counters for one process session.
// Created fresh at startup, mutated only on the orchestrator's single
// execution path, discarded at exit. Callers exposing concurrent API
// access must serialize mutations externally.
type SessionStats struct {
	Builds      int
	Tests       int
	Checks      int
	Errors      int
	Warnings    int
	CommandsRun int
	CacheHits   int
	Diagnostics int
	Started     time.Time
}

// NewSessionStats creates zeroed counters stamped with the session start.
func NewSessionStats() *SessionStats {
	return &SessionStats{Started: time.Now()}
}

// Uptime returns the elapsed session duration.
func (s *SessionStats) Uptime() time.Duration {
	return time.Since(s.Started)
}
