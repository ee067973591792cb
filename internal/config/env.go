// Package config provides centralized configuration for ignitectl.
// Collects the environment lookups and directory layout in one place
// instead of scattering os.Getenv calls across the codebase.
package config

import (
	"os"
	"sync"
)

// Env holds all ignitectl environment variables.
type Env struct {
	// Root overrides the project root directory (IGNITECTL_ROOT)
	Root string

	// StateDir overrides the state directory (IGNITECTL_STATE)
	StateDir string

	// SessionID is an externally supplied session identifier (IGNITECTL_SESSION_ID)
	SessionID string

	// NoColor disables colored console output (IGNITECTL_NO_COLOR)
	NoColor bool
}

var (
	env     *Env
	envOnce sync.Once
)

// Environment returns the singleton environment configuration.
// Thread-safe, loads once on first call.
func Environment() *Env {
	envOnce.Do(func() {
		env = &Env{
			Root:      os.Getenv("IGNITECTL_ROOT"),
			StateDir:  os.Getenv("IGNITECTL_STATE"),
			SessionID: os.Getenv("IGNITECTL_SESSION_ID"),
			NoColor:   os.Getenv("IGNITECTL_NO_COLOR") == "1",
		}
	})
	return env
}

// ResetEnvironment resets the cached environment (for testing).
func ResetEnvironment() {
	envOnce = sync.Once{}
	env = nil
}
