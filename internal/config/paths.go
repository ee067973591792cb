package config

import "path/filepath"

// Paths holds the standard directory layout rooted at the project directory.
type Paths struct {
	// Root is the project root (where the toolchain manifest lives)
	Root string

	// Target is the toolchain build output directory (<root>/target)
	Target string

	// Dist is the distribution staging directory (<root>/dist)
	Dist string

	// State is the ignitectl state directory (<root>/.ignitectl)
	State string

	// Logs holds per-session event logs (<state>/log)
	Logs string

	// Cache holds the prerequisite marker cache (<state>/cache)
	Cache string

	// MetricsFile is the persisted historical metrics record
	MetricsFile string

	// HistoryDB is the cross-session action history database
	HistoryDB string
}

// DefaultPaths builds the standard layout under root. The state directory
// may be relocated via IGNITECTL_STATE.
func DefaultPaths(root string) Paths {
	state := Environment().StateDir
	if state == "" {
		state = filepath.Join(root, ".ignitectl")
	}
	return Paths{
		Root:        root,
		Target:      filepath.Join(root, "target"),
		Dist:        filepath.Join(root, "dist"),
		State:       state,
		Logs:        filepath.Join(state, "log"),
		Cache:       filepath.Join(state, "cache"),
		MetricsFile: filepath.Join(state, "metrics.json"),
		HistoryDB:   filepath.Join(state, "history.db"),
	}
}
