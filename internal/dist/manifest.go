// Package dist stages build artifacts into a distribution tree and
// writes the manifest describing the shipped binary.
package dist

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// ManifestFile is the manifest name inside the distribution root.
const ManifestFile = "manifest.json"

// Manifest describes a distributed artifact's identity, provenance and
// integrity hash. Written once per distribution action; a new action
// overwrites it.
type Manifest struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	Profile    string `json:"profile"`
	BuildDate  string `json:"build_date"`
	BinaryHash string `json:"binary_hash"`
	BinarySize int64  `json:"binary_size"`
}

// NewManifest stamps a manifest for the given artifact hash and size.
func NewManifest(name, version, profile, hash string, size int64, at time.Time) Manifest {
	return Manifest{
		Name:       name,
		Version:    version,
		Profile:    profile,
		BuildDate:  at.UTC().Format(time.RFC3339),
		BinaryHash: hash,
		BinarySize: size,
	}
}

// Write persists the manifest into dir. The content is rendered first so
// a failed staging step can never leave a partial manifest behind.
func (m Manifest) Write(dir string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	path := filepath.Join(dir, ManifestFile)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return &FilesystemError{Op: "write manifest", Path: path, Err: err}
	}
	return nil
}

// ReadManifest loads the manifest from dir.
func ReadManifest(dir string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parse manifest: %w", err)
	}
	return m, nil
}

// HashFile returns the hex-encoded SHA-256 digest and byte size of the
// file at path. The digest is deterministic for identical content and
// changes for any single-byte difference.
func HashFile(path string) (digest string, size int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, &FilesystemError{Op: "hash artifact", Path: path, Err: err}
	}
	defer f.Close()

	h := sha256.New()
	size, err = io.Copy(h, f)
	if err != nil {
		return "", 0, &FilesystemError{Op: "hash artifact", Path: path, Err: err}
	}
	return hex.EncodeToString(h.Sum(nil)), size, nil
}
