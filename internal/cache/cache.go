// Package cache implements a TTL-keyed marker store used to skip
// redundant expensive prerequisite checks between actions.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// TTL is the fixed validity window for a marker from its last touch.
const TTL = 3600 * time.Second

// Store keeps zero-byte marker files in a directory; a marker's mtime is
// its touch time. Expired markers are not swept, only overwritten by the
// next Set.
type Store struct {
	mu  sync.Mutex
	dir string

	// OnHit is invoked for every valid Check result (nil = ignored);
	// wired to the session cache-hit counter
	OnHit func()

	now func() time.Time
}

// New creates a store rooted at dir. The directory is created lazily on
// first Set.
func New(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

func (s *Store) path(key string) string {
	// keys are short identifiers; keep them filesystem-safe
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, key)
	return filepath.Join(s.dir, safe+".marker")
}

// Check reports whether a live marker named key exists. A marker older
// than TTL is a logical miss; the stale file stays in place until the
// next Set.
func (s *Store) Check(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := os.Stat(s.path(key))
	if err != nil {
		return false
	}
	if s.now().Sub(st.ModTime()) >= TTL {
		return false
	}
	if s.OnHit != nil {
		s.OnHit()
	}
	return true
}

// Set creates the marker or refreshes its touch time. Idempotent,
// last-write-wins.
func (s *Store) Set(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	path := s.path(key)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("touch marker %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("touch marker %s: %w", key, err)
	}

	ts := s.now()
	if err := os.Chtimes(path, ts, ts); err != nil {
		return fmt.Errorf("touch marker %s: %w", key, err)
	}
	return nil
}

// InvalidateAll removes every marker in the cache namespace.
func (s *Store) InvalidateAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read cache dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".marker") {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			return fmt.Errorf("remove marker %s: %w", e.Name(), err)
		}
	}
	return nil
}
