// Package eventlog writes the per-session append-only event log. Every
// output line of every executed command lands here verbatim, tagged with
// the severity the classifier assigned.
package eventlog

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/redstone-os/ignitectl/internal/command"
)

// Log is a line-oriented UTF-8 session log. One file per process
// session, named with the session start timestamp and a sortable
// session ID.
type Log struct {
	mu      sync.Mutex
	f       *os.File
	path    string
	session string
	now     func() time.Time
}

// Open creates the session log file under dir, creating dir as needed.
// An externally supplied session ID (IGNITECTL_SESSION_ID) wins over a
// generated one.
func Open(dir, sessionID string) (*Log, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	now := time.Now()
	if sessionID == "" {
		entropy := ulid.Monotonic(rand.New(rand.NewSource(now.UnixNano())), 0)
		sessionID = ulid.MustNew(ulid.Timestamp(now), entropy).String()
	}

	name := fmt.Sprintf("ignite_%s_%s.log", now.Format("20060102_150405"), sessionID)
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open session log: %w", err)
	}

	l := &Log{f: f, path: path, session: sessionID, now: time.Now}
	l.Infof("session %s started", sessionID)
	return l, nil
}

// Path returns the session log file path.
func (l *Log) Path() string { return l.path }

// SessionID returns the session identifier.
func (l *Log) SessionID() string { return l.session }

func (l *Log) write(sev command.Severity, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return
	}
	fmt.Fprintf(l.f, "%s [%s] %s\n", l.now().Format("2006-01-02 15:04:05"), sev, text)
}

// CommandLine appends one classified command output line verbatim.
func (l *Log) CommandLine(sev command.Severity, line string) {
	l.write(sev, line)
}

// Infof appends a formatted informational line.
func (l *Log) Infof(format string, args ...any) {
	l.write(command.SeverityInfo, fmt.Sprintf(format, args...))
}

// Errorf appends a formatted error line.
func (l *Log) Errorf(format string, args ...any) {
	l.write(command.SeverityError, fmt.Sprintf(format, args...))
}

// Begin frames the start of an action and returns its event ID.
func (l *Log) Begin(action string) string {
	id := uuid.NewString()
	l.Infof("=== %s started event=%s ===", action, id)
	return id
}

// End frames the completion of an action begun with Begin.
func (l *Log) End(action, eventID string, success bool, d time.Duration) {
	outcome := "SUCCESS"
	sev := command.SeverityInfo
	if !success {
		outcome = "FAILURE"
		sev = command.SeverityError
	}
	l.write(sev, fmt.Sprintf("=== %s finished event=%s outcome=%s duration=%.2fs ===",
		action, eventID, outcome, d.Seconds()))
}

// Close writes the session trailer and closes the file.
func (l *Log) Close() error {
	l.Infof("session %s ended", l.session)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

// Info describes one session log file on disk.
type Info struct {
	Name     string
	Path     string
	Size     int64
	Modified time.Time
}

// List returns session logs under dir, newest first.
func List(dir string) ([]Info, error) {
	matches, err := doublestar.FilepathGlob(filepath.Join(dir, "ignite_*.log"))
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}

	var infos []Info
	for _, m := range matches {
		st, err := os.Stat(m)
		if err != nil {
			continue
		}
		infos = append(infos, Info{
			Name:     filepath.Base(m),
			Path:     m,
			Size:     st.Size(),
			Modified: st.ModTime(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Modified.After(infos[j].Modified) })
	return infos, nil
}
