// Package render formats structured action outcomes for the terminal.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Writer renders action outcomes and reports.
type Writer struct {
	out    io.Writer
	pretty bool
}

// New creates a renderer writing to stdout. pretty=false strips color
// and decoration for non-interactive use.
func New(pretty bool) *Writer {
	if pretty && os.Getenv("NO_COLOR") != "" {
		pretty = false
	}
	color.NoColor = !pretty
	return &Writer{out: os.Stdout, pretty: pretty}
}

// NewTo creates a renderer writing to w (for testing).
func NewTo(w io.Writer, pretty bool) *Writer {
	color.NoColor = !pretty
	return &Writer{out: w, pretty: pretty}
}

// Printf writes a plain formatted line.
func (w *Writer) Printf(format string, args ...any) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Headerf writes a section header.
func (w *Writer) Headerf(format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	if w.pretty {
		fmt.Fprintln(w.out, color.CyanString(text))
		fmt.Fprintln(w.out, strings.Repeat("─", 60))
		return
	}
	fmt.Fprintln(w.out, text)
}

// Successf writes a success line.
func (w *Writer) Successf(format string, args ...any) {
	fmt.Fprintf(w.out, "%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, args...))
}

// Failf writes a failure line.
func (w *Writer) Failf(format string, args ...any) {
	fmt.Fprintf(w.out, "%s %s\n", color.RedString("✗"), fmt.Sprintf(format, args...))
}

// Warnf writes a warning line.
func (w *Writer) Warnf(format string, args ...any) {
	fmt.Fprintf(w.out, "%s %s\n", color.YellowString("⚠"), fmt.Sprintf(format, args...))
}

// Dimf writes a de-emphasized line.
func (w *Writer) Dimf(format string, args ...any) {
	if w.pretty {
		fmt.Fprintln(w.out, color.HiBlackString(fmt.Sprintf(format, args...)))
		return
	}
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Stepf announces a step about to run.
func (w *Writer) Stepf(format string, args ...any) {
	if w.pretty {
		fmt.Fprintf(w.out, "%s %s\n", color.CyanString("▶"), fmt.Sprintf(format, args...))
		return
	}
	fmt.Fprintf(w.out, format+"\n", args...)
}

func formatDuration(d time.Duration) string {
	if d >= time.Minute {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

func formatSize(bytes int64) string {
	const mb = 1024 * 1024
	if bytes >= mb {
		return fmt.Sprintf("%.2f MB", float64(bytes)/mb)
	}
	return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
}
