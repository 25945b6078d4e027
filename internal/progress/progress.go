// Package progress renders per-container dump progress. On a terminal it
// redraws a live byte counter; otherwise it prints one line per container.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/docker/go-units"
	"golang.org/x/term"
)

const redrawInterval = 100 * time.Millisecond

// Display writes progress for one container at a time
type Display struct {
	out         io.Writer
	interactive bool
}

// New creates a display writing to out
func New(out io.Writer, interactive bool) *Display {
	return &Display{out: out, interactive: interactive}
}

// ForFile creates a display that is interactive when f is a terminal
func ForFile(f *os.File) *Display {
	return New(f, term.IsTerminal(int(f.Fd())))
}

// Interactive reports whether live progress is drawn
func (d *Display) Interactive() bool {
	return d.interactive
}

// Track starts tracking a container dump
func (d *Display) Track(name string) *Tracker {
	return &Tracker{display: d, name: name, start: time.Now()}
}

// Tracker counts bytes for a single dump
type Tracker struct {
	display  *Display
	name     string
	bytes    int64
	start    time.Time
	lastDraw time.Time
}

// Add records n more bytes written
func (t *Tracker) Add(n int) {
	t.bytes += int64(n)
	if !t.display.interactive {
		return
	}

	now := time.Now()
	if now.Sub(t.lastDraw) < redrawInterval {
		return
	}
	t.lastDraw = now
	_, _ = fmt.Fprintf(t.display.out, "\r\033[K%s: %s", t.name, units.HumanSize(float64(t.bytes)))
}

// Bytes returns the number of bytes recorded so far
func (t *Tracker) Bytes() int64 {
	return t.bytes
}

// Done finishes the progress line for the container
func (t *Tracker) Done(err error) {
	out := t.display.out

	if !t.display.interactive {
		if err != nil {
			_, _ = fmt.Fprintf(out, "%s (failed)\n", t.name)
			return
		}
		_, _ = fmt.Fprintln(out, t.name)
		return
	}

	elapsed := time.Since(t.start).Round(time.Millisecond)
	if err != nil {
		_, _ = fmt.Fprintf(out, "\r\033[K%s: failed after %s\n", t.name, elapsed)
		return
	}
	_, _ = fmt.Fprintf(out, "\r\033[K%s: %s in %s\n", t.name, units.HumanSize(float64(t.bytes)), elapsed)
}
