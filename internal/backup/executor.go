package backup

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shyim/db-auto-backup/internal/progress"
)

// stderrLimit caps how much of a dump command's stderr is kept for errors
const stderrLimit = 4096

// Executor runs backup commands inside containers and streams their output
// into the backup directory.
type Executor struct {
	runtime Runtime
	store   Store
	display *progress.Display
}

// NewExecutor creates a new executor
func NewExecutor(runtime Runtime, store Store, display *progress.Display) *Executor {
	return &Executor{
		runtime: runtime,
		store:   store,
		display: display,
	}
}

// Execute backs up a single target. Failures are reported in the outcome and
// never abort the caller.
func (e *Executor) Execute(ctx context.Context, target Target) Outcome {
	name := target.Container.Name
	outcome := Outcome{
		Container:  name,
		BackupType: target.Type.Name(),
		Path:       e.store.Path(name),
	}

	slog.Info("starting backup",
		"container", name,
		"type", outcome.BackupType,
	)

	env, err := ReadEnvironment(ctx, e.runtime, target.Container.ID)
	if err != nil {
		outcome.Err = &ContainerError{Container: name, Kind: ErrEnvironmentRead, Err: err}
		e.fail(outcome)
		return outcome
	}

	cmd := target.Type.Command(env)
	if len(cmd.Cmd) == 0 {
		outcome.Err = &ContainerError{Container: name, Kind: ErrExecution, Err: fmt.Errorf("backup type %s produced an empty command", outcome.BackupType)}
		e.fail(outcome)
		return outcome
	}
	slog.Debug("backup command", "container", name, "cmd", cmd.Cmd)

	tracker := e.display.Track(name)
	start := time.Now()

	bytesWritten, err := e.stream(ctx, target, cmd, tracker)
	outcome.Duration = time.Since(start)
	outcome.Bytes = bytesWritten
	tracker.Done(err)

	if err != nil {
		outcome.Err = err
		e.fail(outcome)
		return outcome
	}

	slog.Info("backup completed",
		"container", name,
		"path", outcome.Path,
		"size", outcome.Bytes,
		"duration", outcome.Duration,
	)

	return outcome
}

// stream runs the command and copies its stdout into the dump file. A file
// that was opened but not completely written is removed again.
func (e *Executor) stream(ctx context.Context, target Target, cmd Command, tracker *progress.Tracker) (int64, error) {
	name := target.Container.Name

	// A failed open leaves any previous dump untouched
	file, err := e.store.Create(name)
	if err != nil {
		return 0, &ContainerError{Container: name, Kind: ErrWrite, Err: err}
	}

	n, err := e.copyDump(ctx, target, cmd, file, tracker)
	if err != nil {
		if rmErr := e.store.Remove(name); rmErr != nil {
			slog.Warn("failed to remove partial backup", "container", name, "error", rmErr)
		}
	}
	return n, err
}

func (e *Executor) copyDump(ctx context.Context, target Target, cmd Command, file io.WriteCloser, tracker *progress.Tracker) (int64, error) {
	name := target.Container.Name

	w := &countingWriter{w: file, onWrite: tracker.Add}
	stderr := &tailBuffer{limit: stderrLimit}

	exitCode, execErr := e.runtime.ExecStream(ctx, target.Container.ID, cmd.Cmd, cmd.Env, w, stderr)
	closeErr := file.Close()

	switch {
	case w.err != nil:
		return w.n, &ContainerError{Container: name, Kind: ErrWrite, Err: w.err}
	case execErr != nil:
		return w.n, &ContainerError{Container: name, Kind: ErrExecution, Err: execErr}
	case exitCode != 0:
		return w.n, &ContainerError{
			Container: name,
			Kind:      ErrExecution,
			Err:       fmt.Errorf("%s exited with code %d: %s", cmd.Cmd[0], exitCode, stderr.String()),
		}
	case closeErr != nil:
		return w.n, &ContainerError{Container: name, Kind: ErrWrite, Err: closeErr}
	}

	return w.n, nil
}

func (e *Executor) fail(outcome Outcome) {
	slog.Error("backup failed",
		"container", outcome.Container,
		"type", outcome.BackupType,
		"error", outcome.Err,
	)
}

// countingWriter remembers the first write error so it can be told apart
// from a failure of the exec stream itself.
type countingWriter struct {
	w       io.Writer
	n       int64
	err     error
	onWrite func(n int)
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	if c.onWrite != nil {
		c.onWrite(n)
	}
	if err != nil && c.err == nil {
		c.err = err
	}
	return n, err
}

// tailBuffer keeps the last limit bytes written to it
type tailBuffer struct {
	buf   []byte
	limit int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if len(t.buf) > t.limit {
		t.buf = t.buf[len(t.buf)-t.limit:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	return strings.TrimSpace(string(t.buf))
}
