package backup

import (
	"context"
	"io"
	"os"

	"github.com/shyim/db-auto-backup/internal/docker"
)

// Command is an in-container command line plus extra environment for the exec.
type Command struct {
	Cmd []string
	Env []string
}

// BackupType defines the interface for different backup implementations.
// Command must be a pure function of the container's runtime environment and
// must not embed secret values in Cmd.
type BackupType interface {
	Name() string
	Command(env Environment) Command
}

// Runtime is the part of the container runtime the backup flow needs.
type Runtime interface {
	ListContainers(ctx context.Context) ([]docker.ContainerInfo, error)
	Exec(ctx context.Context, containerID string, cmd []string) (*docker.ExecResult, error)
	ExecStream(ctx context.Context, containerID string, cmd []string, env []string, stdout, stderr io.Writer) (int, error)
}

// Store is the dump directory the executor writes to.
type Store interface {
	Path(key string) string
	Create(key string) (*os.File, error)
	Remove(key string) error
}
