package backup

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/shyim/db-auto-backup/internal/docker"
	"github.com/shyim/db-auto-backup/internal/notification"
)

type fakeDump struct {
	stdout   string
	stderr   string
	exitCode int
	err      error
}

// fakeRuntime serves canned container listings, env output and dumps
type fakeRuntime struct {
	mu sync.Mutex

	containers []docker.ContainerInfo
	listErr    error
	env        map[string]string
	envExit    map[string]int
	dumps      map[string]fakeDump

	execCalls []string
	commands  map[string][]string
}

func newFakeRuntime(containers ...docker.ContainerInfo) *fakeRuntime {
	return &fakeRuntime{
		containers: containers,
		env:        make(map[string]string),
		envExit:    make(map[string]int),
		dumps:      make(map[string]fakeDump),
		commands:   make(map[string][]string),
	}
}

func (f *fakeRuntime) ListContainers(ctx context.Context) ([]docker.ContainerInfo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.containers, nil
}

func (f *fakeRuntime) Exec(ctx context.Context, containerID string, cmd []string) (*docker.ExecResult, error) {
	f.mu.Lock()
	f.execCalls = append(f.execCalls, containerID+":"+cmd[0])
	f.mu.Unlock()

	if code := f.envExit[containerID]; code != 0 {
		return &docker.ExecResult{ExitCode: code, Stderr: "env: not found\n"}, nil
	}
	return &docker.ExecResult{Stdout: f.env[containerID]}, nil
}

func (f *fakeRuntime) ExecStream(ctx context.Context, containerID string, cmd []string, env []string, stdout, stderr io.Writer) (int, error) {
	f.mu.Lock()
	f.execCalls = append(f.execCalls, containerID+":"+cmd[0])
	f.commands[containerID] = cmd
	f.mu.Unlock()

	dump, ok := f.dumps[containerID]
	if !ok {
		return 0, errors.New("no such container")
	}
	if dump.stdout != "" {
		if _, err := io.WriteString(stdout, dump.stdout); err != nil {
			return 0, err
		}
	}
	if dump.stderr != "" {
		_, _ = io.WriteString(stderr, dump.stderr)
	}
	return dump.exitCode, dump.err
}

func (f *fakeRuntime) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.execCalls...)
}

// stubType is a backup type with a fixed command
type stubType struct {
	name string
	cmd  []string
}

func (s *stubType) Name() string { return s.name }

func (s *stubType) Command(env Environment) Command {
	return Command{Cmd: s.cmd}
}

// envEchoType builds its command from the container environment
type envEchoType struct{}

func (envEchoType) Name() string { return "echo" }

func (envEchoType) Command(env Environment) Command {
	return Command{Cmd: []string{"dump", "-U", env.Get("DB_USER", "root")}}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification.Event
	errs   map[notification.EventType]error
}

func (r *recordingNotifier) Notify(ctx context.Context, event notification.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.errs[event.Type]
}

func strPtr(s string) *string {
	return &s
}
