package backup

import (
	"errors"
	"fmt"
)

var (
	ErrDiscovery       = errors.New("container discovery failed")
	ErrEnvironmentRead = errors.New("failed to read container environment")
	ErrExecution       = errors.New("backup command failed")
	ErrWrite           = errors.New("failed to write backup file")
	ErrMonitoring      = errors.New("monitoring notification failed")
)

// ContainerError is a failure scoped to one container. It matches its kind
// with errors.Is and unwraps to the underlying cause.
type ContainerError struct {
	Container string
	Kind      error
	Err       error
}

func (e *ContainerError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Container, e.Kind, e.Err)
}

func (e *ContainerError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
