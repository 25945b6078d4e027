package notification

import (
	"context"
	"time"
)

// Event represents a backup run event that can be notified
type Event struct {
	Type      EventType
	Report    string // newline-joined report lines, set for EventRunFinished
	Succeeded int
	Failed    int
	Timestamp time.Time
}

// EventType represents the type of run event
type EventType string

const (
	EventRunStarted  EventType = "run_started"
	EventRunFinished EventType = "run_finished"
)

// Notifier defines the interface for notification providers
type Notifier interface {
	// Name returns the notifier instance name
	Name() string

	// Type returns the notifier type (e.g., "healthchecks", "discord")
	Type() string

	// Send sends a notification for the given event
	Send(ctx context.Context, event Event) error
}

// NotifierType creates Notifier instances from configuration
type NotifierType interface {
	// Name returns the type identifier ("healthchecks", "discord", etc.)
	Name() string

	// Create instantiates a notifier from configuration options
	Create(name string, options map[string]string) (Notifier, error)
}
