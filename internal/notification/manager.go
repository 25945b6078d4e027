package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Manager manages multiple notifiers and dispatches events
type Manager struct {
	notifiers map[string]Notifier
	mu        sync.RWMutex
}

// NewManager creates a new notification manager
func NewManager() *Manager {
	return &Manager{
		notifiers: make(map[string]Notifier),
	}
}

// AddNotifier adds a notifier to the manager
func (m *Manager) AddNotifier(name string, notifier Notifier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifiers[name] = notifier
}

// Notify sends an event to every notifier and waits for all of them.
// Failures are returned joined; a run treats them as fatal.
func (m *Manager) Notify(ctx context.Context, event Event) error {
	m.mu.RLock()
	notifiers := make(map[string]Notifier, len(m.notifiers))
	for name, notifier := range m.notifiers {
		notifiers[name] = notifier
	}
	m.mu.RUnlock()

	var (
		wg     sync.WaitGroup
		errsMu sync.Mutex
		errs   []error
	)
	for name, notifier := range notifiers {
		wg.Add(1)
		go func(n string, notif Notifier) {
			defer wg.Done()
			if err := notif.Send(ctx, event); err != nil {
				slog.Error("notification failed",
					"notifier", n,
					"event", event.Type,
					"error", err,
				)
				errsMu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", n, err))
				errsMu.Unlock()
			}
		}(name, notifier)
	}
	wg.Wait()

	// Stable error text regardless of goroutine scheduling
	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
	return errors.Join(errs...)
}

// NotifierCount returns the number of registered notifiers
func (m *Manager) NotifierCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.notifiers)
}

// NotifierInfo contains information about a notifier for display
type NotifierInfo struct {
	Name string
	Type string
}

// ListNotifiers returns information about all registered notifiers
func (m *Manager) ListNotifiers() []NotifierInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]NotifierInfo, 0, len(m.notifiers))
	for name, notifier := range m.notifiers {
		result = append(result, NotifierInfo{
			Name: name,
			Type: notifier.Type(),
		})
	}
	return result
}
