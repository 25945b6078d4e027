package notification

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockNotifier is a test implementation of Notifier
type mockNotifier struct {
	name      string
	typeName  string
	sendFunc  func(ctx context.Context, event Event) error
	sendCount int32
}

func (m *mockNotifier) Name() string {
	return m.name
}

func (m *mockNotifier) Type() string {
	return m.typeName
}

func (m *mockNotifier) Send(ctx context.Context, event Event) error {
	atomic.AddInt32(&m.sendCount, 1)
	if m.sendFunc != nil {
		return m.sendFunc(ctx, event)
	}
	return nil
}

func (m *mockNotifier) getSendCount() int {
	return int(atomic.LoadInt32(&m.sendCount))
}

type mockNotifierType struct{}

func (mockNotifierType) Name() string { return "mock" }

func (mockNotifierType) Create(name string, options map[string]string) (Notifier, error) {
	if options["fail"] != "" {
		return nil, errors.New("bad options")
	}
	return &mockNotifier{name: name, typeName: "mock"}, nil
}

func TestNewManager(t *testing.T) {
	mgr := NewManager()
	require.NotNil(t, mgr)
	assert.NotNil(t, mgr.notifiers, "expected notifiers map to be initialized")
	assert.Equal(t, 0, mgr.NotifierCount())
}

func TestManager_AddNotifier_Replace(t *testing.T) {
	mgr := NewManager()

	mgr.AddNotifier("test", &mockNotifier{name: "test", typeName: "mock1"})
	mgr.AddNotifier("test", &mockNotifier{name: "test", typeName: "mock2"})

	assert.Equal(t, 1, mgr.NotifierCount(), "expected 1 notifier after replacement")

	notifiers := mgr.ListNotifiers()
	require.Len(t, notifiers, 1)
	assert.Equal(t, "mock2", notifiers[0].Type, "expected replacement notifier to be used")
}

func TestManager_Notify_NoNotifiers(t *testing.T) {
	mgr := NewManager()

	err := mgr.Notify(context.Background(), Event{Type: EventRunStarted})
	assert.NoError(t, err)
}

func TestManager_Notify_AllNotifiers(t *testing.T) {
	mgr := NewManager()
	healthchecks := &mockNotifier{name: "healthchecks", typeName: "healthchecks"}
	discord := &mockNotifier{name: "discord", typeName: "discord"}

	mgr.AddNotifier("healthchecks", healthchecks)
	mgr.AddNotifier("discord", discord)

	err := mgr.Notify(context.Background(), Event{Type: EventRunFinished, Report: "postgres"})
	require.NoError(t, err)

	assert.Equal(t, 1, healthchecks.getSendCount())
	assert.Equal(t, 1, discord.getSendCount())
}

func TestManager_Notify_PassesEvent(t *testing.T) {
	mgr := NewManager()

	var got Event
	mgr.AddNotifier("test", &mockNotifier{
		name:     "test",
		typeName: "mock",
		sendFunc: func(ctx context.Context, event Event) error {
			got = event
			return nil
		},
	})

	event := Event{Type: EventRunFinished, Report: "postgres\nmariadb", Succeeded: 2}
	require.NoError(t, mgr.Notify(context.Background(), event))
	assert.Equal(t, event, got)
}

func TestManager_Notify_SendError(t *testing.T) {
	mgr := NewManager()
	failing := &mockNotifier{
		name:     "failing",
		typeName: "mock",
		sendFunc: func(ctx context.Context, event Event) error {
			return errors.New("send failed")
		},
	}
	ok := &mockNotifier{name: "ok", typeName: "mock"}
	mgr.AddNotifier("failing", failing)
	mgr.AddNotifier("ok", ok)

	err := mgr.Notify(context.Background(), Event{Type: EventRunStarted})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failing: send failed")

	// The healthy notifier is still called
	assert.Equal(t, 1, failing.getSendCount())
	assert.Equal(t, 1, ok.getSendCount())
}

func TestManager_Notify_Concurrent(t *testing.T) {
	mgr := NewManager()

	var sendCount int32
	mgr.AddNotifier("test", &mockNotifier{
		name:     "test",
		typeName: "mock",
		sendFunc: func(ctx context.Context, event Event) error {
			atomic.AddInt32(&sendCount, 1)
			time.Sleep(10 * time.Millisecond) // Simulate work
			return nil
		},
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = mgr.Notify(context.Background(), Event{Type: EventRunStarted})
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), atomic.LoadInt32(&sendCount))
}

func TestManager_ListNotifiers(t *testing.T) {
	mgr := NewManager()

	mgr.AddNotifier("healthchecks", &mockNotifier{name: "healthchecks", typeName: "healthchecks"})
	mgr.AddNotifier("discord", &mockNotifier{name: "discord", typeName: "discord"})

	notifiers := mgr.ListNotifiers()
	require.Len(t, notifiers, 2)

	// Order is not guaranteed
	found := make(map[string]string)
	for _, n := range notifiers {
		found[n.Name] = n.Type
	}

	assert.Equal(t, "healthchecks", found["healthchecks"])
	assert.Equal(t, "discord", found["discord"])
}

func TestCreateNotifier(t *testing.T) {
	Register(mockNotifierType{})

	n, err := CreateNotifier("mock", "primary", map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, "primary", n.Name())
	assert.Contains(t, List(), "mock")

	_, err = CreateNotifier("mock", "broken", map[string]string{"fail": "1"})
	assert.Error(t, err)
}

func TestCreateNotifier_UnknownType(t *testing.T) {
	_, err := CreateNotifier("carrier-pigeon", "test", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown notifier type")
}

func TestEventTypes(t *testing.T) {
	assert.NotEqual(t, EventRunStarted, EventRunFinished)
	assert.NotEmpty(t, EventRunStarted)
	assert.NotEmpty(t, EventRunFinished)
}
