package sse

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novelreads/novelreads-server/internal/reading"
	"github.com/novelreads/novelreads-server/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRunningManager(t *testing.T) *Manager {
	t.Helper()

	m := NewManager(discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)
	t.Cleanup(cancel)
	return m
}

func waitForEvent(t *testing.T, client *Client) Event {
	t.Helper()

	select {
	case event := <-client.EventChan:
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestManager_RoutesEventToOwner(t *testing.T) {
	m := newRunningManager(t)

	client, err := m.Connect("user-1")
	require.NoError(t, err)
	other, err := m.Connect("user-2")
	require.NoError(t, err)

	m.Emit(NewReadingEvent(reading.Event{Type: reading.EventShelfCreated, UserID: "user-1", Shelf: "To Read"}))

	event := waitForEvent(t, client)
	assert.Equal(t, EventType("shelf.created"), event.Type)

	// The other user's connection sees nothing.
	select {
	case e := <-other.EventChan:
		t.Fatalf("unexpected event for other user: %v", e.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestManager_MultipleConnectionsPerUser(t *testing.T) {
	m := newRunningManager(t)

	first, err := m.Connect("user-1")
	require.NoError(t, err)
	second, err := m.Connect("user-1")
	require.NoError(t, err)

	m.Emit(NewReadingEvent(reading.Event{Type: reading.EventGoalSet, UserID: "user-1", GoalTarget: 5}))

	assert.Equal(t, EventType("goal.set"), waitForEvent(t, first).Type)
	assert.Equal(t, EventType("goal.set"), waitForEvent(t, second).Type)
}

func TestManager_Disconnect(t *testing.T) {
	m := newRunningManager(t)

	client, err := m.Connect("user-1")
	require.NoError(t, err)
	require.Equal(t, 1, m.ClientCount())

	m.Disconnect(client.ID)
	assert.Equal(t, 0, m.ClientCount())

	// Double disconnect is a no-op.
	m.Disconnect(client.ID)
}

func TestManager_EmitAfterShutdownIsDropped(t *testing.T) {
	m := NewManager(discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)

	ctxTimeout, cancelTimeout := context.WithTimeout(context.Background(), time.Second)
	defer cancelTimeout()
	require.NoError(t, m.Shutdown(ctxTimeout))
	cancel()

	// Must not panic on the closed channel.
	m.Emit(NewHeartbeatEvent())
}

func TestBridge_ProjectsTrackerMutations(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	registry := reading.NewRegistry(s, nil)
	t.Cleanup(func() { _ = registry.Shutdown(context.Background()) })

	m := newRunningManager(t)
	Bridge(registry, m)

	client, err := m.Connect("user-1")
	require.NoError(t, err)

	tracker, err := registry.Acquire(context.Background(), "user-1")
	require.NoError(t, err)
	require.NoError(t, tracker.CreateShelf("Favorites"))

	event := waitForEvent(t, client)
	assert.Equal(t, EventType("shelf.created"), event.Type)

	payload, ok := event.Data.(reading.Event)
	require.True(t, ok)
	assert.Equal(t, "Favorites", payload.Shelf)
	assert.Equal(t, "user-1", payload.UserID)
}
