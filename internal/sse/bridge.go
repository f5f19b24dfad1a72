package sse

import (
	"github.com/novelreads/novelreads-server/internal/reading"
)

// Bridge subscribes every reading tracker to the SSE manager, so each
// mutation a user makes shows up on their event stream. Must be called
// before the registry hands out any trackers.
func Bridge(registry *reading.Registry, manager *Manager) {
	registry.OnCreate(func(t *reading.Tracker) {
		t.Subscribe(func(e reading.Event) {
			manager.Emit(NewReadingEvent(e))
		})
	})
}
