// Package sse streams reading-tracker mutations to connected clients
// over server-sent events. Each authenticated user sees only their own
// events.
package sse

import (
	"time"

	"github.com/novelreads/novelreads-server/internal/reading"
)

// EventType identifies an SSE event on the wire.
type EventType string

// Stream-level event types. Reading mutations keep their tracker event
// names ("shelf.created", "bookmark.added", ...).
const (
	EventConnected EventType = "connected"
	EventHeartbeat EventType = "heartbeat"
)

// Event is one server-sent event.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"-"` // Routing only, never sent to clients
	Data      any       `json:"data,omitempty"`
}

// NewReadingEvent wraps a tracker mutation for the stream.
func NewReadingEvent(e reading.Event) Event {
	return Event{
		Type:      EventType(e.Type),
		Timestamp: time.Now(),
		UserID:    e.UserID,
		Data:      e,
	}
}

// NewHeartbeatEvent creates a keepalive event.
func NewHeartbeatEvent() Event {
	return Event{
		Type:      EventHeartbeat,
		Timestamp: time.Now(),
	}
}
