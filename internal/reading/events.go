package reading

import "github.com/novelreads/novelreads-server/internal/domain"

// EventType identifies what kind of mutation an Event describes.
type EventType string

// Event types emitted by the tracker.
const (
	EventShelfCreated        EventType = "shelf.created"
	EventShelfRenamed        EventType = "shelf.renamed"
	EventShelfBookAdded      EventType = "shelf.book_added"
	EventShelfBookRemoved    EventType = "shelf.book_removed"
	EventBookmarkAdded       EventType = "bookmark.added"
	EventBookmarkRemoved     EventType = "bookmark.removed"
	EventProgressUpdated     EventType = "progress.updated"
	EventCompletionRecorded  EventType = "completion.recorded"
	EventGoalSet             EventType = "goal.set"
	EventGoalCleared         EventType = "goal.cleared"
)

// Event describes one tracker mutation. Fields beyond Type and UserID are
// populated per event type.
type Event struct {
	Type   EventType `json:"type"`
	UserID string    `json:"user_id"`

	Shelf    string       `json:"shelf,omitempty"`
	OldShelf string       `json:"old_shelf,omitempty"` // Renames only
	Book     *domain.Book `json:"book,omitempty"`
	BookID   string       `json:"book_id,omitempty"`

	PagesRead int `json:"pages_read,omitempty"`

	CompletedAt string `json:"completed_at,omitempty"` // RFC 3339

	GoalTarget int `json:"goal_target,omitempty"`
}

// Observer receives tracker events synchronously, in mutation order, while
// the tracker's lock is held. Observers must be fast and must not call
// back into the tracker.
type Observer func(Event)
