// Package reading implements per-user reading state: shelves, bookmarks,
// the completion log, and the reading goal. One Tracker exists per
// authenticated user; mutations are serialized through its lock and
// persisted asynchronously as a single blob.
package reading

import (
	"context"
	"iter"
	"sort"
	"sync"
	"time"

	"github.com/novelreads/novelreads-server/internal/domain"
	domainerrors "github.com/novelreads/novelreads-server/internal/errors"
	"github.com/novelreads/novelreads-server/internal/logger"
)

// Persister writes a user's reading state blob. Implemented by the store.
type Persister interface {
	SaveReadingState(ctx context.Context, userID string, state *domain.ReadingState) error
}

// pendingSave is a snapshot queued for the persistence worker. Only the
// newest snapshot survives: an unwritten older one is simply replaced.
type pendingSave struct {
	version uint64
	state   *domain.ReadingState
}

// Tracker owns one user's reading state. All mutations run under its
// lock, notify observers synchronously, and schedule a fire-and-forget
// persist of the whole state. Persistence failures are logged, never
// surfaced to the caller.
type Tracker struct {
	userID    string
	persister Persister
	logger    *logger.Logger

	mu        sync.Mutex
	state     *domain.ReadingState
	observers []Observer
	version   uint64 // Monotonic mutation counter

	pendingMu sync.Mutex
	pending   *pendingSave
	wake      chan struct{}
	done      chan struct{}
	stopped   chan struct{}
}

// NewTracker creates a tracker around an existing state (typically loaded
// from the store at login) and starts its persistence worker.
func NewTracker(userID string, state *domain.ReadingState, persister Persister, log *logger.Logger) *Tracker {
	if state == nil {
		state = domain.NewReadingState()
	}
	state.Normalize()

	t := &Tracker{
		userID:    userID,
		persister: persister,
		logger:    log,
		state:     state,
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	go t.run()
	return t
}

// UserID returns the owning user's ID.
func (t *Tracker) UserID() string {
	return t.userID
}

// Subscribe registers an observer for all subsequent mutations.
func (t *Tracker) Subscribe(obs Observer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, obs)
}

// Close flushes any pending persist and stops the worker. The tracker
// must not be used afterwards.
func (t *Tracker) Close(ctx context.Context) error {
	close(t.done)
	select {
	case <-t.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shelf operations

// CreateShelf creates an empty shelf. Creating a shelf that already
// exists is a no-op, so clients can call it blindly before adding books.
func (t *Tracker) CreateShelf(name string) error {
	if name == "" {
		return domainerrors.Validation("shelf name cannot be empty")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.state.Shelves[name]; ok {
		return nil
	}

	t.state.Shelves[name] = domain.NewShelf(name)
	t.mutated(Event{Type: EventShelfCreated, Shelf: name})
	return nil
}

// RenameShelf renames a shelf, preserving its contents. Renaming onto an
// existing shelf is rejected rather than silently replacing it.
func (t *Tracker) RenameShelf(oldName, newName string) error {
	if newName == "" {
		return domainerrors.Validation("shelf name cannot be empty")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	shelf, ok := t.state.Shelves[oldName]
	if !ok {
		return domainerrors.NotFoundf("shelf %q not found", oldName)
	}
	if oldName == newName {
		return nil
	}
	if _, taken := t.state.Shelves[newName]; taken {
		return domainerrors.AlreadyExistsf("shelf %q already exists", newName)
	}

	delete(t.state.Shelves, oldName)
	shelf.Name = newName
	shelf.UpdatedAt = time.Now()
	t.state.Shelves[newName] = shelf

	t.mutated(Event{Type: EventShelfRenamed, Shelf: newName, OldShelf: oldName})
	return nil
}

// AddBookToShelf appends a book snapshot to a shelf, creating the shelf
// if it does not exist. Duplicates are allowed.
func (t *Tracker) AddBookToShelf(shelfName string, book domain.Book) error {
	if shelfName == "" {
		return domainerrors.Validation("shelf name cannot be empty")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	shelf, ok := t.state.Shelves[shelfName]
	if !ok {
		shelf = domain.NewShelf(shelfName)
		t.state.Shelves[shelfName] = shelf
	}
	shelf.AddBook(book)

	t.mutated(Event{Type: EventShelfBookAdded, Shelf: shelfName, Book: &book})
	return nil
}

// RemoveBookFromShelf removes the first matching entry from a shelf.
// Removing from a missing shelf, or a book that is not on it, is a no-op.
func (t *Tracker) RemoveBookFromShelf(shelfName, bookID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	shelf, ok := t.state.Shelves[shelfName]
	if !ok {
		return
	}
	if !shelf.RemoveBook(bookID) {
		return
	}

	t.mutated(Event{Type: EventShelfBookRemoved, Shelf: shelfName, BookID: bookID})
}

// ShelfNames returns all shelf names in lexicographic order.
func (t *Tracker) ShelfNames() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.ShelfNames()
}

// ShelfBooks returns a copy of a shelf's ordered book list. A missing
// shelf yields an empty slice, not an error.
func (t *Tracker) ShelfBooks(shelfName string) []domain.Book {
	t.mu.Lock()
	defer t.mu.Unlock()

	shelf, ok := t.state.Shelves[shelfName]
	if !ok {
		return []domain.Book{}
	}
	return append([]domain.Book{}, shelf.Books...)
}

// Shelves returns copies of all shelves, ordered by name.
func (t *Tracker) Shelves() []domain.Shelf {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]domain.Shelf, 0, len(t.state.Shelves))
	for _, name := range t.state.ShelfNames() {
		shelf := t.state.Shelves[name]
		copied := *shelf
		copied.Books = append([]domain.Book(nil), shelf.Books...)
		out = append(out, copied)
	}
	return out
}

// Bookmark operations

// ToggleBookmark flips a book's in-progress flag. Toggling on starts
// tracking with zero progress; toggling off discards the bookmark and its
// progress. Returns true if the book is bookmarked after the call.
func (t *Tracker) ToggleBookmark(book domain.Book) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.state.Bookmarks[book.ID]; ok {
		delete(t.state.Bookmarks, book.ID)
		t.mutated(Event{Type: EventBookmarkRemoved, BookID: book.ID})
		return false
	}

	t.state.Bookmarks[book.ID] = domain.NewBookmark(book)
	t.mutated(Event{Type: EventBookmarkAdded, Book: &book})
	return true
}

// Bookmarks returns copies of all bookmarks, most recently bookmarked
// first.
func (t *Tracker) Bookmarks() []domain.Bookmark {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]domain.Bookmark, 0, len(t.state.Bookmarks))
	for _, bm := range t.state.Bookmarks {
		out = append(out, *bm)
	}
	// Newest bookmark first; ties broken by book ID for a stable order.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].BookmarkedAt.Equal(out[j].BookmarkedAt) {
			return out[i].BookmarkedAt.After(out[j].BookmarkedAt)
		}
		return out[i].Book.ID < out[j].Book.ID
	})
	return out
}

// UpdateProgress sets a bookmarked book's absolute page position, clamped
// to the book's page range. Reaching the last page records a completion
// (superseding any earlier completion of the same book). Returns the
// updated bookmark.
func (t *Tracker) UpdateProgress(bookID string, pagesRead int) (*domain.Bookmark, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	bm, ok := t.state.Bookmarks[bookID]
	if !ok {
		return nil, domainerrors.NotFoundf("book %q is not bookmarked", bookID)
	}

	finished := bm.SetPagesRead(pagesRead)
	t.mutated(Event{Type: EventProgressUpdated, BookID: bookID, PagesRead: bm.PagesRead})

	if finished {
		done := t.state.RecordCompletion(bm.Book, *bm.FinishedAt)
		t.notify(Event{
			Type:        EventCompletionRecorded,
			Book:        &done.Book,
			CompletedAt: done.CompletedAt.Format(time.RFC3339),
		})
	}

	out := *bm
	return &out, nil
}

// Completion operations

// RecentCompletions returns up to n completions, newest first.
func (t *Tracker) RecentCompletions(n int) []domain.Completion {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.RecentCompletions(n)
}

// Completions returns a restartable iterator over the whole completion
// log, newest first. The iteration works over a snapshot, so tracker
// mutations during iteration are safe.
func (t *Tracker) Completions() iter.Seq2[int, domain.Completion] {
	t.mu.Lock()
	snapshot := append([]domain.Completion(nil), t.state.Completions...)
	t.mu.Unlock()

	return func(yield func(int, domain.Completion) bool) {
		for i, c := range snapshot {
			if !yield(i, c) {
				return
			}
		}
	}
}

// Goal operations

// SetGoal activates a reading goal of target books, anchored now. Only
// completions after this moment count. Re-setting replaces both the
// target and the anchor.
func (t *Tracker) SetGoal(target int) (*domain.ReadingGoal, error) {
	if target <= 0 {
		return nil, domainerrors.Validation("goal target must be positive")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	goal := &domain.ReadingGoal{Target: target, SetAt: time.Now()}
	t.state.Goal = goal

	t.mutated(Event{Type: EventGoalSet, GoalTarget: target})
	out := *goal
	return &out, nil
}

// ClearGoal removes the active goal. Clearing when no goal is set is a
// no-op.
func (t *Tracker) ClearGoal() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Goal == nil {
		return
	}
	t.state.Goal = nil
	t.mutated(Event{Type: EventGoalCleared})
}

// GoalProgress returns the active goal with its progress, or nil if no
// goal is set.
func (t *Tracker) GoalProgress() (goal *domain.ReadingGoal, completed, percent int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Goal == nil {
		return nil, 0, 0
	}
	g := *t.state.Goal
	completed, percent = g.Progress(t.state.Completions)
	return &g, completed, percent
}

// State returns a deep copy of the current state.
func (t *Tracker) State() *domain.ReadingState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Clone()
}

// Internals

// mutated notifies observers and schedules a persist.
// Caller must hold t.mu.
func (t *Tracker) mutated(event Event) {
	t.notify(event)
	t.schedulePersist()
}

// notify delivers an event to all observers. Caller must hold t.mu.
func (t *Tracker) notify(event Event) {
	event.UserID = t.userID
	for _, obs := range t.observers {
		obs(event)
	}
}

// schedulePersist snapshots the state and hands it to the worker.
// Caller must hold t.mu.
func (t *Tracker) schedulePersist() {
	t.version++
	snap := &pendingSave{version: t.version, state: t.state.Clone()}

	t.pendingMu.Lock()
	t.pending = snap // Last writer wins
	t.pendingMu.Unlock()

	select {
	case t.wake <- struct{}{}:
	default: // Worker already signaled
	}
}

// run is the persistence worker. It writes the newest pending snapshot,
// flushing one final time on shutdown.
func (t *Tracker) run() {
	defer close(t.stopped)
	for {
		select {
		case <-t.wake:
			t.flush()
		case <-t.done:
			t.flush()
			return
		}
	}
}

func (t *Tracker) flush() {
	t.pendingMu.Lock()
	snap := t.pending
	t.pending = nil
	t.pendingMu.Unlock()

	if snap == nil {
		return
	}

	if err := t.persister.SaveReadingState(context.Background(), t.userID, snap.state); err != nil {
		if t.logger != nil {
			t.logger.Error("failed to persist reading state",
				"user_id", t.userID, "version", snap.version, "error", err)
		}
	}
}
