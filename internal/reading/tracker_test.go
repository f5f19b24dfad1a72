package reading

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novelreads/novelreads-server/internal/domain"
	domainerrors "github.com/novelreads/novelreads-server/internal/errors"
)

// fakeStore records reading state saves and serves loads.
type fakeStore struct {
	mu      sync.Mutex
	saved   map[string]*domain.ReadingState
	saves   int
	loadErr error
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: make(map[string]*domain.ReadingState)}
}

func (f *fakeStore) SaveReadingState(_ context.Context, userID string, state *domain.ReadingState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved[userID] = state
	f.saves++
	return nil
}

func (f *fakeStore) LoadReadingState(_ context.Context, userID string) (*domain.ReadingState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if state, ok := f.saved[userID]; ok {
		return state.Clone(), nil
	}
	return domain.NewReadingState(), nil
}

func (f *fakeStore) savedState(userID string) *domain.ReadingState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved[userID]
}

func newTestTracker(t *testing.T) (*Tracker, *fakeStore) {
	t.Helper()

	fs := newFakeStore()
	tracker := NewTracker("user-1", nil, fs, nil)
	t.Cleanup(func() {
		_ = tracker.Close(context.Background())
	})
	return tracker, fs
}

func book(id string, pages int) domain.Book {
	return domain.Book{ID: id, Title: "Book " + id, Pages: pages}
}

// Shelves

func TestTracker_CreateShelf(t *testing.T) {
	tracker, _ := newTestTracker(t)

	require.NoError(t, tracker.CreateShelf("To Read"))
	assert.Equal(t, []string{"To Read"}, tracker.ShelfNames())
}

func TestTracker_CreateShelf_EmptyName(t *testing.T) {
	tracker, _ := newTestTracker(t)

	err := tracker.CreateShelf("")
	require.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestTracker_CreateShelf_ExistingIsNoop(t *testing.T) {
	tracker, _ := newTestTracker(t)

	require.NoError(t, tracker.CreateShelf("Favorites"))
	require.NoError(t, tracker.AddBookToShelf("Favorites", book("book-1", 100)))

	// Creating again must not clear the shelf.
	require.NoError(t, tracker.CreateShelf("Favorites"))
	assert.Len(t, tracker.ShelfBooks("Favorites"), 1)
}

func TestTracker_RenameShelf(t *testing.T) {
	tracker, _ := newTestTracker(t)

	require.NoError(t, tracker.CreateShelf("Old Name"))
	require.NoError(t, tracker.AddBookToShelf("Old Name", book("book-1", 100)))
	require.NoError(t, tracker.AddBookToShelf("Old Name", book("book-1", 100))) // duplicate stays

	require.NoError(t, tracker.RenameShelf("Old Name", "New Name"))

	assert.Equal(t, []string{"New Name"}, tracker.ShelfNames())
	assert.Len(t, tracker.ShelfBooks("New Name"), 2)
	assert.Empty(t, tracker.ShelfBooks("Old Name"))
}

func TestTracker_RenameShelf_Errors(t *testing.T) {
	tracker, _ := newTestTracker(t)

	require.NoError(t, tracker.CreateShelf("A"))
	require.NoError(t, tracker.CreateShelf("B"))

	err := tracker.RenameShelf("missing", "C")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	err = tracker.RenameShelf("A", "")
	require.ErrorIs(t, err, domainerrors.ErrValidation)

	// Renaming onto a taken name is rejected, both shelves survive.
	err = tracker.RenameShelf("A", "B")
	require.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
	assert.Equal(t, []string{"A", "B"}, tracker.ShelfNames())
}

func TestTracker_RenameShelf_SameNameIsNoop(t *testing.T) {
	tracker, _ := newTestTracker(t)

	require.NoError(t, tracker.CreateShelf("A"))
	require.NoError(t, tracker.RenameShelf("A", "A"))
	assert.Equal(t, []string{"A"}, tracker.ShelfNames())
}

func TestTracker_AddBookToShelf_CreatesShelf(t *testing.T) {
	tracker, _ := newTestTracker(t)

	require.NoError(t, tracker.AddBookToShelf("Sci-Fi", book("book-1", 100)))

	assert.Equal(t, []string{"Sci-Fi"}, tracker.ShelfNames())
	assert.Len(t, tracker.ShelfBooks("Sci-Fi"), 1)
}

func TestTracker_AddBookToShelf_AllowsDuplicates(t *testing.T) {
	tracker, _ := newTestTracker(t)

	require.NoError(t, tracker.AddBookToShelf("Sci-Fi", book("book-1", 100)))
	require.NoError(t, tracker.AddBookToShelf("Sci-Fi", book("book-1", 100)))

	assert.Len(t, tracker.ShelfBooks("Sci-Fi"), 2)
}

func TestTracker_RemoveBookFromShelf(t *testing.T) {
	tracker, _ := newTestTracker(t)

	require.NoError(t, tracker.AddBookToShelf("Sci-Fi", book("book-1", 100)))
	require.NoError(t, tracker.AddBookToShelf("Sci-Fi", book("book-2", 100)))
	require.NoError(t, tracker.AddBookToShelf("Sci-Fi", book("book-1", 100)))

	// First match only.
	tracker.RemoveBookFromShelf("Sci-Fi", "book-1")
	books := tracker.ShelfBooks("Sci-Fi")
	require.Len(t, books, 2)
	assert.Equal(t, "book-2", books[0].ID)
	assert.Equal(t, "book-1", books[1].ID)

	// No-ops never panic or error.
	tracker.RemoveBookFromShelf("Sci-Fi", "book-404")
	tracker.RemoveBookFromShelf("No Such Shelf", "book-1")
	assert.Len(t, tracker.ShelfBooks("Sci-Fi"), 2)
}

func TestTracker_ShelfBooks_MissingShelfIsEmpty(t *testing.T) {
	tracker, _ := newTestTracker(t)

	books := tracker.ShelfBooks("nothing here")
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestTracker_ShelfBooks_ReturnsCopy(t *testing.T) {
	tracker, _ := newTestTracker(t)

	require.NoError(t, tracker.AddBookToShelf("Sci-Fi", book("book-1", 100)))

	books := tracker.ShelfBooks("Sci-Fi")
	books[0].Title = "mutated"

	assert.Equal(t, "Book book-1", tracker.ShelfBooks("Sci-Fi")[0].Title)
}

// Bookmarks

func TestTracker_ToggleBookmark_Involution(t *testing.T) {
	tracker, _ := newTestTracker(t)

	b := book("book-1", 100)
	assert.True(t, tracker.ToggleBookmark(b))
	assert.Len(t, tracker.Bookmarks(), 1)

	assert.False(t, tracker.ToggleBookmark(b))
	assert.Empty(t, tracker.Bookmarks())
}

func TestTracker_ToggleBookmark_OffDiscardsProgress(t *testing.T) {
	tracker, _ := newTestTracker(t)

	b := book("book-1", 100)
	tracker.ToggleBookmark(b)
	_, err := tracker.UpdateProgress("book-1", 50)
	require.NoError(t, err)

	tracker.ToggleBookmark(b) // off
	tracker.ToggleBookmark(b) // on again

	bms := tracker.Bookmarks()
	require.Len(t, bms, 1)
	assert.Zero(t, bms[0].PagesRead)
}

func TestTracker_UpdateProgress_NotBookmarked(t *testing.T) {
	tracker, _ := newTestTracker(t)

	_, err := tracker.UpdateProgress("book-404", 10)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestTracker_UpdateProgress_Clamps(t *testing.T) {
	tracker, _ := newTestTracker(t)

	tracker.ToggleBookmark(book("book-1", 100))

	bm, err := tracker.UpdateProgress("book-1", -5)
	require.NoError(t, err)
	assert.Zero(t, bm.PagesRead)

	bm, err = tracker.UpdateProgress("book-1", 150)
	require.NoError(t, err)
	assert.Equal(t, 100, bm.PagesRead)
}

func TestTracker_UpdateProgress_FinishRecordsCompletion(t *testing.T) {
	tracker, _ := newTestTracker(t)

	tracker.ToggleBookmark(book("book-1", 100))

	_, err := tracker.UpdateProgress("book-1", 100)
	require.NoError(t, err)

	completions := tracker.RecentCompletions(10)
	require.Len(t, completions, 1)
	assert.Equal(t, "book-1", completions[0].Book.ID)

	// Holding at the last page does not duplicate the completion.
	_, err = tracker.UpdateProgress("book-1", 100)
	require.NoError(t, err)
	assert.Len(t, tracker.RecentCompletions(10), 1)
}

func TestTracker_UpdateProgress_RecompletionSupersedes(t *testing.T) {
	tracker, _ := newTestTracker(t)

	tracker.ToggleBookmark(book("book-1", 100))

	_, err := tracker.UpdateProgress("book-1", 100)
	require.NoError(t, err)
	first := tracker.RecentCompletions(1)[0].CompletedAt

	// Re-read: back off the last page, then finish again.
	_, err = tracker.UpdateProgress("book-1", 20)
	require.NoError(t, err)
	_, err = tracker.UpdateProgress("book-1", 100)
	require.NoError(t, err)

	completions := tracker.RecentCompletions(10)
	require.Len(t, completions, 1)
	assert.False(t, completions[0].CompletedAt.Before(first))
}

// Completions

func TestTracker_Completions_IteratorIsRestartable(t *testing.T) {
	tracker, _ := newTestTracker(t)

	for _, id := range []string{"book-1", "book-2", "book-3"} {
		tracker.ToggleBookmark(book(id, 10))
		_, err := tracker.UpdateProgress(id, 10)
		require.NoError(t, err)
	}

	seq := tracker.Completions()

	var first []string
	for _, c := range seq {
		first = append(first, c.Book.ID)
	}
	require.Len(t, first, 3)

	// Early break, then restart from the top.
	for i, c := range seq {
		assert.Equal(t, first[i], c.Book.ID)
		if i == 0 {
			break
		}
	}

	var second []string
	for _, c := range seq {
		second = append(second, c.Book.ID)
	}
	assert.Equal(t, first, second)
}

// Goal

func TestTracker_SetGoal_Validation(t *testing.T) {
	tracker, _ := newTestTracker(t)

	_, err := tracker.SetGoal(0)
	require.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = tracker.SetGoal(-3)
	require.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestTracker_GoalProgress_OnlyCountsCompletionsAfterSet(t *testing.T) {
	tracker, _ := newTestTracker(t)

	// Finish one book before the goal exists.
	tracker.ToggleBookmark(book("book-1", 10))
	_, err := tracker.UpdateProgress("book-1", 10)
	require.NoError(t, err)

	_, err = tracker.SetGoal(2)
	require.NoError(t, err)

	goal, completed, percent := tracker.GoalProgress()
	require.NotNil(t, goal)
	assert.Zero(t, completed)
	assert.Zero(t, percent)

	// Finish one after.
	tracker.ToggleBookmark(book("book-2", 10))
	_, err = tracker.UpdateProgress("book-2", 10)
	require.NoError(t, err)

	_, completed, percent = tracker.GoalProgress()
	assert.Equal(t, 1, completed)
	assert.Equal(t, 50, percent)
}

func TestTracker_SetGoal_ReplacesGoalAndAnchor(t *testing.T) {
	tracker, _ := newTestTracker(t)

	_, err := tracker.SetGoal(2)
	require.NoError(t, err)

	tracker.ToggleBookmark(book("book-1", 10))
	_, err = tracker.UpdateProgress("book-1", 10)
	require.NoError(t, err)

	_, completed, _ := tracker.GoalProgress()
	require.Equal(t, 1, completed)

	// Wait so the new anchor lands after the completion above.
	time.Sleep(5 * time.Millisecond)

	_, err = tracker.SetGoal(5)
	require.NoError(t, err)

	goal, completed, percent := tracker.GoalProgress()
	assert.Equal(t, 5, goal.Target)
	assert.Zero(t, completed)
	assert.Zero(t, percent)
}

func TestTracker_ClearGoal(t *testing.T) {
	tracker, _ := newTestTracker(t)

	_, err := tracker.SetGoal(3)
	require.NoError(t, err)

	tracker.ClearGoal()

	goal, _, _ := tracker.GoalProgress()
	assert.Nil(t, goal)

	// Clearing with no goal is a no-op.
	tracker.ClearGoal()
}

// Observers

func TestTracker_ObserversSeeMutationsInOrder(t *testing.T) {
	tracker, _ := newTestTracker(t)

	var events []EventType
	tracker.Subscribe(func(e Event) {
		assert.Equal(t, "user-1", e.UserID)
		events = append(events, e.Type)
	})

	require.NoError(t, tracker.CreateShelf("To Read"))
	tracker.ToggleBookmark(book("book-1", 10))
	_, err := tracker.UpdateProgress("book-1", 10)
	require.NoError(t, err)

	assert.Equal(t, []EventType{
		EventShelfCreated,
		EventBookmarkAdded,
		EventProgressUpdated,
		EventCompletionRecorded,
	}, events)
}

func TestTracker_NoopMutationsEmitNoEvents(t *testing.T) {
	tracker, _ := newTestTracker(t)

	require.NoError(t, tracker.CreateShelf("A"))

	var count int
	tracker.Subscribe(func(Event) { count++ })

	require.NoError(t, tracker.CreateShelf("A"))       // exists: no-op
	tracker.RemoveBookFromShelf("A", "book-404")       // not on shelf
	tracker.RemoveBookFromShelf("missing", "book-1")   // no shelf
	tracker.ClearGoal()                                // no goal
	require.NoError(t, tracker.RenameShelf("A", "A"))  // same name

	assert.Zero(t, count)
}

// Persistence

func TestTracker_MutationsPersistAsynchronously(t *testing.T) {
	tracker, fs := newTestTracker(t)

	require.NoError(t, tracker.CreateShelf("To Read"))
	require.NoError(t, tracker.AddBookToShelf("To Read", book("book-1", 100)))

	require.Eventually(t, func() bool {
		state := fs.savedState("user-1")
		return state != nil && len(state.Shelves["To Read"].Books) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestTracker_CloseFlushesPendingState(t *testing.T) {
	fs := newFakeStore()
	tracker := NewTracker("user-1", nil, fs, nil)

	require.NoError(t, tracker.CreateShelf("Last Minute"))
	require.NoError(t, tracker.Close(context.Background()))

	state := fs.savedState("user-1")
	require.NotNil(t, state)
	assert.Contains(t, state.Shelves, "Last Minute")
}

func TestTracker_PersistFailureDoesNotSurface(t *testing.T) {
	fs := newFakeStore()
	fs.saveErr = errors.New("disk full")
	tracker := NewTracker("user-1", nil, fs, nil)

	// The mutation itself always succeeds.
	require.NoError(t, tracker.CreateShelf("To Read"))
	assert.Equal(t, []string{"To Read"}, tracker.ShelfNames())

	require.NoError(t, tracker.Close(context.Background()))
}

func TestTracker_PersistedStateIsIsolatedSnapshot(t *testing.T) {
	tracker, fs := newTestTracker(t)

	require.NoError(t, tracker.AddBookToShelf("A", book("book-1", 100)))

	require.Eventually(t, func() bool {
		return fs.savedState("user-1") != nil
	}, time.Second, 5*time.Millisecond)

	saved := fs.savedState("user-1")

	// Later mutations must not reach into the already-saved snapshot.
	require.NoError(t, tracker.AddBookToShelf("A", book("book-2", 100)))
	assert.Len(t, saved.Shelves["A"].Books, 1)
}
