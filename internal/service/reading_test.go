package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/novelreads/novelreads-server/internal/errors"
	"github.com/novelreads/novelreads-server/internal/reading"
)

func TestReadingService_AddBookToShelf(t *testing.T) {
	env := newTestEnv(t)
	resp := env.register(t, "dana@example.com", "dana")
	env.seedBook(t, "book-1", "The Dispossessed", 387)

	require.NoError(t, env.reading.AddBookToShelf(context.Background(), resp.User.ID, "Favorites", "book-1"))

	books, err := env.reading.ShelfBooks(context.Background(), resp.User.ID, "Favorites")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "The Dispossessed", books[0].Title) // Full catalog snapshot
}

func TestReadingService_AddBookToShelf_UnknownBook(t *testing.T) {
	env := newTestEnv(t)
	resp := env.register(t, "dana@example.com", "dana")

	err := env.reading.AddBookToShelf(context.Background(), resp.User.ID, "Favorites", "book-404")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestReadingService_ToggleAndProgress(t *testing.T) {
	env := newTestEnv(t)
	resp := env.register(t, "dana@example.com", "dana")
	env.seedBook(t, "book-1", "The Dispossessed", 387)

	on, err := env.reading.ToggleBookmark(context.Background(), resp.User.ID, "book-1")
	require.NoError(t, err)
	assert.True(t, on)

	bm, err := env.reading.UpdateProgress(context.Background(), resp.User.ID, "book-1", 387)
	require.NoError(t, err)
	assert.True(t, bm.IsFinished())

	completions, err := env.reading.RecentCompletions(context.Background(), resp.User.ID, 10)
	require.NoError(t, err)
	require.Len(t, completions, 1)
	assert.Equal(t, "book-1", completions[0].Book.ID)
}

func TestReadingService_GoalLifecycle(t *testing.T) {
	env := newTestEnv(t)
	resp := env.register(t, "dana@example.com", "dana")

	goal, err := env.reading.SetGoal(context.Background(), resp.User.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, goal.Target)

	got, completed, percent, err := env.reading.Goal(context.Background(), resp.User.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Zero(t, completed)
	assert.Zero(t, percent)

	require.NoError(t, env.reading.ClearGoal(context.Background(), resp.User.ID))

	got, _, _, err = env.reading.Goal(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReadingService_StateSurvivesLogout(t *testing.T) {
	env := newTestEnv(t)
	resp := env.register(t, "dana@example.com", "dana")
	env.seedBook(t, "book-1", "The Dispossessed", 387)

	require.NoError(t, env.reading.AddBookToShelf(context.Background(), resp.User.ID, "Favorites", "book-1"))

	// Logout drops the tracker and flushes its state.
	require.NoError(t, env.auth.Logout(context.Background(), resp.SessionID, resp.User.ID))

	// The next access reloads from the store.
	books, err := env.reading.ShelfBooks(context.Background(), resp.User.ID, "Favorites")
	require.NoError(t, err)
	require.Len(t, books, 1)
}

func TestReadingService_Subscribe(t *testing.T) {
	env := newTestEnv(t)
	resp := env.register(t, "dana@example.com", "dana")
	env.seedBook(t, "book-1", "The Dispossessed", 387)

	var events []reading.EventType
	require.NoError(t, env.reading.Subscribe(context.Background(), resp.User.ID, func(e reading.Event) {
		events = append(events, e.Type)
	}))

	_, err := env.reading.ToggleBookmark(context.Background(), resp.User.ID, "book-1")
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, reading.EventBookmarkAdded, events[0])
}
