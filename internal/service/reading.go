package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/novelreads/novelreads-server/internal/domain"
	"github.com/novelreads/novelreads-server/internal/reading"
)

// ReadingService fronts the per-user reading trackers: shelves,
// bookmarks, completions, and the reading goal. Book payloads come from
// the catalog so a shelf always holds a full snapshot.
type ReadingService struct {
	trackers *reading.Registry
	catalog  *CatalogService
	logger   *slog.Logger
}

// NewReadingService creates a reading service.
func NewReadingService(trackers *reading.Registry, catalog *CatalogService, logger *slog.Logger) *ReadingService {
	return &ReadingService{
		trackers: trackers,
		catalog:  catalog,
		logger:   logger,
	}
}

// tracker fetches the caller's tracker, loading persisted state on first
// use after login.
func (s *ReadingService) tracker(ctx context.Context, userID string) (*reading.Tracker, error) {
	t, err := s.trackers.Acquire(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("acquire reading tracker: %w", err)
	}
	return t, nil
}

// Shelf operations

// Shelves returns all of a user's shelves with their books.
func (s *ReadingService) Shelves(ctx context.Context, userID string) ([]domain.Shelf, error) {
	t, err := s.tracker(ctx, userID)
	if err != nil {
		return nil, err
	}
	return t.Shelves(), nil
}

// ShelfBooks returns the ordered books on one shelf.
func (s *ReadingService) ShelfBooks(ctx context.Context, userID, shelfName string) ([]domain.Book, error) {
	t, err := s.tracker(ctx, userID)
	if err != nil {
		return nil, err
	}
	return t.ShelfBooks(shelfName), nil
}

// CreateShelf creates an empty shelf. Creating an existing shelf is a
// no-op.
func (s *ReadingService) CreateShelf(ctx context.Context, userID, name string) error {
	t, err := s.tracker(ctx, userID)
	if err != nil {
		return err
	}
	return t.CreateShelf(name)
}

// RenameShelf renames a shelf, rejecting collisions with existing names.
func (s *ReadingService) RenameShelf(ctx context.Context, userID, oldName, newName string) error {
	t, err := s.tracker(ctx, userID)
	if err != nil {
		return err
	}
	return t.RenameShelf(oldName, newName)
}

// AddBookToShelf snapshots a catalog book onto a shelf, creating the
// shelf if needed.
func (s *ReadingService) AddBookToShelf(ctx context.Context, userID, shelfName, bookID string) error {
	t, err := s.tracker(ctx, userID)
	if err != nil {
		return err
	}

	book, err := s.catalog.GetBook(ctx, bookID)
	if err != nil {
		return err
	}
	return t.AddBookToShelf(shelfName, *book)
}

// RemoveBookFromShelf removes the first matching copy from a shelf.
func (s *ReadingService) RemoveBookFromShelf(ctx context.Context, userID, shelfName, bookID string) error {
	t, err := s.tracker(ctx, userID)
	if err != nil {
		return err
	}
	t.RemoveBookFromShelf(shelfName, bookID)
	return nil
}

// Bookmark operations

// Bookmarks returns the user's in-progress books, newest first.
func (s *ReadingService) Bookmarks(ctx context.Context, userID string) ([]domain.Bookmark, error) {
	t, err := s.tracker(ctx, userID)
	if err != nil {
		return nil, err
	}
	return t.Bookmarks(), nil
}

// ToggleBookmark flips a catalog book's in-progress state. Returns true
// if the book is bookmarked after the call.
func (s *ReadingService) ToggleBookmark(ctx context.Context, userID, bookID string) (bool, error) {
	t, err := s.tracker(ctx, userID)
	if err != nil {
		return false, err
	}

	book, err := s.catalog.GetBook(ctx, bookID)
	if err != nil {
		return false, err
	}
	return t.ToggleBookmark(*book), nil
}

// UpdateProgress sets the absolute page position for a bookmarked book.
func (s *ReadingService) UpdateProgress(ctx context.Context, userID, bookID string, pagesRead int) (*domain.Bookmark, error) {
	t, err := s.tracker(ctx, userID)
	if err != nil {
		return nil, err
	}
	return t.UpdateProgress(bookID, pagesRead)
}

// Completion operations

// RecentCompletions returns up to limit finished books, newest first.
func (s *ReadingService) RecentCompletions(ctx context.Context, userID string, limit int) ([]domain.Completion, error) {
	t, err := s.tracker(ctx, userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	return t.RecentCompletions(limit), nil
}

// Goal operations

// Goal returns the active reading goal with its progress, or a nil goal.
func (s *ReadingService) Goal(ctx context.Context, userID string) (*domain.ReadingGoal, int, int, error) {
	t, err := s.tracker(ctx, userID)
	if err != nil {
		return nil, 0, 0, err
	}
	goal, completed, percent := t.GoalProgress()
	return goal, completed, percent, nil
}

// SetGoal activates a reading goal of target books.
func (s *ReadingService) SetGoal(ctx context.Context, userID string, target int) (*domain.ReadingGoal, error) {
	t, err := s.tracker(ctx, userID)
	if err != nil {
		return nil, err
	}
	return t.SetGoal(target)
}

// ClearGoal removes the active goal.
func (s *ReadingService) ClearGoal(ctx context.Context, userID string) error {
	t, err := s.tracker(ctx, userID)
	if err != nil {
		return err
	}
	t.ClearGoal()
	return nil
}

// Subscribe attaches an observer to the user's tracker. Used by the SSE
// bridge for already-live trackers.
func (s *ReadingService) Subscribe(ctx context.Context, userID string, obs reading.Observer) error {
	t, err := s.tracker(ctx, userID)
	if err != nil {
		return err
	}
	t.Subscribe(obs)
	return nil
}
