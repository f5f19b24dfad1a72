package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/novelreads/novelreads-server/internal/domain"
)

func (s *Server) registerReadingRoutes() {
	// Shelves
	huma.Register(s.api, huma.Operation{
		OperationID: "listShelves",
		Method:      http.MethodGet,
		Path:        "/api/v1/shelves",
		Summary:     "List my shelves",
		Description: "Returns all shelves owned by the current user",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListShelves)

	huma.Register(s.api, huma.Operation{
		OperationID: "createShelf",
		Method:      http.MethodPost,
		Path:        "/api/v1/shelves",
		Summary:     "Create shelf",
		Description: "Creates a new named shelf. Creating an existing shelf is a no-op.",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateShelf)

	huma.Register(s.api, huma.Operation{
		OperationID: "renameShelf",
		Method:      http.MethodPatch,
		Path:        "/api/v1/shelves/{name}",
		Summary:     "Rename shelf",
		Description: "Renames a shelf, preserving its contents. Fails if the new name is taken.",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRenameShelf)

	huma.Register(s.api, huma.Operation{
		OperationID: "listShelfBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/shelves/{name}/books",
		Summary:     "List shelf books",
		Description: "Returns the books on a shelf in insertion order",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListShelfBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "addBookToShelf",
		Method:      http.MethodPost,
		Path:        "/api/v1/shelves/{name}/books",
		Summary:     "Add book to shelf",
		Description: "Adds a catalog book to a shelf, creating the shelf if needed. Duplicates are allowed.",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddBookToShelf)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeBookFromShelf",
		Method:      http.MethodDelete,
		Path:        "/api/v1/shelves/{name}/books/{bookId}",
		Summary:     "Remove book from shelf",
		Description: "Removes the first matching copy of a book from a shelf",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveBookFromShelf)

	// Bookmarks and progress
	huma.Register(s.api, huma.Operation{
		OperationID: "listBookmarks",
		Method:      http.MethodGet,
		Path:        "/api/v1/bookmarks",
		Summary:     "List bookmarks",
		Description: "Returns the books the user is currently reading",
		Tags:        []string{"Reading"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBookmarks)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleBookmark",
		Method:      http.MethodPost,
		Path:        "/api/v1/bookmarks/{bookId}/toggle",
		Summary:     "Toggle bookmark",
		Description: "Starts or stops reading a book. Removing a bookmark discards its progress.",
		Tags:        []string{"Reading"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleToggleBookmark)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProgress",
		Method:      http.MethodPut,
		Path:        "/api/v1/bookmarks/{bookId}/progress",
		Summary:     "Update reading progress",
		Description: "Sets the absolute pages read for a bookmarked book. Reaching the last page records a completion.",
		Tags:        []string{"Reading"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateProgress)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCompletions",
		Method:      http.MethodGet,
		Path:        "/api/v1/completions",
		Summary:     "List completions",
		Description: "Returns the most recently finished books, newest first",
		Tags:        []string{"Reading"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListCompletions)

	// Reading goal
	huma.Register(s.api, huma.Operation{
		OperationID: "getGoal",
		Method:      http.MethodGet,
		Path:        "/api/v1/goal",
		Summary:     "Get reading goal",
		Description: "Returns the active reading goal and progress toward it",
		Tags:        []string{"Reading"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetGoal)

	huma.Register(s.api, huma.Operation{
		OperationID: "setGoal",
		Method:      http.MethodPut,
		Path:        "/api/v1/goal",
		Summary:     "Set reading goal",
		Description: "Activates a reading goal. Setting a new goal resets the completion window.",
		Tags:        []string{"Reading"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetGoal)

	huma.Register(s.api, huma.Operation{
		OperationID: "clearGoal",
		Method:      http.MethodDelete,
		Path:        "/api/v1/goal",
		Summary:     "Clear reading goal",
		Description: "Deactivates the reading goal. Clearing an absent goal is a no-op.",
		Tags:        []string{"Reading"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleClearGoal)
}

// === DTOs ===

// AuthorizedInput carries only the bearer token, for list endpoints.
type AuthorizedInput struct {
	Authorization string `header:"Authorization"`
}

// ShelfListResponse contains the user's shelves.
type ShelfListResponse struct {
	Shelves []domain.Shelf `json:"shelves" doc:"Shelves in creation order"`
}

// ShelfListOutput wraps the shelf list for Huma.
type ShelfListOutput struct {
	Body ShelfListResponse
}

// CreateShelfInput wraps the create shelf request for Huma.
type CreateShelfInput struct {
	Authorization string `header:"Authorization"`
	Body          struct {
		Name string `json:"name" minLength:"1" maxLength:"100" doc:"Shelf name"`
	}
}

// RenameShelfInput wraps the rename shelf request for Huma.
type RenameShelfInput struct {
	Authorization string `header:"Authorization"`
	Name          string `path:"name" doc:"Current shelf name"`
	Body          struct {
		Name string `json:"name" minLength:"1" maxLength:"100" doc:"New shelf name"`
	}
}

// ShelfBooksInput contains parameters for listing shelf books.
type ShelfBooksInput struct {
	Authorization string `header:"Authorization"`
	Name          string `path:"name" doc:"Shelf name"`
}

// BookListResponse contains a list of book snapshots.
type BookListResponse struct {
	Books []domain.Book `json:"books" doc:"Book snapshots in insertion order"`
}

// BookListOutput wraps the book list for Huma.
type BookListOutput struct {
	Body BookListResponse
}

// AddBookToShelfInput wraps the add-book request for Huma.
type AddBookToShelfInput struct {
	Authorization string `header:"Authorization"`
	Name          string `path:"name" doc:"Shelf name"`
	Body          struct {
		BookID string `json:"book_id" minLength:"1" doc:"Catalog book ID"`
	}
}

// RemoveBookFromShelfInput wraps the remove-book request for Huma.
type RemoveBookFromShelfInput struct {
	Authorization string `header:"Authorization"`
	Name          string `path:"name" doc:"Shelf name"`
	BookID        string `path:"bookId" doc:"Catalog book ID"`
}

// BookmarkListResponse contains the user's active bookmarks.
type BookmarkListResponse struct {
	Bookmarks []domain.Bookmark `json:"bookmarks" doc:"Active bookmarks"`
}

// BookmarkListOutput wraps the bookmark list for Huma.
type BookmarkListOutput struct {
	Body BookmarkListResponse
}

// ToggleBookmarkInput wraps the toggle request for Huma.
type ToggleBookmarkInput struct {
	Authorization string `header:"Authorization"`
	BookID        string `path:"bookId" doc:"Catalog book ID"`
}

// ToggleBookmarkResponse reports the bookmark state after toggling.
type ToggleBookmarkResponse struct {
	BookID     string `json:"book_id" doc:"Catalog book ID"`
	Bookmarked bool   `json:"bookmarked" doc:"Whether the book is now bookmarked"`
}

// ToggleBookmarkOutput wraps the toggle response for Huma.
type ToggleBookmarkOutput struct {
	Body ToggleBookmarkResponse
}

// UpdateProgressInput wraps the progress update for Huma.
type UpdateProgressInput struct {
	Authorization string `header:"Authorization"`
	BookID        string `path:"bookId" doc:"Catalog book ID"`
	Body          struct {
		PagesRead int `json:"pages_read" minimum:"0" doc:"Absolute pages read, clamped to the book's page count"`
	}
}

// BookmarkOutput wraps a single bookmark for Huma.
type BookmarkOutput struct {
	Body domain.Bookmark
}

// ListCompletionsInput contains parameters for listing completions.
type ListCompletionsInput struct {
	Authorization string `header:"Authorization"`
	Limit         int    `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Maximum completions to return"`
}

// CompletionListResponse contains recently finished books.
type CompletionListResponse struct {
	Completions []domain.Completion `json:"completions" doc:"Finished books, newest first"`
}

// CompletionListOutput wraps the completion list for Huma.
type CompletionListOutput struct {
	Body CompletionListResponse
}

// GoalResponse contains the reading goal and progress toward it.
type GoalResponse struct {
	Target    int       `json:"target" doc:"Books to finish"`
	SetAt     time.Time `json:"set_at" doc:"When the goal was set"`
	Completed int       `json:"completed" doc:"Books finished since the goal was set"`
	Percent   int       `json:"percent" doc:"Progress percentage, clamped to 100"`
}

// GoalOutput wraps the goal response for Huma. Body is null when no
// goal is active.
type GoalOutput struct {
	Body *GoalResponse
}

// SetGoalInput wraps the set-goal request for Huma.
type SetGoalInput struct {
	Authorization string `header:"Authorization"`
	Body          struct {
		Target int `json:"target" minimum:"1" doc:"Books to finish"`
	}
}

// === Handlers ===

func (s *Server) handleListShelves(ctx context.Context, input *AuthorizedInput) (*ShelfListOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	shelves, err := s.services.Reading.Shelves(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ShelfListOutput{Body: ShelfListResponse{Shelves: shelves}}, nil
}

func (s *Server) handleCreateShelf(ctx context.Context, input *CreateShelfInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Reading.CreateShelf(ctx, userID, input.Body.Name); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Shelf created"}}, nil
}

func (s *Server) handleRenameShelf(ctx context.Context, input *RenameShelfInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Reading.RenameShelf(ctx, userID, input.Name, input.Body.Name); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Shelf renamed"}}, nil
}

func (s *Server) handleListShelfBooks(ctx context.Context, input *ShelfBooksInput) (*BookListOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Reading.ShelfBooks(ctx, userID, input.Name)
	if err != nil {
		return nil, err
	}

	return &BookListOutput{Body: BookListResponse{Books: books}}, nil
}

func (s *Server) handleAddBookToShelf(ctx context.Context, input *AddBookToShelfInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Reading.AddBookToShelf(ctx, userID, input.Name, input.Body.BookID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Book added to shelf"}}, nil
}

func (s *Server) handleRemoveBookFromShelf(ctx context.Context, input *RemoveBookFromShelfInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Reading.RemoveBookFromShelf(ctx, userID, input.Name, input.BookID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Book removed from shelf"}}, nil
}

func (s *Server) handleListBookmarks(ctx context.Context, input *AuthorizedInput) (*BookmarkListOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	bookmarks, err := s.services.Reading.Bookmarks(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &BookmarkListOutput{Body: BookmarkListResponse{Bookmarks: bookmarks}}, nil
}

func (s *Server) handleToggleBookmark(ctx context.Context, input *ToggleBookmarkInput) (*ToggleBookmarkOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	bookmarked, err := s.services.Reading.ToggleBookmark(ctx, userID, input.BookID)
	if err != nil {
		return nil, err
	}

	return &ToggleBookmarkOutput{
		Body: ToggleBookmarkResponse{
			BookID:     input.BookID,
			Bookmarked: bookmarked,
		},
	}, nil
}

func (s *Server) handleUpdateProgress(ctx context.Context, input *UpdateProgressInput) (*BookmarkOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	bookmark, err := s.services.Reading.UpdateProgress(ctx, userID, input.BookID, input.Body.PagesRead)
	if err != nil {
		return nil, err
	}

	return &BookmarkOutput{Body: *bookmark}, nil
}

func (s *Server) handleListCompletions(ctx context.Context, input *ListCompletionsInput) (*CompletionListOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	completions, err := s.services.Reading.RecentCompletions(ctx, userID, input.Limit)
	if err != nil {
		return nil, err
	}

	return &CompletionListOutput{Body: CompletionListResponse{Completions: completions}}, nil
}

func (s *Server) handleGetGoal(ctx context.Context, input *AuthorizedInput) (*GoalOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	goal, completed, percent, err := s.services.Reading.Goal(ctx, userID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return &GoalOutput{}, nil
	}

	return &GoalOutput{
		Body: &GoalResponse{
			Target:    goal.Target,
			SetAt:     goal.SetAt,
			Completed: completed,
			Percent:   percent,
		},
	}, nil
}

func (s *Server) handleSetGoal(ctx context.Context, input *SetGoalInput) (*GoalOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	goal, err := s.services.Reading.SetGoal(ctx, userID, input.Body.Target)
	if err != nil {
		return nil, err
	}

	return &GoalOutput{
		Body: &GoalResponse{
			Target: goal.Target,
			SetAt:  goal.SetAt,
		},
	}, nil
}

func (s *Server) handleClearGoal(ctx context.Context, input *AuthorizedInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Reading.ClearGoal(ctx, userID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Goal cleared"}}, nil
}
