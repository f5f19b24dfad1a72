package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/novelreads/novelreads-server/internal/domain"
	"github.com/novelreads/novelreads-server/internal/search"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns a paginated list of catalog books in ID order",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a single catalog book by ID",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search books",
		Description: "Full-text catalog search with genre, year, and rating filters",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchBooks)
}

// === DTOs ===

// ListBooksInput contains pagination parameters for listing books.
type ListBooksInput struct {
	Authorization string `header:"Authorization"`
	Limit         int    `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Page size"`
	Offset        int    `query:"offset" default:"0" minimum:"0" doc:"Items to skip"`
}

// BookPageResponse contains a page of books.
type BookPageResponse struct {
	Books  []domain.Book `json:"books" doc:"Books in this page"`
	Total  int           `json:"total" doc:"Total books in the catalog"`
	Limit  int           `json:"limit" doc:"Page size used"`
	Offset int           `json:"offset" doc:"Items skipped"`
}

// BookPageOutput wraps the book page for Huma.
type BookPageOutput struct {
	Body BookPageResponse
}

// GetBookInput contains parameters for getting a book.
type GetBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body domain.Book
}

// SearchBooksInput contains full-text search parameters.
type SearchBooksInput struct {
	Authorization string   `header:"Authorization"`
	Query         string   `query:"q" doc:"Search query"`
	Genres        []string `query:"genre" doc:"Genre slugs to filter by"`
	MinYear       int      `query:"min_year" doc:"Minimum release year"`
	MaxYear       int      `query:"max_year" doc:"Maximum release year"`
	MinRating     float64  `query:"min_rating" doc:"Minimum average rating"`
	Limit         int      `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Page size"`
	Offset        int      `query:"offset" default:"0" minimum:"0" doc:"Items to skip"`
	Sort          string   `query:"sort" default:"relevance" enum:"relevance,title,author,recent,rating" doc:"Sort field"`
	Order         string   `query:"order" default:"desc" enum:"asc,desc" doc:"Sort direction"`
}

// SearchOutput wraps search results for Huma.
type SearchOutput struct {
	Body search.Result
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*BookPageOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	page, err := s.services.Catalog.ListBooks(ctx, input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}

	return &BookPageOutput{
		Body: BookPageResponse{
			Books:  page.Books,
			Total:  page.Total,
			Limit:  page.Limit,
			Offset: page.Offset,
		},
	}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	book, err := s.services.Catalog.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: *book}, nil
}

func (s *Server) handleSearchBooks(ctx context.Context, input *SearchBooksInput) (*SearchOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	params := search.DefaultParams()
	params.Query = input.Query
	params.GenreSlugs = input.Genres
	params.MinYear = input.MinYear
	params.MaxYear = input.MaxYear
	params.MinRating = input.MinRating
	params.Limit = input.Limit
	params.Offset = input.Offset
	params.SortBy = input.Sort
	params.SortOrder = input.Order

	result, err := s.services.Catalog.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	return &SearchOutput{Body: *result}, nil
}
