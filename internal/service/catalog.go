package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/novelreads/novelreads-server/internal/domain"
	domainerrors "github.com/novelreads/novelreads-server/internal/errors"
	"github.com/novelreads/novelreads-server/internal/search"
	"github.com/novelreads/novelreads-server/internal/store"
)

// DefaultPageSize is the catalog page size when the client doesn't ask
// for one.
const DefaultPageSize = 20

// MaxPageSize caps how many catalog books one request can fetch.
const MaxPageSize = 100

// CatalogService serves the book catalog behind the Discover screen.
type CatalogService struct {
	store  *store.Store
	index  *search.Index
	logger *slog.Logger
}

// NewCatalogService creates a catalog service.
func NewCatalogService(store *store.Store, index *search.Index, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		store:  store,
		index:  index,
		logger: logger,
	}
}

// BookPage is one page of catalog books.
type BookPage struct {
	Books  []domain.Book `json:"books"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// GetBook returns one catalog book.
func (s *CatalogService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.Books.Get(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("book %q not found", bookID)
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// ListBooks returns a page of the catalog in stable ID order.
func (s *CatalogService) ListBooks(ctx context.Context, limit, offset int) (*BookPage, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	page := &BookPage{
		Books:  make([]domain.Book, 0, limit),
		Limit:  limit,
		Offset: offset,
	}

	pos := 0
	for book, err := range s.store.Books.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list books: %w", err)
		}
		if pos >= offset && len(page.Books) < limit {
			page.Books = append(page.Books, *book)
		}
		pos++
	}
	page.Total = pos

	return page, nil
}

// Search runs a full-text query over the catalog.
func (s *CatalogService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	if params.Limit <= 0 {
		params.Limit = DefaultPageSize
	}
	if params.Limit > MaxPageSize {
		params.Limit = MaxPageSize
	}

	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}
	return result, nil
}

// ReindexAll rebuilds the search index from the stored catalog. Used at
// startup when the index is missing or its mapping changed.
func (s *CatalogService) ReindexAll(ctx context.Context) error {
	var books []*domain.Book
	for book, err := range s.store.Books.List(ctx) {
		if err != nil {
			return fmt.Errorf("list books: %w", err)
		}
		books = append(books, book)
	}

	if err := s.index.IndexBooks(books); err != nil {
		return fmt.Errorf("reindex books: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("reindexed catalog", "books", len(books))
	}
	return nil
}

// IndexedBooks returns the number of searchable catalog documents.
func (s *CatalogService) IndexedBooks() (uint64, error) {
	return s.index.DocumentCount()
}
