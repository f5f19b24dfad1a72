package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/novelreads/novelreads-server/internal/domain"
	"github.com/novelreads/novelreads-server/internal/search"
	"github.com/novelreads/novelreads-server/internal/store"
)

// Importer loads feed files into the catalog store and search index.
type Importer struct {
	store  *store.Store
	index  *search.Index
	logger *slog.Logger
}

// NewImporter creates a catalog importer.
func NewImporter(store *store.Store, index *search.Index, logger *slog.Logger) *Importer {
	return &Importer{
		store:  store,
		index:  index,
		logger: logger,
	}
}

// ImportFile imports one feed file, upserting its books. Returns the
// number of books imported.
func (i *Importer) ImportFile(ctx context.Context, path string) (int, error) {
	books, err := ParseFeed(path)
	if err != nil {
		return 0, err
	}

	for _, book := range books {
		if err := i.upsert(ctx, book); err != nil {
			return 0, fmt.Errorf("import %s: %w", book.ID, err)
		}
	}

	if err := i.index.IndexBooks(books); err != nil {
		return 0, fmt.Errorf("index feed books: %w", err)
	}

	if i.logger != nil {
		i.logger.Info("imported catalog feed", "path", path, "books", len(books))
	}
	return len(books), nil
}

// ImportDir imports every .json feed file in a directory. Files that
// fail to parse are skipped with a warning so one bad feed cannot block
// the rest of the catalog.
func (i *Importer) ImportDir(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read feed directory: %w", err)
	}

	total := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		count, err := i.ImportFile(ctx, path)
		if err != nil {
			if i.logger != nil {
				i.logger.Warn("skipping feed file", "path", path, "error", err)
			}
			continue
		}
		total += count
	}

	return total, nil
}

// upsert creates a book or, if it was imported before, refreshes its
// catalog fields while keeping the original creation time.
func (i *Importer) upsert(ctx context.Context, book *domain.Book) error {
	err := i.store.Books.Create(ctx, book.ID, book)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrAlreadyExists) {
		return err
	}

	existing, err := i.store.Books.Get(ctx, book.ID)
	if err != nil {
		return err
	}
	book.CreatedAt = existing.CreatedAt

	return i.store.Books.Update(ctx, book.ID, book)
}
