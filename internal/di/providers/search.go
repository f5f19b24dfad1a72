package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/novelreads/novelreads-server/internal/config"
	"github.com/novelreads/novelreads-server/internal/logger"
	"github.com/novelreads/novelreads-server/internal/search"
	"github.com/novelreads/novelreads-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewIndex(search.Options{
		DataPath: cfg.Data.BasePath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{Index: index}, nil
}

// TriggerCatalogReindexIfNeeded rebuilds the search index when it is
// empty but the store has books (fresh index or mapping change).
// Should be called after all services are wired.
func TriggerCatalogReindexIfNeeded(i do.Injector) {
	catalog := do.MustInvoke[*service.CatalogService](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := catalog.IndexedBooks()
	if docCount > 0 {
		return
	}

	page, err := catalog.ListBooks(context.Background(), 1, 0)
	if err != nil || page.Total == 0 {
		return
	}

	log.Info("Search index is empty but books exist, triggering initial reindex",
		"book_count", page.Total,
	)

	go func() {
		if err := catalog.ReindexAll(context.Background()); err != nil {
			log.Error("Initial search reindex failed", "error", err)
		} else {
			count, _ := catalog.IndexedBooks()
			log.Info("Initial search reindex completed", "documents", count)
		}
	}()
}
