package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/novelreads/novelreads-server/internal/catalog"
	"github.com/novelreads/novelreads-server/internal/config"
	"github.com/novelreads/novelreads-server/internal/logger"
	"github.com/novelreads/novelreads-server/internal/service"
)

// ProvideCatalogImporter provides the feed importer.
func ProvideCatalogImporter(i do.Injector) (*catalog.Importer, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return catalog.NewImporter(storeHandle.Store, indexHandle.Index, log.Logger), nil
}

// FeedWatcherHandle wraps the catalog feed watcher with shutdown capability.
type FeedWatcherHandle struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *FeedWatcherHandle) Shutdown() error {
	if h.cancel != nil {
		h.cancel()
	}
	return nil
}

// ProvideFeedWatcher imports the configured feed directory and, when
// watching is enabled, re-imports feed files as they change on disk.
// With no feed path configured this is a no-op; the catalog can be
// seeded with cmd/seed instead.
func ProvideFeedWatcher(i do.Injector) (*FeedWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Catalog.FeedPath == "" {
		log.Info("No catalog feed path configured, skipping feed import")
		return &FeedWatcherHandle{}, nil
	}

	importer := do.MustInvoke[*catalog.Importer](i)

	// Initial import of everything already on disk.
	count, err := importer.ImportDir(context.Background(), cfg.Catalog.FeedPath)
	if err != nil {
		return nil, err
	}
	log.Info("Catalog feed imported", "path", cfg.Catalog.FeedPath, "books", count)

	if !cfg.Catalog.Watch {
		return &FeedWatcherHandle{}, nil
	}

	w := catalog.NewWatcher(cfg.Catalog.FeedPath, importer, log.Logger)
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := w.Start(ctx); err != nil {
			log.Error("Feed watcher error", "error", err)
		}
	}()

	log.Info("Feed watcher started", "path", cfg.Catalog.FeedPath)

	return &FeedWatcherHandle{cancel: cancel}, nil
}

// SessionCleanupJob runs periodic session cleanup.
type SessionCleanupJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *SessionCleanupJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideSessionCleanupJob provides the periodic session cleanup job.
func ProvideSessionCleanupJob(i do.Injector) (*SessionCleanupJob, error) {
	sessions := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		// Initial cleanup on startup
		if count, err := sessions.DeleteExpiredSessions(ctx); err != nil {
			log.Warn("Initial session cleanup failed", "error", err)
		} else if count > 0 {
			log.Info("Initial session cleanup completed", "deleted", count)
		}

		for {
			select {
			case <-ticker.C:
				if count, err := sessions.DeleteExpiredSessions(ctx); err != nil {
					log.Warn("Session cleanup failed", "error", err)
				} else if count > 0 {
					log.Info("Session cleanup completed", "deleted", count)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Session cleanup job started")

	return &SessionCleanupJob{cancel: cancel}, nil
}
