package providers

import (
	"context"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/novelreads/novelreads-server/internal/config"
	"github.com/novelreads/novelreads-server/internal/logger"
	"github.com/novelreads/novelreads-server/internal/reading"
	"github.com/novelreads/novelreads-server/internal/sse"
	"github.com/novelreads/novelreads-server/internal/store"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Data.BasePath, "db")
	db, err := store.New(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// TrackerRegistryHandle wraps the reading tracker registry with shutdown capability.
// Shutting down flushes every cached tracker's pending state to the store,
// so it must run before the store closes.
type TrackerRegistryHandle struct {
	*reading.Registry
}

// Shutdown implements do.Shutdownable.
func (h *TrackerRegistryHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Registry.Shutdown(ctx)
}

// ProvideTrackerRegistry provides the per-user reading tracker registry,
// bridged to the SSE manager so tracker events stream to clients.
func ProvideTrackerRegistry(i do.Injector) (*TrackerRegistryHandle, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	registry := reading.NewRegistry(storeHandle.Store, log)

	// Bridge before any tracker is handed out so no events are missed.
	sse.Bridge(registry, sseHandle.Manager)

	log.Info("Reading tracker registry initialized")

	return &TrackerRegistryHandle{Registry: registry}, nil
}
