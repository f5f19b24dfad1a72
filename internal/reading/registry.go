package reading

import (
	"context"
	"fmt"
	"sync"

	"github.com/novelreads/novelreads-server/internal/domain"
	"github.com/novelreads/novelreads-server/internal/logger"
)

// Store loads and saves reading state blobs. Implemented by the Badger
// store.
type Store interface {
	Persister
	LoadReadingState(ctx context.Context, userID string) (*domain.ReadingState, error)
}

// Registry hands out one Tracker per user, loading state lazily on first
// use and dropping it at logout. No tracker outlives its user's session.
type Registry struct {
	store  Store
	logger *logger.Logger

	mu       sync.Mutex
	trackers map[string]*Tracker

	// onCreate hooks run for each new tracker before it is handed out,
	// e.g. to attach the SSE bridge.
	onCreate []func(*Tracker)
}

// NewRegistry creates an empty tracker registry.
func NewRegistry(store Store, log *logger.Logger) *Registry {
	return &Registry{
		store:    store,
		logger:   log,
		trackers: make(map[string]*Tracker),
	}
}

// OnCreate registers a hook invoked for every newly created tracker.
// Must be called before any Acquire.
func (r *Registry) OnCreate(hook func(*Tracker)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onCreate = append(r.onCreate, hook)
}

// Acquire returns the user's tracker, creating it from stored state on
// first use after login.
func (r *Registry) Acquire(ctx context.Context, userID string) (*Tracker, error) {
	r.mu.Lock()
	if t, ok := r.trackers[userID]; ok {
		r.mu.Unlock()
		return t, nil
	}
	r.mu.Unlock()

	// Load outside the lock; a concurrent Acquire for the same user may
	// race to here, so re-check before publishing.
	state, err := r.store.LoadReadingState(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load reading state: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.trackers[userID]; ok {
		return t, nil
	}

	t := NewTracker(userID, state, r.store, r.logger)
	for _, hook := range r.onCreate {
		hook(t)
	}
	r.trackers[userID] = t

	if r.logger != nil {
		r.logger.Debug("reading tracker created", "user_id", userID)
	}
	return t, nil
}

// Release flushes and drops the user's tracker at logout. Releasing a
// user without a tracker is a no-op.
func (r *Registry) Release(ctx context.Context, userID string) error {
	r.mu.Lock()
	t, ok := r.trackers[userID]
	delete(r.trackers, userID)
	r.mu.Unlock()

	if !ok {
		return nil
	}

	if err := t.Close(ctx); err != nil {
		return fmt.Errorf("close tracker for %s: %w", userID, err)
	}

	if r.logger != nil {
		r.logger.Debug("reading tracker released", "user_id", userID)
	}
	return nil
}

// Shutdown flushes and drops every tracker. Used on server shutdown.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	trackers := r.trackers
	r.trackers = make(map[string]*Tracker)
	r.mu.Unlock()

	var firstErr error
	for userID, t := range trackers {
		if err := t.Close(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close tracker for %s: %w", userID, err)
		}
	}
	return firstErr
}
