package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/novelreads/novelreads-server/internal/auth"
	"github.com/novelreads/novelreads-server/internal/domain"
	"github.com/novelreads/novelreads-server/internal/reading"
	"github.com/novelreads/novelreads-server/internal/search"
	"github.com/novelreads/novelreads-server/internal/service"
	"github.com/novelreads/novelreads-server/internal/storage"
	"github.com/novelreads/novelreads-server/internal/store"
)

// testEnv wires real services over a temp-dir store, the way the server
// runs them.
type testEnv struct {
	store    *store.Store
	index    *search.Index
	trackers *reading.Registry

	auth     *service.AuthService
	sessions *service.SessionService
	profiles *service.ProfileService
	catalog  *service.CatalogService
	reading  *service.ReadingService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dataDir := t.TempDir()

	s, err := store.New(filepath.Join(dataDir, "db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	idx, err := search.NewIndex(search.Options{DataPath: dataDir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	avatars, err := storage.NewAvatars(dataDir)
	require.NoError(t, err)

	key := make([]byte, 32)
	copy(key, "0123456789abcdef0123456789abcdef")
	tokens, err := auth.NewTokenService(key, 15*time.Minute, 720*time.Hour)
	require.NoError(t, err)

	trackers := reading.NewRegistry(s, nil)
	t.Cleanup(func() { _ = trackers.Shutdown(context.Background()) })

	sessions := service.NewSessionService(s, tokens, nil)
	authSvc := service.NewAuthService(s, tokens, sessions, trackers, nil)
	profiles := service.NewProfileService(s, avatars, trackers, nil)
	catalog := service.NewCatalogService(s, idx, nil)
	readingSvc := service.NewReadingService(trackers, catalog, nil)

	return &testEnv{
		store:    s,
		index:    idx,
		trackers: trackers,
		auth:     authSvc,
		sessions: sessions,
		profiles: profiles,
		catalog:  catalog,
		reading:  readingSvc,
	}
}

// register creates an account and returns the auth response.
func (e *testEnv) register(t *testing.T, email, username string) *service.AuthResponse {
	t.Helper()

	resp, err := e.auth.Register(context.Background(), service.RegisterRequest{
		Email:    email,
		Password: "correct horse battery",
		Username: username,
	})
	require.NoError(t, err)
	return resp
}

// seedBook puts a catalog book in the store and index.
func (e *testEnv) seedBook(t *testing.T, id, title string, pages int) {
	t.Helper()

	now := time.Now()
	book := &domain.Book{
		ID:        id,
		Title:     title,
		Author:    "Test Author",
		Pages:     pages,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, e.store.Books.Create(context.Background(), id, book))
	require.NoError(t, e.index.IndexBook(book))
}
