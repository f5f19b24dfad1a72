package api

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/novelreads/novelreads-server/internal/auth"
	"github.com/novelreads/novelreads-server/internal/domain"
	"github.com/novelreads/novelreads-server/internal/reading"
	"github.com/novelreads/novelreads-server/internal/search"
	"github.com/novelreads/novelreads-server/internal/service"
	"github.com/novelreads/novelreads-server/internal/sse"
	"github.com/novelreads/novelreads-server/internal/storage"
	"github.com/novelreads/novelreads-server/internal/store"
)

// setupTestServer wires a full server over a temp-dir store and index.
func setupTestServer(t *testing.T) *Server {
	t.Helper()

	dataDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

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

	sseManager := sse.NewManager(logger)
	sseHandler := sse.NewHandler(sseManager, logger)

	sessions := service.NewSessionService(s, tokens, nil)
	authSvc := service.NewAuthService(s, tokens, sessions, trackers, nil)
	profiles := service.NewProfileService(s, avatars, trackers, nil)
	catalog := service.NewCatalogService(s, idx, nil)
	readingSvc := service.NewReadingService(trackers, catalog, nil)

	services := &Services{
		Auth:    authSvc,
		Session: sessions,
		Profile: profiles,
		Catalog: catalog,
		Reading: readingSvc,
	}

	return NewServer(s, services, avatars, sseHandler, sseManager, logger)
}

// doRequest performs an HTTP request against the server and returns the recorder.
func doRequest(t *testing.T, server *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

// decodeBody unmarshals a response body into dest.
func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest))
}

// registerUser registers a test account over HTTP and returns the auth response.
func registerUser(t *testing.T, server *Server, email, username string) AuthResponse {
	t.Helper()

	w := doRequest(t, server, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{
		Email:    email,
		Password: "correct horse battery",
		Username: username,
	})
	require.Equal(t, http.StatusOK, w.Code, "register failed: %s", w.Body.String())

	var resp AuthResponse
	decodeBody(t, w, &resp)
	return resp
}

// seedBook puts a catalog book in the store and search index.
func seedBook(t *testing.T, server *Server, id, title string, pages int) {
	t.Helper()

	book := &domain.Book{
		ID:        id,
		Title:     title,
		Author:    "Test Author",
		Pages:     pages,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, server.store.Books.Create(context.Background(), id, book))
	require.NoError(t, server.services.Catalog.ReindexAll(context.Background()))
}
