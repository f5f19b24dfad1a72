// Package api provides the HTTP API server and handlers for the Novelreads application.
package api

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/novelreads/novelreads-server/internal/http/response"
	"github.com/novelreads/novelreads-server/internal/sse"
	"github.com/novelreads/novelreads-server/internal/storage"
	"github.com/novelreads/novelreads-server/internal/store"
)

// Login attempts allowed per IP per minute.
const loginRatePerMinute = 10

// Server holds dependencies for HTTP handlers.
type Server struct {
	store        *store.Store
	services     *Services
	avatars      *storage.Blobs
	sseHandler   *sse.Handler
	sseManager   *sse.Manager
	router       *chi.Mux
	api          huma.API
	loginLimiter *RateLimiter
	logger       *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(store *store.Store, services *Services, avatars *storage.Blobs, sseHandler *sse.Handler, sseManager *sse.Manager, logger *slog.Logger) *Server {
	s := &Server{
		store:        store,
		services:     services,
		avatars:      avatars,
		sseHandler:   sseHandler,
		sseManager:   sseManager,
		router:       chi.NewRouter(),
		loginLimiter: NewRateLimiter(loginRatePerMinute, time.Minute, loginRatePerMinute),
		logger:       logger,
	}

	s.setupMiddleware()

	config := huma.DefaultConfig("Novelreads API", "1.0.0")
	config.Info.Description = "Bookshelf and reading progress tracking server"
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	s.api = humachi.New(s.router, config)

	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerProfileRoutes()
	s.registerCatalogRoutes()
	s.registerReadingRoutes()
	s.setupStreamRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(s.loginRateLimitMiddleware)
}

// setupStreamRoutes wires the non-huma routes: the SSE event stream and
// avatar blob serving. Both bypass the OpenAPI layer since they stream
// raw bytes.
func (s *Server) setupStreamRoutes() {
	// EventSource clients cannot set headers, so the stream also accepts
	// the access token as a query parameter.
	s.sseHandler.UserID = func(r *http.Request) string {
		token := r.URL.Query().Get("token")
		if auth := r.Header.Get("Authorization"); auth != "" {
			if len(auth) > 7 && auth[:7] == "Bearer " {
				token = auth[7:]
			}
		}
		if token == "" {
			return ""
		}
		user, _, err := s.services.Auth.VerifyAccessToken(r.Context(), token)
		if err != nil {
			return ""
		}
		return user.ID
	}

	s.router.Get("/api/v1/events", s.sseHandler.ServeHTTP)
	s.router.Get("/api/v1/files/avatars/{file}", s.handleServeAvatar)
}

// handleServeAvatar serves a stored avatar image.
// GET /api/v1/files/avatars/{file}
func (s *Server) handleServeAvatar(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	if file == "" {
		response.BadRequest(w, "File name is required", s.logger)
		return
	}

	// Blobs are keyed without the .jpg extension the URL carries.
	id := file
	if len(id) > 4 && id[len(id)-4:] == ".jpg" {
		id = id[:len(id)-4]
	}

	data, err := s.avatars.Get(id)
	if err != nil {
		response.NotFound(w, "Avatar not found", s.logger)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", CacheOneDayPrivate)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Debug("Failed to write avatar response", "error", err)
	}
}
