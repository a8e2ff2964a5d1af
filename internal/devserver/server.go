// Package devserver implements the remote dataset API over a local SQLite
// store. It backs `mldata serve` and the integration tests.
//
// Dataset prefixes may contain at most one "/" (owner/name). The segment
// "elements" is reserved and cannot be used as a dataset name.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/leefowlercu/mldata/internal/metrics"
)

// DefaultPageSize is used when Config.PageSize is not positive.
const DefaultPageSize = 20

// maxContentSize bounds uploaded element content.
const maxContentSize = 256 << 20

// Config holds configuration for the HTTP server.
type Config struct {
	Bind     string
	Port     int
	PageSize int
}

// Server serves the dataset API. It is safe for concurrent use.
type Server struct {
	mu       sync.RWMutex
	store    *Store
	config   Config
	server   *http.Server
	router   *chi.Mux
	logger   *slog.Logger
	listener net.Listener
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a server over store.
func NewServer(store *Store, config Config, opts ...Option) *Server {
	if config.PageSize <= 0 {
		config.PageSize = DefaultPageSize
	}

	s := &Server{
		store:  store,
		config: config,
		router: chi.NewRouter(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the HTTP routes. Each dataset route is registered
// for one-segment and two-segment prefixes.
func (s *Server) setupRoutes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.instrument)

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Handle("/metrics", metrics.Handler())

	s.router.Post("/datasets", s.handleCreateDataset)

	for _, base := range []string{"/datasets/{p0}", "/datasets/{p0}/{p1}"} {
		s.router.Get(base, s.handleGetDataset)
		s.router.Patch(base, s.handleUpdateDataset)
		s.router.Get(base+"/elements", s.handleListElements)
		s.router.Post(base+"/elements", s.handleCreateElement)
		s.router.Get(base+"/elements/{id}", s.handleGetElement)
		s.router.Patch(base+"/elements/{id}", s.handleUpdateElement)
		s.router.Delete(base+"/elements/{id}", s.handleDeleteElement)
		s.router.Get(base+"/elements/{id}/content", s.handleGetContent)
		s.router.Put(base+"/elements/{id}/content", s.handlePutContent)
	}
}

// instrument records request metrics by route pattern and logs each request.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		metrics.RecordServerRequest(route, status)
		s.logger.Debug("served request",
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten())
	})
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.router
}

// Addr returns the address the server listens on once Start has bound it.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return net.JoinHostPort(s.config.Bind, strconv.Itoa(s.config.Port))
	}
	return s.listener.Addr().String()
}

// Start starts the HTTP server and blocks until it's stopped.
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Bind, strconv.Itoa(s.config.Port))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s; %w", addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.server = &http.Server{
		Handler: s.router,
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}
	server := s.server
	s.mu.Unlock()

	s.logger.Info("development server listening", "addr", ln.Addr().String(), "page_size", s.config.PageSize)

	if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error; %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	server := s.server
	s.mu.RUnlock()

	if server == nil {
		return nil
	}

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown http server; %w", err)
	}

	return nil
}

// prefixParam rebuilds the dataset prefix from the route parameters.
func prefixParam(r *http.Request) (string, error) {
	p0, err := url.PathUnescape(chi.URLParam(r, "p0"))
	if err != nil {
		return "", err
	}
	raw := chi.URLParam(r, "p1")
	if raw == "" {
		return p0, nil
	}
	p1, err := url.PathUnescape(raw)
	if err != nil {
		return "", err
	}
	return p0 + "/" + p1, nil
}

func idParam(r *http.Request) (string, error) {
	return url.PathUnescape(chi.URLParam(r, "id"))
}

// scope resolves the prefix and, when withID is set, the element id. It
// writes a 400 and returns false on malformed parameters.
func scope(w http.ResponseWriter, r *http.Request, withID bool) (prefix, id string, ok bool) {
	prefix, err := prefixParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid dataset prefix")
		return "", "", false
	}
	if withID {
		id, err = idParam(r)
		if err != nil || id == "" {
			writeJSONError(w, http.StatusBadRequest, "invalid element id")
			return "", "", false
		}
	}
	return prefix, id, true
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeStoreError maps store errors onto HTTP statuses.
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDatasetNotFound), errors.Is(err, ErrElementNotFound):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrDatasetExists):
		writeJSONError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error("store operation failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
