package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/sidetoc"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ShutdownTimeout bounds graceful shutdown in Serve.
const ShutdownTimeout = 5 * time.Second

// Server exposes a live topic list to an external UI: reading the list in
// any view with an optional search, moving the session's search term,
// forcing a rescan, revealing topics in the page and annotating them.
type Server struct {
	router      chi.Router
	session     sidetoc.Session
	annotations sidetoc.AnnotationService
	log         *slog.Logger
}

// NewServer creates and configures the HTTP server. annotations may be nil,
// in which case annotation routes answer 503 and topics carry no labels.
func NewServer(session sidetoc.Session, annotations sidetoc.AnnotationService, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		session:     session,
		annotations: annotations,
		log:         log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Get("/topics", s.handleListTopics)
	r.Post("/search", s.handleSearch)
	r.Post("/rescan", s.handleRescan)

	r.Route("/topics/{index}", func(r chi.Router) {
		r.Post("/reveal", s.handleReveal)
		r.Put("/label", s.handleSetLabel)
		r.Post("/check", s.handleToggleChecked)
	})

	s.router = r
}

// Serve listens on l until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(l) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeError maps an application error code to an HTTP status.
// Internal errors are logged and reported without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := sidetoc.ErrorCode(err)
	status := http.StatusInternalServerError
	switch code {
	case sidetoc.EINVALID:
		status = http.StatusBadRequest
	case sidetoc.ENOTFOUND:
		status = http.StatusNotFound
	case sidetoc.ECONFLICT:
		status = http.StatusConflict
	case sidetoc.EUNAVAILABLE:
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "path", r.URL.Path, "err", err)
	}
	jsonError(w, sidetoc.ErrorMessage(err), status)
}
