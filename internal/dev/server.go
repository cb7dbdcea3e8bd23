package dev

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed client.js
var clientScript []byte

const clientTag = `<script id="lumen-preview" src="/_lumen/client.js"></script>`

// ServerOptions configures a Server.
type ServerOptions struct {
	// Addr is the listen address.
	Addr string

	// MetricsPath serves Gatherer when both are set.
	MetricsPath string
	Gatherer    prometheus.Gatherer

	Logger *slog.Logger
}

// Server serves a session over HTTP.
type Server struct {
	session *Session
	hub     *Hub
	opts    ServerOptions
	logger  *slog.Logger
	router  chi.Router
}

// NewServer creates a server for session. Browser traffic on the
// WebSocket endpoint goes through hub.
func NewServer(session *Session, hub *Hub, opts ServerOptions) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Server{
		session: session,
		hub:     hub,
		opts:    opts,
		logger:  opts.Logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handlePage)
	r.Route("/_lumen", func(r chi.Router) {
		r.Get("/client.js", s.handleClient)
		r.Get("/state", s.handleState)
		r.Post("/reload", s.handleReload)
		r.Handle("/ws", s.hub)
	})
	if s.opts.MetricsPath != "" && s.opts.Gatherer != nil {
		r.Handle(s.opts.MetricsPath, promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("dev: request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	html, version := s.session.HTML()
	if version == 0 {
		http.Error(w, "no document rendered yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(injectClient(html)))
}

// injectClient adds the preview script to the end of the body.
func injectClient(html string) string {
	if i := strings.LastIndex(html, "</body>"); i >= 0 {
		return html[:i] + clientTag + html[i:]
	}
	return html + clientTag
}

func (s *Server) handleClient(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	_, _ = w.Write(clientScript)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	state, err := s.session.State(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Reload(r.Context()); err != nil {
		s.hub.NotifyError(err)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("dev: preview running", "url", "http://"+ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		s.hub.Close()
		return err
	}
}
