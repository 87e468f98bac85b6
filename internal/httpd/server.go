// Package httpd exposes the dispatcher over HTTP: one JSON-RPC message per
// POST /rpc body, plus a health endpoint. JSON-RPC failures are payload
// errors, not HTTP errors; the status stays 200 for every dispatched
// request.
package httpd

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/anvilmcp/anvil/internal/logger"
	"github.com/anvilmcp/anvil/internal/mcp"
	"github.com/anvilmcp/anvil/pkg/protocol"
)

var log = logger.ForComponent("httpd")

type Config struct {
	Addr       string
	Token      string
	ServerName string
	Version    string
	InstanceID string
}

type Server struct {
	cfg     Config
	server  *mcp.Server
	router  *chi.Mux
	httpSrv *http.Server
	started time.Time
}

func New(cfg Config, server *mcp.Server) *Server {
	s := &Server{
		cfg:     cfg,
		server:  server,
		router:  chi.NewRouter(),
		started: time.Now(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Get("/health", s.handleHealth)

	s.router.Group(func(r chi.Router) {
		r.Use(s.auth)
		r.Post("/rpc", s.handleRPC)
	})

	return s
}

// Router exposes the root handler for tests and embedding.
func (s *Server) Router() http.Handler { return s.router }

// Start serves until Shutdown or a listener error. It blocks.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("http gateway listening", "addr", s.cfg.Addr)
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests until the deadline.
func (s *Server) Shutdown(timeout time.Duration) error {
	if s.httpSrv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Token == "" {
			next.ServeHTTP(w, r)
			return
		}
		got := []byte(r.Header.Get("Authorization"))
		want := []byte("Bearer " + s.cfg.Token)
		if subtle.ConstantTimeCompare(got, want) != 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":      "ok",
		"server":      s.cfg.ServerName,
		"version":     s.cfg.Version,
		"instance_id": s.cfg.InstanceID,
		"uptime_ms":   time.Since(s.started).Milliseconds(),
		"tools":       s.server.Registry().Len(),
	})
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req protocol.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		json.NewEncoder(w).Encode(protocol.NewParseErrorResponse())
		return
	}

	resp := s.server.Handle(r.Context(), &req)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Warn("response write failed", "method", req.Method, "error", err)
	}
}

// requestLogger replaces chi's stdout logger: stdout is the protocol
// channel in stdio mode, so access logs go through slog on stderr.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
