// Package server provides the HTTP server for webhook update delivery.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/skel-labs/skelbot/internal/event"
	"github.com/skel-labs/skelbot/internal/telegram"
)

// Handler processes one Telegram update.
type Handler interface {
	HandleUpdate(ctx context.Context, upd telegram.Update)
}

// InitFunc builds the update handler on first use. Webhook deployments
// often run on platforms that spin instances up per request, so the
// heavier wiring (bot identity lookup, agent client) is deferred until
// the first update arrives.
type InitFunc func(ctx context.Context) (Handler, error)

// Config holds server configuration.
type Config struct {
	Port         int
	EnableCORS   bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:         8080,
		EnableCORS:   true,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // no write timeout, /debug/event streams
	}
}

// Server is the HTTP server.
type Server struct {
	config  *Config
	router  *chi.Mux
	httpSrv *http.Server
	bus     *event.Bus
	init    InitFunc

	mu      sync.RWMutex
	handler Handler
}

// New creates a server. bus may be nil when the debug event stream is
// not wanted.
func New(cfg *Config, init InitFunc, bus *event.Bus) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s := &Server{
		config: cfg,
		router: chi.NewRouter(),
		bus:    bus,
		init:   init,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// NewWithHandler creates a server around an already built handler.
func NewWithHandler(cfg *Config, h Handler, bus *event.Bus) *Server {
	s := New(cfg, nil, bus)
	s.handler = h
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RealIP)

	if s.config.EnableCORS {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			MaxAge:         300,
		}))
	}
}

func (s *Server) setupRoutes() {
	s.router.Post("/webhook", s.handleWebhook)
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/debug/event", s.debugEvents)
}

// updateHandler returns the handler, building it on first call.
func (s *Server) updateHandler(ctx context.Context) (Handler, error) {
	s.mu.RLock()
	h := s.handler
	s.mu.RUnlock()
	if h != nil {
		return h, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handler != nil {
		return s.handler, nil
	}
	if s.init == nil {
		return nil, fmt.Errorf("no update handler configured")
	}
	h, err := s.init(ctx)
	if err != nil {
		return nil, err
	}
	s.handler = h
	return h, nil
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return s.httpSrv.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// Router returns the Chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
