package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/wordbook/internal/infrastructure/config"
	"github.com/eslsoft/wordbook/internal/usecase"
)

// Server represents the local HTTP adapter
type Server struct {
	config     *config.Config
	httpServer *http.Server
	logger     logrus.FieldLogger
	store      usecase.EntryStore
	lookup     usecase.ExampleLookup

	// closed on Shutdown so event streams end instead of holding it open
	closing   chan struct{}
	closeOnce sync.Once
}

// NewServer creates a new server instance. lookup may be nil, in which case the
// lookup endpoint answers 503.
func NewServer(cfg *config.Config, logger logrus.FieldLogger, store usecase.EntryStore, lookup usecase.ExampleLookup) *Server {
	s := &Server{
		config:  cfg,
		logger:  logger.WithField("component", "http"),
		store:   store,
		lookup:  lookup,
		closing: make(chan struct{}),
	}
	s.httpServer = &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/entries", s.listEntries)
	mux.HandleFunc("POST /api/entries", s.createEntry)
	mux.HandleFunc("GET /api/entries/{index}", s.getEntry)
	mux.HandleFunc("PUT /api/entries/{index}", s.updateEntry)
	mux.HandleFunc("DELETE /api/entries/{index}", s.deleteEntry)
	mux.HandleFunc("GET /api/lookup/{word}", s.lookupExample)
	mux.HandleFunc("GET /api/events", s.streamEvents)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	c := cors.New(cors.Options{
		AllowedOrigins: s.config.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
	})
	return AccessLog(s.logger, c.Handler(mux))
}

// Start listens on the configured address and blocks until the server stops.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(lis)
}

// Serve accepts connections on lis until Shutdown is called.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Infof("HTTP server starting on %s", lis.Addr())

	if err := s.httpServer.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve HTTP: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	s.closeOnce.Do(func() { close(s.closing) })

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown HTTP server: %w", err)
	}

	s.logger.Info("Server shutdown complete")
	return nil
}
