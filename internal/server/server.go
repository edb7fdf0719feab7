// Package server exposes a backlog over a JSON HTTP API for browser front
// ends. Listings include task copies read from remote branches, the same
// way the CLI shows them.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/josephgoksu/backlog/internal/task"
	"github.com/josephgoksu/backlog/models"
)

// DefaultPort is used when no port is configured.
const DefaultPort = 6420

// RecordStore reads the project documents and decisions.
type RecordStore interface {
	ListDocuments() ([]models.Document, error)
	GetDocument(id string) (models.Document, error)
	ListDecisions() ([]models.Decision, error)
	GetDecision(id string) (models.Decision, error)
}

// Options configures a Server.
type Options struct {
	Host string
	Port int
	// Origins are the browser origins allowed by CORS. The server's own
	// localhost origins are always allowed.
	Origins []string
	Info    Info
}

type Server struct {
	tasks   *task.Service
	records RecordStore
	info    Info
	origins map[string]struct{}
	server  *http.Server
}

// New builds a server for the given services. It does not listen until
// Start is called.
func New(tasks *task.Service, records RecordStore, opts Options) *Server {
	if opts.Port == 0 {
		opts.Port = DefaultPort
	}
	if opts.Host == "" {
		opts.Host = "localhost"
	}

	s := &Server{
		tasks:   tasks,
		records: records,
		info:    opts.Info,
		origins: make(map[string]struct{}),
	}
	s.info.Statuses = tasks.Statuses()
	s.info.DoneStatus = tasks.DoneStatus()

	for _, host := range []string{"localhost", "127.0.0.1"} {
		s.origins[fmt.Sprintf("http://%s:%d", host, opts.Port)] = struct{}{}
	}
	for _, o := range opts.Origins {
		s.origins[o] = struct{}{}
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Handler:           s.registerRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Addr is the listen address.
func (s *Server) Addr() string { return s.server.Addr }

// Handler returns the routed API handler.
func (s *Server) Handler() http.Handler { return s.server.Handler }

// Start serves in a goroutine. Listen errors are sent on errChan.
func (s *Server) Start(wg *sync.WaitGroup, errChan chan<- error) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("API server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
