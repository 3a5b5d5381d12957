// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/citesearch/core"
	"github.com/poiesic/citesearch/pipeline"
	"github.com/poiesic/citesearch/resilience"
)

const (
	defaultAddr           = ":8080"
	defaultRequestTimeout = 30 * time.Second
	shutdownGrace         = 10 * time.Second
)

// Searcher is the coordinator surface the server needs.
type Searcher interface {
	Execute(ctx context.Context, query *core.Query) (*core.SearchResult, error)
	State(dependency string) resilience.CircuitState
}

// Server exposes the search pipeline over HTTP.
type Server struct {
	searcher       Searcher
	addr           string
	requestTimeout time.Duration
	defaults       QueryDefaults
	logger         *slog.Logger
	httpServer     *http.Server
}

// QueryDefaults fill request fields the caller omitted.
type QueryDefaults struct {
	MaxResults     int
	Style          core.CitationStyle
	FilterEnabled  bool
	MinRelevance   float64
	IncludeContext bool
}

// DefaultQueryDefaults returns the standard request defaults.
func DefaultQueryDefaults() QueryDefaults {
	return QueryDefaults{
		MaxResults:     10,
		Style:          core.StyleAPA,
		FilterEnabled:  true,
		MinRelevance:   0.7,
		IncludeContext: true,
	}
}

// ServerOption configures a Server.
type ServerOption func(*Server) error

// WithAddr sets the listen address. Default is ":8080".
func WithAddr(addr string) ServerOption {
	return func(s *Server) error {
		if addr != "" {
			s.addr = addr
		}
		return nil
	}
}

// WithRequestTimeout bounds one search request end to end.
// Default is 30 seconds.
func WithRequestTimeout(timeout time.Duration) ServerOption {
	return func(s *Server) error {
		if timeout <= 0 {
			return errors.New("request timeout must be positive")
		}
		s.requestTimeout = timeout
		return nil
	}
}

// WithQueryDefaults overrides the request defaults.
func WithQueryDefaults(defaults QueryDefaults) ServerOption {
	return func(s *Server) error {
		s.defaults = defaults
		return nil
	}
}

// WithServerLogger sets a custom logger.
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewServer creates the HTTP server around a searcher.
func NewServer(searcher Searcher, opts ...ServerOption) (*Server, error) {
	if searcher == nil {
		return nil, errors.New("searcher is required")
	}

	s := &Server{
		searcher:       searcher,
		addr:           defaultAddr,
		requestTimeout: defaultRequestTimeout,
		defaults:       DefaultQueryDefaults(),
		logger:         slog.Default().With("component", "httpapi"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.logRequests(s.routes()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      s.requestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	return mux
}

// ListenAndServe serves until the context is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// logRequests is the request logging middleware.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"elapsed", time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Dependencies the health endpoint reports on.
var healthDependencies = pipeline.Dependencies()
