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


// Package server exposes the User and Account stores over HTTP.
//
// The server is agnostic of the persistence backend: it only sees the
// storage.Store contract. Each kind is served under its table name:
//
//	GET    /users          HTML listing, or JSON with "Accept: application/json"
//	POST   /users          create from a JSON body {"id"?, "fullname"}
//	PUT    /users/{id}     replace the fullname
//	DELETE /users/{id}     remove
//
// Store failures become a bare 500 response; the cause is only logged.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/poiesic/crudstrategy/core"
	"github.com/poiesic/crudstrategy/storage"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	maxBodyBytes      = 1 << 20
)

type Server struct {
	users        storage.Store[core.User]
	accounts     storage.Store[core.Account]
	backend      string
	version      string
	templateGlob string
	templates    *template.Template
	logger       *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithBackend sets the backend name shown on HTML pages.
func WithBackend(name string) Option {
	return func(s *Server) error {
		s.backend = name
		return nil
	}
}

// WithVersion sets the version shown on HTML pages.
func WithVersion(version string) Option {
	return func(s *Server) error {
		s.version = version
		return nil
	}
}

// WithTemplateGlob loads HTML templates from disk instead of the embedded
// defaults. The files must define "index.html" and "list.html".
func WithTemplateGlob(glob string) Option {
	return func(s *Server) error {
		s.templateGlob = glob
		return nil
	}
}

// New creates a server for the given stores. Stores are expected to be safe
// for concurrent use; wrap plain backends with storage.Locked.
func New(users storage.Store[core.User], accounts storage.Store[core.Account], opts ...Option) (*Server, error) {
	if users == nil {
		return nil, ErrUserStoreRequired
	}
	if accounts == nil {
		return nil, ErrAccountStoreRequired
	}

	s := &Server{
		users:    users,
		accounts: accounts,
		version:  "dev",
		logger:   slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	tmpl, err := loadTemplates(s.templateGlob)
	if err != nil {
		return nil, err
	}
	s.templates = tmpl

	return s, nil
}

// Handler returns the routing handler for all endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealthcheck)
	newResource(s, core.UserKind, s.users).register(mux)
	newResource(s, core.AccountKind, s.accounts).register(mux)
	return mux
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("error listening on address %q: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully, waiting up to ten seconds for in-flight requests.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.logger.Info("listening", "addr", ln.Addr().String(), "backend", s.backend)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index.html", pageData{
		Title:   "Index Page",
		Version: s.version,
		Backend: s.backend,
		Kinds:   []string{core.UserKind.Table, core.AccountKind.Table},
	})
}
