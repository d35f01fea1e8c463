package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/xcono/slimrest/schema"
	"github.com/xcono/slimrest/web/database"
	"github.com/xcono/slimrest/web/handlers"
	"github.com/zeromicro/go-zero/core/logx"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// Server serves every configured resource over HTTP
type Server struct {
	config schema.Config
	stores map[string]*database.Store
	router *handlers.Router
	http   *http.Server
}

// NewServer validates c and wires one store per service. Stores connect on first use.
func NewServer(c schema.Config) (*Server, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	stores := make(map[string]*database.Store, len(c.Services))
	for name, svc := range c.Services {
		stores[name] = database.Open(svc.Database.WithDefaults())
	}

	resources := make([]*handlers.Resource, 0)
	for name, res := range c.Resources() {
		resources = append(resources, handlers.NewResource(name, res.Schema, stores[res.Service]))
	}

	s := &Server{
		config: c,
		stores: stores,
		router: handlers.NewRouter(c.Name, c.Version, resources...),
	}
	s.http = &http.Server{
		Addr:              c.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler returns the router wrapped in the request middleware
func (s *Server) Handler() http.Handler {
	return withRequestLog(withCORS(s.router))
}

// Store returns the store of service
func (s *Server) Store(service string) (*database.Store, bool) {
	store, ok := s.stores[service]
	return store, ok
}

// Start listens until ctx is done, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logx.Infof("starting %s %s on %s with %d resources", s.config.Name, s.config.Version, s.http.Addr, len(s.config.Resources()))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", s.http.Addr, err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logx.Info("shutting down")
		return s.http.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close releases every store
func (s *Server) Close() error {
	var result *multierror.Error
	for name, store := range s.stores {
		if err := store.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("service %s: %w", name, err))
		}
	}
	return result.ErrorOrNil()
}

// StartServer serves c until ctx is done
func StartServer(ctx context.Context, c schema.Config) error {
	s, err := NewServer(c)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.Start(ctx)
}
