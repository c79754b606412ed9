// Package server exposes the JSON API used by the web client.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pawelsloboda5/draft-spark-compose/internal/auth"
	"github.com/pawelsloboda5/draft-spark-compose/internal/cache"
	"github.com/pawelsloboda5/draft-spark-compose/internal/database"
	"github.com/pawelsloboda5/draft-spark-compose/internal/generate"
	"github.com/pawelsloboda5/draft-spark-compose/internal/logging"
	"github.com/pawelsloboda5/draft-spark-compose/internal/metrics"
	"github.com/pawelsloboda5/draft-spark-compose/internal/profile"
	"github.com/pawelsloboda5/draft-spark-compose/internal/trends"
)

const (
	shutdownTimeout = 10 * time.Second
	warmupTimeout   = 30 * time.Second
)

// Deps are the collaborators the server routes requests to.
type Deps struct {
	DB             *database.DB
	Profiles       *profile.Service
	Generator      *generate.Generator
	Trends         *trends.Resolver
	Verifier       *auth.Verifier
	Cache          *cache.ProfileCache
	AllowedOrigins string
}

// Server is the HTTP server for the API.
type Server struct {
	db        *database.DB
	profiles  *profile.Service
	generator *generate.Generator
	trends    *trends.Resolver
	verifier  *auth.Verifier
	origins   string
	mux       *http.ServeMux
	handler   http.Handler
	log       *zap.Logger

	warmups sync.WaitGroup
}

// New creates a new Server and subscribes it to profile changes.
func New(d Deps) *Server {
	s := &Server{
		db:        d.DB,
		profiles:  d.Profiles,
		generator: d.Generator,
		trends:    d.Trends,
		verifier:  d.Verifier,
		origins:   d.AllowedOrigins,
		mux:       http.NewServeMux(),
		log:       logging.Named("server"),
	}
	if s.origins == "" {
		s.origins = "*"
	}

	s.routes()
	s.handler = s.requestID(s.logRequests(s.cors(s.mux)))

	s.profiles.Subscribe(func(ctx context.Context, p database.Profile) {
		d.Cache.Invalidate(ctx, p.UserID)
	})
	s.profiles.Subscribe(s.warmTrends)
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", metrics.Handler())

	s.mux.Handle("POST /api/generate", s.authed(s.handleGenerate))
	s.mux.Handle("GET /api/trends", s.authed(s.handleTrends))
	s.mux.Handle("POST /api/trends", s.authed(s.handleTrends))

	s.mux.Handle("GET /api/profile", s.authed(s.handleGetProfile))
	s.mux.Handle("PUT /api/profile", s.authed(s.handlePutProfile))
	s.mux.Handle("GET /api/profile/exists", s.authed(s.handleProfileExists))

	s.mux.Handle("GET /api/samples", s.authed(s.handleListSamples))
	s.mux.Handle("POST /api/samples", s.authed(s.handleAddSample))
	s.mux.Handle("DELETE /api/samples/{id}", s.authed(s.handleDeleteSample))

	s.mux.Handle("GET /api/posts", s.authed(s.handleListPosts))
	s.mux.Handle("DELETE /api/posts/{id}", s.authed(s.handleDeletePost))
	s.mux.Handle("PUT /api/posts/{id}/favorite", s.authed(s.handleFavoritePost))
}

// warmTrends refreshes the trend cache for a new niche in the background.
func (s *Server) warmTrends(_ context.Context, p database.Profile) {
	s.warmups.Add(1)
	go func() {
		defer s.warmups.Done()
		ctx, cancel := context.WithTimeout(context.Background(), warmupTimeout)
		defer cancel()
		got := s.trends.Resolve(ctx, p.Niche)
		s.log.Debug("warmed trends", zap.String("niche", p.Niche), zap.Int("count", len(got)))
	}()
}

// Wait blocks until background trend warm-ups have finished.
func (s *Server) Wait() {
	s.warmups.Wait()
}

// Serve listens on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", zap.String("address", fmt.Sprintf("http://%s", addr)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	s.Wait()
	s.log.Info("server exited")
	return nil
}
