// Package httpapi exposes the ingestion pipeline over HTTP.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/conlan-group/listings-cli/internal/config"
	"github.com/conlan-group/listings-cli/internal/store"
	"github.com/conlan-group/listings-cli/pkg/geocode"
)

// Fetcher retrieves the raw HTML of a listing page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Resolver turns a free-form address into coordinates.
type Resolver interface {
	Resolve(ctx context.Context, address string) geocode.Resolution
}

// Server wires the pipeline components behind a chi router.
type Server struct {
	store    store.Store
	fetcher  Fetcher
	resolver Resolver
	cfg      *config.Config
	limits   *rateLimiter
}

func NewServer(cfg *config.Config, st store.Store, fetcher Fetcher, resolver Resolver) *Server {
	return &Server{
		store:    st,
		fetcher:  fetcher,
		resolver: resolver,
		cfg:      cfg,
		limits:   newRateLimiter(cfg.RateLimit),
	}
}

// Router builds the HTTP handler with middleware and routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-API-Key"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.limits.middleware(classGeocode))
		r.Post("/listings/from-url", s.handleIngest)
		r.Post("/geocode", s.handleGeocode)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.limits.middleware(classRead))
		r.Get("/homes", s.handleListHomes)
		r.Get("/homes/{id}", s.handleGetHome)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireAPIKey)
		r.Use(s.limits.middleware(classWrite))
		r.Post("/homes", s.handleSaveHome)
		r.Delete("/homes/{id}", s.handleDeleteHome)
	})

	return r
}

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zap.L().Warn("server shutdown", zap.Error(err))
		}
	}()

	zap.L().Info("starting server", zap.Int("port", s.cfg.Server.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "httpapi: listen")
	}
	return nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
