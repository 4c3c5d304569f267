// Package httpapi serves the admin dashboard over JSON.
package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"

	"github.com/kramnica/marketplace-manager/internal/auth"
	"github.com/kramnica/marketplace-manager/internal/dashboard"
	"github.com/kramnica/marketplace-manager/internal/dependency"
)

// Config is the configuration for the http server
type Config struct {
	Port           string   `mapstructure:"port"`
	Address        string   `mapstructure:"address"`
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// Server is the http server
type Server struct {
	hs   *http.Server
	c    *Config
	done chan struct{}

	dashboard *dashboard.Service
	auth      *auth.Auth
	repo      dependency.Repository
}

// New creates a new server
func New(c *Config, ds *dashboard.Service, a *auth.Auth, repo dependency.Repository) *Server {
	return &Server{
		c:         c,
		done:      make(chan struct{}),
		dashboard: ds,
		auth:      a,
		repo:      repo,
	}
}

// Done returns a channel that is closed when the http server exits.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()

	c := cors.New(cors.Options{
		AllowedOrigins: s.c.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	r.Use(c.Handler)
	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/health", s.handleHealth)

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(s.auth.Verifier)
		r.Use(s.auth.Authenticator)
		r.Get("/dashboard", s.handleDashboard)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		render.Render(w, r, ErrInternalServerError(err))
		return
	}
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.FromContext(r.Context())
	if err != nil {
		render.Render(w, r, ErrUnauthorized(err))
		return
	}

	filters := dashboard.ResolveFilters(r.URL.Query())

	d, err := s.dashboard.GetDashboard(r.Context(), identity, filters)
	if err != nil {
		slog.Default().ErrorContext(r.Context(), "can't build dashboard",
			slog.String("err", err.Error()),
		)
		render.Render(w, r, ErrInternalServerError(err))
		return
	}
	render.JSON(w, r, d)
}

// Start brings the listener up and returns; the server runs until Stop or a
// listener error, either of which closes Done.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%s", s.c.Address, s.c.Port)
	s.hs = &http.Server{
		Addr:    addr,
		Handler: s.router(),
	}

	go func() {
		slog.Default().InfoContext(ctx, fmt.Sprintf("marketplace-manager listener on: http://%v", addr))
		err := s.hs.ListenAndServe()
		if err == http.ErrServerClosed {
			slog.Default().InfoContext(ctx, "http server returned")
		} else if err != nil {
			slog.Default().ErrorContext(ctx, "http server exited with an error",
				slog.String("err", err.Error()),
			)
		}
		close(s.done)
	}()

	return nil
}

// Stop shuts the server down, draining in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	if s.hs == nil {
		return nil
	}
	return s.hs.Shutdown(ctx)
}
