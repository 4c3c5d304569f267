package app

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/kramnica/marketplace-manager/config"
	httpapi "github.com/kramnica/marketplace-manager/internal/api/http"
	"github.com/kramnica/marketplace-manager/internal/auth"
	"github.com/kramnica/marketplace-manager/internal/cache"
	"github.com/kramnica/marketplace-manager/internal/dashboard"
	"github.com/kramnica/marketplace-manager/internal/dependency"
	"github.com/kramnica/marketplace-manager/internal/store"
)

// App is the main application
type App struct {
	hs    *httpapi.Server
	db    dependency.Repository
	redis *cache.Redis
	c     *config.Config
	done  chan struct{}
}

// New returns a new instance of App
func New(c *config.Config) *App {
	return &App{
		c:    c,
		done: make(chan struct{}),
	}
}

// Start starts the app
func (a *App) Start(ctx context.Context) error {
	var err error
	slog.Default().InfoContext(ctx, "starting marketplace manager")

	// dashboard consumers read money as plain JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	a.db, err = store.New(ctx, a.c.DB)
	if err != nil {
		slog.Default().ErrorContext(ctx, "couldn't connect to mysql",
			slog.String("err", err.Error()),
		)
		return err
	}

	a.redis, err = cache.New(ctx, &a.c.Redis)
	if err != nil {
		slog.Default().ErrorContext(ctx, "couldn't connect to redis",
			slog.String("err", err.Error()),
		)
		return err
	}

	files, err := a.c.Bucket.Init()
	if err != nil {
		slog.Default().ErrorContext(ctx, "couldn't init file store",
			slog.String("err", err.Error()),
		)
		return err
	}

	authS, err := auth.New(&a.c.Auth)
	if err != nil {
		slog.Default().ErrorContext(ctx, "failed to create auth",
			slog.String("err", err.Error()),
		)
		return err
	}

	dashboardS := dashboard.New(&a.c.Dashboard, a.db, a.redis, files)

	a.hs = httpapi.New(&a.c.HTTP, dashboardS, authS, a.db)
	if err = a.hs.Start(ctx); err != nil {
		slog.Default().ErrorContext(ctx, "cannot start http server",
			slog.String("err", err.Error()),
		)
		return err
	}

	return nil
}

// Stop stops the application and waits for all services to exit
func (a *App) Stop(ctx context.Context) {
	if a.hs != nil {
		if err := a.hs.Stop(ctx); err != nil {
			slog.Default().ErrorContext(ctx, "http server shutdown failed",
				slog.String("err", err.Error()),
			)
		}
	}
	if a.redis != nil {
		a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	close(a.done)
}

// Done returns a channel that is closed after the application has exited
func (a *App) Done() chan struct{} {
	return a.done
}
