package dependency

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kramnica/marketplace-manager/internal/entity"
)

type (
	// Dashboard exposes the read-side aggregations behind the admin
	// dashboard. Every query is scoped by a half-open [from, to) window and
	// an optional brand; a nil brandID runs platform-wide.
	Dashboard interface {
		// SalesTotals returns distinct order count, summed units and summed
		// revenue across the window.
		SalesTotals(ctx context.Context, from, to time.Time, brandID *int) (*entity.SalesTotals, error)
		// SalesDaily returns the same three metrics grouped by calendar day.
		SalesDaily(ctx context.Context, from, to time.Time, brandID *int) ([]entity.SalesPoint, error)
		// InterestTotals counts view/click/add_to_cart events in the window.
		InterestTotals(ctx context.Context, from, to time.Time, brandID *int) (*entity.InterestTotals, error)
		InterestDaily(ctx context.Context, from, to time.Time, brandID *int) ([]entity.InterestPoint, error)
		// OrderStatusWidget builds the order-health snapshot. Staleness is
		// measured against now, not the window end.
		OrderStatusWidget(ctx context.Context, from, to, now time.Time, brandID *int) (*entity.OrderStatusWidget, error)
		// TopProducts returns the per-product rollup ordered by revenue,
		// capped at limit rows. Products with no signal are dropped.
		TopProducts(ctx context.Context, from, to time.Time, brandID *int, limit int) ([]entity.TopProduct, error)
		// TopConversion returns one page of the conversion-funnel table.
		TopConversion(ctx context.Context, from, to time.Time, brandID *int, sort entity.ConversionSort, dir entity.SortDirection, page, perPage int) (*entity.ConversionPage, error)
	}

	Repository interface {
		Dashboard() Dashboard
		DB() DB
		Ping(ctx context.Context) error
		Close()
	}

	// DB represents database interface.
	DB interface {
		BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)

		// sqlx methods
		GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
		QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
		QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
		SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	}

	// KVCache is a key-value memoization layer with TTL. Get reports a miss
	// with ok == false; expired keys are plain misses.
	KVCache interface {
		Get(ctx context.Context, key string) ([]byte, bool, error)
		Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	}

	// FileStore resolves storage-relative image keys to public URLs.
	FileStore interface {
		// ResolveURL returns src unchanged when it is already absolute,
		// nil for an empty src, and a bucket CDN URL otherwise.
		ResolveURL(src string) *string
	}
)
