// Package dashboard assembles the admin dashboard payload: resolved filters,
// windowed aggregations, gap-filled series and the memoized widgets.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kramnica/marketplace-manager/internal/auth"
	"github.com/kramnica/marketplace-manager/internal/dependency"
	"github.com/kramnica/marketplace-manager/internal/entity"
)

const noScopeMessage = "no brand is associated with this account"

type Config struct {
	Currency          string        `mapstructure:"currency"`
	CacheTTL          time.Duration `mapstructure:"cacheTTL"`
	TopProductsLimit  int           `mapstructure:"topProductsLimit"`
	ConversionPerPage int           `mapstructure:"conversionPerPage"`
}

type Service struct {
	repo  dependency.Repository
	cache dependency.KVCache
	files dependency.FileStore
	c     *Config
	now   func() time.Time
}

func New(c *Config, repo dependency.Repository, cache dependency.KVCache, files dependency.FileStore) *Service {
	if c.Currency == "" {
		c.Currency = "BYN"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.TopProductsLimit == 0 {
		c.TopProductsLimit = 50
	}
	if c.ConversionPerPage == 0 {
		c.ConversionPerPage = 20
	}
	return &Service{
		repo:  repo,
		cache: cache,
		files: files,
		c:     c,
		now:   time.Now,
	}
}

// GetDashboard builds the full dashboard payload for the caller's scope.
// Admins see the whole platform, brand managers their brand. A caller with no
// scope at all gets the zero payload with an explanatory message rather than
// an error.
func (s *Service) GetDashboard(ctx context.Context, identity *auth.Identity, f Filters) (*entity.Dashboard, error) {
	now := s.now()
	w := f.Window(now)
	dates := f.Dates(now)

	d := &entity.Dashboard{
		Range:     f.RangeDays,
		TableMode: f.TableMode,
		Series: entity.DashboardSeries{
			Sales:    mergeSalesSeries(dates, nil),
			Interest: mergeInterestSeries(dates, nil),
		},
		TopProducts: []entity.TopProduct{},
		TopConversion: entity.ConversionPage{
			Data: []entity.ConversionRow{},
			Pagination: entity.Pagination{
				Page:      1,
				PerPage:   s.c.ConversionPerPage,
				LastPage:  1,
				Sort:      f.ConvSort,
				Direction: f.ConvDir,
			},
		},
		Meta: entity.DashboardMeta{
			StartDate: dates[0],
			EndDate:   dates[len(dates)-1],
			Currency:  s.c.Currency,
		},
	}

	if identity.Empty() {
		d.Error = noScopeMessage
		return d, nil
	}

	brandID := identity.BrandID
	if identity.Admin {
		brandID = nil
	}

	ds := s.repo.Dashboard()

	sales, err := ds.SalesTotals(ctx, w.From, w.To, brandID)
	if err != nil {
		return nil, fmt.Errorf("can't get sales totals: %w", err)
	}
	salesDaily, err := ds.SalesDaily(ctx, w.From, w.To, brandID)
	if err != nil {
		return nil, fmt.Errorf("can't get daily sales: %w", err)
	}
	interest, err := ds.InterestTotals(ctx, w.From, w.To, brandID)
	if err != nil {
		return nil, fmt.Errorf("can't get interest totals: %w", err)
	}
	interestDaily, err := ds.InterestDaily(ctx, w.From, w.To, brandID)
	if err != nil {
		return nil, fmt.Errorf("can't get daily interest: %w", err)
	}
	widget, err := s.statusWidget(ctx, w, now, brandID)
	if err != nil {
		return nil, fmt.Errorf("can't get order status widget: %w", err)
	}
	top, err := ds.TopProducts(ctx, w.From, w.To, brandID, s.c.TopProductsLimit)
	if err != nil {
		return nil, fmt.Errorf("can't get top products: %w", err)
	}
	conv, err := s.conversionPage(ctx, w, brandID, f)
	if err != nil {
		return nil, fmt.Errorf("can't get conversion table: %w", err)
	}

	for i := range top {
		if top[i].ImageURL != nil {
			top[i].ImageURL = s.files.ResolveURL(*top[i].ImageURL)
		}
	}
	for i := range conv.Data {
		if conv.Data[i].ImageURL != nil {
			conv.Data[i].ImageURL = s.files.ResolveURL(*conv.Data[i].ImageURL)
		}
	}

	d.Metrics = buildMetrics(sales, interest)
	d.Series.Sales = mergeSalesSeries(dates, salesDaily)
	d.Series.Interest = mergeInterestSeries(dates, interestDaily)
	d.OrderStatus = *widget
	d.TopProducts = top
	d.TopConversion = *conv
	return d, nil
}

func buildMetrics(sales *entity.SalesTotals, interest *entity.InterestTotals) entity.DashboardMetrics {
	m := entity.DashboardMetrics{
		Revenue:   sales.Revenue,
		Orders:    sales.Orders,
		Units:     sales.Units,
		Views:     interest.Views,
		AddToCart: interest.AddToCart,
	}
	if sales.Orders > 0 {
		m.AOV = sales.Revenue.Div(decimal.NewFromInt(int64(sales.Orders))).Round(2)
	}
	if interest.Views > 0 {
		m.ConversionViewToATC = float64(interest.AddToCart) / float64(interest.Views) * 100
		m.ConversionViewToOrder = float64(sales.Orders) / float64(interest.Views) * 100
	}
	return m
}

// statusWidget memoizes the order status widget for the cache TTL. Cache
// failures fall back to recompute.
func (s *Service) statusWidget(ctx context.Context, w Window, now time.Time, brandID *int) (*entity.OrderStatusWidget, error) {
	key := fmt.Sprintf("dashboard:status:%s:%s:%s",
		tenantKey(brandID), w.From.Format("2006-01-02"), w.To.Format("2006-01-02"))

	var cached entity.OrderStatusWidget
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	widget, err := s.repo.Dashboard().OrderStatusWidget(ctx, w.From, w.To, now, brandID)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, widget)
	return widget, nil
}

// conversionPage memoizes one page of the conversion table per filter
// combination.
func (s *Service) conversionPage(ctx context.Context, w Window, brandID *int, f Filters) (*entity.ConversionPage, error) {
	key := fmt.Sprintf("dashboard:conv:%s:%s:%s:%s:%s:%d:%d",
		tenantKey(brandID), w.From.Format("2006-01-02"), w.To.Format("2006-01-02"),
		f.ConvSort, f.ConvDir, f.ConvPage, s.c.ConversionPerPage)

	var cached entity.ConversionPage
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	page, err := s.repo.Dashboard().TopConversion(ctx, w.From, w.To, brandID,
		f.ConvSort, f.ConvDir, f.ConvPage, s.c.ConversionPerPage)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, page)
	return page, nil
}

func (s *Service) cacheGet(ctx context.Context, key string, v any) bool {
	b, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		slog.Default().ErrorContext(ctx, "can't read dashboard cache",
			slog.String("key", key),
			slog.String("err", err.Error()),
		)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(b, v); err != nil {
		slog.Default().ErrorContext(ctx, "can't decode cached dashboard value",
			slog.String("key", key),
			slog.String("err", err.Error()),
		)
		return false
	}
	return true
}

func (s *Service) cacheSet(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		slog.Default().ErrorContext(ctx, "can't encode dashboard value for cache",
			slog.String("key", key),
			slog.String("err", err.Error()),
		)
		return
	}
	if err := s.cache.Set(ctx, key, b, s.c.CacheTTL); err != nil {
		slog.Default().ErrorContext(ctx, "can't write dashboard cache",
			slog.String("key", key),
			slog.String("err", err.Error()),
		)
	}
}

func tenantKey(brandID *int) string {
	if brandID == nil {
		return "all"
	}
	return strconv.Itoa(*brandID)
}
