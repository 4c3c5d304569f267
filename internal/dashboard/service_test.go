package dashboard

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kramnica/marketplace-manager/internal/auth"
	"github.com/kramnica/marketplace-manager/internal/dependency"
	"github.com/kramnica/marketplace-manager/internal/entity"
)

type fakeStore struct {
	calls       map[string]int
	lastBrandID *int

	sales         *entity.SalesTotals
	salesDaily    []entity.SalesPoint
	interest      *entity.InterestTotals
	interestDaily []entity.InterestPoint
	widget        *entity.OrderStatusWidget
	top           []entity.TopProduct
	conv          *entity.ConversionPage
}

func newFakeStore() *fakeStore {
	health := 70.0
	imgSrc := "2024/shoe.jpg"
	return &fakeStore{
		calls:         map[string]int{},
		sales:         &entity.SalesTotals{Orders: 4, Units: 7, Revenue: decimal.NewFromInt(200)},
		salesDaily:    []entity.SalesPoint{{Date: "2024-03-06", Revenue: decimal.NewFromInt(20), Orders: 1, Units: 2}},
		interest:      &entity.InterestTotals{Views: 100, Clicks: 40, AddToCart: 25},
		interestDaily: []entity.InterestPoint{{Date: "2024-03-06", Views: 10, Clicks: 4, AddToCart: 2}},
		widget: &entity.OrderStatusWidget{
			Health:         &health,
			ActiveTotal:    10,
			NeedsAttention: 3,
			StatusTotal:    12,
			StatusCounts:   entity.StatusCounts{Pending: 5, Processing: 5, Cancelled: 2},
			Attention: []entity.AttentionBucket{
				{Key: "pending", Count: 2, Days: 2},
				{Key: "processing", Count: 1, Days: 5},
				{Key: "unpaid", Count: 0, Days: 3},
			},
		},
		top: []entity.TopProduct{
			{ProductID: 1, Title: "Shoe", Category: "Footwear", ImageURL: &imgSrc, Revenue: decimal.NewFromInt(120), Orders: 3, Units: 5, Views: 60, AddToCart: 15, Conversion: 5},
		},
		conv: &entity.ConversionPage{
			Data: []entity.ConversionRow{
				{ProductID: 1, Title: "Shoe", Category: "Footwear", Views: 60, AddToCart: 15, Orders: 3, Revenue: decimal.NewFromInt(120), ViewToCart: 25, ViewToOrder: 5, CartToOrder: 20},
			},
			Pagination: entity.Pagination{Page: 2, PerPage: 20, Total: 45, LastPage: 3, Sort: entity.ConversionSortViewToOrder, Direction: entity.SortDirectionDesc},
		},
	}
}

func (f *fakeStore) SalesTotals(_ context.Context, _, _ time.Time, brandID *int) (*entity.SalesTotals, error) {
	f.calls["sales_totals"]++
	f.lastBrandID = brandID
	return f.sales, nil
}

func (f *fakeStore) SalesDaily(_ context.Context, _, _ time.Time, _ *int) ([]entity.SalesPoint, error) {
	f.calls["sales_daily"]++
	return f.salesDaily, nil
}

func (f *fakeStore) InterestTotals(_ context.Context, _, _ time.Time, _ *int) (*entity.InterestTotals, error) {
	f.calls["interest_totals"]++
	return f.interest, nil
}

func (f *fakeStore) InterestDaily(_ context.Context, _, _ time.Time, _ *int) ([]entity.InterestPoint, error) {
	f.calls["interest_daily"]++
	return f.interestDaily, nil
}

func (f *fakeStore) OrderStatusWidget(_ context.Context, _, _, _ time.Time, _ *int) (*entity.OrderStatusWidget, error) {
	f.calls["status_widget"]++
	return f.widget, nil
}

func (f *fakeStore) TopProducts(_ context.Context, _, _ time.Time, _ *int, _ int) ([]entity.TopProduct, error) {
	f.calls["top_products"]++
	return f.top, nil
}

func (f *fakeStore) TopConversion(_ context.Context, _, _ time.Time, _ *int, _ entity.ConversionSort, _ entity.SortDirection, _, _ int) (*entity.ConversionPage, error) {
	f.calls["top_conversion"]++
	return f.conv, nil
}

type fakeRepo struct{ store *fakeStore }

func (f *fakeRepo) Dashboard() dependency.Dashboard { return f.store }
func (f *fakeRepo) DB() dependency.DB               { return nil }
func (f *fakeRepo) Ping(context.Context) error      { return nil }
func (f *fakeRepo) Close()                          {}

type fakeCache struct {
	data map[string][]byte
	err  error
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.data[key] = value
	return nil
}

type fakeFiles struct{}

func (fakeFiles) ResolveURL(src string) *string {
	if src == "" {
		return nil
	}
	url := "https://cdn.test/" + src
	return &url
}

func newTestService(store *fakeStore, cache *fakeCache) *Service {
	s := New(&Config{}, &fakeRepo{store: store}, cache, fakeFiles{})
	s.now = func() time.Time { return time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC) }
	return s
}

func brandIdentity(id int) *auth.Identity {
	return &auth.Identity{BrandID: &id}
}

func TestGetDashboard(t *testing.T) {
	store := newFakeStore()
	s := newTestService(store, newFakeCache())

	d, err := s.GetDashboard(context.Background(), brandIdentity(7), ResolveFilters(nil))
	require.NoError(t, err)

	assert.Equal(t, 30, d.Range)
	assert.Equal(t, entity.TableModeTop, d.TableMode)
	assert.Empty(t, d.Error)

	assert.True(t, decimal.NewFromInt(200).Equal(d.Metrics.Revenue))
	assert.Equal(t, 4, d.Metrics.Orders)
	assert.True(t, decimal.NewFromInt(50).Equal(d.Metrics.AOV))
	assert.Equal(t, 7, d.Metrics.Units)
	assert.Equal(t, 100, d.Metrics.Views)
	assert.Equal(t, 25, d.Metrics.AddToCart)
	assert.InDelta(t, 25.0, d.Metrics.ConversionViewToATC, 1e-9)
	assert.InDelta(t, 4.0, d.Metrics.ConversionViewToOrder, 1e-9)

	require.Len(t, d.Series.Sales, 30)
	require.Len(t, d.Series.Interest, 30)
	assert.Equal(t, "2024-02-10", d.Series.Sales[0].Date)
	assert.Equal(t, "2024-03-10", d.Series.Sales[29].Date)

	require.NotNil(t, d.OrderStatus.Health)
	assert.InDelta(t, 70.0, *d.OrderStatus.Health, 1e-9)

	require.Len(t, d.TopProducts, 1)
	require.NotNil(t, d.TopProducts[0].ImageURL)
	assert.Equal(t, "https://cdn.test/2024/shoe.jpg", *d.TopProducts[0].ImageURL)

	assert.Equal(t, 45, d.TopConversion.Pagination.Total)
	assert.Equal(t, 3, d.TopConversion.Pagination.LastPage)

	assert.Equal(t, "2024-02-10", d.Meta.StartDate)
	assert.Equal(t, "2024-03-10", d.Meta.EndDate)
	assert.Equal(t, "BYN", d.Meta.Currency)

	require.NotNil(t, store.lastBrandID)
	assert.Equal(t, 7, *store.lastBrandID)
}

func TestGetDashboardAdminScope(t *testing.T) {
	store := newFakeStore()
	s := newTestService(store, newFakeCache())

	brandID := 7
	_, err := s.GetDashboard(context.Background(), &auth.Identity{BrandID: &brandID, Admin: true}, ResolveFilters(nil))
	require.NoError(t, err)
	assert.Nil(t, store.lastBrandID, "admins read the whole platform")
}

func TestGetDashboardNoScope(t *testing.T) {
	store := newFakeStore()
	s := newTestService(store, newFakeCache())

	d, err := s.GetDashboard(context.Background(), &auth.Identity{}, ResolveFilters(nil))
	require.NoError(t, err)

	assert.Equal(t, noScopeMessage, d.Error)
	assert.Empty(t, store.calls, "no queries run without a scope")

	assert.Zero(t, d.Metrics.Orders)
	assert.True(t, d.Metrics.Revenue.IsZero())
	require.Len(t, d.Series.Sales, 30)
	assert.True(t, d.Series.Sales[0].Revenue.IsZero())
	assert.Empty(t, d.TopProducts)
	assert.Empty(t, d.TopConversion.Data)
	assert.Nil(t, d.OrderStatus.Health)
	assert.Equal(t, "2024-03-10", d.Meta.EndDate)
}

func TestGetDashboardCachesWidgetAndConversion(t *testing.T) {
	store := newFakeStore()
	s := newTestService(store, newFakeCache())

	first, err := s.GetDashboard(context.Background(), brandIdentity(7), ResolveFilters(nil))
	require.NoError(t, err)
	second, err := s.GetDashboard(context.Background(), brandIdentity(7), ResolveFilters(nil))
	require.NoError(t, err)

	assert.Equal(t, 1, store.calls["status_widget"], "second widget read must hit the cache")
	assert.Equal(t, 1, store.calls["top_conversion"], "second conversion read must hit the cache")
	assert.Equal(t, 2, store.calls["sales_totals"], "totals are never cached")
	assert.Equal(t, 2, store.calls["top_products"], "top products are never cached")

	assert.Equal(t, first.OrderStatus, second.OrderStatus)
	assert.Equal(t, first.TopConversion, second.TopConversion)
}

func TestGetDashboardCacheScopedByTenant(t *testing.T) {
	store := newFakeStore()
	s := newTestService(store, newFakeCache())

	_, err := s.GetDashboard(context.Background(), brandIdentity(7), ResolveFilters(nil))
	require.NoError(t, err)
	_, err = s.GetDashboard(context.Background(), brandIdentity(8), ResolveFilters(nil))
	require.NoError(t, err)

	assert.Equal(t, 2, store.calls["status_widget"], "different tenants never share cache entries")
}

func TestGetDashboardCacheFailureDegrades(t *testing.T) {
	store := newFakeStore()
	cache := newFakeCache()
	cache.err = fmt.Errorf("redis is down")
	s := newTestService(store, cache)

	d, err := s.GetDashboard(context.Background(), brandIdentity(7), ResolveFilters(nil))
	require.NoError(t, err, "a cache hiccup must not fail the dashboard")
	require.NotNil(t, d.OrderStatus.Health)

	_, err = s.GetDashboard(context.Background(), brandIdentity(7), ResolveFilters(nil))
	require.NoError(t, err)
	assert.Equal(t, 2, store.calls["status_widget"], "every read recomputes while the cache is down")
}

func TestBuildMetricsZeroDenominators(t *testing.T) {
	m := buildMetrics(&entity.SalesTotals{}, &entity.InterestTotals{})
	assert.True(t, m.AOV.IsZero())
	assert.Zero(t, m.ConversionViewToATC)
	assert.Zero(t, m.ConversionViewToOrder)
}
