package entity

import (
	"github.com/shopspring/decimal"
)

// TableMode picks which product table the admin panel renders by default.
type TableMode string

const (
	TableModeTop TableMode = "top"
	TableModeGap TableMode = "gap"
)

// ConversionSort names a computed conversion ratio the funnel table can be
// ordered by.
type ConversionSort string

const (
	ConversionSortViewToCart  ConversionSort = "view_to_cart"
	ConversionSortViewToOrder ConversionSort = "view_to_order"
	ConversionSortCartToOrder ConversionSort = "cart_to_order"
)

type SortDirection string

const (
	SortDirectionAsc  SortDirection = "asc"
	SortDirectionDesc SortDirection = "desc"
)

// SalesTotals are the window-wide sales aggregates.
type SalesTotals struct {
	Orders  int             `db:"orders" json:"orders"`
	Units   int             `db:"units" json:"units"`
	Revenue decimal.Decimal `db:"revenue" json:"revenue"`
}

// SalesPoint is one calendar day of the sales series.
type SalesPoint struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
	Units   int             `json:"units"`
}

type InterestTotals struct {
	Views     int `db:"views" json:"views"`
	Clicks    int `db:"clicks" json:"clicks"`
	AddToCart int `db:"add_to_cart" json:"add_to_cart"`
}

// InterestPoint is one calendar day of the interest series.
type InterestPoint struct {
	Date      string `json:"date"`
	Views     int    `json:"views"`
	Clicks    int    `json:"clicks"`
	AddToCart int    `json:"add_to_cart"`
}

// StatusCounts is the raw per-status breakdown, including statuses that the
// sales aggregations exclude.
type StatusCounts struct {
	Pending    int `json:"pending"`
	Confirmed  int `json:"confirmed"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
	Archived   int `json:"archived"`
}

// AttentionBucket is one overdue sub-count of the order-health widget. Days
// is the staleness threshold the bucket was counted against.
type AttentionBucket struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
	Days  int    `json:"days"`
}

// OrderStatusWidget summarizes operational order backlog health. Health is
// nil when there are no active orders: the absence of orders is "no signal",
// not a score.
type OrderStatusWidget struct {
	Health         *float64          `json:"health"`
	ActiveTotal    int               `json:"active_total"`
	NeedsAttention int               `json:"needs_attention"`
	StatusTotal    int               `json:"status_total"`
	StatusCounts   StatusCounts      `json:"status_counts"`
	Attention      []AttentionBucket `json:"attention"`
}

// TopProduct is one row of the unpaginated top-products rollup.
type TopProduct struct {
	ProductID  int             `json:"product_id"`
	Title      string          `json:"title"`
	Category   string          `json:"category"`
	ImageURL   *string         `json:"image_url"`
	Revenue    decimal.Decimal `json:"revenue"`
	Orders     int             `json:"orders"`
	Units      int             `json:"units"`
	Views      int             `json:"views"`
	AddToCart  int             `json:"add_to_cart"`
	Conversion float64         `json:"conversion"`
}

// ConversionRow is one row of the paginated conversion-funnel table.
type ConversionRow struct {
	ProductID   int             `json:"product_id"`
	Title       string          `json:"title"`
	Category    string          `json:"category"`
	ImageURL    *string         `json:"image_url"`
	Views       int             `json:"views"`
	AddToCart   int             `json:"add_to_cart"`
	Orders      int             `json:"orders"`
	Revenue     decimal.Decimal `json:"revenue"`
	ViewToCart  float64         `json:"view_to_cart"`
	ViewToOrder float64         `json:"view_to_order"`
	CartToOrder float64         `json:"cart_to_order"`
}

type Pagination struct {
	Page      int            `json:"page"`
	PerPage   int            `json:"per_page"`
	Total     int            `json:"total"`
	LastPage  int            `json:"last_page"`
	Sort      ConversionSort `json:"sort"`
	Direction SortDirection  `json:"direction"`
}

type ConversionPage struct {
	Data       []ConversionRow `json:"data"`
	Pagination Pagination      `json:"pagination"`
}

// DashboardMetrics are the headline numbers above the charts.
type DashboardMetrics struct {
	Revenue               decimal.Decimal `json:"revenue"`
	Orders                int             `json:"orders"`
	AOV                   decimal.Decimal `json:"aov"`
	Units                 int             `json:"units"`
	Views                 int             `json:"views"`
	AddToCart             int             `json:"add_to_cart"`
	ConversionViewToATC   float64         `json:"conversion_view_to_atc"`
	ConversionViewToOrder float64         `json:"conversion_view_to_order"`
}

type DashboardSeries struct {
	Sales    []SalesPoint    `json:"sales"`
	Interest []InterestPoint `json:"interest"`
}

type DashboardMeta struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Currency  string `json:"currency"`
}

// Dashboard is the full admin dashboard payload.
type Dashboard struct {
	Range         int               `json:"range"`
	TableMode     TableMode         `json:"table_mode"`
	Metrics       DashboardMetrics  `json:"metrics"`
	Series        DashboardSeries   `json:"series"`
	OrderStatus   OrderStatusWidget `json:"order_status"`
	TopProducts   []TopProduct      `json:"top_products"`
	TopConversion ConversionPage    `json:"top_conversion"`
	Meta          DashboardMeta     `json:"meta"`
	Error         string            `json:"error,omitempty"`
}
