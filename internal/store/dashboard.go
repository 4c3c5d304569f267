package store

import (
	"context"
	"time"

	"github.com/kramnica/marketplace-manager/internal/dependency"
	"github.com/kramnica/marketplace-manager/internal/entity"
	"github.com/shopspring/decimal"
)

// Staleness thresholds for the order-health widget, in days. Measured
// against wall-clock now so that changing the dashboard range never changes
// what counts as overdue.
const (
	pendingOverdueDays    = 2
	processingOverdueDays = 5
	unpaidOverdueDays     = 3
)

type dashboardStore struct {
	*MYSQLStore
}

func (ms *MYSQLStore) Dashboard() dependency.Dashboard {
	return &dashboardStore{MYSQLStore: ms}
}

func (ms *dashboardStore) SalesTotals(ctx context.Context, from, to time.Time, brandID *int) (*entity.SalesTotals, error) {
	query := `
		SELECT COUNT(DISTINCT co.id) AS orders,
			COALESCE(SUM(oi.quantity), 0) AS units,
			COALESCE(SUM(CASE WHEN co.financial_status <> 'refunded' THEN oi.final_price * oi.quantity ELSE 0 END), 0) AS revenue
		FROM customer_order co
		LEFT JOIN order_item oi ON co.id = oi.order_id
		WHERE co.created_at >= :from AND co.created_at < :to
		AND co.status NOT IN ('cancelled', 'archived')
		AND (:brandId IS NULL OR co.brand_id = :brandId)
	`
	r, err := QueryNamedOne[entity.SalesTotals](ctx, ms.DB(), query, map[string]any{
		"from": from, "to": to, "brandId": brandID,
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (ms *dashboardStore) SalesDaily(ctx context.Context, from, to time.Time, brandID *int) ([]entity.SalesPoint, error) {
	query := `
		SELECT DATE(co.created_at) AS d,
			COUNT(DISTINCT co.id) AS orders,
			COALESCE(SUM(oi.quantity), 0) AS units,
			COALESCE(SUM(CASE WHEN co.financial_status <> 'refunded' THEN oi.final_price * oi.quantity ELSE 0 END), 0) AS revenue
		FROM customer_order co
		LEFT JOIN order_item oi ON co.id = oi.order_id
		WHERE co.created_at >= :from AND co.created_at < :to
		AND co.status NOT IN ('cancelled', 'archived')
		AND (:brandId IS NULL OR co.brand_id = :brandId)
		GROUP BY DATE(co.created_at)
		ORDER BY d
	`
	rows, err := QueryListNamed[struct {
		D       time.Time       `db:"d"`
		Orders  int             `db:"orders"`
		Units   int             `db:"units"`
		Revenue decimal.Decimal `db:"revenue"`
	}](ctx, ms.DB(), query, map[string]any{"from": from, "to": to, "brandId": brandID})
	if err != nil {
		return nil, err
	}
	result := make([]entity.SalesPoint, len(rows))
	for i, r := range rows {
		result[i] = entity.SalesPoint{
			Date:    r.D.Format("2006-01-02"),
			Revenue: r.Revenue,
			Orders:  r.Orders,
			Units:   r.Units,
		}
	}
	return result, nil
}

func (ms *dashboardStore) InterestTotals(ctx context.Context, from, to time.Time, brandID *int) (*entity.InterestTotals, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN ps.type = 'view' THEN 1 ELSE 0 END), 0) AS views,
			COALESCE(SUM(CASE WHEN ps.type = 'click' THEN 1 ELSE 0 END), 0) AS clicks,
			COALESCE(SUM(CASE WHEN ps.type = 'add_to_cart' THEN 1 ELSE 0 END), 0) AS add_to_cart
		FROM product_statistic ps
		JOIN product p ON ps.product_id = p.id
		WHERE ps.created_at >= :from AND ps.created_at < :to
		AND (:brandId IS NULL OR p.brand_id = :brandId)
	`
	r, err := QueryNamedOne[entity.InterestTotals](ctx, ms.DB(), query, map[string]any{
		"from": from, "to": to, "brandId": brandID,
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (ms *dashboardStore) InterestDaily(ctx context.Context, from, to time.Time, brandID *int) ([]entity.InterestPoint, error) {
	query := `
		SELECT DATE(ps.created_at) AS d,
			COALESCE(SUM(CASE WHEN ps.type = 'view' THEN 1 ELSE 0 END), 0) AS views,
			COALESCE(SUM(CASE WHEN ps.type = 'click' THEN 1 ELSE 0 END), 0) AS clicks,
			COALESCE(SUM(CASE WHEN ps.type = 'add_to_cart' THEN 1 ELSE 0 END), 0) AS add_to_cart
		FROM product_statistic ps
		JOIN product p ON ps.product_id = p.id
		WHERE ps.created_at >= :from AND ps.created_at < :to
		AND (:brandId IS NULL OR p.brand_id = :brandId)
		GROUP BY DATE(ps.created_at)
		ORDER BY d
	`
	rows, err := QueryListNamed[struct {
		D         time.Time `db:"d"`
		Views     int       `db:"views"`
		Clicks    int       `db:"clicks"`
		AddToCart int       `db:"add_to_cart"`
	}](ctx, ms.DB(), query, map[string]any{"from": from, "to": to, "brandId": brandID})
	if err != nil {
		return nil, err
	}
	result := make([]entity.InterestPoint, len(rows))
	for i, r := range rows {
		result[i] = entity.InterestPoint{
			Date:      r.D.Format("2006-01-02"),
			Views:     r.Views,
			Clicks:    r.Clicks,
			AddToCart: r.AddToCart,
		}
	}
	return result, nil
}

func (ms *dashboardStore) OrderStatusWidget(ctx context.Context, from, to, now time.Time, brandID *int) (*entity.OrderStatusWidget, error) {
	statusQuery := `
		SELECT co.status, COUNT(*) AS cnt
		FROM customer_order co
		WHERE co.created_at >= :from AND co.created_at < :to
		AND (:brandId IS NULL OR co.brand_id = :brandId)
		GROUP BY co.status
	`
	statusRows, err := QueryListNamed[struct {
		Status entity.OrderStatus `db:"status"`
		Count  int                `db:"cnt"`
	}](ctx, ms.DB(), statusQuery, map[string]any{"from": from, "to": to, "brandId": brandID})
	if err != nil {
		return nil, err
	}

	w := &entity.OrderStatusWidget{}
	for _, r := range statusRows {
		w.StatusTotal += r.Count
		switch r.Status {
		case entity.OrderStatusPending:
			w.StatusCounts.Pending = r.Count
		case entity.OrderStatusConfirmed:
			w.StatusCounts.Confirmed = r.Count
		case entity.OrderStatusProcessing:
			w.StatusCounts.Processing = r.Count
		case entity.OrderStatusCompleted:
			w.StatusCounts.Completed = r.Count
		case entity.OrderStatusCancelled:
			w.StatusCounts.Cancelled = r.Count
		case entity.OrderStatusArchived:
			w.StatusCounts.Archived = r.Count
		}
	}
	w.ActiveTotal = w.StatusTotal - w.StatusCounts.Cancelled - w.StatusCounts.Archived

	overdueQuery := `
		SELECT
			COALESCE(SUM(CASE WHEN co.status IN ('pending', 'confirmed') AND co.created_at < :pendingBefore THEN 1 ELSE 0 END), 0) AS pending_overdue,
			COALESCE(SUM(CASE WHEN co.status = 'processing' AND co.created_at < :processingBefore THEN 1 ELSE 0 END), 0) AS processing_overdue,
			COALESCE(SUM(CASE WHEN co.financial_status = 'unpaid' AND co.created_at < :unpaidBefore THEN 1 ELSE 0 END), 0) AS unpaid_overdue
		FROM customer_order co
		WHERE co.created_at >= :from AND co.created_at < :to
		AND co.status NOT IN ('cancelled', 'archived')
		AND (:brandId IS NULL OR co.brand_id = :brandId)
	`
	overdue, err := QueryNamedOne[struct {
		PendingOverdue    int `db:"pending_overdue"`
		ProcessingOverdue int `db:"processing_overdue"`
		UnpaidOverdue     int `db:"unpaid_overdue"`
	}](ctx, ms.DB(), overdueQuery, map[string]any{
		"from": from, "to": to, "brandId": brandID,
		"pendingBefore":    now.AddDate(0, 0, -pendingOverdueDays),
		"processingBefore": now.AddDate(0, 0, -processingOverdueDays),
		"unpaidBefore":     now.AddDate(0, 0, -unpaidOverdueDays),
	})
	if err != nil {
		return nil, err
	}

	w.Attention = []entity.AttentionBucket{
		{Key: "pending", Count: overdue.PendingOverdue, Days: pendingOverdueDays},
		{Key: "processing", Count: overdue.ProcessingOverdue, Days: processingOverdueDays},
		{Key: "unpaid", Count: overdue.UnpaidOverdue, Days: unpaidOverdueDays},
	}
	w.NeedsAttention = overdue.PendingOverdue + overdue.ProcessingOverdue + overdue.UnpaidOverdue
	w.Health = healthScore(w.ActiveTotal, w.NeedsAttention)
	return w, nil
}

// healthScore maps the overdue backlog onto [0, 100]. No active orders means
// no signal, not a perfect or a failing score.
func healthScore(active, needsAttention int) *float64 {
	if active == 0 {
		return nil
	}
	h := 100 * (1 - float64(needsAttention)/float64(active))
	if h < 0 {
		h = 0
	}
	if h > 100 {
		h = 100
	}
	return &h
}

func (ms *dashboardStore) TopProducts(ctx context.Context, from, to time.Time, brandID *int, limit int) ([]entity.TopProduct, error) {
	query := `
		SELECT p.id AS product_id, p.title, c.name AS category, fi.src AS image_src,
			COALESCE(oa.orders, 0) AS orders,
			COALESCE(oa.units, 0) AS units,
			COALESCE(oa.revenue, 0) AS revenue,
			COALESCE(sa.views, 0) AS views,
			COALESCE(sa.add_to_cart, 0) AS add_to_cart
		FROM product p
		JOIN category c ON p.category_id = c.id
		LEFT JOIN (
			SELECT oi.product_id,
				COUNT(DISTINCT co.id) AS orders,
				SUM(oi.quantity) AS units,
				SUM(CASE WHEN co.financial_status <> 'refunded' THEN oi.final_price * oi.quantity ELSE 0 END) AS revenue
			FROM order_item oi
			JOIN customer_order co ON oi.order_id = co.id
			WHERE co.created_at >= :from AND co.created_at < :to
			AND co.status NOT IN ('cancelled', 'archived')
			GROUP BY oi.product_id
		) oa ON oa.product_id = p.id
		LEFT JOIN (
			SELECT ps.product_id,
				SUM(CASE WHEN ps.type = 'view' THEN 1 ELSE 0 END) AS views,
				SUM(CASE WHEN ps.type = 'add_to_cart' THEN 1 ELSE 0 END) AS add_to_cart
			FROM product_statistic ps
			WHERE ps.created_at >= :from AND ps.created_at < :to
			GROUP BY ps.product_id
		) sa ON sa.product_id = p.id
		LEFT JOIN (
			SELECT pi.product_id, i.src
			FROM product_image pi
			JOIN image i ON pi.image_id = i.id
			WHERE pi.position = (
				SELECT MIN(pi2.position) FROM product_image pi2 WHERE pi2.product_id = pi.product_id
			)
		) fi ON fi.product_id = p.id
		WHERE (:brandId IS NULL OR p.brand_id = :brandId)
		AND (COALESCE(oa.orders, 0) > 0 OR COALESCE(oa.revenue, 0) > 0
			OR COALESCE(sa.views, 0) > 0 OR COALESCE(sa.add_to_cart, 0) > 0)
		ORDER BY revenue DESC, orders DESC, p.id DESC
		LIMIT :limit
	`
	rows, err := QueryListNamed[struct {
		ProductID int             `db:"product_id"`
		Title     string          `db:"title"`
		Category  string          `db:"category"`
		ImageSrc  *string         `db:"image_src"`
		Orders    int             `db:"orders"`
		Units     int             `db:"units"`
		Revenue   decimal.Decimal `db:"revenue"`
		Views     int             `db:"views"`
		AddToCart int             `db:"add_to_cart"`
	}](ctx, ms.DB(), query, map[string]any{"from": from, "to": to, "brandId": brandID, "limit": limit})
	if err != nil {
		return nil, err
	}
	result := make([]entity.TopProduct, len(rows))
	for i, r := range rows {
		conversion := 0.0
		if r.Views > 0 {
			conversion = float64(r.Orders) / float64(r.Views) * 100
		}
		result[i] = entity.TopProduct{
			ProductID:  r.ProductID,
			Title:      r.Title,
			Category:   r.Category,
			ImageURL:   r.ImageSrc,
			Revenue:    r.Revenue,
			Orders:     r.Orders,
			Units:      r.Units,
			Views:      r.Views,
			AddToCart:  r.AddToCart,
			Conversion: conversion,
		}
	}
	return result, nil
}

// conversionBase selects every product of the scope together with its funnel
// counts and the three computed ratios. Shared by the count and the page
// query of TopConversion.
const conversionBase = `
	SELECT p.id AS product_id, p.title, c.name AS category, fi.src AS image_src,
		COALESCE(sa.views, 0) AS views,
		COALESCE(sa.add_to_cart, 0) AS add_to_cart,
		COALESCE(oa.orders, 0) AS orders,
		COALESCE(oa.revenue, 0) AS revenue,
		CASE WHEN COALESCE(sa.views, 0) > 0 THEN COALESCE(sa.add_to_cart, 0) / sa.views * 100 ELSE 0 END AS view_to_cart,
		CASE WHEN COALESCE(sa.views, 0) > 0 THEN COALESCE(oa.orders, 0) / sa.views * 100 ELSE 0 END AS view_to_order,
		CASE WHEN COALESCE(sa.add_to_cart, 0) > 0 THEN COALESCE(oa.orders, 0) / sa.add_to_cart * 100 ELSE 0 END AS cart_to_order
	FROM product p
	JOIN category c ON p.category_id = c.id
	LEFT JOIN (
		SELECT oi.product_id,
			COUNT(DISTINCT co.id) AS orders,
			SUM(CASE WHEN co.financial_status <> 'refunded' THEN oi.final_price * oi.quantity ELSE 0 END) AS revenue
		FROM order_item oi
		JOIN customer_order co ON oi.order_id = co.id
		WHERE co.created_at >= :from AND co.created_at < :to
		AND co.status NOT IN ('cancelled', 'archived')
		GROUP BY oi.product_id
	) oa ON oa.product_id = p.id
	LEFT JOIN (
		SELECT ps.product_id,
			SUM(CASE WHEN ps.type = 'view' THEN 1 ELSE 0 END) AS views,
			SUM(CASE WHEN ps.type = 'add_to_cart' THEN 1 ELSE 0 END) AS add_to_cart
		FROM product_statistic ps
		WHERE ps.created_at >= :from AND ps.created_at < :to
		GROUP BY ps.product_id
	) sa ON sa.product_id = p.id
	LEFT JOIN (
		SELECT pi.product_id, i.src
		FROM product_image pi
		JOIN image i ON pi.image_id = i.id
		WHERE pi.position = (
			SELECT MIN(pi2.position) FROM product_image pi2 WHERE pi2.product_id = pi.product_id
		)
	) fi ON fi.product_id = p.id
	WHERE (:brandId IS NULL OR p.brand_id = :brandId)
`

func (ms *dashboardStore) TopConversion(ctx context.Context, from, to time.Time, brandID *int, sort entity.ConversionSort, dir entity.SortDirection, page, perPage int) (*entity.ConversionPage, error) {
	params := map[string]any{"from": from, "to": to, "brandId": brandID}

	countQuery := `
		SELECT COUNT(*) FROM (` + conversionBase + `) t
		WHERE t.view_to_cart > 0 OR t.view_to_order > 0 OR t.cart_to_order > 0
	`
	total, err := QueryCountNamed(ctx, ms.DB(), countQuery, params)
	if err != nil {
		return nil, err
	}

	page, lastPage, offset := clampPage(page, perPage, total)

	pageQuery := `
		SELECT t.product_id, t.title, t.category, t.image_src,
			t.views, t.add_to_cart, t.orders, t.revenue,
			t.view_to_cart, t.view_to_order, t.cart_to_order
		FROM (` + conversionBase + `) t
		WHERE t.view_to_cart > 0 OR t.view_to_order > 0 OR t.cart_to_order > 0
		ORDER BY t.` + conversionSortColumn(sort) + ` ` + sortDirectionSQL(dir) + `, t.views DESC, t.product_id DESC
		LIMIT :limit OFFSET :offset
	`
	params["limit"] = perPage
	params["offset"] = offset
	rows, err := QueryListNamed[struct {
		ProductID   int             `db:"product_id"`
		Title       string          `db:"title"`
		Category    string          `db:"category"`
		ImageSrc    *string         `db:"image_src"`
		Views       int             `db:"views"`
		AddToCart   int             `db:"add_to_cart"`
		Orders      int             `db:"orders"`
		Revenue     decimal.Decimal `db:"revenue"`
		ViewToCart  float64         `db:"view_to_cart"`
		ViewToOrder float64         `db:"view_to_order"`
		CartToOrder float64         `db:"cart_to_order"`
	}](ctx, ms.DB(), pageQuery, params)
	if err != nil {
		return nil, err
	}

	data := make([]entity.ConversionRow, len(rows))
	for i, r := range rows {
		data[i] = entity.ConversionRow{
			ProductID:   r.ProductID,
			Title:       r.Title,
			Category:    r.Category,
			ImageURL:    r.ImageSrc,
			Views:       r.Views,
			AddToCart:   r.AddToCart,
			Orders:      r.Orders,
			Revenue:     r.Revenue,
			ViewToCart:  r.ViewToCart,
			ViewToOrder: r.ViewToOrder,
			CartToOrder: r.CartToOrder,
		}
	}
	return &entity.ConversionPage{
		Data: data,
		Pagination: entity.Pagination{
			Page:      page,
			PerPage:   perPage,
			Total:     total,
			LastPage:  lastPage,
			Sort:      sort,
			Direction: dir,
		},
	}, nil
}

// clampPage keeps the requested page inside [1, lastPage]; a page past the
// end returns the last page, not an empty result.
func clampPage(page, perPage, total int) (clamped, lastPage, offset int) {
	lastPage = (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}
	if page < 1 {
		page = 1
	}
	if page > lastPage {
		page = lastPage
	}
	return page, lastPage, (page - 1) * perPage
}

func conversionSortColumn(sort entity.ConversionSort) string {
	switch sort {
	case entity.ConversionSortViewToCart:
		return "view_to_cart"
	case entity.ConversionSortCartToOrder:
		return "cart_to_order"
	default:
		return "view_to_order"
	}
}

func sortDirectionSQL(dir entity.SortDirection) string {
	if dir == entity.SortDirectionAsc {
		return "ASC"
	}
	return "DESC"
}
