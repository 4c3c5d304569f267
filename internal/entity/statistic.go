package entity

import "time"

// StatisticType classifies a product interest event.
type StatisticType string

const (
	StatisticTypeView      StatisticType = "view"
	StatisticTypeClick     StatisticType = "click"
	StatisticTypeAddToCart StatisticType = "add_to_cart"
)

// ProductStatistic is an append-only event-log row. The dashboard only ever
// reads it.
type ProductStatistic struct {
	ID        int           `db:"id"`
	ProductID int           `db:"product_id"`
	Type      StatisticType `db:"type"`
	CreatedAt time.Time     `db:"created_at"`
}
