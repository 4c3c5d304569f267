package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of a customer order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusArchived   OrderStatus = "archived"
)

// FinancialStatus tracks the payment state of an order independently of its
// fulfillment status.
type FinancialStatus string

const (
	FinancialStatusPaid     FinancialStatus = "paid"
	FinancialStatusUnpaid   FinancialStatus = "unpaid"
	FinancialStatusRefunded FinancialStatus = "refunded"
)

// Order belongs to exactly one brand.
type Order struct {
	ID              int             `db:"id"`
	BrandID         int             `db:"brand_id"`
	Status          OrderStatus     `db:"status"`
	FinancialStatus FinancialStatus `db:"financial_status"`
	CreatedAt       time.Time       `db:"created_at"`
}

type OrderItem struct {
	ID         int             `db:"id"`
	OrderID    int             `db:"order_id"`
	ProductID  int             `db:"product_id"`
	Quantity   int             `db:"quantity"`
	FinalPrice decimal.Decimal `db:"final_price"`
}
