package domain

import "github.com/shopspring/decimal"

type SaleStatus string

const (
	SaleCompleted SaleStatus = "completed"
	SalePending   SaleStatus = "pending"
	SaleDraft     SaleStatus = "draft"
	SaleCancelled SaleStatus = "cancelled"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type Sale struct {
	ID             int64           `db:"id" json:"id"`
	ClientID       *int64          `db:"client_id" json:"client_id,omitempty"`
	UserID         *int64          `db:"user_id" json:"user_id,omitempty"`
	SaleDate       string          `db:"sale_date" json:"sale_date"`
	Status         SaleStatus      `db:"status" json:"status"`
	DiscountAmount decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	DiscountType   *DiscountType   `db:"discount_type" json:"discount_type,omitempty"`
	Notes          *string         `db:"notes" json:"notes,omitempty"`
	CreatedAt      string          `db:"created_at" json:"created_at"`
	Items          []SaleLineItem  `db:"-" json:"items,omitempty"`
	Payments       []Payment       `db:"-" json:"payments,omitempty"`
}

type SaleLineItem struct {
	ID         int64           `db:"id" json:"id"`
	SaleID     int64           `db:"sale_id" json:"sale_id"`
	ProductID  int64           `db:"product_id" json:"product_id"`
	Quantity   int64           `db:"quantity" json:"quantity"`
	UnitPrice  decimal.Decimal `db:"unit_price" json:"unit_price"`
	TotalPrice decimal.Decimal `db:"total_price" json:"total_price"`
}
