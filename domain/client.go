package domain

import "github.com/shopspring/decimal"

type Client struct {
	ID          int64           `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Phone       string          `db:"phone" json:"phone"`
	Email       string          `db:"email" json:"email"`
	Address     string          `db:"address" json:"address"`
	StoreCredit decimal.Decimal `db:"store_credit" json:"store_credit"`
	CreatedAt   string          `db:"created_at" json:"created_at"`
}
