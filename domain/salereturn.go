package domain

import "github.com/shopspring/decimal"

type ReturnStatus string

const (
	ReturnPending   ReturnStatus = "pending"
	ReturnCompleted ReturnStatus = "completed"
	ReturnCancelled ReturnStatus = "cancelled"
)

type CreditAction string

const (
	CreditRefund      CreditAction = "refund"
	CreditStoreCredit CreditAction = "store_credit"
	CreditNone        CreditAction = "none"
)

// ValidCreditAction reports whether a is one of the accepted credit actions.
func ValidCreditAction(a CreditAction) bool {
	switch a {
	case CreditRefund, CreditStoreCredit, CreditNone:
		return true
	}
	return false
}

type SaleReturn struct {
	ID             int64            `db:"id" json:"id"`
	OriginalSaleID int64            `db:"original_sale_id" json:"original_sale_id"`
	ClientID       *int64           `db:"client_id" json:"client_id,omitempty"`
	ReturnDate     string           `db:"return_date" json:"return_date"`
	Status         ReturnStatus     `db:"status" json:"status"`
	CreditAction   CreditAction     `db:"credit_action" json:"credit_action"`
	RefundedAmount decimal.Decimal  `db:"refunded_amount" json:"refunded_amount"`
	CreatedAt      string           `db:"created_at" json:"created_at"`
	Items          []SaleReturnItem `db:"-" json:"items,omitempty"`
}

type SaleReturnItem struct {
	ID                 int64   `db:"id" json:"id"`
	SaleReturnID       int64   `db:"sale_return_id" json:"sale_return_id"`
	OriginalSaleItemID int64   `db:"original_sale_item_id" json:"original_sale_item_id"`
	ProductID          int64   `db:"product_id" json:"product_id"`
	QuantityReturned   int64   `db:"quantity_returned" json:"quantity_returned"`
	Condition          *string `db:"condition" json:"condition,omitempty"`
}
