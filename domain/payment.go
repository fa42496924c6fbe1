package domain

import "github.com/shopspring/decimal"

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodVisa         PaymentMethod = "visa"
	MethodMastercard   PaymentMethod = "mastercard"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodMada         PaymentMethod = "mada"
	MethodStoreCredit  PaymentMethod = "store_credit"
	MethodOther        PaymentMethod = "other"
)

// ValidPaymentMethod reports whether m is one of the accepted payment methods.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case MethodCash, MethodVisa, MethodMastercard, MethodBankTransfer, MethodMada, MethodStoreCredit, MethodOther:
		return true
	}
	return false
}

type Payment struct {
	ID              int64           `db:"id" json:"id"`
	SaleID          int64           `db:"sale_id" json:"sale_id"`
	Method          PaymentMethod   `db:"method" json:"method"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	PaymentDate     string          `db:"payment_date" json:"payment_date"`
	ReferenceNumber *string         `db:"reference_number" json:"reference_number,omitempty"`
	Notes           *string         `db:"notes" json:"notes,omitempty"`
	CreatedAt       string          `db:"created_at" json:"created_at"`
}
