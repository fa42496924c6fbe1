package settlement

import (
	"github.com/shopspring/decimal"

	"salepoint/m/domain"
)

// Discount is the discount configuration of a sale. A percentage discount
// applies to the pre-discount subtotal; a fixed discount is an absolute
// subtraction. Either way the result is clamped so the total never goes
// negative.
type Discount struct {
	Amount decimal.Decimal
	Type   domain.DiscountType
}

// Totals is the consistent derived view of a sale. Every UI surface and
// handler reads these five values from here instead of recomputing them.
type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	AmountDue     decimal.Decimal `json:"amount_due"`
}

var oneHundred = decimal.NewFromInt(100)

// ComputeTotals derives subtotal, discount value, grand total, total paid and
// amount due from line items, discount configuration and recorded payments.
// discount may be nil. The function is pure: identical inputs always produce
// identical totals.
func ComputeTotals(items []domain.SaleLineItem, discount *Discount, payments []domain.Payment) (Totals, error) {
	var t Totals

	subtotal := decimal.Zero
	for _, item := range items {
		lineTotal, err := Calc(decimal.NewFromInt(item.Quantity), item.UnitPrice, OpMultiply, CurrencyPrecision)
		if err != nil {
			return Totals{}, err
		}
		subtotal, err = Calc(subtotal, lineTotal, OpAdd, CurrencyPrecision)
		if err != nil {
			return Totals{}, err
		}
	}
	t.Subtotal = subtotal

	discountValue := decimal.Zero
	if discount != nil && discount.Amount.IsPositive() {
		if discount.Type == domain.DiscountPercentage {
			rate, err := Calc(discount.Amount, oneHundred, OpDivide, 4)
			if err != nil {
				return Totals{}, err
			}
			discountValue, err = Calc(subtotal, rate, OpMultiply, CurrencyPrecision)
			if err != nil {
				return Totals{}, err
			}
		} else {
			discountValue = discount.Amount.Round(CurrencyPrecision)
		}
	}
	// Clamp to [0, subtotal] regardless of how large the configured discount is.
	if discountValue.IsNegative() {
		discountValue = decimal.Zero
	}
	if discountValue.GreaterThan(subtotal) {
		discountValue = subtotal
	}
	t.DiscountValue = discountValue

	grandTotal, err := Calc(subtotal, discountValue, OpSubtract, CurrencyPrecision)
	if err != nil {
		return Totals{}, err
	}
	t.GrandTotal = grandTotal

	totalPaid := decimal.Zero
	for _, p := range payments {
		totalPaid, err = Calc(totalPaid, p.Amount, OpAdd, CurrencyPrecision)
		if err != nil {
			return Totals{}, err
		}
	}
	t.TotalPaid = totalPaid

	amountDue, err := Calc(grandTotal, totalPaid, OpSubtract, CurrencyPrecision)
	if err != nil {
		return Totals{}, err
	}
	if amountDue.IsNegative() {
		amountDue = decimal.Zero
	}
	t.AmountDue = amountDue

	return t, nil
}

// CheckPayment reports whether adding amount on top of the already recorded
// payments would push total paid above the grand total. Overpayment is a soft
// condition: callers surface it as a warning and may still accept the payment
// (cash change scenarios).
func CheckPayment(t Totals, amount decimal.Decimal) (bool, error) {
	paid, err := Calc(t.TotalPaid, amount, OpAdd, CurrencyPrecision)
	if err != nil {
		return false, err
	}
	return paid.GreaterThan(t.GrandTotal), nil
}
