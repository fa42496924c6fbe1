package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salepoint/m/domain"
)

// Two items: qty 3 @ 10.00 and qty 1 @ 25.00 -> subtotal 55.00.
func testItems() []domain.SaleLineItem {
	return []domain.SaleLineItem{
		{ID: 1, SaleID: 1, ProductID: 11, Quantity: 3, UnitPrice: dec("10.00")},
		{ID: 2, SaleID: 1, ProductID: 12, Quantity: 1, UnitPrice: dec("25.00")},
	}
}

func payment(amount string) domain.Payment {
	return domain.Payment{SaleID: 1, Method: domain.MethodCash, Amount: dec(amount)}
}

func TestComputeTotalsNoDiscount(t *testing.T) {
	got, err := ComputeTotals(testItems(), nil, []domain.Payment{payment("55.00")})
	require.NoError(t, err)

	assert.True(t, got.Subtotal.Equal(dec("55.00")), "subtotal %s", got.Subtotal)
	assert.True(t, got.DiscountValue.IsZero())
	assert.True(t, got.GrandTotal.Equal(dec("55.00")), "grand total %s", got.GrandTotal)
	assert.True(t, got.TotalPaid.Equal(dec("55.00")))
	assert.True(t, got.AmountDue.IsZero(), "amount due %s", got.AmountDue)
}

func TestComputeTotalsPercentageDiscount(t *testing.T) {
	discount := &Discount{Amount: dec("10"), Type: domain.DiscountPercentage}
	got, err := ComputeTotals(testItems(), discount, nil)
	require.NoError(t, err)

	assert.True(t, got.DiscountValue.Equal(dec("5.50")), "discount %s", got.DiscountValue)
	assert.True(t, got.GrandTotal.Equal(dec("49.50")), "grand total %s", got.GrandTotal)
	assert.True(t, got.AmountDue.Equal(dec("49.50")))
}

func TestComputeTotalsFixedDiscount(t *testing.T) {
	discount := &Discount{Amount: dec("5.00"), Type: domain.DiscountFixed}
	got, err := ComputeTotals(testItems(), discount, nil)
	require.NoError(t, err)

	assert.True(t, got.DiscountValue.Equal(dec("5.00")))
	assert.True(t, got.GrandTotal.Equal(dec("50.00")))
}

// A discount larger than the subtotal is clamped so the total never goes negative.
func TestComputeTotalsDiscountClamped(t *testing.T) {
	cases := []struct {
		name     string
		discount Discount
	}{
		{"fixed above subtotal", Discount{Amount: dec("500.00"), Type: domain.DiscountFixed}},
		{"percentage above 100", Discount{Amount: dec("250"), Type: domain.DiscountPercentage}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ComputeTotals(testItems(), &tc.discount, nil)
			require.NoError(t, err)
			assert.True(t, got.DiscountValue.Equal(got.Subtotal), "discount %s, subtotal %s", got.DiscountValue, got.Subtotal)
			assert.True(t, got.GrandTotal.IsZero())
		})
	}
}

func TestComputeTotalsNegativeDiscountIgnored(t *testing.T) {
	discount := &Discount{Amount: dec("-5.00"), Type: domain.DiscountFixed}
	got, err := ComputeTotals(testItems(), discount, nil)
	require.NoError(t, err)
	assert.True(t, got.DiscountValue.IsZero())
	assert.True(t, got.GrandTotal.Equal(dec("55.00")))
}

// Overpayment never produces a negative amount due.
func TestComputeTotalsAmountDueClampedAtZero(t *testing.T) {
	got, err := ComputeTotals(testItems(), nil, []domain.Payment{payment("60.00")})
	require.NoError(t, err)
	assert.True(t, got.TotalPaid.Equal(dec("60.00")))
	assert.True(t, got.AmountDue.IsZero())
}

func TestComputeTotalsPartialPayments(t *testing.T) {
	payments := []domain.Payment{payment("20.00"), payment("15.00")}
	got, err := ComputeTotals(testItems(), nil, payments)
	require.NoError(t, err)
	assert.True(t, got.TotalPaid.Equal(dec("35.00")))
	assert.True(t, got.AmountDue.Equal(dec("20.00")))
}

func TestComputeTotalsEmptySale(t *testing.T) {
	got, err := ComputeTotals(nil, nil, nil)
	require.NoError(t, err)
	assert.True(t, got.Subtotal.IsZero())
	assert.True(t, got.GrandTotal.IsZero())
	assert.True(t, got.AmountDue.IsZero())
}

// Calling the engine twice with identical inputs yields identical outputs.
func TestComputeTotalsIdempotent(t *testing.T) {
	items := testItems()
	discount := &Discount{Amount: dec("10"), Type: domain.DiscountPercentage}
	payments := []domain.Payment{payment("20.00")}

	first, err := ComputeTotals(items, discount, payments)
	require.NoError(t, err)
	second, err := ComputeTotals(items, discount, payments)
	require.NoError(t, err)

	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.DiscountValue.Equal(second.DiscountValue))
	assert.True(t, first.GrandTotal.Equal(second.GrandTotal))
	assert.True(t, first.TotalPaid.Equal(second.TotalPaid))
	assert.True(t, first.AmountDue.Equal(second.AmountDue))
}

func TestCheckPayment(t *testing.T) {
	totals, err := ComputeTotals(testItems(), nil, []domain.Payment{payment("50.00")})
	require.NoError(t, err)

	over, err := CheckPayment(totals, dec("5.00"))
	require.NoError(t, err)
	assert.False(t, over, "paying exactly the grand total is not overpayment")

	over, err = CheckPayment(totals, dec("5.01"))
	require.NoError(t, err)
	assert.True(t, over)
}
