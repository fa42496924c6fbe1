package api

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salepoint/m/domain"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestBuildPayments(t *testing.T) {
	payments, err := buildPayments([]salePaymentRequest{
		{Method: domain.MethodCash, Amount: dec(t, "20.005")},
		{Method: domain.MethodVisa, Amount: dec(t, "10.00"), PaymentDate: "2026-01-15", ReferenceNumber: "TXN-1"},
	})
	require.NoError(t, err)
	require.Len(t, payments, 2)

	assert.True(t, payments[0].Amount.Equal(dec(t, "20.01")), "amount rounded to currency precision")
	assert.Equal(t, time.Now().Format("2006-01-02"), payments[0].PaymentDate)
	assert.Equal(t, "2026-01-15", payments[1].PaymentDate)
	require.NotNil(t, payments[1].ReferenceNumber)
	assert.Equal(t, "TXN-1", *payments[1].ReferenceNumber)
}

func TestBuildPaymentsRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		req  salePaymentRequest
	}{
		{"unknown method", salePaymentRequest{Method: "cheque", Amount: dec(t, "10.00")}},
		{"zero amount", salePaymentRequest{Method: domain.MethodCash}},
		{"negative amount", salePaymentRequest{Method: domain.MethodCash, Amount: dec(t, "-5.00")}},
		{"bad date", salePaymentRequest{Method: domain.MethodCash, Amount: dec(t, "5.00"), PaymentDate: "15/01/2026"}},
		{"future date", salePaymentRequest{Method: domain.MethodCash, Amount: dec(t, "5.00"), PaymentDate: time.Now().AddDate(0, 0, 1).Format("2006-01-02")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := buildPayments([]salePaymentRequest{tc.req})
			assert.Error(t, err)
		})
	}
}

func TestSaleDiscount(t *testing.T) {
	d, err := saleDiscount(dec(t, "10"), domain.DiscountPercentage)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, domain.DiscountPercentage, d.Type)

	d, err = saleDiscount(decimal.Zero, "")
	require.NoError(t, err)
	assert.Nil(t, d, "no discount configured")

	_, err = saleDiscount(dec(t, "10"), "")
	assert.Error(t, err, "positive amount requires a discount type")

	_, err = saleDiscount(dec(t, "-5.00"), domain.DiscountFixed)
	assert.Error(t, err, "negative amounts are rejected before they reach storage")
}

func TestDateOrToday(t *testing.T) {
	got, err := dateOrToday("")
	require.NoError(t, err)
	assert.Equal(t, time.Now().Format("2006-01-02"), got)

	got, err = dateOrToday(" 2026-03-01 ")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", got)

	_, err = dateOrToday("March 1")
	assert.Error(t, err)
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty("   "))
	got := nullIfEmpty(" x ")
	require.NotNil(t, got)
	assert.Equal(t, "x", *got)
}
