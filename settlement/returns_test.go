package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salepoint/m/domain"
)

func TestBuildReturn(t *testing.T) {
	sale := testSale()
	selections := []ReturnSelection{
		{SaleItemID: 1, Quantity: 2, Condition: "damaged"},
		{SaleItemID: 2, Quantity: 0},
	}

	got, err := BuildReturn(sale, nil, selections, domain.CreditRefund)
	require.NoError(t, err)

	assert.Equal(t, sale.ID, got.OriginalSaleID)
	assert.Equal(t, domain.ReturnCompleted, got.Status)
	assert.Equal(t, domain.CreditRefund, got.CreditAction)
	assert.True(t, got.RefundedAmount.Equal(dec("20.00")), "refunded %s", got.RefundedAmount)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(1), got.Items[0].OriginalSaleItemID)
	assert.Equal(t, int64(11), got.Items[0].ProductID)
	assert.Equal(t, int64(2), got.Items[0].QuantityReturned)
	assert.Equal(t, "damaged", got.Items[0].Condition)
}

// The refunded amount is computed the same way for every credit action.
func TestBuildReturnRefundedAmountIndependentOfCreditAction(t *testing.T) {
	selections := []ReturnSelection{{SaleItemID: 2, Quantity: 1}}
	for _, action := range []domain.CreditAction{domain.CreditRefund, domain.CreditStoreCredit, domain.CreditNone} {
		got, err := BuildReturn(testSale(), nil, selections, action)
		require.NoError(t, err)
		assert.True(t, got.RefundedAmount.Equal(dec("25.00")), "action %s: refunded %s", action, got.RefundedAmount)
	}
}

func TestBuildReturnNothingSelected(t *testing.T) {
	selections := []ReturnSelection{{SaleItemID: 1, Quantity: 0}}
	_, err := BuildReturn(testSale(), nil, selections, domain.CreditRefund)
	assert.ErrorIs(t, err, ErrNothingToReturn)

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestBuildReturnOverEligibility(t *testing.T) {
	selections := []ReturnSelection{{SaleItemID: 1, Quantity: 4}}
	_, err := BuildReturn(testSale(), nil, selections, domain.CreditRefund)
	assert.ErrorIs(t, err, ErrOverReturn)
}

func TestBuildReturnCountsPriorReturns(t *testing.T) {
	prior := []domain.SaleReturn{priorReturn(domain.ReturnCompleted, 1, 2)}
	selections := []ReturnSelection{{SaleItemID: 1, Quantity: 2}}
	_, err := BuildReturn(testSale(), prior, selections, domain.CreditRefund)
	assert.ErrorIs(t, err, ErrOverReturn)

	selections[0].Quantity = 1
	got, err := BuildReturn(testSale(), prior, selections, domain.CreditRefund)
	require.NoError(t, err)
	assert.True(t, got.RefundedAmount.Equal(dec("10.00")))
}

func TestBuildReturnUnknownLineItem(t *testing.T) {
	selections := []ReturnSelection{{SaleItemID: 99, Quantity: 1}}
	_, err := BuildReturn(testSale(), nil, selections, domain.CreditRefund)
	assert.ErrorIs(t, err, ErrUnknownLineItem)
}

func TestBuildReturnInvalidCreditAction(t *testing.T) {
	selections := []ReturnSelection{{SaleItemID: 1, Quantity: 1}}
	_, err := BuildReturn(testSale(), nil, selections, domain.CreditAction("gift_card"))
	assert.ErrorIs(t, err, ErrInvalidCreditAction)
}

func TestBuildReturnMissingSale(t *testing.T) {
	_, err := BuildReturn(nil, nil, nil, domain.CreditRefund)
	assert.ErrorIs(t, err, ErrNotFound)
}

// Building a return and applying it as a prior return reduces eligibility by
// exactly the returned quantity.
func TestBuildReturnRoundTripReducesEligibility(t *testing.T) {
	sale := testSale()
	selections := []ReturnSelection{{SaleItemID: 1, Quantity: 2}}

	payload, err := BuildReturn(sale, nil, selections, domain.CreditStoreCredit)
	require.NoError(t, err)

	applied := domain.SaleReturn{
		OriginalSaleID: payload.OriginalSaleID,
		Status:         payload.Status,
	}
	for _, item := range payload.Items {
		applied.Items = append(applied.Items, domain.SaleReturnItem{
			OriginalSaleItemID: item.OriginalSaleItemID,
			ProductID:          item.ProductID,
			QuantityReturned:   item.QuantityReturned,
		})
	}

	eligible, err := MaxReturnable(sale, []domain.SaleReturn{applied})
	require.NoError(t, err)
	assert.Equal(t, int64(1), eligible[1])
	assert.Equal(t, int64(1), eligible[2])
}
