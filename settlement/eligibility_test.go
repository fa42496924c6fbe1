package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salepoint/m/domain"
)

func testSale() *domain.Sale {
	return &domain.Sale{
		ID:     1,
		Status: domain.SaleCompleted,
		Items:  testItems(),
	}
}

func priorReturn(status domain.ReturnStatus, itemID, qty int64) domain.SaleReturn {
	return domain.SaleReturn{
		OriginalSaleID: 1,
		Status:         status,
		Items: []domain.SaleReturnItem{
			{OriginalSaleItemID: itemID, QuantityReturned: qty},
		},
	}
}

func TestMaxReturnableNoPriorReturns(t *testing.T) {
	got, err := MaxReturnable(testSale(), nil)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{1: 3, 2: 1}, got)
}

func TestMaxReturnableSubtractsPriorReturns(t *testing.T) {
	prior := []domain.SaleReturn{
		priorReturn(domain.ReturnCompleted, 1, 2),
		priorReturn(domain.ReturnPending, 2, 1),
	}
	got, err := MaxReturnable(testSale(), prior)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{1: 1, 2: 0}, got)
}

func TestMaxReturnableIgnoresCancelledReturns(t *testing.T) {
	prior := []domain.SaleReturn{
		priorReturn(domain.ReturnCancelled, 1, 3),
	}
	got, err := MaxReturnable(testSale(), prior)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{1: 3, 2: 1}, got)
}

// Inconsistent data (more returned than sold) clamps at zero instead of going negative.
func TestMaxReturnableClampedAtZero(t *testing.T) {
	prior := []domain.SaleReturn{
		priorReturn(domain.ReturnCompleted, 1, 5),
	}
	got, err := MaxReturnable(testSale(), prior)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got[1])
}

func TestMaxReturnableMissingSale(t *testing.T) {
	_, err := MaxReturnable(nil, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}
