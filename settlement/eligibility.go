package settlement

import "salepoint/m/domain"

// MaxReturnable computes, for every line item of the original sale, how many
// units can still be returned after all prior non-cancelled returns against
// that sale. Quantities are clamped at zero so inconsistent data never yields
// a negative allowance.
func MaxReturnable(sale *domain.Sale, priorReturns []domain.SaleReturn) (map[int64]int64, error) {
	if sale == nil {
		return nil, ErrNotFound
	}

	returned := make(map[int64]int64)
	for _, ret := range priorReturns {
		if ret.Status == domain.ReturnCancelled {
			continue
		}
		for _, item := range ret.Items {
			returned[item.OriginalSaleItemID] += item.QuantityReturned
		}
	}

	eligible := make(map[int64]int64, len(sale.Items))
	for _, item := range sale.Items {
		remaining := item.Quantity - returned[item.ID]
		if remaining < 0 {
			remaining = 0
		}
		eligible[item.ID] = remaining
	}
	return eligible, nil
}
