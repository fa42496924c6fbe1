package settlement

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"salepoint/m/domain"
)

// ReturnSelection is one line of user input on the returns screen: how many
// units of an original sale line come back, and in what condition. A zero
// quantity means the line is not returned.
type ReturnSelection struct {
	SaleItemID int64  `json:"sale_item_id"`
	Quantity   int64  `json:"quantity"`
	Condition  string `json:"condition,omitempty"`
}

// CreateSaleReturnData is the validated payload for creating a sale return.
type CreateSaleReturnData struct {
	OriginalSaleID int64                      `json:"original_sale_id"`
	ClientID       *int64                     `json:"client_id,omitempty"`
	ReturnDate     string                     `json:"return_date"`
	Status         domain.ReturnStatus        `json:"status"`
	CreditAction   domain.CreditAction        `json:"credit_action"`
	RefundedAmount decimal.Decimal            `json:"refunded_amount"`
	Items          []CreateSaleReturnItemData `json:"items"`
}

// CreateSaleReturnItemData is one returned line within CreateSaleReturnData.
type CreateSaleReturnItemData struct {
	OriginalSaleItemID int64  `json:"original_sale_item_id"`
	ProductID          int64  `json:"product_id"`
	QuantityReturned   int64  `json:"quantity_returned"`
	Condition          string `json:"condition,omitempty"`
}

// BuildReturn validates the selected return quantities against the sale and
// its prior returns, computes the refunded amount from the original unit
// prices, and shapes the create payload. It has no side effects; the caller
// persists the payload. The refunded amount is computed here for every credit
// action, refund or not.
func BuildReturn(sale *domain.Sale, priorReturns []domain.SaleReturn, selections []ReturnSelection, creditAction domain.CreditAction) (*CreateSaleReturnData, error) {
	eligible, err := MaxReturnable(sale, priorReturns)
	if err != nil {
		return nil, err
	}
	if !domain.ValidCreditAction(creditAction) {
		return nil, &ValidationError{Err: ErrInvalidCreditAction, Details: string(creditAction)}
	}

	itemsByID := make(map[int64]domain.SaleLineItem, len(sale.Items))
	for _, item := range sale.Items {
		itemsByID[item.ID] = item
	}

	refunded := decimal.Zero
	var items []CreateSaleReturnItemData
	for _, sel := range selections {
		if sel.Quantity <= 0 {
			continue
		}
		orig, ok := itemsByID[sel.SaleItemID]
		if !ok {
			return nil, &ValidationError{
				Err:     ErrUnknownLineItem,
				Details: fmt.Sprintf("sale item %d is not part of sale %d", sel.SaleItemID, sale.ID),
			}
		}
		if sel.Quantity > eligible[sel.SaleItemID] {
			return nil, &ValidationError{
				Err:     ErrOverReturn,
				Details: fmt.Sprintf("sale item %d: requested %d, returnable %d", sel.SaleItemID, sel.Quantity, eligible[sel.SaleItemID]),
			}
		}

		lineRefund, err := Calc(decimal.NewFromInt(sel.Quantity), orig.UnitPrice, OpMultiply, CurrencyPrecision)
		if err != nil {
			return nil, err
		}
		refunded, err = Calc(refunded, lineRefund, OpAdd, CurrencyPrecision)
		if err != nil {
			return nil, err
		}

		items = append(items, CreateSaleReturnItemData{
			OriginalSaleItemID: orig.ID,
			ProductID:          orig.ProductID,
			QuantityReturned:   sel.Quantity,
			Condition:          sel.Condition,
		})
	}

	if len(items) == 0 {
		return nil, &ValidationError{Err: ErrNothingToReturn}
	}

	return &CreateSaleReturnData{
		OriginalSaleID: sale.ID,
		ClientID:       sale.ClientID,
		ReturnDate:     time.Now().Format("2006-01-02"),
		Status:         domain.ReturnCompleted,
		CreditAction:   creditAction,
		RefundedAmount: refunded,
		Items:          items,
	}, nil
}
