package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"

	"salepoint/m/domain"
	"salepoint/m/settlement"
)

// Sale return handlers

type returnableLineResponse struct {
	SaleItemID    int64  `json:"sale_item_id"`
	ProductID     int64  `json:"product_id"`
	ProductName   string `json:"product_name"`
	QuantitySold  int64  `json:"quantity_sold"`
	MaxReturnable int64  `json:"max_returnable"`
}

func (h *Handler) returnableItems(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid sale id")
		return
	}
	sale, err := h.loadSale(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "sale not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load sale")
		return
	}
	priorReturns, err := h.loadReturnsForSale(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load returns")
		return
	}

	eligible, err := settlement.MaxReturnable(sale, priorReturns)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to compute eligibility")
		return
	}

	names, err := h.productNames(sale.Items)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load products")
		return
	}

	lines := make([]returnableLineResponse, len(sale.Items))
	for i, item := range sale.Items {
		lines[i] = returnableLineResponse{
			SaleItemID:    item.ID,
			ProductID:     item.ProductID,
			ProductName:   names[item.ProductID],
			QuantitySold:  item.Quantity,
			MaxReturnable: eligible[item.ID],
		}
	}
	respondJSON(w, http.StatusOK, lines)
}

type saleReturnRequest struct {
	OriginalSaleID int64                        `json:"original_sale_id"`
	CreditAction   domain.CreditAction          `json:"credit_action"`
	Items          []settlement.ReturnSelection `json:"items"`
}

func (h *Handler) createSaleReturn(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin", "cashier") {
		return
	}

	var req saleReturnRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OriginalSaleID <= 0 {
		respondError(w, http.StatusBadRequest, "original_sale_id is required")
		return
	}

	sale, err := h.loadSale(req.OriginalSaleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "sale not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load sale")
		return
	}
	priorReturns, err := h.loadReturnsForSale(req.OriginalSaleID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load returns")
		return
	}

	payload, err := settlement.BuildReturn(sale, priorReturns, req.Items, req.CreditAction)
	if err != nil {
		var verr *settlement.ValidationError
		if errors.As(err, &verr) {
			respondError(w, http.StatusUnprocessableEntity, verr.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to build return")
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer tx.Rollback()

	// Revalidate inside the transaction: a concurrent return against the same
	// sale must not push total returned quantities past what was sold.
	if err := h.revalidateReturn(tx, sale, payload); err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}

	var returnID int64
	err = tx.QueryRow(`
		INSERT INTO sale_returns (original_sale_id, client_id, return_date, status, credit_action, refunded_amount)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		payload.OriginalSaleID, payload.ClientID, payload.ReturnDate, payload.Status, payload.CreditAction, payload.RefundedAmount).Scan(&returnID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create return record")
		return
	}

	for _, item := range payload.Items {
		if _, err := tx.Exec(`
			INSERT INTO sale_return_items (sale_return_id, original_sale_item_id, product_id, quantity_returned, condition)
			VALUES ($1, $2, $3, $4, $5)`,
			returnID, item.OriginalSaleItemID, item.ProductID, item.QuantityReturned, nullIfEmpty(item.Condition)); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to add return items")
			return
		}
		if _, err := tx.Exec(`UPDATE products SET quantity = quantity + $1, updated_at = NOW() WHERE id = $2`, item.QuantityReturned, item.ProductID); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to restock returned items")
			return
		}
	}

	if payload.CreditAction == domain.CreditStoreCredit && payload.ClientID != nil {
		if _, err := tx.Exec(`UPDATE clients SET store_credit = store_credit + $1 WHERE id = $2`, payload.RefundedAmount, *payload.ClientID); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to credit client")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to finalize return")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"return_id":       returnID,
		"refunded_amount": payload.RefundedAmount,
		"credit_action":   payload.CreditAction,
		"status":          payload.Status,
	})
}

func (h *Handler) listSaleReturns(w http.ResponseWriter, r *http.Request) {
	var (
		args    []any
		clauses []string
	)

	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		args = append(args, status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if saleID := strings.TrimSpace(r.URL.Query().Get("sale_id")); saleID != "" {
		sid, err := strconv.ParseInt(saleID, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid sale_id")
			return
		}
		args = append(args, sid)
		clauses = append(clauses, fmt.Sprintf("original_sale_id = $%d", len(args)))
	}

	query := `SELECT id, original_sale_id, client_id, return_date, status, credit_action, refunded_amount, created_at FROM sale_returns`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	var returns []domain.SaleReturn
	if err := h.db.Select(&returns, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to fetch returns")
		return
	}
	if len(returns) == 0 {
		respondJSON(w, http.StatusOK, []domain.SaleReturn{})
		return
	}

	ids := make([]int64, len(returns))
	for i, ret := range returns {
		ids[i] = ret.ID
	}
	itemsQuery, itemsArgs, err := sqlx.In(`SELECT id, sale_return_id, original_sale_item_id, product_id, quantity_returned, condition FROM sale_return_items WHERE sale_return_id IN (?) ORDER BY id`, ids)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to prepare return items query")
		return
	}
	var items []domain.SaleReturnItem
	if err := h.db.Select(&items, h.db.Rebind(itemsQuery), itemsArgs...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load return items")
		return
	}
	itemsByReturn := make(map[int64][]domain.SaleReturnItem)
	for _, item := range items {
		itemsByReturn[item.SaleReturnID] = append(itemsByReturn[item.SaleReturnID], item)
	}
	for i := range returns {
		returns[i].Items = itemsByReturn[returns[i].ID]
	}

	respondJSON(w, http.StatusOK, returns)
}

// Shared return loading

func (h *Handler) loadReturnsForSale(saleID int64) ([]domain.SaleReturn, error) {
	var returns []domain.SaleReturn
	if err := h.db.Select(&returns, `SELECT id, original_sale_id, client_id, return_date, status, credit_action, refunded_amount, created_at FROM sale_returns WHERE original_sale_id = $1 ORDER BY id`, saleID); err != nil {
		return nil, err
	}
	for i := range returns {
		if err := h.db.Select(&returns[i].Items, `SELECT id, sale_return_id, original_sale_item_id, product_id, quantity_returned, condition FROM sale_return_items WHERE sale_return_id = $1 ORDER BY id`, returns[i].ID); err != nil {
			return nil, err
		}
	}
	return returns, nil
}

// revalidateReturn re-reads returned quantities with the sale rows locked and
// rejects the payload if any line would exceed its sold quantity.
func (h *Handler) revalidateReturn(tx *sqlx.Tx, sale *domain.Sale, payload *settlement.CreateSaleReturnData) error {
	if _, err := tx.Exec(`SELECT id FROM sales WHERE id = $1 FOR UPDATE`, sale.ID); err != nil {
		return errors.New("unable to lock sale")
	}
	for _, item := range payload.Items {
		var returned int64
		err := tx.Get(&returned, `
			SELECT COALESCE(SUM(ri.quantity_returned), 0)
			FROM sale_return_items ri
			JOIN sale_returns sr ON sr.id = ri.sale_return_id
			WHERE ri.original_sale_item_id = $1 AND sr.status <> 'cancelled'`, item.OriginalSaleItemID)
		if err != nil {
			return errors.New("unable to verify returned quantities")
		}
		var sold int64
		if err := tx.Get(&sold, `SELECT quantity FROM sale_items WHERE id = $1`, item.OriginalSaleItemID); err != nil {
			return errors.New("unable to verify sold quantities")
		}
		if returned+item.QuantityReturned > sold {
			return fmt.Errorf("sale item %d was returned concurrently; only %d left", item.OriginalSaleItemID, sold-returned)
		}
	}
	return nil
}

func (h *Handler) productNames(items []domain.SaleLineItem) (map[int64]string, error) {
	if len(items) == 0 {
		return map[int64]string{}, nil
	}
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}
	query, args, err := sqlx.In(`SELECT id, name FROM products WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	rows := []struct {
		ID   int64  `db:"id"`
		Name string `db:"name"`
	}{}
	if err := h.db.Select(&rows, h.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(rows))
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}
