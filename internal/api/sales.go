package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"salepoint/m/domain"
	"salepoint/m/settlement"
)

// Sales handlers

type saleItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type salePaymentRequest struct {
	Method          domain.PaymentMethod `json:"method"`
	Amount          decimal.Decimal      `json:"amount"`
	PaymentDate     string               `json:"payment_date,omitempty"`
	ReferenceNumber string               `json:"reference_number,omitempty"`
	Notes           string               `json:"notes,omitempty"`
}

type saleRequest struct {
	ClientID       *int64               `json:"client_id,omitempty"`
	SaleDate       string               `json:"sale_date,omitempty"`
	Status         domain.SaleStatus    `json:"status,omitempty"`
	Items          []saleItemRequest    `json:"items"`
	DiscountAmount decimal.Decimal      `json:"discount_amount"`
	DiscountType   domain.DiscountType  `json:"discount_type,omitempty"`
	Notes          string               `json:"notes,omitempty"`
	Payments       []salePaymentRequest `json:"payments,omitempty"`
}

type saleResponse struct {
	domain.Sale
	Totals   settlement.Totals `json:"totals"`
	Overpaid bool              `json:"overpaid,omitempty"`
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin", "cashier") {
		return
	}

	var req saleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Items) == 0 {
		respondError(w, http.StatusBadRequest, "no items in sale")
		return
	}
	status := req.Status
	if status == "" {
		status = domain.SaleCompleted
	}
	if status != domain.SaleCompleted && status != domain.SalePending && status != domain.SaleDraft {
		respondError(w, http.StatusBadRequest, "status must be completed, pending or draft")
		return
	}
	discount, err := saleDiscount(req.DiscountAmount, req.DiscountType)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	saleDate, err := dateOrToday(req.SaleDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "sale_date must be in YYYY-MM-DD format")
		return
	}
	payments, err := buildPayments(req.Payments)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID := userIDFromContext(r)
	if userID <= 0 {
		respondError(w, http.StatusForbidden, "invalid context")
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer tx.Rollback()

	items, err := buildLineItems(tx, req.Items)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	totals, err := settlement.ComputeTotals(items, discount, payments)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to compute sale totals")
		return
	}

	var saleID int64
	err = tx.QueryRow(`
		INSERT INTO sales (client_id, user_id, sale_date, status, discount_amount, discount_type, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		req.ClientID, userID, saleDate, status, req.DiscountAmount, nullDiscountType(req.DiscountType), nullIfEmpty(req.Notes)).Scan(&saleID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create sale record")
		return
	}

	if err := insertLineItems(tx, saleID, items); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to add sale items")
		return
	}
	for _, p := range payments {
		if _, err := tx.Exec(`
			INSERT INTO payments (sale_id, method, amount, payment_date, reference_number, notes)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			saleID, p.Method, p.Amount, p.PaymentDate, nullIfEmptyPtr(p.ReferenceNumber), nullIfEmptyPtr(p.Notes)); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to record payment")
			return
		}
	}
	for _, item := range items {
		if _, err := tx.Exec(`UPDATE products SET quantity = quantity - $1, updated_at = NOW() WHERE id = $2`, item.Quantity, item.ProductID); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to update stock")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to finalize sale")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"sale_id":  saleID,
		"totals":   totals,
		"overpaid": totals.TotalPaid.GreaterThan(totals.GrandTotal),
	})
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
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
	discount, err := saleDiscount(sale.DiscountAmount, discountTypeOrEmpty(sale.DiscountType))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "sale has an inconsistent discount")
		return
	}
	totals, err := settlement.ComputeTotals(sale.Items, discount, sale.Payments)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to compute sale totals")
		return
	}
	respondJSON(w, http.StatusOK, saleResponse{Sale: *sale, Totals: totals})
}

// updateSale replaces the item set of a sale that has no returns against it,
// restoring stock for the removed quantities first.
func (h *Handler) updateSale(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin", "cashier") {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid sale id")
		return
	}
	var req saleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Items) == 0 {
		respondError(w, http.StatusBadRequest, "no items in sale")
		return
	}
	discount, err := saleDiscount(req.DiscountAmount, req.DiscountType)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
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
	if sale.Status == domain.SaleCancelled {
		respondError(w, http.StatusConflict, "cancelled sales cannot be edited")
		return
	}
	var returnCount int64
	if err := h.db.Get(&returnCount, `SELECT COUNT(*) FROM sale_returns WHERE original_sale_id = $1 AND status <> 'cancelled'`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to check returns")
		return
	}
	if returnCount > 0 {
		respondError(w, http.StatusConflict, "sale has returns and cannot be edited")
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer tx.Rollback()

	// Restore stock from the old item set before applying the new one.
	for _, item := range sale.Items {
		if _, err := tx.Exec(`UPDATE products SET quantity = quantity + $1, updated_at = NOW() WHERE id = $2`, item.Quantity, item.ProductID); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to restore stock")
			return
		}
	}
	if _, err := tx.Exec(`DELETE FROM sale_items WHERE sale_id = $1`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to replace sale items")
		return
	}

	items, err := buildLineItems(tx, req.Items)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := insertLineItems(tx, id, items); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to add sale items")
		return
	}
	for _, item := range items {
		if _, err := tx.Exec(`UPDATE products SET quantity = quantity - $1, updated_at = NOW() WHERE id = $2`, item.Quantity, item.ProductID); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to update stock")
			return
		}
	}

	if _, err := tx.Exec(`UPDATE sales SET client_id = $1, discount_amount = $2, discount_type = $3, notes = $4 WHERE id = $5`,
		req.ClientID, req.DiscountAmount, nullDiscountType(req.DiscountType), nullIfEmpty(req.Notes), id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update sale")
		return
	}

	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to finalize sale update")
		return
	}

	totals, err := settlement.ComputeTotals(items, discount, sale.Payments)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to compute sale totals")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "updated", "totals": totals})
}

func (h *Handler) addPayment(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin", "cashier") {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid sale id")
		return
	}
	var req salePaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	payments, err := buildPayments([]salePaymentRequest{req})
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	payment := payments[0]

	sale, err := h.loadSale(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "sale not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load sale")
		return
	}

	discount, err := saleDiscount(sale.DiscountAmount, discountTypeOrEmpty(sale.DiscountType))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "sale has an inconsistent discount")
		return
	}
	totals, err := settlement.ComputeTotals(sale.Items, discount, sale.Payments)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to compute sale totals")
		return
	}
	// Overpayment is reported but not rejected; cash sales may hand back change.
	overpaid, err := settlement.CheckPayment(totals, payment.Amount)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to validate payment")
		return
	}

	var paymentID int64
	err = h.db.QueryRowx(`
		INSERT INTO payments (sale_id, method, amount, payment_date, reference_number, notes)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		id, payment.Method, payment.Amount, payment.PaymentDate, nullIfEmptyPtr(payment.ReferenceNumber), nullIfEmptyPtr(payment.Notes)).Scan(&paymentID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to record payment")
		return
	}

	sale.Payments = append(sale.Payments, payment)
	totals, err = settlement.ComputeTotals(sale.Items, discount, sale.Payments)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to compute sale totals")
		return
	}

	resp := map[string]any{"payment_id": paymentID, "totals": totals}
	if overpaid {
		resp["warning"] = "payments exceed the sale grand total"
	}
	respondJSON(w, http.StatusCreated, resp)
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	var (
		args    []any
		clauses []string
	)

	startDate := strings.TrimSpace(r.URL.Query().Get("start_date"))
	if startDate != "" {
		if _, err := time.Parse("2006-01-02", startDate); err != nil {
			respondError(w, http.StatusBadRequest, "start_date must be in YYYY-MM-DD format")
			return
		}
		args = append(args, startDate)
		clauses = append(clauses, fmt.Sprintf("sale_date >= $%d", len(args)))
	}

	endDate := strings.TrimSpace(r.URL.Query().Get("end_date"))
	if endDate != "" {
		if _, err := time.Parse("2006-01-02", endDate); err != nil {
			respondError(w, http.StatusBadRequest, "end_date must be in YYYY-MM-DD format")
			return
		}
		args = append(args, endDate)
		clauses = append(clauses, fmt.Sprintf("sale_date <= $%d", len(args)))
	}

	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		args = append(args, status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}

	if clientID := strings.TrimSpace(r.URL.Query().Get("client_id")); clientID != "" {
		cid, err := strconv.ParseInt(clientID, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid client_id")
			return
		}
		args = append(args, cid)
		clauses = append(clauses, fmt.Sprintf("client_id = $%d", len(args)))
	}

	query := `SELECT id, client_id, user_id, sale_date, status, discount_amount, discount_type, notes, created_at FROM sales`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	entries, err := h.salesWithTotals(query, args)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to fetch sales")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// Reports

func (h *Handler) dailySales(w http.ResponseWriter, r *http.Request) {
	h.revenueSummary(w, `SELECT id, client_id, user_id, sale_date, status, discount_amount, discount_type, notes, created_at
		FROM sales WHERE sale_date = CURRENT_DATE AND status <> 'cancelled'`, nil)
}

func (h *Handler) monthlySales(w http.ResponseWriter, r *http.Request) {
	h.revenueSummary(w, `SELECT id, client_id, user_id, sale_date, status, discount_amount, discount_type, notes, created_at
		FROM sales WHERE sale_date >= date_trunc('month', CURRENT_DATE) AND status <> 'cancelled'`, nil)
}

// revenueSummary sums grand totals through the settlement engine so report
// numbers can never drift from what the sale endpoints show.
func (h *Handler) revenueSummary(w http.ResponseWriter, query string, args []any) {
	entries, err := h.salesWithTotals(query, args)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to fetch sales")
		return
	}
	revenue := decimal.Zero
	for _, entry := range entries {
		revenue, err = settlement.Calc(revenue, entry.Totals.GrandTotal, settlement.OpAdd, settlement.CurrencyPrecision)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to compute revenue")
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"revenue": revenue, "sales_count": len(entries)})
}

func (h *Handler) salesReport(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	h.listSales(w, r)
}

// Shared sale loading

func (h *Handler) loadSale(id int64) (*domain.Sale, error) {
	var sale domain.Sale
	if err := h.db.Get(&sale, `SELECT id, client_id, user_id, sale_date, status, discount_amount, discount_type, notes, created_at FROM sales WHERE id = $1`, id); err != nil {
		return nil, err
	}
	if err := h.db.Select(&sale.Items, `SELECT id, sale_id, product_id, quantity, unit_price, total_price FROM sale_items WHERE sale_id = $1 ORDER BY id`, id); err != nil {
		return nil, err
	}
	if err := h.db.Select(&sale.Payments, `SELECT id, sale_id, method, amount, payment_date, reference_number, notes, created_at FROM payments WHERE sale_id = $1 ORDER BY id`, id); err != nil {
		return nil, err
	}
	return &sale, nil
}

func (h *Handler) salesWithTotals(query string, args []any) ([]saleResponse, error) {
	var sales []domain.Sale
	if err := h.db.Select(&sales, query, args...); err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return []saleResponse{}, nil
	}

	ids := make([]int64, len(sales))
	for i, sale := range sales {
		ids[i] = sale.ID
	}

	itemsQuery, itemsArgs, err := sqlx.In(`SELECT id, sale_id, product_id, quantity, unit_price, total_price FROM sale_items WHERE sale_id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	var items []domain.SaleLineItem
	if err := h.db.Select(&items, h.db.Rebind(itemsQuery), itemsArgs...); err != nil {
		return nil, err
	}
	itemsBySale := make(map[int64][]domain.SaleLineItem)
	for _, item := range items {
		itemsBySale[item.SaleID] = append(itemsBySale[item.SaleID], item)
	}

	paymentsQuery, paymentsArgs, err := sqlx.In(`SELECT id, sale_id, method, amount, payment_date, reference_number, notes, created_at FROM payments WHERE sale_id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	var payments []domain.Payment
	if err := h.db.Select(&payments, h.db.Rebind(paymentsQuery), paymentsArgs...); err != nil {
		return nil, err
	}
	paymentsBySale := make(map[int64][]domain.Payment)
	for _, p := range payments {
		paymentsBySale[p.SaleID] = append(paymentsBySale[p.SaleID], p)
	}

	entries := make([]saleResponse, len(sales))
	for i, sale := range sales {
		sale.Items = itemsBySale[sale.ID]
		sale.Payments = paymentsBySale[sale.ID]
		discount, err := saleDiscount(sale.DiscountAmount, discountTypeOrEmpty(sale.DiscountType))
		if err != nil {
			return nil, fmt.Errorf("sale %d: %w", sale.ID, err)
		}
		totals, err := settlement.ComputeTotals(sale.Items, discount, sale.Payments)
		if err != nil {
			return nil, err
		}
		entries[i] = saleResponse{Sale: sale, Totals: totals}
	}
	return entries, nil
}

// Request shaping helpers

type productSnapshot struct {
	ID        int64           `db:"id"`
	UnitPrice decimal.Decimal `db:"unit_price"`
	Quantity  int64           `db:"quantity"`
}

func buildLineItems(tx *sqlx.Tx, reqItems []saleItemRequest) ([]domain.SaleLineItem, error) {
	items := make([]domain.SaleLineItem, 0, len(reqItems))
	for _, item := range reqItems {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("quantity for product %d must be positive", item.ProductID)
		}
		var prod productSnapshot
		if err := tx.Get(&prod, `SELECT id, unit_price, quantity FROM products WHERE id = $1`, item.ProductID); err != nil {
			return nil, fmt.Errorf("product %d not found", item.ProductID)
		}
		if prod.Quantity < item.Quantity {
			return nil, fmt.Errorf("insufficient stock for product %d", item.ProductID)
		}
		totalPrice, err := settlement.Calc(decimal.NewFromInt(item.Quantity), prod.UnitPrice, settlement.OpMultiply, settlement.CurrencyPrecision)
		if err != nil {
			return nil, err
		}
		items = append(items, domain.SaleLineItem{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  prod.UnitPrice,
			TotalPrice: totalPrice,
		})
	}
	return items, nil
}

func insertLineItems(tx *sqlx.Tx, saleID int64, items []domain.SaleLineItem) error {
	for _, item := range items {
		if _, err := tx.Exec(`
			INSERT INTO sale_items (sale_id, product_id, quantity, unit_price, total_price)
			VALUES ($1, $2, $3, $4, $5)`,
			saleID, item.ProductID, item.Quantity, item.UnitPrice, item.TotalPrice); err != nil {
			return err
		}
	}
	return nil
}

func buildPayments(reqPayments []salePaymentRequest) ([]domain.Payment, error) {
	payments := make([]domain.Payment, 0, len(reqPayments))
	for _, p := range reqPayments {
		if !domain.ValidPaymentMethod(p.Method) {
			return nil, fmt.Errorf("invalid payment method %q", p.Method)
		}
		if !p.Amount.IsPositive() {
			return nil, errors.New("payment amount must be positive")
		}
		paymentDate, err := dateOrToday(p.PaymentDate)
		if err != nil {
			return nil, errors.New("payment_date must be in YYYY-MM-DD format")
		}
		if paymentDate > time.Now().Format("2006-01-02") {
			return nil, errors.New("payment_date must not be in the future")
		}
		payments = append(payments, domain.Payment{
			Method:          p.Method,
			Amount:          p.Amount.Round(settlement.CurrencyPrecision),
			PaymentDate:     paymentDate,
			ReferenceNumber: nullIfEmpty(p.ReferenceNumber),
			Notes:           nullIfEmpty(p.Notes),
		})
	}
	return payments, nil
}

func saleDiscount(amount decimal.Decimal, discountType domain.DiscountType) (*settlement.Discount, error) {
	if amount.IsNegative() {
		return nil, errors.New("discount_amount must not be negative")
	}
	if amount.IsZero() {
		return nil, nil
	}
	if discountType != domain.DiscountPercentage && discountType != domain.DiscountFixed {
		return nil, errors.New("discount_type must be percentage or fixed")
	}
	return &settlement.Discount{Amount: amount, Type: discountType}, nil
}

func discountTypeOrEmpty(t *domain.DiscountType) domain.DiscountType {
	if t == nil {
		return ""
	}
	return *t
}

func nullDiscountType(t domain.DiscountType) *domain.DiscountType {
	if t == "" {
		return nil
	}
	return &t
}

func nullIfEmptyPtr(val *string) *string {
	if val == nil {
		return nil
	}
	return nullIfEmpty(*val)
}

func dateOrToday(val string) (string, error) {
	trimmed := strings.TrimSpace(val)
	if trimmed == "" {
		return time.Now().Format("2006-01-02"), nil
	}
	if _, err := time.Parse("2006-01-02", trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}
