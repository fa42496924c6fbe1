package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"salepoint/m/domain"
)

// Client handlers

type clientRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	var id int64
	err := h.db.QueryRowx(`INSERT INTO clients (name, phone, email, address) VALUES ($1, $2, $3, $4) RETURNING id`,
		req.Name, req.Phone, strings.ToLower(req.Email), req.Address).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create client")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "name": req.Name})
}

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	var clients []domain.Client
	var err error
	if query == "" {
		err = h.db.Select(&clients, `SELECT id, name, phone, email, address, store_credit, created_at FROM clients ORDER BY name LIMIT 50`)
	} else {
		like := "%" + query + "%"
		err = h.db.Select(&clients, `SELECT id, name, phone, email, address, store_credit, created_at FROM clients WHERE name ILIKE $1 OR phone ILIKE $1 ORDER BY name LIMIT 50`, like)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list clients")
		return
	}
	respondJSON(w, http.StatusOK, clients)
}

func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid client id")
		return
	}
	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	res, err := h.db.Exec(`UPDATE clients SET name = $1, phone = $2, email = $3, address = $4 WHERE id = $5`,
		req.Name, req.Phone, strings.ToLower(req.Email), req.Address, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update client")
		return
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		respondError(w, http.StatusNotFound, "client not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Product handlers

type productRequest struct {
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.SKU == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, "sku and name are required")
		return
	}
	if !req.UnitPrice.IsPositive() || req.Quantity < 0 {
		respondError(w, http.StatusBadRequest, "unit_price must be positive and quantity non-negative")
		return
	}
	var id int64
	err := h.db.QueryRowx(`INSERT INTO products (sku, name, category, unit_price, quantity) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		strings.ToUpper(req.SKU), req.Name, req.Category, req.UnitPrice, req.Quantity).Scan(&id)
	if err != nil {
		if strings.Contains(err.Error(), "unique constraint") || strings.Contains(err.Error(), "duplicate key") {
			respondError(w, http.StatusConflict, "sku already exists")
		} else {
			respondError(w, http.StatusInternalServerError, "unable to create product")
		}
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "sku": strings.ToUpper(req.SKU)})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	var products []domain.Product
	if err := h.db.Select(&products, `SELECT id, sku, name, category, unit_price, quantity, created_at, updated_at FROM products ORDER BY name LIMIT 100`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list products")
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handler) searchProducts(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	var products []domain.Product
	var err error
	if query == "" {
		err = h.db.Select(&products, `SELECT id, sku, name, category, unit_price, quantity, created_at, updated_at FROM products WHERE quantity > 0 ORDER BY name LIMIT 25`)
	} else {
		like := "%" + query + "%"
		err = h.db.Select(&products, `SELECT id, sku, name, category, unit_price, quantity, created_at, updated_at FROM products WHERE quantity > 0 AND (name ILIKE $1 OR sku ILIKE $1) ORDER BY name LIMIT 25`, like)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to search products")
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" || !req.UnitPrice.IsPositive() {
		respondError(w, http.StatusBadRequest, "name and a positive unit_price are required")
		return
	}
	res, err := h.db.Exec(`UPDATE products SET name = $1, category = $2, unit_price = $3, updated_at = NOW() WHERE id = $4`,
		req.Name, req.Category, req.UnitPrice, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update product")
		return
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) updateStock(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var payload struct {
		Quantity int64 `json:"quantity"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.Quantity < 0 {
		respondError(w, http.StatusBadRequest, "quantity must not be negative")
		return
	}
	var exists int64
	if err := h.db.Get(&exists, `SELECT id FROM products WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load product")
		return
	}
	if _, err := h.db.Exec(`UPDATE products SET quantity = $1, updated_at = NOW() WHERE id = $2`, payload.Quantity, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update stock")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "stock updated"})
}
