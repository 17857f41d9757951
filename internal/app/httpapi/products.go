package httpapi

import (
	"net/http"

	"github.com/storeflow/storeflow/internal/app/domain/product"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	filter := product.Filter{
		Name:     r.URL.Query().Get("name"),
		Category: r.URL.Query().Get("category"),
	}
	list, err := h.products.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var p product.Product
	if err := decodeJSON(r.Body, &p); err != nil {
		writeError(w, err)
		return
	}
	created, err := h.products.Create(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathVar(r, "productId")
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := h.products.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathVar(r, "productId")
	if err != nil {
		writeError(w, err)
		return
	}
	var p product.Product
	if err := decodeJSON(r.Body, &p); err != nil {
		writeError(w, err)
		return
	}
	p.ProductID = id
	updated, err := h.products.Update(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathVar(r, "productId")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.products.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathVar(r, "productId")
	if err != nil {
		writeError(w, err)
		return
	}
	var payload struct {
		Delta int `json:"delta"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}
	p, err := h.products.AdjustStock(r.Context(), id, payload.Delta)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
