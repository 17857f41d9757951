package httpapi

import (
	"net/http"
	"time"

	"github.com/storeflow/storeflow/internal/apperr"
	"github.com/storeflow/storeflow/internal/app/domain/order"
)

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := order.Filter{
		CustomerID: query.Get("customerId"),
		Status:     order.Status(query.Get("status")),
	}
	if v := query.Get("startDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, apperr.Validation("invalid startDate: %v", err))
			return
		}
		filter.StartDate = t
	}
	if v := query.Get("endDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, apperr.Validation("invalid endDate: %v", err))
			return
		}
		filter.EndDate = t
	}

	list, err := h.orders.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var o order.Order
	if err := decodeJSON(r.Body, &o); err != nil {
		writeError(w, err)
		return
	}
	created, err := h.orders.Create(r.Context(), o)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathVar(r, "orderId")
	if err != nil {
		writeError(w, err)
		return
	}
	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathVar(r, "orderId")
	if err != nil {
		writeError(w, err)
		return
	}
	var o order.Order
	if err := decodeJSON(r.Body, &o); err != nil {
		writeError(w, err)
		return
	}
	o.OrderID = id
	updated, err := h.orders.Update(r.Context(), o)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathVar(r, "orderId")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.orders.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "order deleted"})
}
