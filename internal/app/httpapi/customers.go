package httpapi

import (
	"net/http"

	"github.com/storeflow/storeflow/internal/app/domain/customer"
)

// customerPayload is the write shape for customers: the password travels
// as plain text over TLS and is hashed before storage.
type customerPayload struct {
	PhoneNumber   string `json:"phoneNumber"`
	Name          string `json:"name"`
	Password      string `json:"password"`
	LoyaltyPoints int    `json:"loyaltyPoints"`
}

func sanitizeCustomer(c customer.Customer) customer.Customer {
	c.PasswordHash = ""
	return c
}

func sanitizeCustomers(list []customer.Customer) []customer.Customer {
	out := make([]customer.Customer, len(list))
	for i, c := range list {
		out[i] = sanitizeCustomer(c)
	}
	return out
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	list, err := h.customers.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sanitizeCustomers(list))
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var payload customerPayload
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}
	created, err := h.customers.Create(r.Context(), customer.Customer{
		PhoneNumber:   payload.PhoneNumber,
		Name:          payload.Name,
		LoyaltyPoints: payload.LoyaltyPoints,
	}, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sanitizeCustomer(created))
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	phone, err := pathVar(r, "phoneNumber")
	if err != nil {
		writeError(w, err)
		return
	}
	c, err := h.customers.Get(r.Context(), phone)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sanitizeCustomer(c))
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	phone, err := pathVar(r, "phoneNumber")
	if err != nil {
		writeError(w, err)
		return
	}
	var payload struct {
		customerPayload
		OrderHistory []string `json:"orderHistory"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.customers.Update(r.Context(), customer.Customer{
		PhoneNumber:   phone,
		Name:          payload.Name,
		LoyaltyPoints: payload.LoyaltyPoints,
		OrderHistory:  payload.OrderHistory,
	}, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sanitizeCustomer(updated))
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	phone, err := pathVar(r, "phoneNumber")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.customers.Delete(r.Context(), phone); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "customer deleted"})
}

func (h *Handler) customerLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PhoneNumber string `json:"phoneNumber"`
		Password    string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}
	c, err := h.customers.Authenticate(r.Context(), payload.PhoneNumber, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sanitizeCustomer(c))
}
