package httpapi

import (
	"net/http"

	checkoutdomain "github.com/storeflow/storeflow/internal/app/domain/checkout"
	"github.com/storeflow/storeflow/internal/app/domain/order"
)

type checkoutPayload struct {
	CustomerID      string       `json:"customerId"`
	Items           []order.Line `json:"items"`
	RequestedPoints int          `json:"requestedPoints"`
}

// toSession materializes the request into a checkout session, fetching
// the customer when one is referenced so point validation sees the
// current balance.
func (h *Handler) toSession(r *http.Request, payload checkoutPayload) (checkoutdomain.Session, error) {
	session := checkoutdomain.NewSession()
	session.Lines = payload.Items
	session.RequestedPoints = payload.RequestedPoints

	if payload.CustomerID != "" {
		cust, err := h.customers.Get(r.Context(), payload.CustomerID)
		if err != nil {
			return checkoutdomain.Session{}, err
		}
		session.Customer = cust
		session.HasCustomer = true
	}
	return session, nil
}

func (h *Handler) checkoutQuote(w http.ResponseWriter, r *http.Request) {
	var payload checkoutPayload
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}
	session, err := h.toSession(r, payload)
	if err != nil {
		writeError(w, err)
		return
	}
	breakdown, err := h.checkout.Quote(session)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

func (h *Handler) checkoutCommit(w http.ResponseWriter, r *http.Request) {
	var payload checkoutPayload
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}
	session, err := h.toSession(r, payload)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := h.checkout.Commit(r.Context(), session)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}
