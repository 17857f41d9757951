package httpapi

import (
	"net/http"

	"github.com/storeflow/storeflow/internal/app/domain/alert"
)

func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	list, err := h.alerts.List(r.Context(), r.URL.Query().Get("employeeId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) createAlert(w http.ResponseWriter, r *http.Request) {
	var a alert.Alert
	if err := decodeJSON(r.Body, &a); err != nil {
		writeError(w, err)
		return
	}
	created, err := h.alerts.Create(r.Context(), a)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) getAlert(w http.ResponseWriter, r *http.Request) {
	id, err := pathVar(r, "alertId")
	if err != nil {
		writeError(w, err)
		return
	}
	a, err := h.alerts.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) updateAlert(w http.ResponseWriter, r *http.Request) {
	id, err := pathVar(r, "alertId")
	if err != nil {
		writeError(w, err)
		return
	}
	var a alert.Alert
	if err := decodeJSON(r.Body, &a); err != nil {
		writeError(w, err)
		return
	}
	a.AlertID = id
	updated, err := h.alerts.Update(r.Context(), a)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) deliverAlert(w http.ResponseWriter, r *http.Request) {
	id, err := pathVar(r, "alertId")
	if err != nil {
		writeError(w, err)
		return
	}
	a, err := h.alerts.MarkDelivered(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) deleteAlert(w http.ResponseWriter, r *http.Request) {
	id, err := pathVar(r, "alertId")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.alerts.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "alert deleted"})
}
