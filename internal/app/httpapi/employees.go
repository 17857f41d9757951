package httpapi

import (
	"net/http"

	"github.com/storeflow/storeflow/internal/app/domain/employee"
)

type employeePayload struct {
	EmployeeID string `json:"employeeId"`
	Name       string `json:"name"`
	Password   string `json:"password"`
}

func sanitizeEmployee(e employee.Employee) employee.Employee {
	e.PasswordHash = ""
	return e
}

func (h *Handler) listEmployees(w http.ResponseWriter, r *http.Request) {
	list, err := h.employees.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]employee.Employee, len(list))
	for i, e := range list {
		out[i] = sanitizeEmployee(e)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createEmployee(w http.ResponseWriter, r *http.Request) {
	var payload employeePayload
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}
	created, err := h.employees.Create(r.Context(), employee.Employee{
		EmployeeID: payload.EmployeeID,
		Name:       payload.Name,
	}, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sanitizeEmployee(created))
}

func (h *Handler) getEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathVar(r, "employeeId")
	if err != nil {
		writeError(w, err)
		return
	}
	e, err := h.employees.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sanitizeEmployee(e))
}

func (h *Handler) updateEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathVar(r, "employeeId")
	if err != nil {
		writeError(w, err)
		return
	}
	var payload employeePayload
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.employees.Update(r.Context(), employee.Employee{
		EmployeeID: id,
		Name:       payload.Name,
	}, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sanitizeEmployee(updated))
}

func (h *Handler) deleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathVar(r, "employeeId")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.employees.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "employee deleted"})
}

func (h *Handler) employeeLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		EmployeeID string `json:"employeeId"`
		Password   string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}
	session, err := h.employees.Login(r.Context(), payload.EmployeeID, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}
