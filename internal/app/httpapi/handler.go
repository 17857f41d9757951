// Package httpapi exposes the REST surface: CRUD routes for the five
// collections plus the checkout quote and commit endpoints. Non-2xx
// responses carry a {"message": string} body.
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/storeflow/storeflow/internal/apperr"
	"github.com/storeflow/storeflow/internal/app/services/alerts"
	"github.com/storeflow/storeflow/internal/app/services/checkout"
	"github.com/storeflow/storeflow/internal/app/services/customers"
	"github.com/storeflow/storeflow/internal/app/services/employees"
	"github.com/storeflow/storeflow/internal/app/services/orders"
	"github.com/storeflow/storeflow/internal/app/services/products"
	"github.com/storeflow/storeflow/pkg/logger"
)

const maxBodyBytes = 1 << 20

// Handler serves the REST API.
type Handler struct {
	products  *products.Service
	customers *customers.Service
	orders    *orders.Service
	employees *employees.Service
	alerts    *alerts.Service
	checkout  *checkout.Service
	log       *logger.Logger
}

// New constructs the handler over the application services.
func New(
	productSvc *products.Service,
	customerSvc *customers.Service,
	orderSvc *orders.Service,
	employeeSvc *employees.Service,
	alertSvc *alerts.Service,
	checkoutSvc *checkout.Service,
	log *logger.Logger,
) *Handler {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	return &Handler{
		products:  productSvc,
		customers: customerSvc,
		orders:    orderSvc,
		employees: employeeSvc,
		alerts:    alertSvc,
		checkout:  checkoutSvc,
		log:       log,
	}
}

// Register mounts all API routes on the router.
func (h *Handler) Register(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/products", h.listProducts).Methods(http.MethodGet)
	api.HandleFunc("/products", h.createProduct).Methods(http.MethodPost)
	api.HandleFunc("/products/{productId}", h.getProduct).Methods(http.MethodGet)
	api.HandleFunc("/products/{productId}", h.updateProduct).Methods(http.MethodPut)
	api.HandleFunc("/products/{productId}", h.deleteProduct).Methods(http.MethodDelete)
	api.HandleFunc("/products/{productId}/adjust-stock", h.adjustStock).Methods(http.MethodPost)

	api.HandleFunc("/customers", h.listCustomers).Methods(http.MethodGet)
	api.HandleFunc("/customers", h.createCustomer).Methods(http.MethodPost)
	api.HandleFunc("/customers/login", h.customerLogin).Methods(http.MethodPost)
	api.HandleFunc("/customers/{phoneNumber}", h.getCustomer).Methods(http.MethodGet)
	api.HandleFunc("/customers/{phoneNumber}", h.updateCustomer).Methods(http.MethodPut)
	api.HandleFunc("/customers/{phoneNumber}", h.deleteCustomer).Methods(http.MethodDelete)

	api.HandleFunc("/orders", h.listOrders).Methods(http.MethodGet)
	api.HandleFunc("/orders", h.createOrder).Methods(http.MethodPost)
	api.HandleFunc("/orders/{orderId}", h.getOrder).Methods(http.MethodGet)
	api.HandleFunc("/orders/{orderId}", h.updateOrder).Methods(http.MethodPut)
	api.HandleFunc("/orders/{orderId}", h.deleteOrder).Methods(http.MethodDelete)

	api.HandleFunc("/employees", h.listEmployees).Methods(http.MethodGet)
	api.HandleFunc("/employees", h.createEmployee).Methods(http.MethodPost)
	api.HandleFunc("/employees/login", h.employeeLogin).Methods(http.MethodPost)
	api.HandleFunc("/employees/{employeeId}", h.getEmployee).Methods(http.MethodGet)
	api.HandleFunc("/employees/{employeeId}", h.updateEmployee).Methods(http.MethodPut)
	api.HandleFunc("/employees/{employeeId}", h.deleteEmployee).Methods(http.MethodDelete)

	api.HandleFunc("/alerts", h.listAlerts).Methods(http.MethodGet)
	api.HandleFunc("/alerts", h.createAlert).Methods(http.MethodPost)
	api.HandleFunc("/alerts/{alertId}", h.getAlert).Methods(http.MethodGet)
	api.HandleFunc("/alerts/{alertId}", h.updateAlert).Methods(http.MethodPut)
	api.HandleFunc("/alerts/{alertId}/deliver", h.deliverAlert).Methods(http.MethodPost)
	api.HandleFunc("/alerts/{alertId}", h.deleteAlert).Methods(http.MethodDelete)

	api.HandleFunc("/checkout/quote", h.checkoutQuote).Methods(http.MethodPost)
	api.HandleFunc("/checkout/commit", h.checkoutCommit).Methods(http.MethodPost)

	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.Validation("invalid request body: %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, err error) {
	e := apperr.From(err)
	writeJSON(w, e.HTTPStatus(), map[string]string{"message": e.Message})
}

func pathVar(r *http.Request, name string) (string, error) {
	v := mux.Vars(r)[name]
	if v == "" {
		return "", apperr.Validation("%s is required", name)
	}
	return v, nil
}
