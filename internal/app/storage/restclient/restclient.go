// Package restclient implements the storage interfaces over the uniform
// JSON/HTTP contract of an external document store: every operation is a
// single create/read/update/delete request against one collection, and a
// non-2xx response carries {"message": ...} which is surfaced verbatim.
package restclient

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/storeflow/storeflow/internal/apperr"
	"github.com/storeflow/storeflow/internal/app/domain/alert"
	"github.com/storeflow/storeflow/internal/app/domain/customer"
	"github.com/storeflow/storeflow/internal/app/domain/employee"
	"github.com/storeflow/storeflow/internal/app/domain/order"
	"github.com/storeflow/storeflow/internal/app/domain/product"
	"github.com/storeflow/storeflow/internal/app/storage"
	"github.com/storeflow/storeflow/internal/httputil"
)

// Store talks to a remote storeflow-compatible document store.
type Store struct {
	client *httputil.Client
}

var _ storage.ProductStore = (*Store)(nil)
var _ storage.CustomerStore = (*Store)(nil)
var _ storage.OrderStore = (*Store)(nil)
var _ storage.EmployeeStore = (*Store)(nil)
var _ storage.AlertStore = (*Store)(nil)

// New creates a store client for the given base URL, such as
// "http://localhost:5000/api". Each call runs under the given timeout.
func New(baseURL string, timeout time.Duration) *Store {
	return &Store{client: httputil.NewClient(httputil.Config{BaseURL: baseURL, Timeout: timeout})}
}

// ProductStore implementation -------------------------------------------------

func (s *Store) CreateProduct(ctx context.Context, p product.Product) (product.Product, error) {
	var out product.Product
	resp, err := s.client.Post(ctx, "/products", p)
	if err != nil {
		return product.Product{}, err
	}
	if err := httputil.DecodeResponse(resp, &out); err != nil {
		return product.Product{}, err
	}
	return out, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p product.Product) (product.Product, error) {
	var out product.Product
	resp, err := s.client.Put(ctx, "/products/"+url.PathEscape(p.ProductID), p)
	if err != nil {
		return product.Product{}, err
	}
	if err := httputil.DecodeResponse(resp, &out); err != nil {
		return product.Product{}, err
	}
	return out, nil
}

func (s *Store) GetProduct(ctx context.Context, productID string) (product.Product, error) {
	var out product.Product
	resp, err := s.client.Get(ctx, "/products/"+url.PathEscape(productID))
	if err != nil {
		return product.Product{}, err
	}
	if err := httputil.DecodeResponse(resp, &out); err != nil {
		return product.Product{}, err
	}
	return out, nil
}

func (s *Store) ListProducts(ctx context.Context, filter product.Filter) ([]product.Product, error) {
	query := url.Values{}
	if filter.Name != "" {
		query.Set("name", filter.Name)
	}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	path := "/products"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var out []product.Product
	resp, err := s.client.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := httputil.DecodeResponse(resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) DeleteProduct(ctx context.Context, productID string) error {
	resp, err := s.client.Delete(ctx, "/products/"+url.PathEscape(productID))
	if err != nil {
		return err
	}
	return httputil.DecodeResponse(resp, nil)
}

// AdjustStock uses the store's conditional adjust endpoint when available.
// Backends that predate it answer 404 or 405; those fall back to a
// read-modify-write of the whole document, which loses the atomicity
// guarantee and is logged as such by the commit sequence's caller.
func (s *Store) AdjustStock(ctx context.Context, productID string, delta int) (product.Product, error) {
	payload := struct {
		Delta int `json:"delta"`
	}{Delta: delta}

	resp, err := s.client.Post(ctx, "/products/"+url.PathEscape(productID)+"/adjust-stock", payload)
	if err != nil {
		return product.Product{}, err
	}
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusMethodNotAllowed {
		resp.Body.Close()
		return s.adjustStockFallback(ctx, productID, delta)
	}

	var out product.Product
	if err := httputil.DecodeResponse(resp, &out); err != nil {
		return product.Product{}, err
	}
	return out, nil
}

func (s *Store) adjustStockFallback(ctx context.Context, productID string, delta int) (product.Product, error) {
	p, err := s.GetProduct(ctx, productID)
	if err != nil {
		return product.Product{}, err
	}
	next := p.StockQuantity + delta
	if next < 0 {
		return product.Product{}, apperr.Conflict("insufficient stock for product %s: %d available, %d requested", productID, p.StockQuantity, -delta)
	}
	p.StockQuantity = next
	return s.UpdateProduct(ctx, p)
}

// CustomerStore implementation ------------------------------------------------

func (s *Store) CreateCustomer(ctx context.Context, c customer.Customer) (customer.Customer, error) {
	var out customer.Customer
	resp, err := s.client.Post(ctx, "/customers", c)
	if err != nil {
		return customer.Customer{}, err
	}
	if err := httputil.DecodeResponse(resp, &out); err != nil {
		return customer.Customer{}, err
	}
	return out, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, c customer.Customer) (customer.Customer, error) {
	var out customer.Customer
	resp, err := s.client.Put(ctx, "/customers/"+url.PathEscape(c.PhoneNumber), c)
	if err != nil {
		return customer.Customer{}, err
	}
	if err := httputil.DecodeResponse(resp, &out); err != nil {
		return customer.Customer{}, err
	}
	return out, nil
}

func (s *Store) GetCustomer(ctx context.Context, phoneNumber string) (customer.Customer, error) {
	var out customer.Customer
	resp, err := s.client.Get(ctx, "/customers/"+url.PathEscape(phoneNumber))
	if err != nil {
		return customer.Customer{}, err
	}
	if err := httputil.DecodeResponse(resp, &out); err != nil {
		return customer.Customer{}, err
	}
	return out, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]customer.Customer, error) {
	var out []customer.Customer
	resp, err := s.client.Get(ctx, "/customers")
	if err != nil {
		return nil, err
	}
	if err := httputil.DecodeResponse(resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) DeleteCustomer(ctx context.Context, phoneNumber string) error {
	resp, err := s.client.Delete(ctx, "/customers/"+url.PathEscape(phoneNumber))
	if err != nil {
		return err
	}
	return httputil.DecodeResponse(resp, nil)
}

// OrderStore implementation ---------------------------------------------------

func (s *Store) CreateOrder(ctx context.Context, o order.Order) (order.Order, error) {
	var out order.Order
	resp, err := s.client.Post(ctx, "/orders", o)
	if err != nil {
		return order.Order{}, err
	}
	if err := httputil.DecodeResponse(resp, &out); err != nil {
		return order.Order{}, err
	}
	return out, nil
}

func (s *Store) UpdateOrder(ctx context.Context, o order.Order) (order.Order, error) {
	var out order.Order
	resp, err := s.client.Put(ctx, "/orders/"+url.PathEscape(o.OrderID), o)
	if err != nil {
		return order.Order{}, err
	}
	if err := httputil.DecodeResponse(resp, &out); err != nil {
		return order.Order{}, err
	}
	return out, nil
}

func (s *Store) GetOrder(ctx context.Context, orderID string) (order.Order, error) {
	var out order.Order
	resp, err := s.client.Get(ctx, "/orders/"+url.PathEscape(orderID))
	if err != nil {
		return order.Order{}, err
	}
	if err := httputil.DecodeResponse(resp, &out); err != nil {
		return order.Order{}, err
	}
	return out, nil
}

func (s *Store) ListOrders(ctx context.Context, filter order.Filter) ([]order.Order, error) {
	query := url.Values{}
	if filter.CustomerID != "" {
		query.Set("customerId", filter.CustomerID)
	}
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}
	if !filter.StartDate.IsZero() {
		query.Set("startDate", filter.StartDate.Format(time.RFC3339))
	}
	if !filter.EndDate.IsZero() {
		query.Set("endDate", filter.EndDate.Format(time.RFC3339))
	}
	path := "/orders"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var out []order.Order
	resp, err := s.client.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := httputil.DecodeResponse(resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) DeleteOrder(ctx context.Context, orderID string) error {
	resp, err := s.client.Delete(ctx, "/orders/"+url.PathEscape(orderID))
	if err != nil {
		return err
	}
	return httputil.DecodeResponse(resp, nil)
}

// EmployeeStore implementation ------------------------------------------------

func (s *Store) CreateEmployee(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	var out employee.Employee
	resp, err := s.client.Post(ctx, "/employees", e)
	if err != nil {
		return employee.Employee{}, err
	}
	if err := httputil.DecodeResponse(resp, &out); err != nil {
		return employee.Employee{}, err
	}
	return out, nil
}

func (s *Store) UpdateEmployee(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	var out employee.Employee
	resp, err := s.client.Put(ctx, "/employees/"+url.PathEscape(e.EmployeeID), e)
	if err != nil {
		return employee.Employee{}, err
	}
	if err := httputil.DecodeResponse(resp, &out); err != nil {
		return employee.Employee{}, err
	}
	return out, nil
}

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (employee.Employee, error) {
	var out employee.Employee
	resp, err := s.client.Get(ctx, "/employees/"+url.PathEscape(employeeID))
	if err != nil {
		return employee.Employee{}, err
	}
	if err := httputil.DecodeResponse(resp, &out); err != nil {
		return employee.Employee{}, err
	}
	return out, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]employee.Employee, error) {
	var out []employee.Employee
	resp, err := s.client.Get(ctx, "/employees")
	if err != nil {
		return nil, err
	}
	if err := httputil.DecodeResponse(resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) DeleteEmployee(ctx context.Context, employeeID string) error {
	resp, err := s.client.Delete(ctx, "/employees/"+url.PathEscape(employeeID))
	if err != nil {
		return err
	}
	return httputil.DecodeResponse(resp, nil)
}

// AlertStore implementation ---------------------------------------------------

func (s *Store) CreateAlert(ctx context.Context, a alert.Alert) (alert.Alert, error) {
	var out alert.Alert
	resp, err := s.client.Post(ctx, "/alerts", a)
	if err != nil {
		return alert.Alert{}, err
	}
	if err := httputil.DecodeResponse(resp, &out); err != nil {
		return alert.Alert{}, err
	}
	return out, nil
}

func (s *Store) UpdateAlert(ctx context.Context, a alert.Alert) (alert.Alert, error) {
	var out alert.Alert
	resp, err := s.client.Put(ctx, "/alerts/"+url.PathEscape(a.AlertID), a)
	if err != nil {
		return alert.Alert{}, err
	}
	if err := httputil.DecodeResponse(resp, &out); err != nil {
		return alert.Alert{}, err
	}
	return out, nil
}

func (s *Store) GetAlert(ctx context.Context, alertID string) (alert.Alert, error) {
	var out alert.Alert
	resp, err := s.client.Get(ctx, "/alerts/"+url.PathEscape(alertID))
	if err != nil {
		return alert.Alert{}, err
	}
	if err := httputil.DecodeResponse(resp, &out); err != nil {
		return alert.Alert{}, err
	}
	return out, nil
}

func (s *Store) ListAlerts(ctx context.Context, employeeID string) ([]alert.Alert, error) {
	path := "/alerts"
	if employeeID != "" {
		path += "?employeeId=" + url.QueryEscape(employeeID)
	}

	var out []alert.Alert
	resp, err := s.client.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := httputil.DecodeResponse(resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) DeleteAlert(ctx context.Context, alertID string) error {
	resp, err := s.client.Delete(ctx, "/alerts/"+url.PathEscape(alertID))
	if err != nil {
		return err
	}
	return httputil.DecodeResponse(resp, nil)
}
