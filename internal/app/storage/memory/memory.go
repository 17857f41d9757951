// Package memory is an in-memory implementation of the storage interfaces.
// It is safe for concurrent use and is primarily intended for tests and
// local development.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/storeflow/storeflow/internal/apperr"
	"github.com/storeflow/storeflow/internal/app/domain/alert"
	"github.com/storeflow/storeflow/internal/app/domain/checkout"
	"github.com/storeflow/storeflow/internal/app/domain/customer"
	"github.com/storeflow/storeflow/internal/app/domain/employee"
	"github.com/storeflow/storeflow/internal/app/domain/order"
	"github.com/storeflow/storeflow/internal/app/domain/product"
	"github.com/storeflow/storeflow/internal/app/storage"
)

// Store is the in-memory document store.
type Store struct {
	mu        sync.RWMutex
	products  map[string]product.Product
	customers map[string]customer.Customer
	orders    map[string]order.Order
	employees map[string]employee.Employee
	alerts    map[string]alert.Alert
	journal   map[string]checkout.CommitRecord
}

var _ storage.ProductStore = (*Store)(nil)
var _ storage.CustomerStore = (*Store)(nil)
var _ storage.OrderStore = (*Store)(nil)
var _ storage.EmployeeStore = (*Store)(nil)
var _ storage.AlertStore = (*Store)(nil)
var _ storage.CheckoutJournalStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		products:  make(map[string]product.Product),
		customers: make(map[string]customer.Customer),
		orders:    make(map[string]order.Order),
		employees: make(map[string]employee.Employee),
		alerts:    make(map[string]alert.Alert),
		journal:   make(map[string]checkout.CommitRecord),
	}
}

// ProductStore implementation -------------------------------------------------

func (s *Store) CreateProduct(_ context.Context, p product.Product) (product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[p.ProductID]; exists {
		return product.Product{}, apperr.AlreadyExists("product %s already exists", p.ProductID)
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.products[p.ProductID] = p
	return p, nil
}

func (s *Store) UpdateProduct(_ context.Context, p product.Product) (product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.products[p.ProductID]
	if !ok {
		return product.Product{}, apperr.NotFound("product %s not found", p.ProductID)
	}

	p.CreatedAt = original.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	s.products[p.ProductID] = p
	return p, nil
}

func (s *Store) GetProduct(_ context.Context, productID string) (product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[productID]
	if !ok {
		return product.Product{}, apperr.NotFound("product %s not found", productID)
	}
	return p, nil
}

func (s *Store) ListProducts(_ context.Context, filter product.Filter) ([]product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]product.Product, 0, len(s.products))
	for _, p := range s.products {
		if filter.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.Category != "" && !strings.Contains(strings.ToLower(p.Category), strings.ToLower(filter.Category)) {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ProductID < result[j].ProductID })
	return result, nil
}

func (s *Store) DeleteProduct(_ context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[productID]; !ok {
		return apperr.NotFound("product %s not found", productID)
	}
	delete(s.products, productID)
	return nil
}

// AdjustStock applies the delta under the store lock, so two concurrent
// checkouts can never both decrement from the same stale value.
func (s *Store) AdjustStock(_ context.Context, productID string, delta int) (product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return product.Product{}, apperr.NotFound("product %s not found", productID)
	}
	next := p.StockQuantity + delta
	if next < 0 {
		return product.Product{}, apperr.Conflict("insufficient stock for product %s: %d available, %d requested", productID, p.StockQuantity, -delta)
	}
	p.StockQuantity = next
	p.UpdatedAt = time.Now().UTC()
	s.products[productID] = p
	return p, nil
}

// CustomerStore implementation ------------------------------------------------

func (s *Store) CreateCustomer(_ context.Context, c customer.Customer) (customer.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.customers[c.PhoneNumber]; exists {
		return customer.Customer{}, apperr.AlreadyExists("customer with phone number %s already exists", c.PhoneNumber)
	}

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.OrderHistory = append([]string(nil), c.OrderHistory...)
	s.customers[c.PhoneNumber] = c
	return cloneCustomer(c), nil
}

func (s *Store) UpdateCustomer(_ context.Context, c customer.Customer) (customer.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.customers[c.PhoneNumber]
	if !ok {
		return customer.Customer{}, apperr.NotFound("customer %s not found", c.PhoneNumber)
	}

	c.CreatedAt = original.CreatedAt
	c.UpdatedAt = time.Now().UTC()
	c.OrderHistory = append([]string(nil), c.OrderHistory...)
	s.customers[c.PhoneNumber] = c
	return cloneCustomer(c), nil
}

func (s *Store) GetCustomer(_ context.Context, phoneNumber string) (customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[phoneNumber]
	if !ok {
		return customer.Customer{}, apperr.NotFound("customer %s not found", phoneNumber)
	}
	return cloneCustomer(c), nil
}

func (s *Store) ListCustomers(_ context.Context) ([]customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]customer.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		result = append(result, cloneCustomer(c))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PhoneNumber < result[j].PhoneNumber })
	return result, nil
}

func (s *Store) DeleteCustomer(_ context.Context, phoneNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[phoneNumber]; !ok {
		return apperr.NotFound("customer %s not found", phoneNumber)
	}
	delete(s.customers, phoneNumber)
	return nil
}

// OrderStore implementation ---------------------------------------------------

func (s *Store) CreateOrder(_ context.Context, o order.Order) (order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[o.OrderID]; exists {
		return order.Order{}, apperr.AlreadyExists("order %s already exists", o.OrderID)
	}

	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.OrderDate.IsZero() {
		o.OrderDate = now
	}
	o.Items = append([]order.Line(nil), o.Items...)
	s.orders[o.OrderID] = o
	return cloneOrder(o), nil
}

func (s *Store) UpdateOrder(_ context.Context, o order.Order) (order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.orders[o.OrderID]
	if !ok {
		return order.Order{}, apperr.NotFound("order %s not found", o.OrderID)
	}

	o.CreatedAt = original.CreatedAt
	o.UpdatedAt = time.Now().UTC()
	o.Items = append([]order.Line(nil), o.Items...)
	s.orders[o.OrderID] = o
	return cloneOrder(o), nil
}

func (s *Store) GetOrder(_ context.Context, orderID string) (order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[orderID]
	if !ok {
		return order.Order{}, apperr.NotFound("order %s not found", orderID)
	}
	return cloneOrder(o), nil
}

func (s *Store) ListOrders(_ context.Context, filter order.Filter) ([]order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]order.Order, 0)
	for _, o := range s.orders {
		if filter.Matches(o) {
			result = append(result, cloneOrder(o))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].OrderDate.After(result[j].OrderDate) })
	return result, nil
}

func (s *Store) DeleteOrder(_ context.Context, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[orderID]; !ok {
		return apperr.NotFound("order %s not found", orderID)
	}
	delete(s.orders, orderID)
	return nil
}

// EmployeeStore implementation ------------------------------------------------

func (s *Store) CreateEmployee(_ context.Context, e employee.Employee) (employee.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.employees[e.EmployeeID]; exists {
		return employee.Employee{}, apperr.AlreadyExists("employee %s already exists", e.EmployeeID)
	}

	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	s.employees[e.EmployeeID] = e
	return e, nil
}

func (s *Store) UpdateEmployee(_ context.Context, e employee.Employee) (employee.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.employees[e.EmployeeID]
	if !ok {
		return employee.Employee{}, apperr.NotFound("employee %s not found", e.EmployeeID)
	}

	e.CreatedAt = original.CreatedAt
	e.UpdatedAt = time.Now().UTC()
	s.employees[e.EmployeeID] = e
	return e, nil
}

func (s *Store) GetEmployee(_ context.Context, employeeID string) (employee.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.employees[employeeID]
	if !ok {
		return employee.Employee{}, apperr.NotFound("employee %s not found", employeeID)
	}
	return e, nil
}

func (s *Store) ListEmployees(_ context.Context) ([]employee.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]employee.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EmployeeID < result[j].EmployeeID })
	return result, nil
}

func (s *Store) DeleteEmployee(_ context.Context, employeeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees[employeeID]; !ok {
		return apperr.NotFound("employee %s not found", employeeID)
	}
	delete(s.employees, employeeID)
	return nil
}

// AlertStore implementation ---------------------------------------------------

func (s *Store) CreateAlert(_ context.Context, a alert.Alert) (alert.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.alerts[a.AlertID]; exists {
		return alert.Alert{}, apperr.AlreadyExists("alert %s already exists", a.AlertID)
	}

	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Timestamp.IsZero() {
		a.Timestamp = now
	}
	if a.Status == "" {
		a.Status = alert.StatusPending
	}
	s.alerts[a.AlertID] = a
	return a, nil
}

func (s *Store) UpdateAlert(_ context.Context, a alert.Alert) (alert.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.alerts[a.AlertID]
	if !ok {
		return alert.Alert{}, apperr.NotFound("alert %s not found", a.AlertID)
	}

	a.CreatedAt = original.CreatedAt
	a.UpdatedAt = time.Now().UTC()
	s.alerts[a.AlertID] = a
	return a, nil
}

func (s *Store) GetAlert(_ context.Context, alertID string) (alert.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.alerts[alertID]
	if !ok {
		return alert.Alert{}, apperr.NotFound("alert %s not found", alertID)
	}
	return a, nil
}

func (s *Store) ListAlerts(_ context.Context, employeeID string) ([]alert.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]alert.Alert, 0)
	for _, a := range s.alerts {
		if employeeID == "" || a.EmployeeID == employeeID {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Timestamp.After(result[j].Timestamp) })
	return result, nil
}

func (s *Store) DeleteAlert(_ context.Context, alertID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.alerts[alertID]; !ok {
		return apperr.NotFound("alert %s not found", alertID)
	}
	delete(s.alerts, alertID)
	return nil
}

// CheckoutJournalStore implementation -----------------------------------------

func (s *Store) PutCommitRecord(_ context.Context, rec checkout.CommitRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.UpdatedAt = time.Now().UTC()
	rec.Items = append([]order.Line(nil), rec.Items...)
	rec.AdjustedLines = append([]string(nil), rec.AdjustedLines...)
	s.journal[rec.OrderID] = rec
	return nil
}

func (s *Store) GetCommitRecord(_ context.Context, orderID string) (checkout.CommitRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.journal[orderID]
	if !ok {
		return checkout.CommitRecord{}, apperr.NotFound("commit record %s not found", orderID)
	}
	return cloneRecord(rec), nil
}

func (s *Store) ListUnfinishedCommits(_ context.Context) ([]checkout.CommitRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]checkout.CommitRecord, 0)
	for _, rec := range s.journal {
		if !rec.Finished() {
			result = append(result, cloneRecord(rec))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartedAt.Before(result[j].StartedAt) })
	return result, nil
}

func (s *Store) DeleteCommitRecord(_ context.Context, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.journal[orderID]; !ok {
		return apperr.NotFound("commit record %s not found", orderID)
	}
	delete(s.journal, orderID)
	return nil
}

func cloneCustomer(c customer.Customer) customer.Customer {
	c.OrderHistory = append([]string(nil), c.OrderHistory...)
	return c
}

func cloneOrder(o order.Order) order.Order {
	o.Items = append([]order.Line(nil), o.Items...)
	return o
}

func cloneRecord(rec checkout.CommitRecord) checkout.CommitRecord {
	rec.Items = append([]order.Line(nil), rec.Items...)
	rec.AdjustedLines = append([]string(nil), rec.AdjustedLines...)
	return rec
}
