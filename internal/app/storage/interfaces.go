// Package storage defines the persistence interfaces for the storeflow
// collections. Implementations are the in-memory store (tests, local
// development) and the REST client backed by an external document store.
package storage

import (
	"context"

	"github.com/storeflow/storeflow/internal/app/domain/alert"
	"github.com/storeflow/storeflow/internal/app/domain/checkout"
	"github.com/storeflow/storeflow/internal/app/domain/customer"
	"github.com/storeflow/storeflow/internal/app/domain/employee"
	"github.com/storeflow/storeflow/internal/app/domain/order"
	"github.com/storeflow/storeflow/internal/app/domain/product"
)

// ProductStore persists product records.
type ProductStore interface {
	CreateProduct(ctx context.Context, p product.Product) (product.Product, error)
	UpdateProduct(ctx context.Context, p product.Product) (product.Product, error)
	GetProduct(ctx context.Context, productID string) (product.Product, error)
	ListProducts(ctx context.Context, filter product.Filter) ([]product.Product, error)
	DeleteProduct(ctx context.Context, productID string) error

	// AdjustStock changes the product's stock by delta in one conditional
	// operation. It fails without mutating anything when the resulting
	// stock would be negative.
	AdjustStock(ctx context.Context, productID string, delta int) (product.Product, error)
}

// CustomerStore persists customer records.
type CustomerStore interface {
	CreateCustomer(ctx context.Context, c customer.Customer) (customer.Customer, error)
	UpdateCustomer(ctx context.Context, c customer.Customer) (customer.Customer, error)
	GetCustomer(ctx context.Context, phoneNumber string) (customer.Customer, error)
	ListCustomers(ctx context.Context) ([]customer.Customer, error)
	DeleteCustomer(ctx context.Context, phoneNumber string) error
}

// OrderStore persists order records. Create rejects a duplicate OrderID.
type OrderStore interface {
	CreateOrder(ctx context.Context, o order.Order) (order.Order, error)
	UpdateOrder(ctx context.Context, o order.Order) (order.Order, error)
	GetOrder(ctx context.Context, orderID string) (order.Order, error)
	ListOrders(ctx context.Context, filter order.Filter) ([]order.Order, error)
	DeleteOrder(ctx context.Context, orderID string) error
}

// EmployeeStore persists employee records.
type EmployeeStore interface {
	CreateEmployee(ctx context.Context, e employee.Employee) (employee.Employee, error)
	UpdateEmployee(ctx context.Context, e employee.Employee) (employee.Employee, error)
	GetEmployee(ctx context.Context, employeeID string) (employee.Employee, error)
	ListEmployees(ctx context.Context) ([]employee.Employee, error)
	DeleteEmployee(ctx context.Context, employeeID string) error
}

// AlertStore persists alert records.
type AlertStore interface {
	CreateAlert(ctx context.Context, a alert.Alert) (alert.Alert, error)
	UpdateAlert(ctx context.Context, a alert.Alert) (alert.Alert, error)
	GetAlert(ctx context.Context, alertID string) (alert.Alert, error)
	ListAlerts(ctx context.Context, employeeID string) ([]alert.Alert, error)
	DeleteAlert(ctx context.Context, alertID string) error
}

// CheckoutJournalStore persists commit-sequence progress records, keyed by
// order ID. It backs the reconciler that repairs partially committed
// checkouts.
type CheckoutJournalStore interface {
	PutCommitRecord(ctx context.Context, rec checkout.CommitRecord) error
	GetCommitRecord(ctx context.Context, orderID string) (checkout.CommitRecord, error)
	ListUnfinishedCommits(ctx context.Context) ([]checkout.CommitRecord, error)
	DeleteCommitRecord(ctx context.Context, orderID string) error
}
