// Package order defines the order model and listing filters.
package order

import "time"

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Line is one item of an order. Name and Price are snapshots taken at
// order time; later product changes never affect historical orders.
type Line struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Order is a committed purchase. OrderID is caller-generated and unique;
// CustomerID references a customer phone number without enforced
// referential integrity.
type Order struct {
	OrderID     string    `json:"orderId"`
	CustomerID  string    `json:"customerId"`
	Items       []Line    `json:"items"`
	OrderDate   time.Time `json:"orderDate"`
	TotalAmount float64   `json:"totalAmount"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// Filter narrows order listings. Zero values match everything; the date
// bounds are inclusive.
type Filter struct {
	CustomerID string
	Status     Status
	StartDate  time.Time
	EndDate    time.Time
}

// Matches reports whether o passes the filter.
func (f Filter) Matches(o Order) bool {
	if f.CustomerID != "" && o.CustomerID != f.CustomerID {
		return false
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if !f.StartDate.IsZero() && o.OrderDate.Before(f.StartDate) {
		return false
	}
	if !f.EndDate.IsZero() && o.OrderDate.After(f.EndDate) {
		return false
	}
	return true
}
