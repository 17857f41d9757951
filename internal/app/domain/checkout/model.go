// Package checkout defines the checkout value objects: the monetary
// breakdown, the operator session, and the journaled commit progress
// record used to repair partially committed orders.
package checkout

import (
	"time"

	"github.com/storeflow/storeflow/internal/app/domain/order"
)

// Breakdown is the computed money and points outcome for a cart.
type Breakdown struct {
	Subtotal     float64 `json:"subtotal"`
	Discount     float64 `json:"discount"`
	Total        float64 `json:"total"`
	PointsEarned int     `json:"pointsEarned"`
}

// Step names a stage of the order commit sequence. Steps are ordered;
// a commit record's State is the last step known to have completed.
type Step string

const (
	StepValidated       Step = "validated"
	StepOrderPersisted  Step = "order_persisted"
	StepCustomerUpdated Step = "customer_updated"
	StepStockAdjusted   Step = "stock_adjusted"
	StepCommitted       Step = "committed"
)

// CommitRecord journals the progress of one commit sequence, keyed by
// OrderID. It carries everything needed to resume steps 3 and 4 without
// re-reading the session: the line quantities, the points movement, and
// which lines have already had stock decremented.
type CommitRecord struct {
	OrderID         string       `json:"orderId"`
	CustomerID      string       `json:"customerId"`
	Items           []order.Line `json:"items"`
	RequestedPoints int          `json:"requestedPoints"`
	PointsEarned    int          `json:"pointsEarned"`
	TotalAmount     float64      `json:"totalAmount"`
	State           Step         `json:"state"`
	AdjustedLines   []string     `json:"adjustedLines,omitempty"`
	FailedAt        Step         `json:"failedAt,omitempty"`
	LastError       string       `json:"lastError,omitempty"`
	Attempts        int          `json:"attempts"`
	StartedAt       time.Time    `json:"startedAt"`
	UpdatedAt       time.Time    `json:"updatedAt,omitempty"`
}

// Finished reports whether the record needs no further work.
func (r CommitRecord) Finished() bool {
	return r.State == StepCommitted
}

// LineAdjusted reports whether the stock decrement for productID has
// already been applied.
func (r CommitRecord) LineAdjusted(productID string) bool {
	for _, id := range r.AdjustedLines {
		if id == productID {
			return true
		}
	}
	return false
}
