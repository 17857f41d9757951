// Package alert defines staff notification records, including the
// low-stock alerts emitted by stock adjustments.
package alert

import "time"

// Status is the delivery state of an alert.
type Status string

const (
	StatusPending   Status = "pending"
	StatusDelivered Status = "delivered"
)

// Alert is a message addressed to an employee. AlertID is
// caller-generated and unique.
type Alert struct {
	AlertID    string    `json:"alertId"`
	Message    string    `json:"message"`
	EmployeeID string    `json:"employeeId,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
}
