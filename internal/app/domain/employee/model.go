// Package employee defines the staff account model.
package employee

import "time"

// Employee is a staff account. PasswordHash holds a bcrypt hash; the
// HTTP layer strips it from responses.
type Employee struct {
	EmployeeID   string    `json:"employeeId"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}
