// Package customer defines the loyalty customer model.
package customer

import "time"

// Customer is identified by phone number. PasswordHash holds a bcrypt
// hash, never the plain credential; the HTTP layer strips it from
// responses.
type Customer struct {
	PhoneNumber   string    `json:"phoneNumber"`
	Name          string    `json:"name"`
	PasswordHash  string    `json:"passwordHash,omitempty"`
	LoyaltyPoints int       `json:"loyaltyPoints"`
	OrderHistory  []string  `json:"orderHistory"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt,omitempty"`
}

// HasOrder reports whether orderID is already in the customer's history.
// The commit sequence uses it to keep the customer update idempotent.
func (c Customer) HasOrder(orderID string) bool {
	for _, id := range c.OrderHistory {
		if id == orderID {
			return true
		}
	}
	return false
}
