package checkout

import (
	"github.com/storeflow/storeflow/internal/apperr"
	"github.com/storeflow/storeflow/internal/app/domain/customer"
	"github.com/storeflow/storeflow/internal/app/domain/order"
	"github.com/storeflow/storeflow/internal/app/domain/product"
)

// Session is an in-progress checkout: one customer, a cart, and a
// requested point redemption. It is a plain value object; quantities are
// checked against the stock snapshot known at edit time, and the commit
// sequence re-validates everything against the stores.
type Session struct {
	Customer        customer.Customer `json:"customer"`
	HasCustomer     bool              `json:"hasCustomer"`
	Lines           []order.Line      `json:"lines"`
	RequestedPoints int               `json:"requestedPoints"`
}

// NewSession returns an empty session.
func NewSession() Session {
	return Session{}
}

// SelectCustomer attaches the customer and resets any requested points,
// since a previous customer's redemption makes no sense for a new one.
func (s *Session) SelectCustomer(c customer.Customer) {
	s.Customer = c
	s.HasCustomer = true
	s.RequestedPoints = 0
}

// AddLine adds quantity units of p to the cart, merging with an existing
// line for the same product. The merged quantity must not exceed the
// product's known stock.
func (s *Session) AddLine(p product.Product, quantity int) error {
	if quantity < 1 {
		return apperr.Validation("quantity must be at least 1")
	}
	for i, line := range s.Lines {
		if line.ProductID == p.ProductID {
			next := line.Quantity + quantity
			if next > p.StockQuantity {
				return apperr.Conflict("not enough stock for %s: %d available", p.Name, p.StockQuantity)
			}
			s.Lines[i].Quantity = next
			return nil
		}
	}
	if quantity > p.StockQuantity {
		return apperr.Conflict("not enough stock for %s: %d available", p.Name, p.StockQuantity)
	}
	s.Lines = append(s.Lines, order.Line{
		ProductID: p.ProductID,
		Name:      p.Name,
		Quantity:  quantity,
		Price:     p.Price,
	})
	return nil
}

// SetQuantity replaces the quantity of an existing line. A quantity of
// zero or less removes the line.
func (s *Session) SetQuantity(p product.Product, quantity int) error {
	if quantity <= 0 {
		s.RemoveLine(p.ProductID)
		return nil
	}
	if quantity > p.StockQuantity {
		return apperr.Conflict("not enough stock for %s: %d available", p.Name, p.StockQuantity)
	}
	for i, line := range s.Lines {
		if line.ProductID == p.ProductID {
			s.Lines[i].Quantity = quantity
			return nil
		}
	}
	return apperr.Validation("product %s is not in the cart", p.ProductID)
}

// RemoveLine drops the line for productID if present.
func (s *Session) RemoveLine(productID string) {
	for i, line := range s.Lines {
		if line.ProductID == productID {
			s.Lines = append(s.Lines[:i], s.Lines[i+1:]...)
			return
		}
	}
}

// SetRequestedPoints sets the redemption request, rejecting negatives and
// anything beyond the selected customer's balance.
func (s *Session) SetRequestedPoints(points int) error {
	if points < 0 {
		return apperr.Validation("requested points must not be negative")
	}
	if s.HasCustomer && points > s.Customer.LoyaltyPoints {
		return apperr.Validation("customer has only %d points", s.Customer.LoyaltyPoints)
	}
	s.RequestedPoints = points
	return nil
}

// Reset clears the session for the next sale.
func (s *Session) Reset() {
	*s = Session{}
}
