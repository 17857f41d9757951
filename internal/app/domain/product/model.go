// Package product defines the inventory product model.
package product

import (
	"strings"
	"time"
)

// Product is a stocked item. ProductID is the unique identity; Aisle and
// Shelf record store-map placement for the storekeeper portal.
type Product struct {
	ProductID     string    `json:"productId"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	Price         float64   `json:"price"`
	StockQuantity int       `json:"stockQuantity"`
	Aisle         string    `json:"aisle,omitempty"`
	Shelf         string    `json:"shelf,omitempty"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt,omitempty"`
}

// Filter narrows product listings. Both fields are case-insensitive
// substring matches; zero values match everything.
type Filter struct {
	Name     string
	Category string
}

// Matches reports whether p passes the filter.
func (f Filter) Matches(p Product) bool {
	if f.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Name)) {
		return false
	}
	if f.Category != "" && !strings.Contains(strings.ToLower(p.Category), strings.ToLower(f.Category)) {
		return false
	}
	return true
}
