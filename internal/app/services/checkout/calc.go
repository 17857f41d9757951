package checkout

import (
	"math"

	"github.com/storeflow/storeflow/internal/app/domain/checkout"
	"github.com/storeflow/storeflow/internal/app/domain/order"
)

// Tariff holds the loyalty conversion constants. PointValue is the currency
// value of one redeemed point; EarnRate is the currency amount that earns
// one point, applied to the post-discount total.
type Tariff struct {
	PointValue float64
	EarnRate   float64
}

// DefaultTariff mirrors the store's standing policy: one point is worth
// $0.50 at redemption, and every $10 of the final total earns one point.
var DefaultTariff = Tariff{PointValue: 0.50, EarnRate: 10}

// Subtotal sums price times quantity over all lines. Lines must already
// satisfy quantity >= 1 and price >= 0; violating inputs are a caller error
// rejected before this point.
func Subtotal(items []order.Line) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Discount converts the requested points to currency, capped at the
// subtotal so the total can never go negative. Whether the customer owns
// enough points is the caller's check, performed before commit.
func (t Tariff) Discount(requestedPoints int, subtotal float64) float64 {
	return math.Min(float64(requestedPoints)*t.PointValue, subtotal)
}

// Total is the post-discount amount due.
func Total(subtotal, discount float64) float64 {
	return subtotal - discount
}

// PointsEarned accrues points from the post-discount total, so no points
// are earned on the discount-funded portion of a purchase.
func (t Tariff) PointsEarned(total float64) int {
	return int(math.Floor(total / t.EarnRate))
}

// Compute derives the full monetary breakdown for a cart and a requested
// point discount. Pure and deterministic: it is recomputed fresh on every
// session mutation and once more at commit time.
func (t Tariff) Compute(items []order.Line, requestedPoints int) checkout.Breakdown {
	subtotal := Subtotal(items)
	discount := t.Discount(requestedPoints, subtotal)
	total := Total(subtotal, discount)
	return checkout.Breakdown{
		Subtotal:     subtotal,
		Discount:     discount,
		Total:        total,
		PointsEarned: t.PointsEarned(total),
	}
}
