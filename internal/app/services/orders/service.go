// Package orders manages the order collection. Orders are normally
// created through the checkout commit sequence; direct creation is kept
// for API parity with the document store.
package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/storeflow/storeflow/internal/apperr"
	"github.com/storeflow/storeflow/internal/app/domain/order"
	"github.com/storeflow/storeflow/internal/app/storage"
	"github.com/storeflow/storeflow/pkg/logger"
)

// Service validates and persists orders.
type Service struct {
	store storage.OrderStore
	log   *logger.Logger
	now   func() time.Time
}

// New constructs the orders service.
func New(store storage.OrderStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("orders")
	}
	return &Service{
		store: store,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func validate(o order.Order) error {
	if strings.TrimSpace(o.CustomerID) == "" {
		return apperr.Validation("customer id is required")
	}
	if len(o.Items) == 0 {
		return apperr.Validation("order has no items")
	}
	for _, line := range o.Items {
		if line.Quantity < 1 {
			return apperr.Validation("quantity for %s must be at least 1", line.ProductID)
		}
		if line.Price < 0 {
			return apperr.Validation("price for %s must not be negative", line.ProductID)
		}
	}
	switch o.Status {
	case "", order.StatusPending, order.StatusCompleted:
	default:
		return apperr.Validation("invalid order status %q", o.Status)
	}
	return nil
}

// Create persists a new order. The OrderID is generated when absent; a
// duplicate OrderID is rejected by the store.
func (s *Service) Create(ctx context.Context, o order.Order) (order.Order, error) {
	if err := validate(o); err != nil {
		return order.Order{}, err
	}
	if o.OrderID == "" {
		o.OrderID = fmt.Sprintf("ORD%d", s.now().UnixMilli())
	}
	if o.Status == "" {
		o.Status = order.StatusPending
	}

	created, err := s.store.CreateOrder(ctx, o)
	if err != nil {
		return order.Order{}, err
	}
	s.log.WithField("order_id", created.OrderID).
		WithField("customer_id", created.CustomerID).
		Info("order created")
	return created, nil
}

// Update replaces an order record.
func (s *Service) Update(ctx context.Context, o order.Order) (order.Order, error) {
	if err := validate(o); err != nil {
		return order.Order{}, err
	}
	return s.store.UpdateOrder(ctx, o)
}

// Get fetches one order.
func (s *Service) Get(ctx context.Context, orderID string) (order.Order, error) {
	return s.store.GetOrder(ctx, orderID)
}

// List returns orders matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter order.Filter) ([]order.Order, error) {
	return s.store.ListOrders(ctx, filter)
}

// Delete removes an order.
func (s *Service) Delete(ctx context.Context, orderID string) error {
	return s.store.DeleteOrder(ctx, orderID)
}
