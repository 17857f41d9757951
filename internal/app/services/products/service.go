// Package products manages the inventory collection: CRUD, search, and
// stock adjustment with low-stock alerting.
package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/storeflow/storeflow/internal/apperr"
	"github.com/storeflow/storeflow/internal/app/domain/alert"
	"github.com/storeflow/storeflow/internal/app/domain/product"
	"github.com/storeflow/storeflow/internal/app/services/alerts"
	"github.com/storeflow/storeflow/internal/app/storage"
	"github.com/storeflow/storeflow/pkg/logger"
)

// DefaultLowStockThreshold triggers an alert when an adjustment leaves
// stock at or below this level.
const DefaultLowStockThreshold = 5

// Service validates and persists products.
type Service struct {
	store     storage.ProductStore
	alerts    *alerts.Service
	threshold int
	log       *logger.Logger
}

// New constructs the products service. The alerts service may be nil, in
// which case no low-stock alerts are emitted.
func New(store storage.ProductStore, alertSvc *alerts.Service, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("products")
	}
	return &Service{
		store:     store,
		alerts:    alertSvc,
		threshold: DefaultLowStockThreshold,
		log:       log,
	}
}

// WithLowStockThreshold overrides the alerting threshold. A negative
// value disables low-stock alerts.
func (s *Service) WithLowStockThreshold(n int) *Service {
	s.threshold = n
	return s
}

func validate(p product.Product) error {
	if strings.TrimSpace(p.ProductID) == "" {
		return apperr.Validation("product id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return apperr.Validation("product name is required")
	}
	if p.Price < 0 {
		return apperr.Validation("price must not be negative")
	}
	if p.StockQuantity < 0 {
		return apperr.Validation("stock quantity must not be negative")
	}
	return nil
}

// Create persists a new product.
func (s *Service) Create(ctx context.Context, p product.Product) (product.Product, error) {
	if err := validate(p); err != nil {
		return product.Product{}, err
	}
	created, err := s.store.CreateProduct(ctx, p)
	if err != nil {
		return product.Product{}, err
	}
	s.log.WithField("product_id", created.ProductID).Info("product created")
	return created, nil
}

// Update replaces a product record.
func (s *Service) Update(ctx context.Context, p product.Product) (product.Product, error) {
	if err := validate(p); err != nil {
		return product.Product{}, err
	}
	return s.store.UpdateProduct(ctx, p)
}

// Get fetches one product.
func (s *Service) Get(ctx context.Context, productID string) (product.Product, error) {
	return s.store.GetProduct(ctx, productID)
}

// List returns products matching the filter.
func (s *Service) List(ctx context.Context, filter product.Filter) ([]product.Product, error) {
	return s.store.ListProducts(ctx, filter)
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, productID string) error {
	if err := s.store.DeleteProduct(ctx, productID); err != nil {
		return err
	}
	s.log.WithField("product_id", productID).Info("product deleted")
	return nil
}

// AdjustStock applies a conditional stock delta and emits a low-stock
// alert when the result crosses the threshold. Restocks never alert.
func (s *Service) AdjustStock(ctx context.Context, productID string, delta int) (product.Product, error) {
	if delta == 0 {
		return product.Product{}, apperr.Validation("delta must not be zero")
	}
	p, err := s.store.AdjustStock(ctx, productID, delta)
	if err != nil {
		return product.Product{}, err
	}
	s.log.WithField("product_id", productID).
		WithField("delta", delta).
		WithField("stock", p.StockQuantity).
		Info("stock adjusted")

	if delta < 0 && s.alerts != nil && s.threshold >= 0 && p.StockQuantity <= s.threshold {
		msg := fmt.Sprintf("low stock for %s: %d remaining", p.Name, p.StockQuantity)
		if _, alertErr := s.alerts.Create(ctx, alert.Alert{Message: msg}); alertErr != nil {
			s.log.WithError(alertErr).WithField("product_id", productID).Warn("low-stock alert not created")
		}
	}
	return p, nil
}
