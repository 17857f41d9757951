package products

import (
	"context"
	"testing"

	"github.com/storeflow/storeflow/internal/apperr"
	"github.com/storeflow/storeflow/internal/app/domain/product"
	"github.com/storeflow/storeflow/internal/app/services/alerts"
	"github.com/storeflow/storeflow/internal/app/storage/memory"
	"github.com/storeflow/storeflow/pkg/logger"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	alertSvc := alerts.New(store, logger.NewDefault("alerts-test"))
	return New(store, alertSvc, logger.NewDefault("products-test")), store
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		p    product.Product
	}{
		{"missing id", product.Product{Name: "Milk", Price: 1}},
		{"missing name", product.Product{ProductID: "P1", Price: 1}},
		{"negative price", product.Product{ProductID: "P1", Name: "Milk", Price: -1}},
		{"negative stock", product.Product{ProductID: "P1", Name: "Milk", Price: 1, StockQuantity: -2}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tc.p); !apperr.IsCode(err, apperr.CodeValidation) {
				t.Fatalf("Create error = %v, want validation", err)
			}
		})
	}

	if _, err := svc.Create(ctx, product.Product{ProductID: "P1", Name: "Milk", Price: 2.5, StockQuantity: 3}); err != nil {
		t.Fatalf("valid Create: %v", err)
	}
}

func TestAdjustStockEmitsLowStockAlert(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, product.Product{ProductID: "P1", Name: "Milk", Price: 2.5, StockQuantity: 10}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// 10 -> 7 stays above the threshold of 5.
	if _, err := svc.AdjustStock(ctx, "P1", -3); err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	all, _ := store.ListAlerts(ctx, "")
	if len(all) != 0 {
		t.Fatalf("alerts = %d before crossing threshold, want 0", len(all))
	}

	// 7 -> 4 crosses it.
	p, err := svc.AdjustStock(ctx, "P1", -3)
	if err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if p.StockQuantity != 4 {
		t.Fatalf("stock = %d, want 4", p.StockQuantity)
	}
	all, _ = store.ListAlerts(ctx, "")
	if len(all) != 1 {
		t.Fatalf("alerts = %d after crossing threshold, want 1", len(all))
	}

	// Restocking never alerts.
	if _, err := svc.AdjustStock(ctx, "P1", 20); err != nil {
		t.Fatalf("restock: %v", err)
	}
	all, _ = store.ListAlerts(ctx, "")
	if len(all) != 1 {
		t.Fatalf("alerts = %d after restock, want still 1", len(all))
	}
}

func TestAdjustStockRejectsZeroAndOverdraw(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, product.Product{ProductID: "P1", Name: "Milk", Price: 2.5, StockQuantity: 2}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.AdjustStock(ctx, "P1", 0); !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("zero delta error = %v, want validation", err)
	}
	if _, err := svc.AdjustStock(ctx, "P1", -3); !apperr.IsCode(err, apperr.CodeConflict) {
		t.Fatalf("overdraw error = %v, want conflict", err)
	}
	p, err := svc.Get(ctx, "P1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.StockQuantity != 2 {
		t.Fatalf("stock = %d after rejected adjustments, want 2", p.StockQuantity)
	}
}

func TestListFilters(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	seed := []product.Product{
		{ProductID: "P1", Name: "Whole Milk", Category: "Dairy", Price: 2.5, StockQuantity: 3},
		{ProductID: "P2", Name: "Skim Milk", Category: "Dairy", Price: 2.2, StockQuantity: 3},
		{ProductID: "P3", Name: "Bread", Category: "Bakery", Price: 3, StockQuantity: 3},
	}
	for _, p := range seed {
		if _, err := svc.Create(ctx, p); err != nil {
			t.Fatalf("Create %s: %v", p.ProductID, err)
		}
	}

	milk, err := svc.List(ctx, product.Filter{Name: "milk"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(milk) != 2 {
		t.Fatalf("name filter matched %d, want 2", len(milk))
	}

	dairy, _ := svc.List(ctx, product.Filter{Category: "dairy"})
	if len(dairy) != 2 {
		t.Fatalf("category filter matched %d, want 2", len(dairy))
	}

	both, _ := svc.List(ctx, product.Filter{Name: "whole", Category: "dairy"})
	if len(both) != 1 || both[0].ProductID != "P1" {
		t.Fatalf("combined filter = %+v, want just P1", both)
	}
}
