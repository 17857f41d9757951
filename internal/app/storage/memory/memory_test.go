package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/storeflow/storeflow/internal/apperr"
	"github.com/storeflow/storeflow/internal/app/domain/alert"
	"github.com/storeflow/storeflow/internal/app/domain/checkout"
	"github.com/storeflow/storeflow/internal/app/domain/customer"
	"github.com/storeflow/storeflow/internal/app/domain/order"
	"github.com/storeflow/storeflow/internal/app/domain/product"
)

func TestProductCRUD(t *testing.T) {
	store := New()
	ctx := context.Background()

	p := product.Product{ProductID: "P001", Name: "Whole Milk", Category: "Dairy", Price: 2.99, StockQuantity: 10}
	created, err := store.CreateProduct(ctx, p)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if created.CreatedAt.IsZero() {
		t.Fatalf("expected created timestamp")
	}

	if _, err := store.CreateProduct(ctx, p); !apperr.IsCode(err, apperr.CodeAlreadyExists) {
		t.Fatalf("expected already exists on duplicate insert, got %v", err)
	}

	created.Price = 3.49
	if _, err := store.UpdateProduct(ctx, created); err != nil {
		t.Fatalf("update product: %v", err)
	}
	got, err := store.GetProduct(ctx, "P001")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if got.Price != 3.49 {
		t.Fatalf("expected updated price, got %v", got.Price)
	}

	if err := store.DeleteProduct(ctx, "P001"); err != nil {
		t.Fatalf("delete product: %v", err)
	}
	if _, err := store.GetProduct(ctx, "P001"); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestListProductsFilters(t *testing.T) {
	store := New()
	ctx := context.Background()

	seed := []product.Product{
		{ProductID: "P001", Name: "Whole Milk", Category: "Dairy", Price: 2.99, StockQuantity: 5},
		{ProductID: "P002", Name: "Skim Milk", Category: "Dairy", Price: 2.49, StockQuantity: 3},
		{ProductID: "P003", Name: "Sourdough Bread", Category: "Bakery", Price: 3.49, StockQuantity: 7},
	}
	for _, p := range seed {
		if _, err := store.CreateProduct(ctx, p); err != nil {
			t.Fatalf("seed %s: %v", p.ProductID, err)
		}
	}

	milk, err := store.ListProducts(ctx, product.Filter{Name: "milk"})
	if err != nil {
		t.Fatalf("list by name: %v", err)
	}
	if len(milk) != 2 {
		t.Fatalf("expected 2 milk products, got %d", len(milk))
	}

	bakery, err := store.ListProducts(ctx, product.Filter{Category: "BAKERY"})
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if len(bakery) != 1 || bakery[0].ProductID != "P003" {
		t.Fatalf("expected bakery product P003, got %v", bakery)
	}
}

func TestAdjustStock(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, err := store.CreateProduct(ctx, product.Product{ProductID: "P001", Name: "Milk", StockQuantity: 5}); err != nil {
		t.Fatalf("create: %v", err)
	}

	p, err := store.AdjustStock(ctx, "P001", -3)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if p.StockQuantity != 2 {
		t.Fatalf("expected stock 2, got %d", p.StockQuantity)
	}

	if _, err := store.AdjustStock(ctx, "P001", -3); !apperr.IsCode(err, apperr.CodeConflict) {
		t.Fatalf("expected conflict when stock would go negative, got %v", err)
	}
	p, _ = store.GetProduct(ctx, "P001")
	if p.StockQuantity != 2 {
		t.Fatalf("failed adjust must not mutate stock, got %d", p.StockQuantity)
	}

	if _, err := store.AdjustStock(ctx, "P001", 10); err != nil {
		t.Fatalf("restock: %v", err)
	}
	p, _ = store.GetProduct(ctx, "P001")
	if p.StockQuantity != 12 {
		t.Fatalf("expected stock 12, got %d", p.StockQuantity)
	}
}

func TestAdjustStockConcurrent(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, err := store.CreateProduct(ctx, product.Product{ProductID: "P001", Name: "Milk", StockQuantity: 10}); err != nil {
		t.Fatalf("create: %v", err)
	}

	var wg sync.WaitGroup
	failures := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.AdjustStock(ctx, "P001", -1); err != nil {
				failures <- err
			}
		}()
	}
	wg.Wait()
	close(failures)

	failed := 0
	for err := range failures {
		if !apperr.IsCode(err, apperr.CodeConflict) {
			t.Fatalf("unexpected error: %v", err)
		}
		failed++
	}
	if failed != 10 {
		t.Fatalf("expected exactly 10 rejected decrements, got %d", failed)
	}
	p, _ := store.GetProduct(ctx, "P001")
	if p.StockQuantity != 0 {
		t.Fatalf("expected stock 0, got %d", p.StockQuantity)
	}
}

func TestCustomerHistoryIsolation(t *testing.T) {
	store := New()
	ctx := context.Background()

	c, err := store.CreateCustomer(ctx, customer.Customer{PhoneNumber: "5551234", Name: "Ada", LoyaltyPoints: 100})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}

	c.OrderHistory = append(c.OrderHistory, "ORD1")
	if _, err := store.UpdateCustomer(ctx, c); err != nil {
		t.Fatalf("update customer: %v", err)
	}

	got, _ := store.GetCustomer(ctx, "5551234")
	got.OrderHistory[0] = "mutated"
	again, _ := store.GetCustomer(ctx, "5551234")
	if again.OrderHistory[0] != "ORD1" {
		t.Fatalf("store must not share history slices with callers")
	}
}

func TestOrderFiltersAndOrdering(t *testing.T) {
	store := New()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	seed := []order.Order{
		{OrderID: "ORD1", CustomerID: "5551234", OrderDate: base, Status: order.StatusCompleted, TotalAmount: 10},
		{OrderID: "ORD2", CustomerID: "5551234", OrderDate: base.Add(24 * time.Hour), Status: order.StatusPending, TotalAmount: 20},
		{OrderID: "ORD3", CustomerID: "5559999", OrderDate: base.Add(48 * time.Hour), Status: order.StatusCompleted, TotalAmount: 30},
	}
	for _, o := range seed {
		if _, err := store.CreateOrder(ctx, o); err != nil {
			t.Fatalf("seed %s: %v", o.OrderID, err)
		}
	}

	if _, err := store.CreateOrder(ctx, seed[0]); !apperr.IsCode(err, apperr.CodeAlreadyExists) {
		t.Fatalf("expected duplicate order id rejection, got %v", err)
	}

	all, err := store.ListOrders(ctx, order.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].OrderID != "ORD3" {
		t.Fatalf("expected newest-first ordering, got %v", all)
	}

	mine, _ := store.ListOrders(ctx, order.Filter{CustomerID: "5551234"})
	if len(mine) != 2 {
		t.Fatalf("expected 2 customer orders, got %d", len(mine))
	}

	completed, _ := store.ListOrders(ctx, order.Filter{Status: order.StatusCompleted})
	if len(completed) != 2 {
		t.Fatalf("expected 2 completed orders, got %d", len(completed))
	}

	window, _ := store.ListOrders(ctx, order.Filter{StartDate: base.Add(12 * time.Hour), EndDate: base.Add(36 * time.Hour)})
	if len(window) != 1 || window[0].OrderID != "ORD2" {
		t.Fatalf("expected only ORD2 in window, got %v", window)
	}
}

func TestAlertsByEmployee(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, err := store.CreateAlert(ctx, alert.Alert{AlertID: "ALT1", Message: "restock milk", EmployeeID: "EMP1"}); err != nil {
		t.Fatalf("create alert: %v", err)
	}
	if _, err := store.CreateAlert(ctx, alert.Alert{AlertID: "ALT2", Message: "restock bread", EmployeeID: "EMP2"}); err != nil {
		t.Fatalf("create alert: %v", err)
	}

	got, err := store.ListAlerts(ctx, "EMP1")
	if err != nil {
		t.Fatalf("list alerts: %v", err)
	}
	if len(got) != 1 || got[0].AlertID != "ALT1" {
		t.Fatalf("expected EMP1 alert only, got %v", got)
	}
	if got[0].Status != alert.StatusPending {
		t.Fatalf("expected defaulted pending status, got %s", got[0].Status)
	}

	all, _ := store.ListAlerts(ctx, "")
	if len(all) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(all))
	}
}

func TestCommitJournal(t *testing.T) {
	store := New()
	ctx := context.Background()

	rec := checkout.CommitRecord{
		OrderID:    "ORD1",
		CustomerID: "5551234",
		State:      checkout.StepOrderPersisted,
		StartedAt:  time.Now().UTC(),
	}
	if err := store.PutCommitRecord(ctx, rec); err != nil {
		t.Fatalf("put record: %v", err)
	}

	unfinished, err := store.ListUnfinishedCommits(ctx)
	if err != nil {
		t.Fatalf("list unfinished: %v", err)
	}
	if len(unfinished) != 1 || unfinished[0].OrderID != "ORD1" {
		t.Fatalf("expected one unfinished record, got %v", unfinished)
	}

	rec.State = checkout.StepCommitted
	if err := store.PutCommitRecord(ctx, rec); err != nil {
		t.Fatalf("finish record: %v", err)
	}
	unfinished, _ = store.ListUnfinishedCommits(ctx)
	if len(unfinished) != 0 {
		t.Fatalf("expected no unfinished records, got %v", unfinished)
	}
}
