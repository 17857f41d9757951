package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/storeflow/storeflow/internal/apperr"
	"github.com/storeflow/storeflow/internal/app/domain/checkout"
	"github.com/storeflow/storeflow/internal/app/domain/customer"
	"github.com/storeflow/storeflow/internal/app/domain/order"
	"github.com/storeflow/storeflow/internal/app/domain/product"
	"github.com/storeflow/storeflow/internal/app/storage"
	"github.com/storeflow/storeflow/internal/app/storage/memory"
	"github.com/storeflow/storeflow/pkg/logger"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc := New(store, store, store, store, logger.NewDefault("checkout-test"))
	return svc, store
}

func seedBasics(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()
	if _, err := store.CreateProduct(ctx, product.Product{ProductID: "P1", Name: "Rice", Category: "Grains", Price: 8, StockQuantity: 10}); err != nil {
		t.Fatalf("seed product P1: %v", err)
	}
	if _, err := store.CreateProduct(ctx, product.Product{ProductID: "P2", Name: "Oil", Category: "Pantry", Price: 10, StockQuantity: 5}); err != nil {
		t.Fatalf("seed product P2: %v", err)
	}
	if _, err := store.CreateCustomer(ctx, customer.Customer{PhoneNumber: "5550001", Name: "Asha", LoyaltyPoints: 100}); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
}

func basicSession(t *testing.T, store *memory.Store) checkout.Session {
	t.Helper()
	ctx := context.Background()
	cust, err := store.GetCustomer(ctx, "5550001")
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	p1, err := store.GetProduct(ctx, "P1")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	p2, err := store.GetProduct(ctx, "P2")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}

	session := checkout.NewSession()
	session.SelectCustomer(cust)
	if err := session.AddLine(p1, 4); err != nil {
		t.Fatalf("add line: %v", err)
	}
	if err := session.AddLine(p2, 2); err != nil {
		t.Fatalf("add line: %v", err)
	}
	if err := session.SetRequestedPoints(20); err != nil {
		t.Fatalf("set points: %v", err)
	}
	return session
}

func TestCommitHappyPath(t *testing.T) {
	svc, store := newTestService(t)
	seedBasics(t, store)
	session := basicSession(t, store)
	ctx := context.Background()

	result, err := svc.Commit(ctx, session)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	// subtotal 52, discount 10, total 42, 4 points earned.
	if result.Breakdown.Total != 42 {
		t.Fatalf("Total = %v, want 42", result.Breakdown.Total)
	}
	if result.Balance != 84 {
		t.Fatalf("Balance = %d, want 84 (100 - 20 + 4)", result.Balance)
	}
	if result.Order.Status != "completed" {
		t.Fatalf("Status = %s, want completed", result.Order.Status)
	}

	cust, err := store.GetCustomer(ctx, "5550001")
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if cust.LoyaltyPoints != 84 {
		t.Fatalf("stored balance = %d, want 84", cust.LoyaltyPoints)
	}
	if !cust.HasOrder(result.Order.OrderID) {
		t.Fatalf("order %s missing from history %v", result.Order.OrderID, cust.OrderHistory)
	}

	p1, _ := store.GetProduct(ctx, "P1")
	p2, _ := store.GetProduct(ctx, "P2")
	if p1.StockQuantity != 6 || p2.StockQuantity != 3 {
		t.Fatalf("stock = %d/%d, want 6/3", p1.StockQuantity, p2.StockQuantity)
	}

	rec, err := store.GetCommitRecord(ctx, result.Order.OrderID)
	if err != nil {
		t.Fatalf("get commit record: %v", err)
	}
	if !rec.Finished() {
		t.Fatalf("record state = %s, want committed", rec.State)
	}
}

func TestCommitRejectsOverdrawnPoints(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	if _, err := store.CreateProduct(ctx, product.Product{ProductID: "P1", Name: "Rice", Price: 8, StockQuantity: 10}); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	if _, err := store.CreateCustomer(ctx, customer.Customer{PhoneNumber: "5550002", Name: "Ben", LoyaltyPoints: 10}); err != nil {
		t.Fatalf("seed customer: %v", err)
	}

	cust, _ := store.GetCustomer(ctx, "5550002")
	p1, _ := store.GetProduct(ctx, "P1")

	session := checkout.NewSession()
	session.SelectCustomer(cust)
	if err := session.AddLine(p1, 1); err != nil {
		t.Fatalf("add line: %v", err)
	}
	// Balance is authoritative at commit time; bypass the session guard.
	session.RequestedPoints = 11

	_, err := svc.Commit(ctx, session)
	if !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("Commit error = %v, want validation", err)
	}

	// Exactly the balance passes validation.
	session.RequestedPoints = 10
	if _, err := svc.Commit(ctx, session); err != nil {
		t.Fatalf("Commit at exact balance: %v", err)
	}

	orders, _ := store.ListOrders(ctx, order.Filter{CustomerID: "5550002"})
	if len(orders) != 1 {
		t.Fatalf("orders persisted = %d, want 1", len(orders))
	}
}

func TestCommitRejectsEmptyAndUnselected(t *testing.T) {
	svc, store := newTestService(t)
	seedBasics(t, store)
	ctx := context.Background()

	empty := checkout.NewSession()
	if _, err := svc.Commit(ctx, empty); !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("empty session error = %v, want validation", err)
	}

	cust, _ := store.GetCustomer(ctx, "5550001")
	session := checkout.NewSession()
	session.SelectCustomer(cust)
	if _, err := svc.Commit(ctx, session); !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("empty cart error = %v, want validation", err)
	}
}

func TestCommitRejectsInsufficientStock(t *testing.T) {
	svc, store := newTestService(t)
	seedBasics(t, store)
	ctx := context.Background()

	cust, _ := store.GetCustomer(ctx, "5550001")
	p2, _ := store.GetProduct(ctx, "P2")

	session := checkout.NewSession()
	session.SelectCustomer(cust)
	session.Lines = append(session.Lines, order.Line{ProductID: p2.ProductID, Name: p2.Name, Quantity: 6, Price: p2.Price}) // stock is 5

	_, err := svc.Commit(ctx, session)
	if !apperr.IsCode(err, apperr.CodeConflict) {
		t.Fatalf("Commit error = %v, want conflict", err)
	}

	got, _ := store.GetProduct(ctx, "P2")
	if got.StockQuantity != 5 {
		t.Fatalf("stock mutated to %d on failed validation", got.StockQuantity)
	}
}

func TestCommitMergesDuplicateLines(t *testing.T) {
	svc, store := newTestService(t)
	seedBasics(t, store)
	ctx := context.Background()

	cust, _ := store.GetCustomer(ctx, "5550001")
	session := checkout.NewSession()
	session.SelectCustomer(cust)
	session.Lines = []order.Line{
		{ProductID: "P1", Name: "Rice", Quantity: 2, Price: 8},
		{ProductID: "P1", Name: "Rice", Quantity: 3, Price: 8},
	}

	result, err := svc.Commit(ctx, session)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if len(result.Order.Items) != 1 || result.Order.Items[0].Quantity != 5 {
		t.Fatalf("order items = %+v, want one line with quantity 5", result.Order.Items)
	}
	if result.Breakdown.Total != 40 {
		t.Fatalf("Total = %v, want 40", result.Breakdown.Total)
	}
	p1, _ := store.GetProduct(ctx, "P1")
	if p1.StockQuantity != 5 {
		t.Fatalf("stock after commit = %d, want 5 (order sold 5 units)", p1.StockQuantity)
	}
}

func TestCommitRejectsDuplicateLinesBeyondStock(t *testing.T) {
	svc, store := newTestService(t)
	seedBasics(t, store)
	ctx := context.Background()

	cust, _ := store.GetCustomer(ctx, "5550001")
	session := checkout.NewSession()
	session.SelectCustomer(cust)
	// Each line fits the stock of 5 on its own; combined they do not.
	session.Lines = []order.Line{
		{ProductID: "P2", Name: "Oil", Quantity: 3, Price: 10},
		{ProductID: "P2", Name: "Oil", Quantity: 3, Price: 10},
	}

	if _, err := svc.Commit(ctx, session); !apperr.IsCode(err, apperr.CodeConflict) {
		t.Fatalf("Commit error = %v, want conflict", err)
	}
	p2, _ := store.GetProduct(ctx, "P2")
	if p2.StockQuantity != 5 {
		t.Fatalf("stock mutated to %d on failed validation", p2.StockQuantity)
	}

	session.Lines = []order.Line{
		{ProductID: "P2", Name: "Oil", Quantity: 1, Price: 10},
		{ProductID: "P2", Name: "Oil", Quantity: 1, Price: 9},
	}
	if _, err := svc.Commit(ctx, session); !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("Commit error = %v, want validation on conflicting prices", err)
	}
}

func TestCommitOrderIDCollisionRetries(t *testing.T) {
	svc, store := newTestService(t)
	seedBasics(t, store)
	ctx := context.Background()

	fixed := time.Now().UTC()
	svc.now = func() time.Time { return fixed }

	first, err := svc.Commit(ctx, basicSession(t, store))
	if err != nil {
		t.Fatalf("first Commit: %v", err)
	}
	second, err := svc.Commit(ctx, basicSession(t, store))
	if err != nil {
		t.Fatalf("second Commit with colliding timestamp: %v", err)
	}
	if first.Order.OrderID == second.Order.OrderID {
		t.Fatalf("both commits produced order id %s", first.Order.OrderID)
	}
}

// failingOrders wraps the memory store and fails every CreateOrder.
type failingOrders struct {
	storage.OrderStore
}

func (f *failingOrders) CreateOrder(context.Context, order.Order) (order.Order, error) {
	return order.Order{}, apperr.Internal(context.DeadlineExceeded)
}

func TestCommitOrderFailureMutatesNothing(t *testing.T) {
	store := memory.New()
	svc := New(&failingOrders{OrderStore: store}, store, store, store, logger.NewDefault("checkout-test"))
	seedBasics(t, store)
	ctx := context.Background()

	_, err := svc.Commit(ctx, basicSession(t, store))
	if !apperr.IsCode(err, apperr.CodeStepFailed) {
		t.Fatalf("Commit error = %v, want step_failed", err)
	}

	// The order write is the first mutation of shared state; when it
	// fails, nothing else may have moved and the journal entry is gone.
	cust, _ := store.GetCustomer(ctx, "5550001")
	if cust.LoyaltyPoints != 100 || len(cust.OrderHistory) != 0 {
		t.Fatalf("customer mutated: balance %d history %v", cust.LoyaltyPoints, cust.OrderHistory)
	}
	p1, _ := store.GetProduct(ctx, "P1")
	p2, _ := store.GetProduct(ctx, "P2")
	if p1.StockQuantity != 10 || p2.StockQuantity != 5 {
		t.Fatalf("stock mutated: %d/%d, want 10/5", p1.StockQuantity, p2.StockQuantity)
	}
	orders, _ := store.ListOrders(ctx, order.Filter{})
	if len(orders) != 0 {
		t.Fatalf("orders persisted = %d, want 0", len(orders))
	}
	records, _ := store.ListUnfinishedCommits(ctx)
	if len(records) != 0 {
		t.Fatalf("journal records left behind = %d, want 0", len(records))
	}
}

// failingProducts wraps the memory store and fails AdjustStock for one
// product a configured number of times.
type failingProducts struct {
	storage.ProductStore
	failID    string
	remaining int
}

func (f *failingProducts) AdjustStock(ctx context.Context, productID string, delta int) (product.Product, error) {
	if productID == f.failID && f.remaining > 0 {
		f.remaining--
		return product.Product{}, apperr.Internal(context.DeadlineExceeded)
	}
	return f.ProductStore.AdjustStock(ctx, productID, delta)
}

func TestCommitPartialFailureLeavesRepairableJournal(t *testing.T) {
	store := memory.New()
	products := &failingProducts{ProductStore: store, failID: "P2", remaining: 1}
	svc := New(store, store, products, store, logger.NewDefault("checkout-test"))
	seedBasics(t, store)
	ctx := context.Background()

	_, err := svc.Commit(ctx, basicSession(t, store))
	if !apperr.IsCode(err, apperr.CodeStepFailed) {
		t.Fatalf("Commit error = %v, want step_failed", err)
	}

	// Order and customer writes happened before the stock failure.
	records, err := store.ListUnfinishedCommits(ctx)
	if err != nil {
		t.Fatalf("list unfinished: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("unfinished records = %d, want 1", len(records))
	}
	rec := records[0]
	if rec.FailedAt != checkout.StepStockAdjusted {
		t.Fatalf("FailedAt = %s, want stock_adjusted", rec.FailedAt)
	}
	if !rec.LineAdjusted("P1") || rec.LineAdjusted("P2") {
		t.Fatalf("adjusted lines = %v, want [P1]", rec.AdjustedLines)
	}
	if _, err := store.GetOrder(ctx, rec.OrderID); err != nil {
		t.Fatalf("order should have been persisted: %v", err)
	}
	cust, _ := store.GetCustomer(ctx, "5550001")
	if cust.LoyaltyPoints != 84 {
		t.Fatalf("balance = %d, want 84 applied before the failure", cust.LoyaltyPoints)
	}
	p1, _ := store.GetProduct(ctx, "P1")
	if p1.StockQuantity != 6 {
		t.Fatalf("P1 stock = %d, want 6", p1.StockQuantity)
	}
	p2, _ := store.GetProduct(ctx, "P2")
	if p2.StockQuantity != 5 {
		t.Fatalf("P2 stock = %d, want untouched 5", p2.StockQuantity)
	}
}

func TestReconcilerCompletesUnfinishedCommit(t *testing.T) {
	store := memory.New()
	products := &failingProducts{ProductStore: store, failID: "P2", remaining: 1}
	svc := New(store, store, products, store, logger.NewDefault("checkout-test"))
	seedBasics(t, store)
	ctx := context.Background()

	if _, err := svc.Commit(ctx, basicSession(t, store)); err == nil {
		t.Fatal("expected commit to fail")
	}

	rec := NewReconciler(svc, store, time.Minute, logger.NewDefault("checkout-test"))
	rec.Sweep(ctx)

	remaining, _ := store.ListUnfinishedCommits(ctx)
	if len(remaining) != 0 {
		t.Fatalf("unfinished records after sweep = %d, want 0", len(remaining))
	}
	p1, _ := store.GetProduct(ctx, "P1")
	p2, _ := store.GetProduct(ctx, "P2")
	if p1.StockQuantity != 6 || p2.StockQuantity != 3 {
		t.Fatalf("stock after repair = %d/%d, want 6/3", p1.StockQuantity, p2.StockQuantity)
	}
	cust, _ := store.GetCustomer(ctx, "5550001")
	if cust.LoyaltyPoints != 84 {
		t.Fatalf("balance after repair = %d, want 84", cust.LoyaltyPoints)
	}

	// A second sweep must not move anything again.
	rec.Sweep(ctx)
	p1, _ = store.GetProduct(ctx, "P1")
	p2, _ = store.GetProduct(ctx, "P2")
	cust, _ = store.GetCustomer(ctx, "5550001")
	if p1.StockQuantity != 6 || p2.StockQuantity != 3 || cust.LoyaltyPoints != 84 {
		t.Fatal("second sweep changed committed state")
	}
}

func TestReconcilerDiscardsRecordWithoutOrder(t *testing.T) {
	svc, store := newTestService(t)
	seedBasics(t, store)
	ctx := context.Background()

	stale := checkout.CommitRecord{
		OrderID:    "ORD123",
		CustomerID: "5550001",
		State:      checkout.StepValidated,
		StartedAt:  time.Now().UTC(),
	}
	if err := store.PutCommitRecord(ctx, stale); err != nil {
		t.Fatalf("put record: %v", err)
	}

	rec := NewReconciler(svc, store, time.Minute, logger.NewDefault("checkout-test"))
	rec.Sweep(ctx)

	if _, err := store.GetCommitRecord(ctx, "ORD123"); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("stale record still present: %v", err)
	}
}

func TestQuoteValidatesSessionPoints(t *testing.T) {
	svc, store := newTestService(t)
	seedBasics(t, store)

	session := basicSession(t, store)
	b, err := svc.Quote(session)
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if b.Total != 42 || b.PointsEarned != 4 {
		t.Fatalf("Quote = %+v, want total 42 earned 4", b)
	}

	session.RequestedPoints = 101
	if _, err := svc.Quote(session); !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("Quote error = %v, want validation", err)
	}
}
