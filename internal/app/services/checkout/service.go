// Package checkout implements the checkout calculator and the order commit
// sequence: the ordered persistence steps that turn a confirmed cart into an
// order record, a customer update, and per-line stock decrements across
// independent stores, with journaled progress standing in for the missing
// cross-store transaction.
package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/storeflow/storeflow/internal/apperr"
	"github.com/storeflow/storeflow/internal/app/domain/checkout"
	"github.com/storeflow/storeflow/internal/app/domain/customer"
	"github.com/storeflow/storeflow/internal/app/domain/order"
	"github.com/storeflow/storeflow/internal/app/domain/product"
	"github.com/storeflow/storeflow/internal/app/storage"
	"github.com/storeflow/storeflow/pkg/logger"
)

// Result is the outcome of a committed checkout.
type Result struct {
	Order     order.Order        `json:"order"`
	Breakdown checkout.Breakdown `json:"breakdown"`
	Balance   int                `json:"balance"`
}

// Service drives checkout computation and the commit sequence.
type Service struct {
	orders    storage.OrderStore
	customers storage.CustomerStore
	products  storage.ProductStore
	journal   storage.CheckoutJournalStore
	tariff    Tariff
	timeout   time.Duration
	log       *logger.Logger

	onOutcome func(state checkout.Step)
	now       func() time.Time
}

// New constructs a checkout service with the default tariff and a 10 second
// per-step timeout.
func New(orders storage.OrderStore, customers storage.CustomerStore, products storage.ProductStore, journal storage.CheckoutJournalStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("checkout")
	}
	return &Service{
		orders:    orders,
		customers: customers,
		products:  products,
		journal:   journal,
		tariff:    DefaultTariff,
		timeout:   10 * time.Second,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithTariff overrides the loyalty conversion constants.
func (s *Service) WithTariff(t Tariff) *Service {
	if t.PointValue > 0 && t.EarnRate > 0 {
		s.tariff = t
	}
	return s
}

// WithStepTimeout bounds each persistence call of the commit sequence.
func (s *Service) WithStepTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// AttachOutcomeObserver registers a callback invoked with the terminal state
// of every commit attempt. Used for metrics.
func (s *Service) AttachOutcomeObserver(fn func(state checkout.Step)) {
	s.onOutcome = fn
}

// Tariff exposes the active conversion constants.
func (s *Service) Tariff() Tariff {
	return s.tariff
}

// Quote computes the breakdown for a session without touching any store.
// The requested points are validated against the session's customer
// snapshot so the UI sees the same rejection the commit would produce.
func (s *Service) Quote(session checkout.Session) (checkout.Breakdown, error) {
	if session.RequestedPoints < 0 {
		return checkout.Breakdown{}, apperr.Validation("requested points must not be negative")
	}
	if session.HasCustomer && session.RequestedPoints > session.Customer.LoyaltyPoints {
		return checkout.Breakdown{}, apperr.Validation("customer does not have enough loyalty points")
	}
	return s.tariff.Compute(session.Lines, session.RequestedPoints), nil
}

// Commit runs the commit sequence for a validated session:
//
//	Validated -> OrderPersisted -> CustomerUpdated -> StockAdjusted -> Committed
//
// Progress is journaled before every mutating step. A failure at or after
// the customer update leaves an unfinished journal record that the
// reconciler completes; a failure persisting the order aborts with nothing
// mutated.
func (s *Service) Commit(ctx context.Context, session checkout.Session) (Result, error) {
	cust, lines, err := s.validate(ctx, session)
	if err != nil {
		return Result{}, err
	}

	breakdown := s.tariff.Compute(lines, session.RequestedPoints)
	now := s.now()

	ord := order.Order{
		OrderID:     s.newOrderID(now),
		CustomerID:  cust.PhoneNumber,
		Items:       lines,
		OrderDate:   now,
		TotalAmount: breakdown.Total,
		Status:      order.StatusCompleted,
	}

	rec := checkout.CommitRecord{
		OrderID:         ord.OrderID,
		CustomerID:      cust.PhoneNumber,
		Items:           lines,
		RequestedPoints: session.RequestedPoints,
		PointsEarned:    breakdown.PointsEarned,
		TotalAmount:     breakdown.Total,
		State:           checkout.StepValidated,
		StartedAt:       now,
	}
	if err := s.putRecord(ctx, rec); err != nil {
		return Result{}, apperr.StepFailed("journal checkout", err)
	}

	// Step 2: persist the order. Failure here is the safe abort point.
	persisted, err := s.persistOrder(ctx, ord)
	if err != nil {
		s.discardRecord(ctx, rec.OrderID)
		s.observe(checkout.StepValidated)
		return Result{}, err
	}
	rec.OrderID = persisted.OrderID
	rec.State = checkout.StepOrderPersisted
	if err := s.putRecord(ctx, rec); err != nil {
		return Result{}, apperr.StepFailed("journal order persisted", err)
	}

	balance, rec, err := s.runRepairableSteps(ctx, rec)
	if err != nil {
		s.observe(rec.State)
		return Result{}, err
	}

	s.observe(checkout.StepCommitted)
	s.log.WithField("order_id", persisted.OrderID).
		WithField("customer_id", cust.PhoneNumber).
		WithField("total", breakdown.Total).
		WithField("points_redeemed", session.RequestedPoints).
		WithField("points_earned", breakdown.PointsEarned).
		Info("checkout committed")

	persisted.TotalAmount = breakdown.Total
	return Result{Order: persisted, Breakdown: breakdown, Balance: balance}, nil
}

// runRepairableSteps executes steps 3-5 from whatever point the record has
// reached. It is shared by Commit and the reconciler and is idempotent: the
// customer update is skipped when the order is already in the history, and
// each stock decrement is journaled per line so it never runs twice.
func (s *Service) runRepairableSteps(ctx context.Context, rec checkout.CommitRecord) (int, checkout.CommitRecord, error) {
	// Step 3: points movement plus history append, one customer write.
	cust, err := s.getCustomer(ctx, rec.CustomerID)
	if err != nil {
		rec = s.markFailed(ctx, rec, checkout.StepCustomerUpdated, err)
		return 0, rec, apperr.StepFailed("load customer", err)
	}
	if !cust.HasOrder(rec.OrderID) {
		cust.LoyaltyPoints = cust.LoyaltyPoints - rec.RequestedPoints + rec.PointsEarned
		if cust.LoyaltyPoints < 0 {
			// Balance drifted below the redeemed amount since validation.
			err := apperr.Conflict("customer %s balance insufficient for %d points", cust.PhoneNumber, rec.RequestedPoints)
			rec = s.markFailed(ctx, rec, checkout.StepCustomerUpdated, err)
			return 0, rec, err
		}
		cust.OrderHistory = append(cust.OrderHistory, rec.OrderID)
		if cust, err = s.updateCustomer(ctx, cust); err != nil {
			rec = s.markFailed(ctx, rec, checkout.StepCustomerUpdated, err)
			return 0, rec, apperr.StepFailed("update customer", err)
		}
	}
	rec.State = checkout.StepCustomerUpdated
	rec.FailedAt = ""
	rec.LastError = ""
	if err := s.putRecord(ctx, rec); err != nil {
		return 0, rec, apperr.StepFailed("journal customer updated", err)
	}

	// Step 4: one conditional decrement per line, sequential.
	for _, line := range rec.Items {
		if rec.LineAdjusted(line.ProductID) {
			continue
		}
		if _, err := s.adjustStock(ctx, line.ProductID, -line.Quantity); err != nil {
			rec = s.markFailed(ctx, rec, checkout.StepStockAdjusted, err)
			return 0, rec, apperr.StepFailed(fmt.Sprintf("adjust stock for %s", line.ProductID), err)
		}
		rec.AdjustedLines = append(rec.AdjustedLines, line.ProductID)
		if err := s.putRecord(ctx, rec); err != nil {
			return 0, rec, apperr.StepFailed("journal stock adjustment", err)
		}
	}
	rec.State = checkout.StepStockAdjusted
	if err := s.putRecord(ctx, rec); err != nil {
		return 0, rec, apperr.StepFailed("journal stock adjusted", err)
	}

	rec.State = checkout.StepCommitted
	rec.FailedAt = ""
	rec.LastError = ""
	if err := s.putRecord(ctx, rec); err != nil {
		return 0, rec, apperr.StepFailed("journal commit", err)
	}
	return cust.LoyaltyPoints, rec, nil
}

// validate checks every precondition against authoritative store state
// before anything is written: customer selected and present, non-empty
// cart, sane quantities, requested points within balance, and every line
// quantity within current stock. Lines naming the same product collapse
// into one, so stock is checked against the combined quantity and the
// per-product journaling of step 4 sees each product exactly once.
func (s *Service) validate(ctx context.Context, session checkout.Session) (customer.Customer, []order.Line, error) {
	if !session.HasCustomer {
		return customer.Customer{}, nil, apperr.Validation("no customer selected")
	}
	if len(session.Lines) == 0 {
		return customer.Customer{}, nil, apperr.Validation("order has no items")
	}
	if session.RequestedPoints < 0 {
		return customer.Customer{}, nil, apperr.Validation("requested points must not be negative")
	}

	cust, err := s.getCustomer(ctx, session.Customer.PhoneNumber)
	if err != nil {
		return customer.Customer{}, nil, err
	}
	if session.RequestedPoints > cust.LoyaltyPoints {
		return customer.Customer{}, nil, apperr.Validation("customer does not have enough loyalty points")
	}

	lines := make([]order.Line, 0, len(session.Lines))
	byProduct := make(map[string]int, len(session.Lines))
	for _, line := range session.Lines {
		if line.Quantity < 1 {
			return customer.Customer{}, nil, apperr.Validation("quantity for %s must be at least 1", line.ProductID)
		}
		if line.Price < 0 {
			return customer.Customer{}, nil, apperr.Validation("price for %s must not be negative", line.ProductID)
		}
		if i, ok := byProduct[line.ProductID]; ok {
			if lines[i].Price != line.Price {
				return customer.Customer{}, nil, apperr.Validation("conflicting prices for %s", line.ProductID)
			}
			lines[i].Quantity += line.Quantity
			continue
		}
		byProduct[line.ProductID] = len(lines)
		lines = append(lines, line)
	}

	for _, line := range lines {
		p, err := s.getProduct(ctx, line.ProductID)
		if err != nil {
			return customer.Customer{}, nil, err
		}
		if line.Quantity > p.StockQuantity {
			return customer.Customer{}, nil, apperr.Conflict("insufficient stock for %s: %d available, %d requested", p.Name, p.StockQuantity, line.Quantity)
		}
	}
	return cust, lines, nil
}

// newOrderID builds the caller-generated order identifier. Millisecond
// timestamps are unique enough for a single operator; the store enforces
// uniqueness and persistOrder retries once with a random suffix on
// collision.
func (s *Service) newOrderID(now time.Time) string {
	return fmt.Sprintf("ORD%d", now.UnixMilli())
}

func (s *Service) persistOrder(ctx context.Context, ord order.Order) (order.Order, error) {
	created, err := s.createOrder(ctx, ord)
	if err == nil {
		return created, nil
	}
	if apperr.IsCode(err, apperr.CodeAlreadyExists) {
		ord.OrderID = ord.OrderID + "-" + uuid.NewString()[:8]
		if created, retryErr := s.createOrder(ctx, ord); retryErr == nil {
			return created, nil
		}
	}
	return order.Order{}, apperr.StepFailed("persist order", err)
}

func (s *Service) markFailed(ctx context.Context, rec checkout.CommitRecord, at checkout.Step, cause error) checkout.CommitRecord {
	rec.FailedAt = at
	rec.LastError = cause.Error()
	rec.Attempts++
	if err := s.putRecord(ctx, rec); err != nil {
		s.log.WithError(err).WithField("order_id", rec.OrderID).Error("journal write failed while recording step failure")
	}
	s.log.WithField("order_id", rec.OrderID).
		WithField("failed_at", string(at)).
		WithError(cause).
		Warn("commit step failed; order needs reconciliation")
	return rec
}

func (s *Service) discardRecord(ctx context.Context, orderID string) {
	if err := s.journal.DeleteCommitRecord(ctx, orderID); err != nil && !apperr.IsCode(err, apperr.CodeNotFound) {
		s.log.WithError(err).WithField("order_id", orderID).Warn("discard journal record")
	}
}

func (s *Service) observe(state checkout.Step) {
	if s.onOutcome != nil {
		s.onOutcome(state)
	}
}

// Store calls below run under the per-step timeout; a timeout is a failure
// of that step.

func (s *Service) getCustomer(ctx context.Context, phone string) (customer.Customer, error) {
	stepCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.customers.GetCustomer(stepCtx, phone)
}

func (s *Service) updateCustomer(ctx context.Context, c customer.Customer) (customer.Customer, error) {
	stepCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.customers.UpdateCustomer(stepCtx, c)
}

func (s *Service) getProduct(ctx context.Context, id string) (product.Product, error) {
	stepCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.products.GetProduct(stepCtx, id)
}

func (s *Service) adjustStock(ctx context.Context, id string, delta int) (product.Product, error) {
	stepCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.products.AdjustStock(stepCtx, id, delta)
}

func (s *Service) createOrder(ctx context.Context, ord order.Order) (order.Order, error) {
	stepCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.orders.CreateOrder(stepCtx, ord)
}

func (s *Service) putRecord(ctx context.Context, rec checkout.CommitRecord) error {
	stepCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.journal.PutCommitRecord(stepCtx, rec)
}
