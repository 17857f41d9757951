package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/storeflow/storeflow/internal/apperr"
	"github.com/storeflow/storeflow/internal/app/domain/checkout"
	"github.com/storeflow/storeflow/internal/app/storage"
	"github.com/storeflow/storeflow/pkg/logger"
)

// Reconciler is a background service that completes partially committed
// checkouts. It scans the journal for unfinished commit records and
// resumes their remaining steps, which are idempotent, so a record can be
// retried any number of times without double-charging points or stock.
type Reconciler struct {
	service  *Service
	journal  storage.CheckoutJournalStore
	interval time.Duration
	log      *logger.Logger

	onRepair func(ok bool)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewReconciler builds a reconciler sweeping at the given interval. An
// interval of zero or less defaults to 30 seconds.
func NewReconciler(service *Service, journal storage.CheckoutJournalStore, interval time.Duration, log *logger.Logger) *Reconciler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if log == nil {
		log = logger.NewDefault("checkout-reconciler")
	}
	return &Reconciler{
		service:  service,
		journal:  journal,
		interval: interval,
		log:      log,
	}
}

// AttachRepairObserver registers a callback invoked per repair attempt.
// Used for metrics.
func (r *Reconciler) AttachRepairObserver(fn func(ok bool)) {
	r.onRepair = fn
}

// Name implements system.Service.
func (r *Reconciler) Name() string { return "checkout-reconciler" }

// Start launches the sweep loop.
func (r *Reconciler) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return nil
	}
	loopCtx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.loop(loopCtx)
	r.log.WithField("interval", r.interval.String()).Info("reconciler started")
	return nil
}

// Stop halts the sweep loop and waits for the current sweep to finish.
func (r *Reconciler) Stop(ctx context.Context) error {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel = nil
	r.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	r.log.Info("reconciler stopped")
	return nil
}

func (r *Reconciler) loop(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep processes every unfinished journal record once. It is exported so
// an operator endpoint or a test can force a pass without waiting for the
// ticker.
func (r *Reconciler) Sweep(ctx context.Context) {
	records, err := r.journal.ListUnfinishedCommits(ctx)
	if err != nil {
		r.log.WithError(err).Error("list unfinished commits")
		return
	}
	for _, rec := range records {
		if ctx.Err() != nil {
			return
		}
		r.repair(ctx, rec)
	}
}

// repair resumes one record. Records still in the Validated state have
// persisted nothing beyond the journal entry itself when the order write
// never happened, so those are discarded; anything further along re-runs
// the idempotent steps.
func (r *Reconciler) repair(ctx context.Context, rec checkout.CommitRecord) {
	log := r.log.WithField("order_id", rec.OrderID).WithField("state", string(rec.State))

	if rec.State == checkout.StepValidated {
		if _, err := r.service.orders.GetOrder(ctx, rec.OrderID); err != nil {
			if apperr.IsCode(err, apperr.CodeNotFound) {
				if delErr := r.service.journal.DeleteCommitRecord(ctx, rec.OrderID); delErr != nil {
					log.WithError(delErr).Warn("discard stale commit record")
				} else {
					log.Info("discarded commit record with no persisted order")
				}
				return
			}
			log.WithError(err).Warn("check order existence")
			return
		}
		// Crash landed between the order write and the journal update.
		rec.State = checkout.StepOrderPersisted
	}

	_, _, err := r.service.runRepairableSteps(ctx, rec)
	if r.onRepair != nil {
		r.onRepair(err == nil)
	}
	if err != nil {
		log.WithError(err).WithField("attempts", rec.Attempts+1).Warn("reconcile attempt failed")
		return
	}
	log.Info("reconciled partially committed order")
}
