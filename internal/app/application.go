// Package app wires the storeflow services together: stores, domain
// services, the HTTP handler, and background lifecycle services.
package app

import (
	"context"
	"time"

	"github.com/gorilla/mux"

	"github.com/storeflow/storeflow/internal/app/domain/checkout"
	"github.com/storeflow/storeflow/internal/app/httpapi"
	"github.com/storeflow/storeflow/internal/app/services/alerts"
	checkoutsvc "github.com/storeflow/storeflow/internal/app/services/checkout"
	"github.com/storeflow/storeflow/internal/app/services/customers"
	"github.com/storeflow/storeflow/internal/app/services/employees"
	"github.com/storeflow/storeflow/internal/app/services/orders"
	"github.com/storeflow/storeflow/internal/app/services/products"
	"github.com/storeflow/storeflow/internal/app/storage"
	"github.com/storeflow/storeflow/internal/app/storage/memory"
	"github.com/storeflow/storeflow/internal/app/system"
	"github.com/storeflow/storeflow/internal/metrics"
	"github.com/storeflow/storeflow/pkg/logger"
)

// Stores carries the persistence implementations. Nil fields default to a
// shared in-memory store.
type Stores struct {
	Products  storage.ProductStore
	Customers storage.CustomerStore
	Orders    storage.OrderStore
	Employees storage.EmployeeStore
	Alerts    storage.AlertStore
	Journal   storage.CheckoutJournalStore
}

func (s *Stores) fillDefaults() {
	var mem *memory.Store
	def := func() *memory.Store {
		if mem == nil {
			mem = memory.New()
		}
		return mem
	}
	if s.Products == nil {
		s.Products = def()
	}
	if s.Customers == nil {
		s.Customers = def()
	}
	if s.Orders == nil {
		s.Orders = def()
	}
	if s.Employees == nil {
		s.Employees = def()
	}
	if s.Alerts == nil {
		s.Alerts = def()
	}
	if s.Journal == nil {
		s.Journal = def()
	}
}

// Options tunes the application beyond its defaults.
type Options struct {
	JWTSecret         []byte
	TokenTTL          time.Duration
	Tariff            checkoutsvc.Tariff
	LowStockThreshold int
	StepTimeout       time.Duration
	ReconcileInterval time.Duration
	Metrics           *metrics.Metrics
	Logger            *logger.Logger
}

// Application is the assembled backend.
type Application struct {
	Products  *products.Service
	Customers *customers.Service
	Orders    *orders.Service
	Employees *employees.Service
	Alerts    *alerts.Service
	Checkout  *checkoutsvc.Service

	handler *httpapi.Handler
	manager *system.Manager
	log     *logger.Logger
}

// New assembles the application.
func New(stores Stores, opts Options) (*Application, error) {
	stores.fillDefaults()

	log := opts.Logger
	if log == nil {
		log = logger.NewDefault("storeflow")
	}

	alertSvc := alerts.New(stores.Alerts, log.WithField("service", "alerts"))
	productSvc := products.New(stores.Products, alertSvc, log.WithField("service", "products"))
	if opts.LowStockThreshold != 0 {
		productSvc.WithLowStockThreshold(opts.LowStockThreshold)
	}
	customerSvc := customers.New(stores.Customers, log.WithField("service", "customers"))
	orderSvc := orders.New(stores.Orders, log.WithField("service", "orders"))
	employeeSvc := employees.New(stores.Employees, opts.JWTSecret, log.WithField("service", "employees"))
	if opts.TokenTTL > 0 {
		employeeSvc.WithTokenTTL(opts.TokenTTL)
	}

	checkoutSvc := checkoutsvc.New(stores.Orders, stores.Customers, stores.Products, stores.Journal, log.WithField("service", "checkout"))
	if opts.Tariff.PointValue > 0 && opts.Tariff.EarnRate > 0 {
		checkoutSvc.WithTariff(opts.Tariff)
	}
	if opts.StepTimeout > 0 {
		checkoutSvc.WithStepTimeout(opts.StepTimeout)
	}
	if opts.Metrics != nil {
		m := opts.Metrics
		checkoutSvc.AttachOutcomeObserver(func(state checkout.Step) {
			m.RecordCommitOutcome(string(state))
		})
	}

	reconciler := checkoutsvc.NewReconciler(checkoutSvc, stores.Journal, opts.ReconcileInterval, log.WithField("service", "checkout-reconciler"))
	if opts.Metrics != nil {
		reconciler.AttachRepairObserver(opts.Metrics.RecordRepair)
	}

	manager := system.NewManager()
	if err := manager.Register(reconciler); err != nil {
		return nil, err
	}

	handler := httpapi.New(productSvc, customerSvc, orderSvc, employeeSvc, alertSvc, checkoutSvc, log.WithField("service", "httpapi"))

	return &Application{
		Products:  productSvc,
		Customers: customerSvc,
		Orders:    orderSvc,
		Employees: employeeSvc,
		Alerts:    alertSvc,
		Checkout:  checkoutSvc,
		handler:   handler,
		manager:   manager,
		log:       log,
	}, nil
}

// Router builds a router with all API routes registered. Middleware is
// applied by the caller.
func (a *Application) Router() *mux.Router {
	r := mux.NewRouter()
	a.handler.Register(r)
	return r
}

// Start launches the background services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop shuts the background services down.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
