// Command storeflowd runs the storeflow backend: the REST API over the
// configured store plus the checkout reconciler.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/storeflow/storeflow/internal/app"
	checkoutsvc "github.com/storeflow/storeflow/internal/app/services/checkout"
	"github.com/storeflow/storeflow/internal/app/storage/restclient"
	"github.com/storeflow/storeflow/internal/config"
	"github.com/storeflow/storeflow/internal/metrics"
	"github.com/storeflow/storeflow/internal/middleware"
	"github.com/storeflow/storeflow/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	envFile := flag.String("env-file", ".env", "path to .env file")
	flag.Parse()

	log := logger.NewDefault("storeflowd")

	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("could not load env file")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Error("invalid configuration")
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("server exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	stores := app.Stores{}
	if cfg.StoreMode == config.StoreRest {
		remote := restclient.New(cfg.UpstreamURL, cfg.StepTimeout)
		stores.Products = remote
		stores.Customers = remote
		stores.Orders = remote
		stores.Employees = remote
		stores.Alerts = remote
		// The commit journal stays local; it records this instance's
		// in-flight commits.
	}

	m := metrics.New()

	application, err := app.New(stores, app.Options{
		JWTSecret:         []byte(cfg.JWTSecret),
		TokenTTL:          cfg.TokenTTL,
		Tariff:            checkoutsvc.Tariff{PointValue: cfg.PointValue, EarnRate: cfg.EarnRate},
		LowStockThreshold: cfg.LowStockThreshold,
		StepTimeout:       cfg.StepTimeout,
		ReconcileInterval: cfg.ReconcileInterval,
		Metrics:           m,
		Logger:            log,
	})
	if err != nil {
		return err
	}

	router := application.Router()
	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	router.Use(middleware.LoggingMiddleware(log))
	router.Use(middleware.MetricsMiddleware(m))

	// Staff surfaces (employee management, alerts) require a session
	// token; the storefront and checkout stay open like the portals
	// they serve.
	auth := middleware.NewAuthMiddleware([]byte(cfg.JWTSecret), log, []string{
		"/healthz",
		"/metrics",
		"/api/employees/login",
		"/api/customers",
		"/api/customers/",
		"/api/products",
		"/api/products/",
		"/api/orders",
		"/api/orders/",
		"/api/checkout/",
	})
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst, log)
	cors := middleware.NewCORSMiddleware(cfg.AllowedOrigins)

	handler := cors.Handler(limiter.Handler(auth.Handler(router)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Start(ctx); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := application.Stop(shutdownCtx); err != nil {
			log.WithError(err).Warn("background services did not stop cleanly")
		}
	}()

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.ListenAddr).WithField("store_mode", cfg.StoreMode).Info("server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
