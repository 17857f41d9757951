// Package alerts manages staff notification records.
package alerts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/storeflow/storeflow/internal/apperr"
	"github.com/storeflow/storeflow/internal/app/domain/alert"
	"github.com/storeflow/storeflow/internal/app/storage"
	"github.com/storeflow/storeflow/pkg/logger"
)

// Service validates and persists alerts.
type Service struct {
	store storage.AlertStore
	log   *logger.Logger
	now   func() time.Time
}

// New constructs the alerts service.
func New(store storage.AlertStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("alerts")
	}
	return &Service{
		store: store,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Create persists a new alert. The AlertID is generated when absent, and
// the status defaults to pending.
func (s *Service) Create(ctx context.Context, a alert.Alert) (alert.Alert, error) {
	if strings.TrimSpace(a.Message) == "" {
		return alert.Alert{}, apperr.Validation("alert message is required")
	}
	if a.AlertID == "" {
		a.AlertID = fmt.Sprintf("ALT%d", s.now().UnixMilli())
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = s.now()
	}
	if a.Status == "" {
		a.Status = alert.StatusPending
	}

	created, err := s.store.CreateAlert(ctx, a)
	if apperr.IsCode(err, apperr.CodeAlreadyExists) {
		a.AlertID = a.AlertID + "-" + uuid.NewString()[:8]
		created, err = s.store.CreateAlert(ctx, a)
	}
	if err != nil {
		return alert.Alert{}, err
	}

	s.log.WithField("alert_id", created.AlertID).
		WithField("employee_id", created.EmployeeID).
		Info("alert created")
	return created, nil
}

// Get fetches one alert.
func (s *Service) Get(ctx context.Context, alertID string) (alert.Alert, error) {
	return s.store.GetAlert(ctx, alertID)
}

// List returns alerts, optionally scoped to one employee, newest first.
func (s *Service) List(ctx context.Context, employeeID string) ([]alert.Alert, error) {
	return s.store.ListAlerts(ctx, employeeID)
}

// Update replaces an alert record.
func (s *Service) Update(ctx context.Context, a alert.Alert) (alert.Alert, error) {
	if strings.TrimSpace(a.Message) == "" {
		return alert.Alert{}, apperr.Validation("alert message is required")
	}
	switch a.Status {
	case alert.StatusPending, alert.StatusDelivered:
	default:
		return alert.Alert{}, apperr.Validation("invalid alert status %q", a.Status)
	}
	return s.store.UpdateAlert(ctx, a)
}

// MarkDelivered transitions a pending alert to delivered.
func (s *Service) MarkDelivered(ctx context.Context, alertID string) (alert.Alert, error) {
	a, err := s.store.GetAlert(ctx, alertID)
	if err != nil {
		return alert.Alert{}, err
	}
	if a.Status == alert.StatusDelivered {
		return a, nil
	}
	a.Status = alert.StatusDelivered
	return s.store.UpdateAlert(ctx, a)
}

// Delete removes an alert.
func (s *Service) Delete(ctx context.Context, alertID string) error {
	return s.store.DeleteAlert(ctx, alertID)
}
