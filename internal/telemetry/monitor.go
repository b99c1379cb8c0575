package telemetry

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"maintenance-service/internal/logging"
	"maintenance-service/internal/models"
	"maintenance-service/internal/notify"
)

// Store is the persistence surface the monitor needs.
type Store interface {
	ListMonitoredEquipment(ctx context.Context) ([]models.Equipment, error)
	UpdateEquipmentStatus(ctx context.Context, id int, status models.EquipmentStatus) error
}

// Monitor polls telemetry for every non-retired equipment item, persisting
// status flips and broadcasting them alongside performance issues.
type Monitor struct {
	store    Store
	provider Provider
	notifier *notify.Notifier
	logger   *logging.Logger
	now      func() time.Time
}

func NewMonitor(store Store, provider Provider, notifier *notify.Notifier, logger *logging.Logger) *Monitor {
	return &Monitor{
		store:    store,
		provider: provider,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// RunCycle takes one reading per equipment item. Equipment items are
// processed sequentially; a persistence failure on one is logged and the
// rest continue.
func (m *Monitor) RunCycle(ctx context.Context) error {
	equipment, err := m.store.ListMonitoredEquipment(ctx)
	if err != nil {
		return errors.Wrap(err, "list monitored equipment")
	}

	var statusChanges []map[string]interface{}
	var performanceIssues []map[string]interface{}

	for _, eq := range equipment {
		reading := m.provider.Read(eq)

		if reading.Status != eq.Status {
			if err := m.store.UpdateEquipmentStatus(ctx, eq.ID, reading.Status); err != nil {
				m.logger.Errorf("Failed to persist status change for equipment %d: %v", eq.ID, err)
				continue
			}
			statusChanges = append(statusChanges, map[string]interface{}{
				"equipment_id": eq.ID,
				"name":         eq.DisplayName(),
				"old_status":   eq.Status,
				"new_status":   reading.Status,
				"timestamp":    m.now(),
			})
		}

		if reading.Issue != "" {
			performanceIssues = append(performanceIssues, map[string]interface{}{
				"equipment_id": eq.ID,
				"name":         eq.DisplayName(),
				"issue":        reading.Issue,
				"severity":     reading.IssueSeverity,
				"timestamp":    m.now(),
			})
		}
	}

	if len(statusChanges) > 0 {
		m.notifier.Publish(ctx, notify.EventStatusChanged, statusChanges)
		m.logger.Infof("Equipment status changes detected: %d", len(statusChanges))
	}
	if len(performanceIssues) > 0 {
		m.notifier.Publish(ctx, notify.EventPerformanceIssues, performanceIssues)
		m.logger.Infof("Performance issues detected: %d", len(performanceIssues))
	}
	return nil
}
