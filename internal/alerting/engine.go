package alerting

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"maintenance-service/internal/logging"
	"maintenance-service/internal/models"
	"maintenance-service/internal/notify"
)

// Store is the persistence surface the rule engine reads from and writes to.
type Store interface {
	ListOverduePendingTasks(ctx context.Context, cutoff time.Time) ([]models.MaintenanceTask, error)
	ListEquipmentByStatus(ctx context.Context, status models.EquipmentStatus) ([]models.Equipment, error)
	ListLowStockItems(ctx context.Context) ([]models.InventoryItem, error)
	ListRecentHighRiskPredictions(ctx context.Context, since time.Time) ([]models.FailurePrediction, error)
	LastMaintenanceDate(ctx context.Context, equipmentID int) (*time.Time, error)
	CreateAlertIfAbsent(ctx context.Context, alert models.Alert, window time.Duration) (bool, error)
}

// TaskScheduler creates follow-up maintenance tasks for freshly raised
// equipment alerts.
type TaskScheduler interface {
	ScheduleFromAlert(ctx context.Context, alert models.Alert) (*models.MaintenanceTask, bool, error)
}

// candidate is an alert a rule wants raised, paired with the dedup window
// the persistence layer must check against.
type candidate struct {
	alert  models.Alert
	window time.Duration
}

type rule struct {
	name     string
	evaluate func(ctx context.Context, now time.Time) ([]candidate, error)
}

// Engine evaluates the alert rules against current state on every cycle.
// Rules are independent: one rule failing to read its inputs never blocks
// the others. Deduplication happens in the store, keyed on category and
// dedup key, inside the insert statement itself.
type Engine struct {
	store     Store
	scheduler TaskScheduler
	notifier  *notify.Notifier
	logger    *logging.Logger
	rules     []rule
	now       func() time.Time
}

func NewEngine(store Store, scheduler TaskScheduler, notifier *notify.Notifier, logger *logging.Logger) *Engine {
	e := &Engine{
		store:     store,
		scheduler: scheduler,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
	e.rules = []rule{
		{"overdue-tasks", e.overdueTaskAlerts},
		{"inactive-equipment", e.inactiveEquipmentAlerts},
		{"low-stock", e.lowStockAlerts},
		{"high-risk-predictions", e.highRiskPredictionAlerts},
		{"maintenance-overdue", e.maintenanceOverdueAlerts},
	}
	return e
}

// SetNow overrides the engine clock. Tests only.
func (e *Engine) SetNow(now func() time.Time) { e.now = now }

// RunCycle evaluates every rule, persists the surviving candidates, and
// publishes the cycle outcome. The new-alert count goes out every cycle,
// including zero, so dashboards can tell a quiet cycle from a dead worker.
func (e *Engine) RunCycle(ctx context.Context) error {
	now := e.now()

	var candidates []candidate
	var failed int
	for _, r := range e.rules {
		found, err := r.evaluate(ctx, now)
		if err != nil {
			e.logger.Errorf("Alert rule %s failed: %v", r.name, err)
			failed++
			continue
		}
		candidates = append(candidates, found...)
	}
	if failed == len(e.rules) {
		return errors.New("all alert rules failed")
	}

	created := make([]models.Alert, 0, len(candidates))
	for _, c := range candidates {
		inserted, err := e.store.CreateAlertIfAbsent(ctx, c.alert, c.window)
		if err != nil {
			e.logger.Errorf("Failed to persist alert %s/%s: %v", c.alert.Category, c.alert.DedupKey, err)
			continue
		}
		if inserted {
			created = append(created, c.alert)
		}
	}

	e.notifier.Publish(ctx, notify.EventNewAlerts, map[string]interface{}{"count": len(created)})

	critical := make([]models.Alert, 0, len(created))
	for _, a := range created {
		if a.Priority == models.AlertHigh {
			critical = append(critical, a)
		}
	}
	if len(critical) > 0 {
		e.notifier.Publish(ctx, notify.EventCriticalAlerts, critical)
	}

	if len(created) > 0 {
		e.logger.Infof("Alert cycle raised %d alerts (%d critical)", len(created), len(critical))
		e.createFollowUpTasks(ctx, created)
	}
	return nil
}

// createFollowUpTasks schedules maintenance work for new equipment alerts
// of medium or higher priority. Low-priority and inventory alerts stay
// notification-only.
func (e *Engine) createFollowUpTasks(ctx context.Context, created []models.Alert) {
	scheduled := 0
	for _, a := range created {
		if a.EquipmentID == nil || a.Priority == models.AlertLow {
			continue
		}
		_, ok, err := e.scheduler.ScheduleFromAlert(ctx, a)
		if err != nil {
			e.logger.Errorf("Failed to schedule task for alert %s: %v", a.ID, err)
			continue
		}
		if ok {
			scheduled++
		}
	}
	if scheduled > 0 {
		e.notifier.Publish(ctx, notify.EventTasksFromAlerts, map[string]interface{}{"count": scheduled})
		e.logger.Infof("Created %d maintenance tasks from new alerts", scheduled)
	}
}
