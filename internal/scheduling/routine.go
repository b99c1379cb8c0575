package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"maintenance-service/internal/logging"
	"maintenance-service/internal/models"
	"maintenance-service/internal/notify"
)

// RoutineStore is the persistence surface the routine sweep needs beyond
// what the Scheduler already covers.
type RoutineStore interface {
	ListEquipmentByStatus(ctx context.Context, status models.EquipmentStatus) ([]models.Equipment, error)
	EquipmentIDsWithOpenTasks(ctx context.Context) (map[int]bool, error)
	LastMaintenanceDate(ctx context.Context, equipmentID int) (*time.Time, error)
	ListTasksDueBetween(ctx context.Context, from, to time.Time) ([]models.MaintenanceTask, error)
	ListAutoCompletableTasks(ctx context.Context, cutoff time.Time) ([]models.MaintenanceTask, error)
	CompleteTask(ctx context.Context, id string) error
	CreateMaintenanceLog(ctx context.Context, log models.MaintenanceLog) error
	CountFutureOpenTasks(ctx context.Context, equipmentID int, from, to time.Time) (int, error)
	CountRecentLogs(ctx context.Context, equipmentID int, since time.Time) (int, error)
}

// RoutineService runs the periodic maintenance housekeeping sweep:
// generating due routine tasks, sending reminders, auto-completing stale
// simple tasks, and keeping a forward-scheduled task on every equipment.
type RoutineService struct {
	store     RoutineStore
	scheduler *Scheduler
	notifier  *notify.Notifier
	logger    *logging.Logger
	now       func() time.Time
}

func NewRoutineService(store RoutineStore, scheduler *Scheduler, notifier *notify.Notifier, logger *logging.Logger) *RoutineService {
	return &RoutineService{
		store:     store,
		scheduler: scheduler,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// SetNow overrides the service clock. Tests only.
func (r *RoutineService) SetNow(now func() time.Time) {
	r.now = now
}

// RunCycle executes all four duties in order. Each duty isolates its own
// per-equipment failures; a duty-level store error aborts the cycle.
func (r *RoutineService) RunCycle(ctx context.Context) error {
	if err := r.generateDueTasks(ctx); err != nil {
		return err
	}
	if err := r.sendReminders(ctx); err != nil {
		return err
	}
	if err := r.autoCompleteSimpleTasks(ctx); err != nil {
		return err
	}
	return r.topUpPreventiveSchedules(ctx)
}

// generateDueTasks creates a routine task for every active equipment whose
// time since last maintenance exceeds its recommended interval.
func (r *RoutineService) generateDueTasks(ctx context.Context) error {
	equipment, err := r.store.ListEquipmentByStatus(ctx, models.EquipmentActive)
	if err != nil {
		return errors.Wrap(err, "list active equipment")
	}
	withOpenTasks, err := r.store.EquipmentIDsWithOpenTasks(ctx)
	if err != nil {
		return errors.Wrap(err, "list equipment with open tasks")
	}

	now := r.now()
	created := 0
	for _, eq := range equipment {
		if withOpenTasks[eq.ID] {
			continue
		}

		lastDate, err := r.store.LastMaintenanceDate(ctx, eq.ID)
		if err != nil {
			r.logger.Errorf("Failed to load maintenance history for equipment %d: %v", eq.ID, err)
			continue
		}
		daysSince := 365.0 // assume a year when there is no history
		if lastDate != nil {
			daysSince = now.Sub(*lastDate).Hours() / 24
		}

		recentLogs, err := r.store.CountRecentLogs(ctx, eq.ID, now.AddDate(0, 0, -90))
		if err != nil {
			r.logger.Errorf("Failed to count recent logs for equipment %d: %v", eq.ID, err)
			continue
		}

		if daysSince < float64(Interval(eq.TypeName, eq, recentLogs, now)) {
			continue
		}

		description := routineDescription(eq, daysSince, eq.AgeDays(now))
		if _, ok, err := r.scheduler.ScheduleRoutine(ctx, eq, description, models.PriorityMedium); err != nil {
			r.logger.Errorf("Failed to schedule routine task for equipment %d: %v", eq.ID, err)
		} else if ok {
			created++
		}
	}

	if created > 0 {
		r.notifier.Publish(ctx, notify.EventTasksScheduled, map[string]interface{}{"count": created})
		r.logger.Infof("Generated %d new scheduled maintenance tasks", created)
	}
	return nil
}

// sendReminders notifies about pending tasks due within the next 3 days.
func (r *RoutineService) sendReminders(ctx context.Context) error {
	now := r.now()
	upcoming, err := r.store.ListTasksDueBetween(ctx, now, now.AddDate(0, 0, 3))
	if err != nil {
		return errors.Wrap(err, "list upcoming tasks")
	}
	if len(upcoming) == 0 {
		return nil
	}

	reminders := make([]map[string]interface{}, 0, len(upcoming))
	for _, task := range upcoming {
		reminders = append(reminders, map[string]interface{}{
			"task_id":        task.ID,
			"equipment_id":   task.EquipmentID,
			"scheduled_date": task.ScheduledDate,
			"description":    task.Description,
		})
	}
	r.notifier.Publish(ctx, notify.EventReminders, reminders)
	r.logger.Infof("Sent %d maintenance reminders", len(reminders))
	return nil
}

// autoCompleteSimpleTasks closes inspection/cleaning tasks overdue by more
// than 30 days and writes a synthetic completed log for each.
func (r *RoutineService) autoCompleteSimpleTasks(ctx context.Context) error {
	now := r.now()
	stale, err := r.store.ListAutoCompletableTasks(ctx, now.AddDate(0, 0, -30))
	if err != nil {
		return errors.Wrap(err, "list auto-completable tasks")
	}

	completed := 0
	for _, task := range stale {
		if err := r.store.CompleteTask(ctx, task.ID); err != nil {
			r.logger.Errorf("Failed to auto-complete task %s: %v", task.ID, err)
			continue
		}
		log := models.MaintenanceLog{
			EquipmentID: task.EquipmentID,
			LogDate:     now,
			Type:        models.MaintenancePreventive,
			Description: "Auto-completed overdue maintenance: " + task.Description,
			Technician:  "System Auto-Complete",
			Cost:        decimal.Zero,
		}
		if err := r.store.CreateMaintenanceLog(ctx, log); err != nil {
			r.logger.Errorf("Failed to write auto-complete log for task %s: %v", task.ID, err)
			continue
		}
		completed++
	}

	if completed > 0 {
		r.notifier.Publish(ctx, notify.EventTasksAutoCompleted, map[string]interface{}{"count": completed})
		r.logger.Infof("Auto-completed %d overdue simple tasks", completed)
	}
	return nil
}

// topUpPreventiveSchedules keeps forward-planned preventive work on every
// active equipment inside the 90-day horizon. The single-open-task
// invariant caps each equipment at one open task, so the top-up is a no-op
// for anything already holding one.
func (r *RoutineService) topUpPreventiveSchedules(ctx context.Context) error {
	equipment, err := r.store.ListEquipmentByStatus(ctx, models.EquipmentActive)
	if err != nil {
		return errors.Wrap(err, "list active equipment")
	}

	now := r.now()
	horizon := now.AddDate(0, 0, 90)
	created := 0
	for _, eq := range equipment {
		count, err := r.store.CountFutureOpenTasks(ctx, eq.ID, now, horizon)
		if err != nil {
			r.logger.Errorf("Failed to count future tasks for equipment %d: %v", eq.ID, err)
			continue
		}
		if count >= 2 {
			continue
		}

		description := fmt.Sprintf("Scheduled preventive maintenance for %s", eq.DisplayName())
		if _, ok, err := r.scheduler.ScheduleRoutine(ctx, eq, description, models.PriorityMedium); err != nil {
			r.logger.Errorf("Failed to top up schedule for equipment %d: %v", eq.ID, err)
		} else if ok {
			created++
		}
	}

	if created > 0 {
		r.notifier.Publish(ctx, notify.EventPreventiveTasks, map[string]interface{}{"count": created})
		r.logger.Infof("Generated %d preventive maintenance schedules", created)
	}
	return nil
}

func routineDescription(eq models.Equipment, daysSince, ageDays float64) string {
	name := eq.DisplayName()
	switch {
	case daysSince > 365 || ageDays > 365*5:
		return fmt.Sprintf("Comprehensive maintenance for %s - full system check, component replacement, performance optimization", name)
	case daysSince > 180:
		return fmt.Sprintf("Preventive maintenance for %s - cleaning, lubrication, calibration, component inspection", name)
	default:
		return fmt.Sprintf("Routine inspection of %s - check operational status, visual examination, basic functionality test", name)
	}
}
