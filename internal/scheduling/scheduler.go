package scheduling

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"maintenance-service/internal/logging"
	"maintenance-service/internal/models"
	"maintenance-service/internal/risk"
)

// Store is the persistence surface the scheduler needs.
type Store interface {
	LastMaintenanceDate(ctx context.Context, equipmentID int) (*time.Time, error)
	CountRecentLogs(ctx context.Context, equipmentID int, since time.Time) (int, error)
	CreateTaskIfNoneOpen(ctx context.Context, task models.MaintenanceTask) (bool, error)
}

// Scheduler turns interval policy, risk assessments, and alerts into
// concrete maintenance tasks. Every creation path goes through the store's
// conditional insert, which enforces the single-open-task-per-equipment
// check in one statement regardless of who calls.
type Scheduler struct {
	store    Store
	resolver *TechnicianResolver
	logger   *logging.Logger
	now      func() time.Time
}

func NewScheduler(store Store, resolver *TechnicianResolver, logger *logging.Logger) *Scheduler {
	return &Scheduler{
		store:    store,
		resolver: resolver,
		logger:   logger,
		now:      time.Now,
	}
}

// SetNow overrides the scheduler clock. Tests only.
func (s *Scheduler) SetNow(now func() time.Time) { s.now = now }

// NextMaintenanceDate computes when the equipment is next due: the last
// maintenance date (or installation date, or six months ago when neither
// exists) plus the recommended interval.
func (s *Scheduler) NextMaintenanceDate(ctx context.Context, eq models.Equipment) (time.Time, error) {
	now := s.now()

	base, err := s.store.LastMaintenanceDate(ctx, eq.ID)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "last maintenance date")
	}
	anchor := now.AddDate(0, -6, 0)
	if base != nil {
		anchor = *base
	} else if eq.InstallationDate != nil {
		anchor = *eq.InstallationDate
	}

	recentLogs, err := s.store.CountRecentLogs(ctx, eq.ID, now.AddDate(0, 0, -90))
	if err != nil {
		return time.Time{}, errors.Wrap(err, "count recent logs")
	}

	return anchor.AddDate(0, 0, Interval(eq.TypeName, eq, recentLogs, now)), nil
}

// ScheduleRoutine creates a routine preventive task. Returns the task and
// true when created, or nil and false when the equipment already holds an
// open task. A due date already in the past is pushed one week out so the
// new task doesn't start life overdue.
func (s *Scheduler) ScheduleRoutine(ctx context.Context, eq models.Equipment, description string, priority models.TaskPriority) (*models.MaintenanceTask, bool, error) {
	dueDate, err := s.NextMaintenanceDate(ctx, eq)
	if err != nil {
		return nil, false, err
	}
	now := s.now()
	if !dueDate.After(now) {
		dueDate = now.AddDate(0, 0, 7)
	}
	return s.create(ctx, eq.ID, dueDate, description, priority, "")
}

// ScheduleFromAssessment auto-schedules preventive maintenance for a
// high-probability risk assessment. Fires only when probability >= 0.6;
// lower assessments return without creating anything.
func (s *Scheduler) ScheduleFromAssessment(ctx context.Context, eq models.Equipment, a risk.Assessment) (*models.MaintenanceTask, bool, error) {
	if a.Probability < 0.6 {
		return nil, false, nil
	}

	daysUntilFailure := risk.FailureHorizonDays(a.Probability)
	buffer := bufferDays(a.Probability, daysUntilFailure)
	leadDays := daysUntilFailure - buffer
	if leadDays < 1 {
		leadDays = 1
	}
	scheduledDate := s.now().AddDate(0, 0, leadDays)

	description := riskDescription(eq, a)
	return s.create(ctx, eq.ID, scheduledDate, description, priorityForProbability(a.Probability), "")
}

// ScheduleFromAlert creates a follow-up task for a freshly raised equipment
// alert, scheduled sooner the higher the alert priority.
func (s *Scheduler) ScheduleFromAlert(ctx context.Context, alert models.Alert) (*models.MaintenanceTask, bool, error) {
	if alert.EquipmentID == nil {
		return nil, false, nil
	}

	urgencyDays := map[models.AlertPriority]int{
		models.AlertHigh:   1,
		models.AlertMedium: 3,
		models.AlertLow:    7,
	}[alert.Priority]
	if urgencyDays == 0 {
		urgencyDays = 7
	}

	scheduledDate := s.now().AddDate(0, 0, urgencyDays)
	return s.create(ctx, *alert.EquipmentID, scheduledDate,
		alertTaskDescription(alert), taskPriorityForAlert(alert.Priority), alert.ID)
}

// create resolves a technician and performs the guarded insert.
func (s *Scheduler) create(ctx context.Context, equipmentID int, scheduledDate time.Time, description string, priority models.TaskPriority, originatingAlertID string) (*models.MaintenanceTask, bool, error) {
	technician, err := s.resolver.Resolve(ctx, priority)
	if err != nil {
		return nil, false, errors.Wrap(err, "resolve technician")
	}
	if technician == "" {
		s.logger.Warnf("No technician available, task for equipment %d stays unassigned", equipmentID)
	}

	task := models.MaintenanceTask{
		ID:                 uuid.New().String(),
		EquipmentID:        equipmentID,
		ScheduledDate:      scheduledDate,
		Status:             models.TaskPending,
		Priority:           priority,
		Description:        description,
		AssignedTechnician: technician,
		OriginatingAlertID: originatingAlertID,
		CreatedAt:          s.now(),
	}

	created, err := s.store.CreateTaskIfNoneOpen(ctx, task)
	if err != nil {
		return nil, false, errors.Wrap(err, "create task")
	}
	if !created {
		s.logger.Debugf("Open task already exists for equipment %d, skipping", equipmentID)
		return nil, false, nil
	}
	return &task, true, nil
}

// bufferDays is the lead time subtracted from the failure horizon. High
// probability gets maintenance 5 days early or at 80% of the horizon,
// whichever is sooner; lower probability uses a 50% buffer. Always >= 1.
func bufferDays(probability float64, daysUntilFailure int) int {
	var buffer float64
	if probability >= 0.6 {
		buffer = float64(daysUntilFailure) - 5
		if pct := float64(daysUntilFailure) * 0.8; pct < buffer {
			buffer = pct
		}
	} else {
		buffer = float64(daysUntilFailure) * 0.5
	}
	if buffer < 1 {
		buffer = 1
	}
	return int(buffer)
}

func priorityForProbability(probability float64) models.TaskPriority {
	switch {
	case probability >= 0.8:
		return models.PriorityCritical
	case probability >= 0.6:
		return models.PriorityHigh
	case probability >= 0.4:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

func taskPriorityForAlert(p models.AlertPriority) models.TaskPriority {
	switch p {
	case models.AlertHigh:
		return models.PriorityHigh
	case models.AlertMedium:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

func riskDescription(eq models.Equipment, a risk.Assessment) string {
	typeName := strings.ToLower(eq.TypeName)
	var work string
	switch {
	case strings.Contains(typeName, "projector"):
		work = "Clean air filters, check lamp hours, inspect cooling system"
	case strings.Contains(typeName, "computer"), strings.Contains(typeName, "laptop"):
		work = "Clean internals, check thermal paste, test hardware"
	case strings.Contains(typeName, "air condition"):
		work = "Check refrigerant levels, clean coils, inspect belts and bearings"
	case strings.Contains(typeName, "printer"):
		work = "Clean print heads, check paper feed mechanism, replace consumables"
	default:
		work = "General equipment maintenance and inspection required"
	}
	desc := fmt.Sprintf("Preventive maintenance for %s: %s. Predicted failure risk: %.1f%% (%s)",
		eq.DisplayName(), work, a.Probability*100, a.Status)
	if len(a.Factors) > 0 {
		desc += ". Contributing factors: " + strings.Join(a.Factors, "; ")
	}
	return desc
}

func alertTaskDescription(alert models.Alert) string {
	switch alert.Category {
	case models.CategoryMaintenanceOverdue:
		return "Perform overdue maintenance inspection"
	case models.CategoryEquipmentStatus:
		return "Investigate equipment status and restore operation"
	case models.CategoryHighRiskPrediction:
		return "Conduct preventive maintenance to avoid failure"
	case models.CategoryOverdueTask:
		return "Catch up on overdue maintenance task"
	default:
		return "Address equipment issue: " + alert.Description
	}
}
