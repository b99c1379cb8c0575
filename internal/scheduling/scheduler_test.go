package scheduling

import (
	"context"
	"testing"
	"time"

	"maintenance-service/internal/logging"
	"maintenance-service/internal/models"
	"maintenance-service/internal/risk"
)

type fakeTaskStore struct {
	lastMaintenance map[int]*time.Time
	recentLogs      map[int]int
	hasOpenTask     map[int]bool
	created         []models.MaintenanceTask
}

func (f *fakeTaskStore) LastMaintenanceDate(_ context.Context, equipmentID int) (*time.Time, error) {
	return f.lastMaintenance[equipmentID], nil
}

func (f *fakeTaskStore) CountRecentLogs(_ context.Context, equipmentID int, _ time.Time) (int, error) {
	return f.recentLogs[equipmentID], nil
}

func (f *fakeTaskStore) CreateTaskIfNoneOpen(_ context.Context, task models.MaintenanceTask) (bool, error) {
	if f.hasOpenTask[task.EquipmentID] {
		return false, nil
	}
	f.created = append(f.created, task)
	f.hasOpenTask[task.EquipmentID] = true
	return true, nil
}

func newTestScheduler(store *fakeTaskStore, now time.Time) *Scheduler {
	resolver := NewTechnicianResolver(&fakeTechStore{
		usersByRole: map[string][]models.User{
			models.RoleTechnician: {{ID: "t1"}},
		},
		workloads: map[string]workload{},
	})
	resolver.SetNow(func() time.Time { return now })

	s := NewScheduler(store, resolver, logging.NewDiscard())
	s.SetNow(func() time.Time { return now })
	return s
}

func TestScheduleFromAssessmentHighProbability(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeTaskStore{hasOpenTask: map[int]bool{}}
	s := newTestScheduler(store, now)

	eq := models.Equipment{ID: 7, TypeName: "Projector", ModelName: "Epson EB-X51"}
	task, created, err := s.ScheduleFromAssessment(context.Background(), eq, risk.Assessment{
		EquipmentID: 7,
		Probability: 0.65,
		Status:      models.PredictionHigh,
	})
	if err != nil {
		t.Fatalf("ScheduleFromAssessment failed: %v", err)
	}
	if !created {
		t.Fatal("expected a task to be created")
	}

	// 0.65 maps to a 30-day horizon with a 24-day buffer.
	want := now.AddDate(0, 0, 6)
	if !task.ScheduledDate.Equal(want) {
		t.Errorf("scheduled date = %v, want %v", task.ScheduledDate, want)
	}
	if task.Priority != models.PriorityHigh {
		t.Errorf("priority = %s, want high", task.Priority)
	}
	if task.AssignedTechnician != "t1" {
		t.Errorf("technician = %q, want t1", task.AssignedTechnician)
	}
}

func TestScheduleFromAssessmentCriticalProbability(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeTaskStore{hasOpenTask: map[int]bool{}}
	s := newTestScheduler(store, now)

	eq := models.Equipment{ID: 8, TypeName: "Computer"}
	task, created, err := s.ScheduleFromAssessment(context.Background(), eq, risk.Assessment{
		EquipmentID: 8,
		Probability: 0.9,
		Status:      models.PredictionHigh,
	})
	if err != nil {
		t.Fatalf("ScheduleFromAssessment failed: %v", err)
	}
	if !created {
		t.Fatal("expected a task to be created")
	}

	// 0.9 maps to a 7-day horizon; the buffer caps at 2 days.
	want := now.AddDate(0, 0, 5)
	if !task.ScheduledDate.Equal(want) {
		t.Errorf("scheduled date = %v, want %v", task.ScheduledDate, want)
	}
	if task.Priority != models.PriorityCritical {
		t.Errorf("priority = %s, want critical", task.Priority)
	}
}

func TestScheduleFromAssessmentBelowThresholdIsNoop(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeTaskStore{hasOpenTask: map[int]bool{}}
	s := newTestScheduler(store, now)

	task, created, err := s.ScheduleFromAssessment(context.Background(),
		models.Equipment{ID: 9}, risk.Assessment{EquipmentID: 9, Probability: 0.55})
	if err != nil {
		t.Fatalf("ScheduleFromAssessment failed: %v", err)
	}
	if created || task != nil {
		t.Error("probability below 0.6 must not schedule anything")
	}
	if len(store.created) != 0 {
		t.Error("store must not be touched below the threshold")
	}
}

func TestScheduleSkipsEquipmentWithOpenTask(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeTaskStore{hasOpenTask: map[int]bool{7: true}}
	s := newTestScheduler(store, now)

	task, created, err := s.ScheduleFromAssessment(context.Background(),
		models.Equipment{ID: 7}, risk.Assessment{EquipmentID: 7, Probability: 0.8})
	if err != nil {
		t.Fatalf("ScheduleFromAssessment failed: %v", err)
	}
	if created || task != nil {
		t.Error("equipment with an open task must not get a second one")
	}
}

func TestScheduleRoutinePushesPastDueDatesForward(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	lastMaint := now.AddDate(0, 0, -200) // projector interval is 90 days
	store := &fakeTaskStore{
		lastMaintenance: map[int]*time.Time{3: &lastMaint},
		hasOpenTask:     map[int]bool{},
	}
	s := newTestScheduler(store, now)

	eq := models.Equipment{ID: 3, TypeName: "Projector"}
	task, created, err := s.ScheduleRoutine(context.Background(), eq, "Routine inspection", models.PriorityMedium)
	if err != nil {
		t.Fatalf("ScheduleRoutine failed: %v", err)
	}
	if !created {
		t.Fatal("expected a task to be created")
	}
	want := now.AddDate(0, 0, 7)
	if !task.ScheduledDate.Equal(want) {
		t.Errorf("past-due date should be pushed to %v, got %v", want, task.ScheduledDate)
	}
}

func TestScheduleFromAlert(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeTaskStore{hasOpenTask: map[int]bool{}}
	s := newTestScheduler(store, now)

	equipmentID := 4
	alert := models.Alert{
		ID:          "alert-1",
		EquipmentID: &equipmentID,
		Category:    models.CategoryEquipmentStatus,
		Priority:    models.AlertHigh,
	}
	task, created, err := s.ScheduleFromAlert(context.Background(), alert)
	if err != nil {
		t.Fatalf("ScheduleFromAlert failed: %v", err)
	}
	if !created {
		t.Fatal("expected a task to be created")
	}
	if want := now.AddDate(0, 0, 1); !task.ScheduledDate.Equal(want) {
		t.Errorf("high alert should schedule next day, got %v", task.ScheduledDate)
	}
	if task.OriginatingAlertID != "alert-1" {
		t.Errorf("originating alert id = %q, want alert-1", task.OriginatingAlertID)
	}
}

func TestScheduleFromAlertIgnoresInventoryAlerts(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeTaskStore{hasOpenTask: map[int]bool{}}
	s := newTestScheduler(store, now)

	itemID := 12
	task, created, err := s.ScheduleFromAlert(context.Background(), models.Alert{
		ID:              "alert-2",
		InventoryItemID: &itemID,
		Category:        models.CategoryLowStock,
		Priority:        models.AlertHigh,
	})
	if err != nil {
		t.Fatalf("ScheduleFromAlert failed: %v", err)
	}
	if created || task != nil {
		t.Error("inventory alerts must not create maintenance tasks")
	}
}
