package scheduling

import (
	"context"
	"sync"
	"testing"
	"time"

	"maintenance-service/internal/logging"
	"maintenance-service/internal/models"
	"maintenance-service/internal/notify"
)

// fakeRoutineStore backs both the routine service and the scheduler it
// drives, so created tasks immediately count as open.
type fakeRoutineStore struct {
	equipment       []models.Equipment
	openTasks       map[int]bool
	lastMaintenance map[int]*time.Time
	recentLogs      map[int]int
	upcoming        []models.MaintenanceTask
	stale           []models.MaintenanceTask
	futureCounts    map[int]int

	created   []models.MaintenanceTask
	completed []string
	logs      []models.MaintenanceLog
}

func (f *fakeRoutineStore) ListEquipmentByStatus(_ context.Context, status models.EquipmentStatus) ([]models.Equipment, error) {
	var out []models.Equipment
	for _, eq := range f.equipment {
		if eq.Status == status {
			out = append(out, eq)
		}
	}
	return out, nil
}

func (f *fakeRoutineStore) EquipmentIDsWithOpenTasks(_ context.Context) (map[int]bool, error) {
	out := make(map[int]bool, len(f.openTasks))
	for id, open := range f.openTasks {
		if open {
			out[id] = true
		}
	}
	return out, nil
}

func (f *fakeRoutineStore) LastMaintenanceDate(_ context.Context, equipmentID int) (*time.Time, error) {
	return f.lastMaintenance[equipmentID], nil
}

func (f *fakeRoutineStore) CountRecentLogs(_ context.Context, equipmentID int, _ time.Time) (int, error) {
	return f.recentLogs[equipmentID], nil
}

func (f *fakeRoutineStore) ListTasksDueBetween(_ context.Context, _, _ time.Time) ([]models.MaintenanceTask, error) {
	return f.upcoming, nil
}

func (f *fakeRoutineStore) ListAutoCompletableTasks(_ context.Context, _ time.Time) ([]models.MaintenanceTask, error) {
	return f.stale, nil
}

func (f *fakeRoutineStore) CompleteTask(_ context.Context, id string) error {
	f.completed = append(f.completed, id)
	return nil
}

func (f *fakeRoutineStore) CreateMaintenanceLog(_ context.Context, log models.MaintenanceLog) error {
	f.logs = append(f.logs, log)
	return nil
}

func (f *fakeRoutineStore) CountFutureOpenTasks(_ context.Context, equipmentID int, _, _ time.Time) (int, error) {
	return f.futureCounts[equipmentID], nil
}

func (f *fakeRoutineStore) CreateTaskIfNoneOpen(_ context.Context, task models.MaintenanceTask) (bool, error) {
	if f.openTasks[task.EquipmentID] {
		return false, nil
	}
	f.openTasks[task.EquipmentID] = true
	f.futureCounts[task.EquipmentID]++
	f.created = append(f.created, task)
	return true, nil
}

type captureSink struct {
	mu     sync.Mutex
	events []string
}

func (c *captureSink) Name() string { return "capture" }

func (c *captureSink) Deliver(_ context.Context, event string, _ []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *captureSink) count(event string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.events {
		if e == event {
			n++
		}
	}
	return n
}

func newTestRoutine(store *fakeRoutineStore, now time.Time) (*RoutineService, *captureSink) {
	sink := &captureSink{}
	logger := logging.NewDiscard()
	notifier := notify.New(logger, sink)

	resolver := NewTechnicianResolver(&fakeTechStore{
		usersByRole: map[string][]models.User{
			models.RoleTechnician: {{ID: "t1"}},
		},
		workloads: map[string]workload{},
	})
	scheduler := NewScheduler(store, resolver, logger)
	scheduler.SetNow(func() time.Time { return now })

	r := NewRoutineService(store, scheduler, notifier, logger)
	r.SetNow(func() time.Time { return now })
	return r, sink
}

func TestRoutineCycleGeneratesDueTasks(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	overdue := now.AddDate(0, 0, -200)
	fresh := now.AddDate(0, 0, -10)
	store := &fakeRoutineStore{
		equipment: []models.Equipment{
			{ID: 1, TypeName: "Projector", ModelName: "Due", Status: models.EquipmentActive},
			{ID: 2, TypeName: "Projector", ModelName: "Fresh", Status: models.EquipmentActive},
			{ID: 3, TypeName: "Projector", ModelName: "Busy", Status: models.EquipmentActive},
			{ID: 4, TypeName: "Projector", ModelName: "Off", Status: models.EquipmentInactive},
		},
		openTasks: map[int]bool{3: true},
		lastMaintenance: map[int]*time.Time{
			1: &overdue,
			2: &fresh,
			3: &overdue,
		},
		recentLogs:   map[int]int{},
		futureCounts: map[int]int{2: 2, 3: 2},
	}
	r, sink := newTestRoutine(store, now)

	if err := r.RunCycle(context.Background()); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}

	if len(store.created) != 1 {
		t.Fatalf("created %d tasks, want 1", len(store.created))
	}
	task := store.created[0]
	if task.EquipmentID != 1 {
		t.Errorf("task created for equipment %d, want 1", task.EquipmentID)
	}
	// 200 days since maintenance on a 90-day interval: the computed due
	// date is in the past, so it lands a week out.
	if want := now.AddDate(0, 0, 7); !task.ScheduledDate.Equal(want) {
		t.Errorf("scheduled date = %v, want %v", task.ScheduledDate, want)
	}
	if sink.count(notify.EventTasksScheduled) != 1 {
		t.Error("expected a NewTasksScheduled event")
	}
}

func TestRoutineCycleSendsReminders(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	store := &fakeRoutineStore{
		openTasks:       map[int]bool{},
		lastMaintenance: map[int]*time.Time{},
		recentLogs:      map[int]int{},
		futureCounts:    map[int]int{},
		upcoming: []models.MaintenanceTask{
			{ID: "task-1", EquipmentID: 1, ScheduledDate: now.AddDate(0, 0, 2), Description: "Filter check"},
		},
	}
	r, sink := newTestRoutine(store, now)

	if err := r.RunCycle(context.Background()); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}
	if sink.count(notify.EventReminders) != 1 {
		t.Error("expected a MaintenanceReminders event")
	}
}

func TestRoutineCycleAutoCompletesSimpleTasks(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	store := &fakeRoutineStore{
		openTasks:       map[int]bool{},
		lastMaintenance: map[int]*time.Time{},
		recentLogs:      map[int]int{},
		futureCounts:    map[int]int{},
		stale: []models.MaintenanceTask{
			{ID: "task-9", EquipmentID: 6, ScheduledDate: now.AddDate(0, 0, -40), Description: "Routine inspection of Projector"},
		},
	}
	r, sink := newTestRoutine(store, now)

	if err := r.RunCycle(context.Background()); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}

	if len(store.completed) != 1 || store.completed[0] != "task-9" {
		t.Fatalf("completed = %v, want [task-9]", store.completed)
	}
	if len(store.logs) != 1 {
		t.Fatalf("wrote %d logs, want 1", len(store.logs))
	}
	log := store.logs[0]
	if log.Technician != "System Auto-Complete" {
		t.Errorf("technician = %q, want System Auto-Complete", log.Technician)
	}
	if !log.Cost.IsZero() {
		t.Errorf("auto-complete cost = %s, want 0", log.Cost)
	}
	if log.Type != models.MaintenancePreventive {
		t.Errorf("log type = %s, want preventive", log.Type)
	}
	if sink.count(notify.EventTasksAutoCompleted) != 1 {
		t.Error("expected a TasksAutoCompleted event")
	}
}

func TestRoutineCycleTopsUpSparseSchedules(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	fresh := now.AddDate(0, 0, -10)
	store := &fakeRoutineStore{
		equipment: []models.Equipment{
			{ID: 1, TypeName: "Computer", ModelName: "Sparse", Status: models.EquipmentActive},
		},
		openTasks:       map[int]bool{},
		lastMaintenance: map[int]*time.Time{1: &fresh},
		recentLogs:      map[int]int{},
		futureCounts:    map[int]int{},
	}
	r, sink := newTestRoutine(store, now)

	if err := r.RunCycle(context.Background()); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}

	// Not yet due for routine generation, but with no forward-planned work
	// the top-up duty creates one task.
	if len(store.created) != 1 {
		t.Fatalf("created %d tasks, want 1", len(store.created))
	}
	// last maintenance 10 days ago + 180-day computer interval
	if want := fresh.AddDate(0, 0, 180); !store.created[0].ScheduledDate.Equal(want) {
		t.Errorf("scheduled date = %v, want %v", store.created[0].ScheduledDate, want)
	}
	if sink.count(notify.EventPreventiveTasks) != 1 {
		t.Error("expected a PreventiveTasksScheduled event")
	}
}
