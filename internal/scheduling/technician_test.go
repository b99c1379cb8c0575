package scheduling

import (
	"context"
	"testing"
	"time"

	"maintenance-service/internal/models"
)

type workload struct {
	active  int
	overdue int
}

type fakeTechStore struct {
	usersByRole map[string][]models.User
	workloads   map[string]workload
}

func (f *fakeTechStore) ListUsersByRole(_ context.Context, role string) ([]models.User, error) {
	return f.usersByRole[role], nil
}

func (f *fakeTechStore) TechnicianWorkload(_ context.Context, id string, _ time.Time) (int, int, error) {
	w := f.workloads[id]
	return w.active, w.overdue, nil
}

func TestResolvePicksLeastLoaded(t *testing.T) {
	store := &fakeTechStore{
		usersByRole: map[string][]models.User{
			models.RoleTechnician: {
				{ID: "t1", FullName: "Alice"},
				{ID: "t2", FullName: "Bob"},
			},
		},
		workloads: map[string]workload{
			"t1": {active: 4, overdue: 0},
			"t2": {active: 2, overdue: 2},
		},
	}
	r := NewTechnicianResolver(store)

	got, err := r.Resolve(context.Background(), models.PriorityMedium)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != "t2" {
		t.Errorf("medium priority should pick lowest active workload, got %s", got)
	}
}

func TestResolveCriticalAvoidsOverdueTechnicians(t *testing.T) {
	store := &fakeTechStore{
		usersByRole: map[string][]models.User{
			models.RoleTechnician: {
				{ID: "t1"},
				{ID: "t2"},
			},
		},
		workloads: map[string]workload{
			// t1 has fewer tasks but is already behind.
			"t1": {active: 1, overdue: 1},
			"t2": {active: 5, overdue: 0},
		},
	}
	r := NewTechnicianResolver(store)

	got, err := r.Resolve(context.Background(), models.PriorityCritical)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != "t2" {
		t.Errorf("critical priority should avoid overdue technicians, got %s", got)
	}
}

func TestResolveFallsBackToMaintenanceRole(t *testing.T) {
	store := &fakeTechStore{
		usersByRole: map[string][]models.User{
			models.RoleMaintenance: {{ID: "m1"}},
		},
		workloads: map[string]workload{},
	}
	r := NewTechnicianResolver(store)

	got, err := r.Resolve(context.Background(), models.PriorityHigh)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != "m1" {
		t.Errorf("expected maintenance fallback m1, got %q", got)
	}
}

func TestResolveNoStaffReturnsUnassigned(t *testing.T) {
	r := NewTechnicianResolver(&fakeTechStore{usersByRole: map[string][]models.User{}})

	got, err := r.Resolve(context.Background(), models.PriorityLow)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != "" {
		t.Errorf("expected unassigned, got %q", got)
	}
}

func TestResolveTieKeepsEnumerationOrder(t *testing.T) {
	store := &fakeTechStore{
		usersByRole: map[string][]models.User{
			models.RoleTechnician: {{ID: "t1"}, {ID: "t2"}},
		},
		workloads: map[string]workload{
			"t1": {active: 2, overdue: 1},
			"t2": {active: 2, overdue: 1},
		},
	}
	r := NewTechnicianResolver(store)

	got, err := r.Resolve(context.Background(), models.PriorityMedium)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != "t1" {
		t.Errorf("tie should keep first candidate, got %s", got)
	}
}
