package telemetry

import (
	"context"
	"testing"
	"time"

	"maintenance-service/internal/logging"
	"maintenance-service/internal/models"
	"maintenance-service/internal/notify"
)

type fakeStore struct {
	equipment []models.Equipment
	updates   map[int]models.EquipmentStatus
}

func (f *fakeStore) ListMonitoredEquipment(_ context.Context) ([]models.Equipment, error) {
	return f.equipment, nil
}

func (f *fakeStore) UpdateEquipmentStatus(_ context.Context, id int, status models.EquipmentStatus) error {
	f.updates[id] = status
	return nil
}

// scriptedProvider returns a fixed reading per equipment id.
type scriptedProvider struct {
	readings map[int]Reading
}

func (p *scriptedProvider) Read(eq models.Equipment) Reading {
	r, ok := p.readings[eq.ID]
	if !ok {
		return Reading{EquipmentID: eq.ID, Status: eq.Status}
	}
	return r
}

func TestMonitorPersistsStatusFlips(t *testing.T) {
	store := &fakeStore{
		equipment: []models.Equipment{
			{ID: 1, ModelName: "Projector A", Status: models.EquipmentActive},
			{ID: 2, ModelName: "Projector B", Status: models.EquipmentActive},
			{ID: 3, ModelName: "Printer C", Status: models.EquipmentInactive},
		},
		updates: map[int]models.EquipmentStatus{},
	}
	provider := &scriptedProvider{readings: map[int]Reading{
		1: {EquipmentID: 1, Status: models.EquipmentInactive},
		3: {EquipmentID: 3, Status: models.EquipmentActive},
	}}
	m := NewMonitor(store, provider, notify.New(logging.NewDiscard()), logging.NewDiscard())

	if err := m.RunCycle(context.Background()); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}

	if got := store.updates[1]; got != models.EquipmentInactive {
		t.Errorf("equipment 1 status = %s, want inactive", got)
	}
	if got := store.updates[3]; got != models.EquipmentActive {
		t.Errorf("equipment 3 status = %s, want active recovery", got)
	}
	if _, touched := store.updates[2]; touched {
		t.Error("unchanged equipment must not be written")
	}
}

func TestSimulatedProviderIsDeterministicPerSeed(t *testing.T) {
	eq := models.Equipment{ID: 1, Status: models.EquipmentActive}

	a := NewSimulatedProvider(42)
	b := NewSimulatedProvider(42)
	for i := 0; i < 50; i++ {
		ra, rb := a.Read(eq), b.Read(eq)
		if ra.Status != rb.Status || ra.Issue != rb.Issue ||
			ra.OperatingTemperature != rb.OperatingTemperature {
			t.Fatalf("reading %d diverged between identically seeded providers", i)
		}
	}
}

func TestSimulatedProviderReadingRanges(t *testing.T) {
	p := NewSimulatedProvider(time.Now().UnixNano())
	eq := models.Equipment{ID: 1, Status: models.EquipmentActive}

	for i := 0; i < 200; i++ {
		r := p.Read(eq)
		if r.OperatingTemperature < 35 || r.OperatingTemperature > 65 {
			t.Fatalf("temperature out of range: %v", r.OperatingTemperature)
		}
		if r.VibrationLevel < 0 || r.VibrationLevel > 4 {
			t.Fatalf("vibration out of range: %v", r.VibrationLevel)
		}
		if r.PowerConsumption < 100 || r.PowerConsumption > 500 {
			t.Fatalf("power out of range: %v", r.PowerConsumption)
		}
		if r.Issue != "" && r.IssueSeverity == "" {
			t.Fatal("issue reported without severity")
		}
	}
}

func TestRetiredEquipmentKeepsStatus(t *testing.T) {
	p := NewSimulatedProvider(7)
	eq := models.Equipment{ID: 9, Status: models.EquipmentRetired}

	for i := 0; i < 50; i++ {
		if r := p.Read(eq); r.Status != models.EquipmentRetired {
			t.Fatal("retired equipment must never flip status")
		}
	}
}
