package scheduling

import (
	"testing"
	"time"

	"maintenance-service/internal/models"
)

func equipmentAged(years int, now time.Time) models.Equipment {
	installed := now.AddDate(-years, 0, -10)
	return models.Equipment{ID: 1, InstallationDate: &installed}
}

func TestIntervalKnownTypes(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	eq := equipmentAged(1, now)

	cases := []struct {
		typeName string
		want     int
	}{
		{"Projector", 90},
		{"projector", 90},
		{"  Printer ", 60},
		{"Router", 365},
		{"Desk", 730},
		{"3D Printer XL", 180}, // unknown type falls back to default
	}
	for _, c := range cases {
		if got := Interval(c.typeName, eq, 0, now); got != c.want {
			t.Errorf("Interval(%q) = %d, want %d", c.typeName, got, c.want)
		}
	}
}

func TestIntervalAgeAdjustment(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	if got := Interval("projector", equipmentAged(4, now), 0, now); got != 67 {
		t.Errorf("4-year-old projector interval = %d, want 67", got)
	}
	if got := Interval("computer", equipmentAged(2, now), 0, now); got != 153 {
		t.Errorf("2.5-year-old computer interval = %d, want 153", got)
	}

	young := Interval("projector", equipmentAged(1, now), 0, now)
	old := Interval("projector", equipmentAged(4, now), 0, now)
	if old >= young {
		t.Errorf("older equipment must get a shorter interval: old=%d young=%d", old, young)
	}
}

func TestIntervalIncidentAdjustment(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	eq := equipmentAged(1, now)

	if got := Interval("printer", eq, 3, now); got != 42 {
		t.Errorf("printer with 3 recent incidents = %d, want 42", got)
	}
	// Two logs is not "recent issues" yet.
	if got := Interval("printer", eq, 2, now); got != 60 {
		t.Errorf("printer with 2 recent incidents = %d, want 60", got)
	}
}

func TestIntervalFloor(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	// Old printer with recent incidents compounds both multipliers.
	if got := Interval("printer", equipmentAged(5, now), 4, now); got < 30 {
		t.Errorf("interval dropped below floor: %d", got)
	}
}
