package telemetry

import (
	"math/rand"
	"sync"
	"time"

	"maintenance-service/internal/models"
)

// Reading is one telemetry sample for an equipment item.
type Reading struct {
	EquipmentID          int
	Status               models.EquipmentStatus
	OperatingTemperature float64
	VibrationLevel       float64
	PowerConsumption     float64
	Issue                string // non-empty when a performance issue was observed
	IssueSeverity        string
	Timestamp            time.Time
}

// Provider supplies telemetry readings. Real deployments back this with a
// sensor gateway; the simulated provider stands in until one exists.
type Provider interface {
	Read(eq models.Equipment) Reading
}

// SimulatedProvider generates plausible readings with occasional status
// flips and performance issues, mirroring observed fleet behavior closely
// enough to exercise the monitoring pipeline.
type SimulatedProvider struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulatedProvider(seed int64) *SimulatedProvider {
	return &SimulatedProvider{rng: rand.New(rand.NewSource(seed))}
}

var simulatedIssues = []string{
	"Temperature reading above normal range",
	"Vibration levels elevated",
	"Power consumption increased by 15%",
	"Response time degraded",
	"Unusual noise detected",
	"Efficiency below optimal levels",
	"Sensor calibration drift detected",
}

func (p *SimulatedProvider) Read(eq models.Equipment) Reading {
	p.mu.Lock()
	defer p.mu.Unlock()

	r := Reading{
		EquipmentID:          eq.ID,
		Status:               eq.Status,
		OperatingTemperature: 35 + p.rng.Float64()*30,
		VibrationLevel:       p.rng.Float64() * 4,
		PowerConsumption:     100 + p.rng.Float64()*400,
		Timestamp:            time.Now(),
	}

	switch eq.Status {
	case models.EquipmentActive:
		if p.rng.Float64() < 0.02 {
			r.Status = models.EquipmentInactive
		}
		if p.rng.Float64() < 0.05 {
			r.Issue = simulatedIssues[p.rng.Intn(len(simulatedIssues))]
			if p.rng.Float64() < 0.3 {
				r.IssueSeverity = "High"
			} else {
				r.IssueSeverity = "Medium"
			}
		}
	case models.EquipmentInactive:
		if p.rng.Float64() < 0.1 {
			r.Status = models.EquipmentActive
		}
	}

	return r
}
