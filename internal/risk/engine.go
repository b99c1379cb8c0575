package risk

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"maintenance-service/internal/logging"
	"maintenance-service/internal/models"
	"maintenance-service/internal/notify"
	"maintenance-service/internal/telemetry"
	"maintenance-service/pkg/prediction"
)

// Dedup window: one prediction snapshot per equipment per week.
const predictionWindow = 7 * 24 * time.Hour

// criticalCategories marks equipment whose type or model name flags it as
// high-impact; a match adds a fixed score component.
var criticalCategories = []string{"critical", "server", "generator"}

// Store is the persistence surface the engine needs.
type Store interface {
	ListEquipmentByStatus(ctx context.Context, status models.EquipmentStatus) ([]models.Equipment, error)
	CountRecentLogsByType(ctx context.Context, equipmentID int, typ models.MaintenanceType, since time.Time) (int, error)
	LastMaintenanceDate(ctx context.Context, equipmentID int) (*time.Time, error)
	HasRecentPrediction(ctx context.Context, equipmentID int, since time.Time) (bool, error)
	CreatePrediction(ctx context.Context, p models.FailurePrediction) error
}

// Scheduler is the auto-scheduling hook invoked for high-probability
// assessments. Implemented by the maintenance task scheduler.
type Scheduler interface {
	ScheduleFromAssessment(ctx context.Context, eq models.Equipment, a Assessment) (*models.MaintenanceTask, bool, error)
}

// Assessment is one scored equipment item.
type Assessment struct {
	EquipmentID int
	Probability float64
	Status      models.PredictionStatus
	Confidence  int
	Factors     []string
	// ModelVersion is set when the external prediction service produced
	// the score; empty means rule-based fallback.
	ModelVersion string
}

// FailureHorizonDays maps a failure probability to the estimated number of
// days until failure. This bucketed table is the canonical mapping; both
// the prediction snapshot and the scheduling buffer derive from it.
func FailureHorizonDays(probability float64) int {
	switch {
	case probability >= 0.8:
		return 7
	case probability >= 0.6:
		return 30
	case probability >= 0.4:
		return 90
	case probability >= 0.2:
		return 180
	default:
		return 365
	}
}

// Engine scores equipment failure risk and persists prediction snapshots.
// The external prediction API is consulted first when configured; rule
// scoring is the fallback.
type Engine struct {
	store     Store
	scheduler Scheduler
	client    *prediction.Client
	telemetry telemetry.Provider
	notifier  *notify.Notifier
	logger    *logging.Logger
	now       func() time.Time
}

func NewEngine(store Store, scheduler Scheduler, client *prediction.Client, provider telemetry.Provider, notifier *notify.Notifier, logger *logging.Logger) *Engine {
	return &Engine{
		store:     store,
		scheduler: scheduler,
		client:    client,
		telemetry: provider,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// SetNow overrides the engine clock. Tests only.
func (e *Engine) SetNow(now func() time.Time) { e.now = now }

// RunCycle assesses every active equipment item sequentially. A failure on
// one item is logged and the rest of the cycle continues; only a store
// error listing equipment aborts the cycle.
func (e *Engine) RunCycle(ctx context.Context) error {
	equipment, err := e.store.ListEquipmentByStatus(ctx, models.EquipmentActive)
	if err != nil {
		return errors.Wrap(err, "list active equipment")
	}

	created := 0
	for _, eq := range equipment {
		ok, err := e.assessOne(ctx, eq)
		if err != nil {
			e.logger.Errorf("Risk assessment failed for equipment %d: %v", eq.ID, err)
			continue
		}
		if ok {
			created++
		}
	}

	if created > 0 {
		e.notifier.Publish(ctx, notify.EventPredictionsUpdated, map[string]interface{}{
			"count": created,
		})
		e.logger.Infof("Generated %d new failure predictions", created)
	}
	return nil
}

// assessOne scores one equipment item and persists a snapshot when the
// probability is significant and no recent snapshot exists.
func (e *Engine) assessOne(ctx context.Context, eq models.Equipment) (bool, error) {
	now := e.now()

	recent, err := e.store.HasRecentPrediction(ctx, eq.ID, now.Add(-predictionWindow))
	if err != nil {
		return false, errors.Wrap(err, "check recent prediction")
	}
	if recent {
		return false, nil
	}

	assessment := e.Assess(ctx, eq)
	if assessment.Probability < 0.3 {
		return false, nil
	}

	snapshot := models.FailurePrediction{
		EquipmentID:         eq.ID,
		Probability:         assessment.Probability,
		ConfidenceLevel:     assessment.Confidence,
		Status:              assessment.Status,
		PredictedFailureAt:  now.AddDate(0, 0, FailureHorizonDays(assessment.Probability)),
		AnalysisNotes:       analysisNotes(assessment),
		ContributingFactors: strings.Join(assessment.Factors, "; "),
		CreatedAt:           now,
	}
	if err := e.store.CreatePrediction(ctx, snapshot); err != nil {
		return false, errors.Wrap(err, "save prediction")
	}

	// High-probability assessments feed straight into preventive
	// scheduling; the scheduler enforces the single-open-task invariant.
	if assessment.Probability >= 0.6 && e.scheduler != nil {
		task, scheduled, err := e.scheduler.ScheduleFromAssessment(ctx, eq, assessment)
		if err != nil {
			e.logger.Errorf("Auto-scheduling failed for equipment %d: %v", eq.ID, err)
		} else {
			payload := map[string]interface{}{
				"equipment_id":          eq.ID,
				"equipment_name":        eq.DisplayName(),
				"location":              eq.Location,
				"probability":           assessment.Probability,
				"risk_level":            assessment.Status,
				"maintenance_scheduled": scheduled,
			}
			if task != nil {
				payload["scheduled_date"] = task.ScheduledDate
			}
			e.notifier.Publish(ctx, notify.EventHighRiskEquipment, payload)
		}
	}

	return true, nil
}

// Assess computes the failure assessment for one equipment item. The
// external service result is used when available; any failure there falls
// back to rule scoring for this item only.
func (e *Engine) Assess(ctx context.Context, eq models.Equipment) Assessment {
	if e.client.Enabled() {
		result := e.client.Predict(ctx, e.predictionRequest(eq))
		if result.Success && result.FailureProbability > 0 {
			return Assessment{
				EquipmentID:  eq.ID,
				Probability:  clamp01(result.FailureProbability),
				Status:       statusFor(result.FailureProbability),
				Confidence:   int(clamp(result.ConfidenceScore*100, 0, 95)),
				Factors:      []string{fmt.Sprintf("ML model %s (%s risk)", result.ModelVersion, result.RiskLevel)},
				ModelVersion: result.ModelVersion,
			}
		}
		if result.ErrorMessage != "" {
			e.logger.Warnf("Prediction service failed for equipment %d, using rule scoring: %s",
				eq.ID, result.ErrorMessage)
		}
	}
	return e.ruleScore(ctx, eq)
}

// ruleScore is the deterministic weighted rule evaluation. Factors are
// additive; the age and frequency brackets are mutually exclusive with the
// larger threshold winning.
func (e *Engine) ruleScore(ctx context.Context, eq models.Equipment) Assessment {
	now := e.now()
	probability := 0.0
	var factors []string

	// Factor 1: equipment age
	ageDays := eq.AgeDays(now)
	if ageDays > 365*5 {
		probability += 0.2
		factors = append(factors, "equipment age over 5 years")
	} else if ageDays > 365*3 {
		probability += 0.1
		factors = append(factors, "equipment age over 3 years")
	}

	// Factor 2: corrective maintenance frequency in the trailing 90 days
	correctiveCount, err := e.store.CountRecentLogsByType(ctx, eq.ID, models.MaintenanceCorrective, now.AddDate(0, 0, -90))
	if err != nil {
		e.logger.Errorf("Failed to count corrective logs for equipment %d: %v", eq.ID, err)
	}
	if correctiveCount > 5 {
		probability += 0.3
		factors = append(factors, "high corrective maintenance frequency")
	} else if correctiveCount > 3 {
		probability += 0.15
		factors = append(factors, "moderate corrective maintenance frequency")
	}

	// Factor 3: time since last maintenance, or no history at all
	lastDate, err := e.store.LastMaintenanceDate(ctx, eq.ID)
	if err != nil {
		e.logger.Errorf("Failed to get last maintenance date for equipment %d: %v", eq.ID, err)
	}
	if lastDate != nil {
		daysSince := now.Sub(*lastDate).Hours() / 24
		if daysSince > 180 {
			probability += 0.25
			factors = append(factors, "no recent maintenance")
		} else if daysSince > 90 {
			probability += 0.1
			factors = append(factors, "limited recent maintenance")
		}
	} else {
		probability += 0.2
		factors = append(factors, "no maintenance history")
	}

	// Factor 4: high-impact equipment category
	if isCriticalCategory(eq) {
		probability += 0.1
		factors = append(factors, "critical equipment category")
	}

	probability = clamp01(probability)

	return Assessment{
		EquipmentID: eq.ID,
		Probability: probability,
		Status:      statusFor(probability),
		Confidence:  int(clamp(probability*100, 0, 95)),
		Factors:     factors,
	}
}

func statusFor(probability float64) models.PredictionStatus {
	switch {
	case probability >= 0.5:
		return models.PredictionHigh
	case probability >= 0.3:
		return models.PredictionMedium
	default:
		return models.PredictionLow
	}
}

func isCriticalCategory(eq models.Equipment) bool {
	name := strings.ToLower(eq.TypeName + " " + eq.ModelName)
	for _, category := range criticalCategories {
		if strings.Contains(name, category) {
			return true
		}
	}
	return false
}

func (e *Engine) predictionRequest(eq models.Equipment) prediction.Request {
	ageMonths := 12
	if eq.InstallationDate != nil {
		ageMonths = int(e.now().Sub(*eq.InstallationDate).Hours() / 24 / 30)
	}
	req := prediction.Request{
		EquipmentID: eq.ID,
		AgeMonths:   ageMonths,
	}
	if e.telemetry != nil {
		reading := e.telemetry.Read(eq)
		req.OperatingTemperature = reading.OperatingTemperature
		req.VibrationLevel = reading.VibrationLevel
		req.PowerConsumption = reading.PowerConsumption
	}
	return req
}

func analysisNotes(a Assessment) string {
	if a.ModelVersion != "" {
		return fmt.Sprintf("ML prediction indicates %s risk with %.1f%% failure probability", a.Status, a.Probability*100)
	}
	return fmt.Sprintf("Rule-based analysis indicates %s risk of failure", a.Status)
}

func clamp01(v float64) float64 { return clamp(v, 0, 1) }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
