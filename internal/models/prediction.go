package models

import "time"

// PredictionStatus buckets a failure probability for display and alerting.
type PredictionStatus string

const (
	PredictionLow    PredictionStatus = "low"
	PredictionMedium PredictionStatus = "medium"
	PredictionHigh   PredictionStatus = "high"
)

// FailurePrediction is an append-only risk snapshot for one equipment item.
// Rows are never mutated or deleted by this service.
type FailurePrediction struct {
	ID                  string           `json:"id"`
	EquipmentID         int              `json:"equipment_id"`
	Probability         float64          `json:"probability"`
	ConfidenceLevel     int              `json:"confidence_level"`
	Status              PredictionStatus `json:"status"`
	PredictedFailureAt  time.Time        `json:"predicted_failure_at"`
	AnalysisNotes       string           `json:"analysis_notes,omitempty"`
	ContributingFactors string           `json:"contributing_factors,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
}
