package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"maintenance-service/internal/models"
)

// CreatePrediction appends a failure-prediction snapshot. Predictions are
// append-only; nothing in this service updates or deletes them.
func (d *DB) CreatePrediction(ctx context.Context, p models.FailurePrediction) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	query := `
	INSERT INTO failure_predictions (
		id, equipment_id, probability, confidence_level, status,
		predicted_failure_at, analysis_notes, contributing_factors, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := d.Pool.Exec(ctx, query,
		p.ID, p.EquipmentID, p.Probability, p.ConfidenceLevel, p.Status,
		p.PredictedFailureAt, p.AnalysisNotes, p.ContributingFactors, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert prediction: %w", err)
	}
	return nil
}

// HasRecentPrediction reports whether any prediction exists for the
// equipment since the cutoff.
func (d *DB) HasRecentPrediction(ctx context.Context, equipmentID int, since time.Time) (bool, error) {
	var exists bool
	query := `
	SELECT EXISTS (
		SELECT 1 FROM failure_predictions
		WHERE equipment_id = $1 AND created_at >= $2
	)`
	if err := d.Pool.QueryRow(ctx, query, equipmentID, since).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check recent prediction: %w", err)
	}
	return exists, nil
}

// ListRecentHighRiskPredictions fetches high-status predictions created
// since the cutoff, for the high-risk alert rule.
func (d *DB) ListRecentHighRiskPredictions(ctx context.Context, since time.Time) ([]models.FailurePrediction, error) {
	query := `
	SELECT id, equipment_id, probability, confidence_level, status,
	       predicted_failure_at, analysis_notes, contributing_factors, created_at
	FROM failure_predictions
	WHERE status = $1 AND created_at >= $2
	ORDER BY created_at DESC`

	rows, err := d.Pool.Query(ctx, query, models.PredictionHigh, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list high risk predictions: %w", err)
	}
	defer rows.Close()

	var list []models.FailurePrediction
	for rows.Next() {
		var p models.FailurePrediction
		if err := rows.Scan(&p.ID, &p.EquipmentID, &p.Probability, &p.ConfidenceLevel, &p.Status,
			&p.PredictedFailureAt, &p.AnalysisNotes, &p.ContributingFactors, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
