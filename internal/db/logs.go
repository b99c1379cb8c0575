package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"maintenance-service/internal/models"
)

// CreateMaintenanceLog appends a completed-work record. Used by the
// auto-complete sweep; technicians write their own logs through the UI.
func (d *DB) CreateMaintenanceLog(ctx context.Context, log models.MaintenanceLog) error {
	query := `
	INSERT INTO maintenance_logs (
		equipment_id, log_date, type, description, technician, cost, downtime_hours
	) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := d.Pool.Exec(ctx, query,
		log.EquipmentID, log.LogDate, log.Type, log.Description,
		log.Technician, log.Cost, log.DowntimeHrs)
	if err != nil {
		return fmt.Errorf("failed to insert maintenance log: %w", err)
	}
	return nil
}

// LastMaintenanceDate returns the most recent log date for the equipment,
// or nil when it has no maintenance history.
func (d *DB) LastMaintenanceDate(ctx context.Context, equipmentID int) (*time.Time, error) {
	var date time.Time
	query := `
	SELECT log_date FROM maintenance_logs
	WHERE equipment_id = $1
	ORDER BY log_date DESC
	LIMIT 1`
	err := d.Pool.QueryRow(ctx, query, equipmentID).Scan(&date)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last maintenance date: %w", err)
	}
	return &date, nil
}

// CountRecentLogs counts maintenance logs for the equipment since the cutoff.
func (d *DB) CountRecentLogs(ctx context.Context, equipmentID int, since time.Time) (int, error) {
	var count int
	query := `
	SELECT COUNT(*) FROM maintenance_logs
	WHERE equipment_id = $1 AND log_date >= $2`
	if err := d.Pool.QueryRow(ctx, query, equipmentID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recent logs: %w", err)
	}
	return count, nil
}

// CountRecentLogsByType counts logs of one maintenance type since the cutoff.
func (d *DB) CountRecentLogsByType(ctx context.Context, equipmentID int, typ models.MaintenanceType, since time.Time) (int, error) {
	var count int
	query := `
	SELECT COUNT(*) FROM maintenance_logs
	WHERE equipment_id = $1 AND type = $2 AND log_date >= $3`
	if err := d.Pool.QueryRow(ctx, query, equipmentID, typ, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recent logs by type: %w", err)
	}
	return count, nil
}
