package db

import (
	"context"
	"fmt"

	"maintenance-service/internal/models"
)

// ListEquipmentByStatus fetches all equipment in the given status, ordered
// by id so cycle processing order is stable.
func (d *DB) ListEquipmentByStatus(ctx context.Context, status models.EquipmentStatus) ([]models.Equipment, error) {
	query := `
	SELECT id, type_name, model_name, status, location, installation_date, weekly_usage_hours
	FROM equipment
	WHERE status = $1
	ORDER BY id`

	rows, err := d.Pool.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list equipment by status: %w", err)
	}
	defer rows.Close()

	return scanEquipment(rows)
}

// ListMonitoredEquipment fetches everything except retired equipment for
// the telemetry worker.
func (d *DB) ListMonitoredEquipment(ctx context.Context) ([]models.Equipment, error) {
	query := `
	SELECT id, type_name, model_name, status, location, installation_date, weekly_usage_hours
	FROM equipment
	WHERE status <> $1
	ORDER BY id`

	rows, err := d.Pool.Query(ctx, query, models.EquipmentRetired)
	if err != nil {
		return nil, fmt.Errorf("failed to list monitored equipment: %w", err)
	}
	defer rows.Close()

	return scanEquipment(rows)
}

// UpdateEquipmentStatus persists a telemetry-detected status flip.
func (d *DB) UpdateEquipmentStatus(ctx context.Context, id int, status models.EquipmentStatus) error {
	tag, err := d.Pool.Exec(ctx, `UPDATE equipment SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update equipment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no equipment updated for id %d", id)
	}
	return nil
}

// ListLowStockItems fetches inventory lines at or below their minimum level.
func (d *DB) ListLowStockItems(ctx context.Context) ([]models.InventoryItem, error) {
	query := `
	SELECT id, name, current_stock, minimum_level
	FROM inventory_items
	WHERE current_stock <= minimum_level
	ORDER BY id`

	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock items: %w", err)
	}
	defer rows.Close()

	var list []models.InventoryItem
	for rows.Next() {
		var item models.InventoryItem
		if err := rows.Scan(&item.ID, &item.Name, &item.CurrentStock, &item.MinimumLevel); err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

type equipmentRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanEquipment(rows equipmentRows) ([]models.Equipment, error) {
	var list []models.Equipment
	for rows.Next() {
		var e models.Equipment
		if err := rows.Scan(&e.ID, &e.TypeName, &e.ModelName, &e.Status, &e.Location,
			&e.InstallationDate, &e.WeeklyUsageHours); err != nil {
			return nil, fmt.Errorf("failed to scan equipment: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
