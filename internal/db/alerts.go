package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"maintenance-service/internal/models"
)

// CreateAlertIfAbsent inserts an alert unless an open alert with the same
// category and dedup key already exists inside the dedup window. The check
// and the insert run as a single conditional statement, which narrows the
// race window between overlapping cycles to one statement; closing it
// entirely needs a partial unique index on (category, dedup_key) WHERE
// status = 'open'. Returns true when a row was inserted.
func (d *DB) CreateAlertIfAbsent(ctx context.Context, alert models.Alert, window time.Duration) (bool, error) {
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}

	query := `
	INSERT INTO alerts (
		id, equipment_id, inventory_item_id, category, dedup_key,
		priority, status, title, description, created_at
	)
	SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10
	WHERE NOT EXISTS (
		SELECT 1 FROM alerts
		WHERE category = $4
		  AND dedup_key = $5
		  AND status = $11
		  AND created_at >= $12
	)`

	tag, err := d.Pool.Exec(ctx, query,
		alert.ID,
		alert.EquipmentID,
		alert.InventoryItemID,
		alert.Category,
		alert.DedupKey,
		alert.Priority,
		alert.Status,
		alert.Title,
		alert.Description,
		alert.CreatedAt,
		models.AlertOpen,
		alert.CreatedAt.Add(-window),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert alert: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
