package alerting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"maintenance-service/internal/models"
)

// Dedup windows per alert category. Status alerts re-fire quickly because
// equipment flapping is worth seeing; chronic conditions get longer windows.
const (
	overdueTaskWindow        = 24 * time.Hour
	equipmentStatusWindow    = 4 * time.Hour
	lowStockWindow           = 24 * time.Hour
	highRiskWindow           = 24 * time.Hour
	maintenanceOverdueWindow = 7 * 24 * time.Hour
)

// overdueTaskAlerts raises an alert for every pending task more than a day
// past its scheduled date. More than three days overdue escalates to high.
func (e *Engine) overdueTaskAlerts(ctx context.Context, now time.Time) ([]candidate, error) {
	tasks, err := e.store.ListOverduePendingTasks(ctx, now.AddDate(0, 0, -1))
	if err != nil {
		return nil, errors.Wrap(err, "list overdue tasks")
	}

	var out []candidate
	for _, task := range tasks {
		overdueDays := int(now.Sub(task.ScheduledDate).Hours() / 24)
		priority := models.AlertMedium
		if overdueDays > 3 {
			priority = models.AlertHigh
		}
		equipmentID := task.EquipmentID
		out = append(out, candidate{
			window: overdueTaskWindow,
			alert: models.Alert{
				ID:          uuid.New().String(),
				EquipmentID: &equipmentID,
				Category:    models.CategoryOverdueTask,
				DedupKey:    task.ID,
				Priority:    priority,
				Status:      models.AlertOpen,
				Title:       fmt.Sprintf("Maintenance task overdue by %d days", overdueDays),
				Description: fmt.Sprintf("Task %q scheduled for %s has not been started", task.Description, task.ScheduledDate.Format("2006-01-02")),
				CreatedAt:   now,
			},
		})
	}
	return out, nil
}

// inactiveEquipmentAlerts raises a high alert for every equipment currently
// marked inactive. The short window lets the alert re-fire while the outage
// persists without flooding on every cycle.
func (e *Engine) inactiveEquipmentAlerts(ctx context.Context, now time.Time) ([]candidate, error) {
	equipment, err := e.store.ListEquipmentByStatus(ctx, models.EquipmentInactive)
	if err != nil {
		return nil, errors.Wrap(err, "list inactive equipment")
	}

	var out []candidate
	for _, eq := range equipment {
		out = append(out, candidate{
			window: equipmentStatusWindow,
			alert: models.Alert{
				ID:          uuid.New().String(),
				EquipmentID: &eq.ID,
				Category:    models.CategoryEquipmentStatus,
				DedupKey:    fmt.Sprintf("%d:%s", eq.ID, eq.Status),
				Priority:    models.AlertHigh,
				Status:      models.AlertOpen,
				Title:       fmt.Sprintf("%s is inactive", eq.DisplayName()),
				Description: fmt.Sprintf("Equipment %s at %s reported status %s and needs attention", eq.DisplayName(), eq.Location, eq.Status),
				CreatedAt:   now,
			},
		})
	}
	return out, nil
}

// lowStockAlerts raises a high alert for every inventory item at or below
// its minimum level, with distinct wording for full depletion.
func (e *Engine) lowStockAlerts(ctx context.Context, now time.Time) ([]candidate, error) {
	items, err := e.store.ListLowStockItems(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list low stock items")
	}

	var out []candidate
	for _, item := range items {
		title := fmt.Sprintf("Low stock: %s", item.Name)
		description := fmt.Sprintf("%s is down to %d units (minimum %d), reorder required", item.Name, item.CurrentStock, item.MinimumLevel)
		if item.CurrentStock == 0 {
			title = fmt.Sprintf("Out of stock: %s", item.Name)
			description = fmt.Sprintf("%s is out of stock, reorder immediately", item.Name)
		}
		out = append(out, candidate{
			window: lowStockWindow,
			alert: models.Alert{
				ID:              uuid.New().String(),
				InventoryItemID: &item.ID,
				Category:        models.CategoryLowStock,
				DedupKey:        item.Name,
				Priority:        models.AlertHigh,
				Status:          models.AlertOpen,
				Title:           title,
				Description:     description,
				CreatedAt:       now,
			},
		})
	}
	return out, nil
}

// highRiskPredictionAlerts surfaces high-status failure predictions from
// the last 24 hours as alerts, one per equipment.
func (e *Engine) highRiskPredictionAlerts(ctx context.Context, now time.Time) ([]candidate, error) {
	predictions, err := e.store.ListRecentHighRiskPredictions(ctx, now.Add(-24*time.Hour))
	if err != nil {
		return nil, errors.Wrap(err, "list high risk predictions")
	}

	var out []candidate
	seen := make(map[int]bool)
	for _, p := range predictions {
		if seen[p.EquipmentID] {
			continue
		}
		seen[p.EquipmentID] = true
		out = append(out, candidate{
			window: highRiskWindow,
			alert: models.Alert{
				ID:          uuid.New().String(),
				EquipmentID: &p.EquipmentID,
				Category:    models.CategoryHighRiskPrediction,
				DedupKey:    fmt.Sprintf("%d", p.EquipmentID),
				Priority:    models.AlertHigh,
				Status:      models.AlertOpen,
				Title:       fmt.Sprintf("High failure risk on equipment %d", p.EquipmentID),
				Description: fmt.Sprintf("Failure probability %.1f%% (confidence %d%%), predicted failure around %s", p.Probability*100, p.ConfidenceLevel, p.PredictedFailureAt.Format("2006-01-02")),
				CreatedAt:   now,
			},
		})
	}
	return out, nil
}

// maintenanceOverdueAlerts flags active equipment that has gone over a year
// without maintenance. Equipment with no maintenance history at all is
// flagged unconditionally, whatever its age.
func (e *Engine) maintenanceOverdueAlerts(ctx context.Context, now time.Time) ([]candidate, error) {
	equipment, err := e.store.ListEquipmentByStatus(ctx, models.EquipmentActive)
	if err != nil {
		return nil, errors.Wrap(err, "list active equipment")
	}

	var out []candidate
	for _, eq := range equipment {
		last, err := e.store.LastMaintenanceDate(ctx, eq.ID)
		if err != nil {
			e.logger.Errorf("Failed to load last maintenance for equipment %d: %v", eq.ID, err)
			continue
		}

		priority := models.AlertMedium
		var title, description string
		if last == nil {
			// Never maintained: flagged no matter how new the equipment is.
			title = fmt.Sprintf("%s has no maintenance history", eq.DisplayName())
			description = fmt.Sprintf("%s has no recorded maintenance and may require inspection", eq.DisplayName())
			if eq.InstallationDate != nil {
				if int(now.Sub(*eq.InstallationDate).Hours()/24) > 730 {
					priority = models.AlertHigh
				}
				description = fmt.Sprintf("%s has no recorded maintenance since installation on %s",
					eq.DisplayName(), eq.InstallationDate.Format("2006-01-02"))
			}
		} else {
			days := int(now.Sub(*last).Hours() / 24)
			if days <= 365 {
				continue
			}
			if days > 730 {
				priority = models.AlertHigh
			}
			title = fmt.Sprintf("%s has gone %d days without maintenance", eq.DisplayName(), days)
			description = fmt.Sprintf("No maintenance recorded for %s since %s", eq.DisplayName(), last.Format("2006-01-02"))
		}

		out = append(out, candidate{
			window: maintenanceOverdueWindow,
			alert: models.Alert{
				ID:          uuid.New().String(),
				EquipmentID: &eq.ID,
				Category:    models.CategoryMaintenanceOverdue,
				DedupKey:    fmt.Sprintf("%d", eq.ID),
				Priority:    priority,
				Status:      models.AlertOpen,
				Title:       title,
				Description: description,
				CreatedAt:   now,
			},
		})
	}
	return out, nil
}
