package models

import "time"

// AlertCategory tags the condition that produced an alert. Dedup lookups
// match on this field exactly rather than on description text.
type AlertCategory string

const (
	CategoryOverdueTask        AlertCategory = "overdue_task"
	CategoryEquipmentStatus    AlertCategory = "equipment_status"
	CategoryLowStock           AlertCategory = "low_stock"
	CategoryHighRiskPrediction AlertCategory = "high_risk_prediction"
	CategoryMaintenanceOverdue AlertCategory = "maintenance_overdue"
)

// AlertPriority is the operator-facing severity of an alert.
type AlertPriority string

const (
	AlertLow    AlertPriority = "low"
	AlertMedium AlertPriority = "medium"
	AlertHigh   AlertPriority = "high"
)

// AlertStatus is the lifecycle state of an alert. Alerts are opened by the
// engine and resolved by operators through the external UI/API.
type AlertStatus string

const (
	AlertOpen     AlertStatus = "open"
	AlertResolved AlertStatus = "resolved"
)

// Alert is an actionable record surfaced to operators about a detected
// condition. Exactly one of EquipmentID or InventoryItemID is set.
type Alert struct {
	ID              string        `json:"id"`
	EquipmentID     *int          `json:"equipment_id,omitempty"`
	InventoryItemID *int          `json:"inventory_item_id,omitempty"`
	Category        AlertCategory `json:"category"`
	// DedupKey narrows the dedup scope within a category, e.g. the task id
	// for overdue-task alerts or the item name for stock alerts.
	DedupKey    string        `json:"dedup_key"`
	Priority    AlertPriority `json:"priority"`
	Status      AlertStatus   `json:"status"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	CreatedAt   time.Time     `json:"created_at"`
}
