package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaintenanceType classifies a completed maintenance log entry.
type MaintenanceType string

const (
	MaintenancePreventive MaintenanceType = "preventive"
	MaintenanceCorrective MaintenanceType = "corrective"
	MaintenanceInspection MaintenanceType = "inspection"
	MaintenanceEmergency  MaintenanceType = "emergency"
)

// TaskStatus is the lifecycle state of a maintenance task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// TaskPriority orders maintenance tasks for technician assignment.
type TaskPriority string

const (
	PriorityLow      TaskPriority = "low"
	PriorityMedium   TaskPriority = "medium"
	PriorityHigh     TaskPriority = "high"
	PriorityCritical TaskPriority = "critical"
)

// MaintenanceLog is an immutable record of maintenance work already done.
type MaintenanceLog struct {
	ID          int             `json:"id"`
	EquipmentID int             `json:"equipment_id"`
	LogDate     time.Time       `json:"log_date"`
	Type        MaintenanceType `json:"type"`
	Description string          `json:"description"`
	Technician  string          `json:"technician"`
	Cost        decimal.Decimal `json:"cost"`
	DowntimeHrs float64         `json:"downtime_hours"`
}

// MaintenanceTask is a scheduled unit of future maintenance work.
type MaintenanceTask struct {
	ID                 string       `json:"id"`
	EquipmentID        int          `json:"equipment_id"`
	ScheduledDate      time.Time    `json:"scheduled_date"`
	Status             TaskStatus   `json:"status"`
	Priority           TaskPriority `json:"priority"`
	Description        string       `json:"description"`
	AssignedTechnician string       `json:"assigned_technician,omitempty"`
	OriginatingAlertID string       `json:"originating_alert_id,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
}

// Open reports whether the task still occupies the per-equipment slot.
func (t MaintenanceTask) Open() bool {
	return t.Status == TaskPending || t.Status == TaskInProgress
}
