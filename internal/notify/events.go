package notify

// Event names published on every sink. Dashboard clients key off these.
const (
	EventNewAlerts          = "NewAlerts"
	EventCriticalAlerts     = "CriticalAlerts"
	EventHighRiskEquipment  = "HighRiskEquipmentDetected"
	EventPredictionsUpdated = "PredictionsUpdated"
	EventTasksScheduled     = "NewTasksScheduled"
	EventReminders          = "MaintenanceReminders"
	EventTasksAutoCompleted = "TasksAutoCompleted"
	EventTasksFromAlerts    = "NewMaintenanceTasksFromAlerts"
	EventPreventiveTasks    = "PreventiveTasksScheduled"
	EventStatusChanged      = "EquipmentStatusChanged"
	EventPerformanceIssues  = "PerformanceIssuesDetected"
)
