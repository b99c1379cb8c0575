package models

import "time"

// EquipmentStatus is the operational state of an equipment item.
type EquipmentStatus string

const (
	EquipmentActive   EquipmentStatus = "active"
	EquipmentInactive EquipmentStatus = "inactive"
	EquipmentRetired  EquipmentStatus = "retired"
)

// Equipment is one tracked equipment item in the fleet.
type Equipment struct {
	ID               int             `json:"id"`
	TypeName         string          `json:"type_name"`
	ModelName        string          `json:"model_name"`
	Status           EquipmentStatus `json:"status"`
	Location         string          `json:"location"`
	InstallationDate *time.Time      `json:"installation_date,omitempty"`
	WeeklyUsageHours float64         `json:"weekly_usage_hours,omitempty"`
}

// AgeDays returns the equipment age in days at the given instant, or 0 when
// the installation date is unknown.
func (e Equipment) AgeDays(now time.Time) float64 {
	if e.InstallationDate == nil {
		return 0
	}
	return now.Sub(*e.InstallationDate).Hours() / 24
}

// DisplayName returns the model name or a placeholder when the model
// reference is missing.
func (e Equipment) DisplayName() string {
	if e.ModelName == "" {
		return "Unknown"
	}
	return e.ModelName
}

// InventoryItem is a spare-part stock line checked by the low-stock rule.
type InventoryItem struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	CurrentStock int    `json:"current_stock"`
	MinimumLevel int    `json:"minimum_level"`
}
