package models

// Role names used when resolving the technician candidate pool.
const (
	RoleTechnician  = "technician"
	RoleMaintenance = "maintenance"
)

// User is an account that can be assigned maintenance work. Workload is
// derived from the task table, never stored here.
type User struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}
