package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"maintenance-service/internal/models"
)

const taskColumns = `id, equipment_id, scheduled_date, status, priority,
	description, COALESCE(assigned_technician, ''), COALESCE(originating_alert_id, ''), created_at`

// CreateTaskIfNoneOpen inserts a maintenance task unless the equipment
// already has an open (pending or in-progress) task. The check lives in
// the statement itself rather than in a prior read, which narrows the race
// window between overlapping cycles to one statement; a partial unique
// index on (equipment_id) WHERE status IN ('pending', 'in_progress')
// closes it entirely. Returns true when a row was inserted.
func (d *DB) CreateTaskIfNoneOpen(ctx context.Context, task models.MaintenanceTask) (bool, error) {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}

	query := `
	INSERT INTO maintenance_tasks (
		id, equipment_id, scheduled_date, status, priority,
		description, assigned_technician, originating_alert_id, created_at
	)
	SELECT $1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9
	WHERE NOT EXISTS (
		SELECT 1 FROM maintenance_tasks
		WHERE equipment_id = $2 AND status IN ($10, $11)
	)`

	tag, err := d.Pool.Exec(ctx, query,
		task.ID,
		task.EquipmentID,
		task.ScheduledDate,
		task.Status,
		task.Priority,
		task.Description,
		task.AssignedTechnician,
		task.OriginatingAlertID,
		task.CreatedAt,
		models.TaskPending,
		models.TaskInProgress,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert maintenance task: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// HasOpenTask reports whether the equipment currently holds an open task.
func (d *DB) HasOpenTask(ctx context.Context, equipmentID int) (bool, error) {
	var exists bool
	query := `
	SELECT EXISTS (
		SELECT 1 FROM maintenance_tasks
		WHERE equipment_id = $1 AND status IN ($2, $3)
	)`
	if err := d.Pool.QueryRow(ctx, query, equipmentID, models.TaskPending, models.TaskInProgress).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check open task: %w", err)
	}
	return exists, nil
}

// EquipmentIDsWithOpenTasks returns the set of equipment ids that currently
// hold an open task, for batch skip checks in the routine worker.
func (d *DB) EquipmentIDsWithOpenTasks(ctx context.Context) (map[int]bool, error) {
	query := `
	SELECT DISTINCT equipment_id FROM maintenance_tasks
	WHERE status IN ($1, $2)`

	rows, err := d.Pool.Query(ctx, query, models.TaskPending, models.TaskInProgress)
	if err != nil {
		return nil, fmt.Errorf("failed to list equipment with open tasks: %w", err)
	}
	defer rows.Close()

	set := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan equipment id: %w", err)
		}
		set[id] = true
	}
	return set, rows.Err()
}

// ListOverduePendingTasks fetches pending tasks scheduled before the cutoff.
func (d *DB) ListOverduePendingTasks(ctx context.Context, cutoff time.Time) ([]models.MaintenanceTask, error) {
	query := `SELECT ` + taskColumns + `
	FROM maintenance_tasks
	WHERE status = $1 AND scheduled_date < $2
	ORDER BY scheduled_date`

	rows, err := d.Pool.Query(ctx, query, models.TaskPending, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue tasks: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

// ListTasksDueBetween fetches pending tasks scheduled inside [from, to].
func (d *DB) ListTasksDueBetween(ctx context.Context, from, to time.Time) ([]models.MaintenanceTask, error) {
	query := `SELECT ` + taskColumns + `
	FROM maintenance_tasks
	WHERE status = $1 AND scheduled_date >= $2 AND scheduled_date <= $3
	ORDER BY scheduled_date`

	rows, err := d.Pool.Query(ctx, query, models.TaskPending, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list due tasks: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

// ListAutoCompletableTasks fetches pending tasks overdue past the cutoff
// whose description marks them as simple inspection or cleaning work.
func (d *DB) ListAutoCompletableTasks(ctx context.Context, cutoff time.Time) ([]models.MaintenanceTask, error) {
	query := `SELECT ` + taskColumns + `
	FROM maintenance_tasks
	WHERE status = $1
	  AND scheduled_date < $2
	  AND (description ILIKE '%inspection%' OR description ILIKE '%cleaning%')
	ORDER BY scheduled_date`

	rows, err := d.Pool.Query(ctx, query, models.TaskPending, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list auto-completable tasks: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

// CompleteTask marks a task completed.
func (d *DB) CompleteTask(ctx context.Context, id string) error {
	tag, err := d.Pool.Exec(ctx,
		`UPDATE maintenance_tasks SET status = $1 WHERE id = $2`, models.TaskCompleted, id)
	if err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no task updated for id %s", id)
	}
	return nil
}

// CountFutureOpenTasks counts open tasks for the equipment scheduled inside
// (from, to].
func (d *DB) CountFutureOpenTasks(ctx context.Context, equipmentID int, from, to time.Time) (int, error) {
	var count int
	query := `
	SELECT COUNT(*) FROM maintenance_tasks
	WHERE equipment_id = $1
	  AND status IN ($2, $3)
	  AND scheduled_date > $4 AND scheduled_date <= $5`
	err := d.Pool.QueryRow(ctx, query, equipmentID, models.TaskPending, models.TaskInProgress, from, to).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count future tasks: %w", err)
	}
	return count, nil
}

// TechnicianWorkload returns the open and overdue-open task counts assigned
// to one technician.
func (d *DB) TechnicianWorkload(ctx context.Context, technicianID string, now time.Time) (active, overdue int, err error) {
	query := `
	SELECT COUNT(*),
	       COUNT(*) FILTER (WHERE scheduled_date < $3)
	FROM maintenance_tasks
	WHERE assigned_technician = $1 AND status IN ($2, $4)`
	err = d.Pool.QueryRow(ctx, query, technicianID, models.TaskPending, now, models.TaskInProgress).
		Scan(&active, &overdue)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count technician workload: %w", err)
	}
	return active, overdue, nil
}

func scanTasks(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]models.MaintenanceTask, error) {
	var list []models.MaintenanceTask
	for rows.Next() {
		var t models.MaintenanceTask
		if err := rows.Scan(&t.ID, &t.EquipmentID, &t.ScheduledDate, &t.Status, &t.Priority,
			&t.Description, &t.AssignedTechnician, &t.OriginatingAlertID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}
