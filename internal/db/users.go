package db

import (
	"context"
	"fmt"

	"maintenance-service/internal/models"
)

// ListUsersByRole fetches users holding the given role, ordered by id so the
// technician pool enumerates the same way on every cycle.
func (d *DB) ListUsersByRole(ctx context.Context, role string) ([]models.User, error) {
	query := `
	SELECT id, full_name, role
	FROM users
	WHERE role = $1
	ORDER BY id`

	rows, err := d.Pool.Query(ctx, query, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}
	defer rows.Close()

	var list []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.FullName, &u.Role); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}
