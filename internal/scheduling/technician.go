package scheduling

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"maintenance-service/internal/models"
)

// TechnicianStore is the persistence surface the resolver needs.
type TechnicianStore interface {
	ListUsersByRole(ctx context.Context, role string) ([]models.User, error)
	TechnicianWorkload(ctx context.Context, technicianID string, now time.Time) (active, overdue int, err error)
}

// TechnicianResolver picks the best available technician for a task given
// current workloads.
type TechnicianResolver struct {
	store TechnicianStore
	now   func() time.Time
}

func NewTechnicianResolver(store TechnicianStore) *TechnicianResolver {
	return &TechnicianResolver{store: store, now: time.Now}
}

// SetNow overrides the resolver clock. Tests only.
func (r *TechnicianResolver) SetNow(now func() time.Time) { r.now = now }

type candidate struct {
	user    models.User
	active  int
	overdue int
}

// Resolve returns the id of the least-loaded technician, or "" when no
// technician or maintenance user exists. Critical tasks minimize overdue
// count first so they don't land on someone already behind; other tasks
// minimize total active workload first. Ties keep pool enumeration order.
func (r *TechnicianResolver) Resolve(ctx context.Context, priority models.TaskPriority) (string, error) {
	pool, err := r.store.ListUsersByRole(ctx, models.RoleTechnician)
	if err != nil {
		return "", errors.Wrap(err, "list technicians")
	}
	if len(pool) == 0 {
		pool, err = r.store.ListUsersByRole(ctx, models.RoleMaintenance)
		if err != nil {
			return "", errors.Wrap(err, "list maintenance users")
		}
	}
	if len(pool) == 0 {
		return "", nil
	}

	now := r.now()
	candidates := make([]candidate, 0, len(pool))
	for _, user := range pool {
		active, overdue, err := r.store.TechnicianWorkload(ctx, user.ID, now)
		if err != nil {
			return "", errors.Wrapf(err, "workload for technician %s", user.ID)
		}
		candidates = append(candidates, candidate{user: user, active: active, overdue: overdue})
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if better(c, best, priority) {
			best = c
		}
	}
	return best.user.ID, nil
}

func better(a, b candidate, priority models.TaskPriority) bool {
	if priority == models.PriorityCritical {
		if a.overdue != b.overdue {
			return a.overdue < b.overdue
		}
		return a.active < b.active
	}
	if a.active != b.active {
		return a.active < b.active
	}
	return a.overdue < b.overdue
}
