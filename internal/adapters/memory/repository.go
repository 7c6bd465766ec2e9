package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/atvirokodosprendimai/employees/internal/core/domain"
)

// Repository keeps employees in a map guarded by a RWMutex. Callers always
// receive copies.
type Repository struct {
	mu    sync.RWMutex
	byID  map[string]domain.Employee
	order []string
}

func NewRepository() *Repository {
	return &Repository{byID: make(map[string]domain.Employee)}
}

func (r *Repository) List(_ context.Context) ([]domain.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Employee, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out, nil
}

func (r *Repository) Get(_ context.Context, id string) (domain.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	emp, ok := r.byID[id]
	if !ok {
		return domain.Employee{}, domain.ErrNotFound
	}
	return emp, nil
}

func (r *Repository) Insert(_ context.Context, emp domain.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[emp.ID]; ok {
		return domain.ErrIDConflict
	}
	r.byID[emp.ID] = emp
	r.order = append(r.order, emp.ID)
	return nil
}

func (r *Repository) Replace(_ context.Context, emp domain.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[emp.ID]; !ok {
		return domain.ErrNotFound
	}
	r.byID[emp.ID] = emp
	return nil
}

func (r *Repository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	r.order = slices.DeleteFunc(r.order, func(v string) bool { return v == id })
	return true, nil
}
