package ports

import (
	"context"

	"github.com/atvirokodosprendimai/employees/internal/core/domain"
)

// EmployeeRepository owns stored employees. Get and Replace return
// domain.ErrNotFound for unknown ids; Insert returns domain.ErrIDConflict when
// the id is taken. List preserves insertion order.
type EmployeeRepository interface {
	List(ctx context.Context) ([]domain.Employee, error)
	Get(ctx context.Context, id string) (domain.Employee, error)
	Insert(ctx context.Context, emp domain.Employee) error
	Replace(ctx context.Context, emp domain.Employee) error
	Delete(ctx context.Context, id string) (bool, error)
}
