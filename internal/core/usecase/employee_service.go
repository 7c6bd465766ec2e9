package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atvirokodosprendimai/employees/internal/core/domain"
	"github.com/atvirokodosprendimai/employees/internal/core/ports"
	"github.com/atvirokodosprendimai/employees/internal/core/validation"
)

const maxIDAttempts = 5

type EmployeeService struct {
	repo     ports.EmployeeRepository
	enricher *Enricher
	now      func() time.Time
	newID    func() string
	schema   validation.Schema

	// mu serializes the final validation and the write of create/replace.
	mu sync.Mutex
}

type EmployeeServiceOption func(*EmployeeService)

// WithClock overrides the time source used for hire date checks.
func WithClock(now func() time.Time) EmployeeServiceOption {
	return func(s *EmployeeService) { s.now = now }
}

func WithIDGenerator(newID func() string) EmployeeServiceOption {
	return func(s *EmployeeService) { s.newID = newID }
}

func NewEmployeeService(repo ports.EmployeeRepository, enricher *Enricher, opts ...EmployeeServiceOption) *EmployeeService {
	s := &EmployeeService{
		repo:     repo,
		enricher: enricher,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.enricher == nil {
		s.enricher = NewEnricher(nil, nil, 0, nil)
	}
	s.schema = s.buildSchema()
	return s
}

// Schema returns the rules applied to employee payloads.
func (s *EmployeeService) Schema() validation.Schema {
	return s.schema
}

func (s *EmployeeService) List(ctx context.Context) ([]domain.Employee, error) {
	return s.repo.List(ctx)
}

func (s *EmployeeService) Get(ctx context.Context, id string) (domain.Employee, error) {
	return s.repo.Get(ctx, id)
}

func (s *EmployeeService) Create(ctx context.Context, rec validation.Record) (domain.Employee, error) {
	if err := validation.ValidateRecord(ctx, rec, s.schema, validation.VerbCreate); err != nil {
		return domain.Employee{}, err
	}

	extra := s.enricher.Fetch(ctx)
	emp := employeeFromRecord(rec)
	emp.Quote = extra.Quote
	emp.Joke = extra.Joke

	s.mu.Lock()
	defer s.mu.Unlock()

	// The store may have changed while the external calls were in flight.
	if err := validation.ValidateRecord(ctx, rec, s.schema, validation.VerbCreate); err != nil {
		return domain.Employee{}, err
	}

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		emp.ID = s.newID()
		err := s.repo.Insert(ctx, emp)
		if errors.Is(err, domain.ErrIDConflict) {
			continue
		}
		if err != nil {
			return domain.Employee{}, fmt.Errorf("insert employee: %w", err)
		}
		return emp, nil
	}
	return domain.Employee{}, fmt.Errorf("generate employee id after %d attempts: %w", maxIDAttempts, domain.ErrIDConflict)
}

// Replace overwrites every field of an existing employee. Unknown ids fail
// with domain.ErrNotFound before the payload is validated.
func (s *EmployeeService) Replace(ctx context.Context, id string, rec validation.Record) (domain.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.repo.Get(ctx, id); err != nil {
		return domain.Employee{}, err
	}

	if err := validation.ValidateRecord(withReplaceTarget(ctx, id), rec, s.schema, validation.VerbUpdate); err != nil {
		return domain.Employee{}, err
	}

	emp := employeeFromRecord(rec)
	emp.ID = id
	emp.Quote = stringField(rec, "quote")
	emp.Joke = stringField(rec, "joke")
	if err := s.repo.Replace(ctx, emp); err != nil {
		return domain.Employee{}, fmt.Errorf("replace employee: %w", err)
	}
	return emp, nil
}

// Delete removes the employee if present. Missing ids are not an error.
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	return nil
}

func employeeFromRecord(rec validation.Record) domain.Employee {
	return domain.Employee{
		FirstName: stringField(rec, "firstName"),
		LastName:  stringField(rec, "lastName"),
		HireDate:  stringField(rec, "hireDate"),
		Role:      domain.NormalizeRole(stringField(rec, "role")),
	}
}

func stringField(rec validation.Record, field string) string {
	s, _ := rec[field].(string)
	return s
}
