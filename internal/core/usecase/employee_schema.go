package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/atvirokodosprendimai/employees/internal/core/domain"
	"github.com/atvirokodosprendimai/employees/internal/core/validation"
)

type ctxKey string

const replaceTargetCtxKey ctxKey = "replace_target"

// withReplaceTarget marks the employee being replaced so uniqueness checks
// do not count it against itself.
func withReplaceTarget(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, replaceTargetCtxKey, id)
}

func replaceTargetFromContext(ctx context.Context) string {
	id, _ := ctx.Value(replaceTargetCtxKey).(string)
	return id
}

func (s *EmployeeService) buildSchema() validation.Schema {
	roles := make([]any, 0, len(domain.Roles))
	for _, r := range domain.Roles {
		roles = append(roles, r)
	}
	createdOnly := validation.RequiredOn(map[validation.Verb]bool{
		validation.VerbCreate: false,
		validation.VerbUpdate: true,
	})

	return validation.Schema{
		{Field: "firstName", Type: validation.TypeString},
		{Field: "lastName", Type: validation.TypeString},
		{Field: "hireDate", Type: validation.TypeString, Custom: s.checkHireDate},
		{
			Field:           "role",
			Type:            validation.TypeString,
			AllowedValues:   roles,
			CaseInsensitive: true,
			Custom:          s.checkSingleCEO,
		},
		{Field: "quote", Required: createdOnly, Type: validation.TypeString},
		{Field: "joke", Required: createdOnly, Type: validation.TypeString},
	}
}

func (s *EmployeeService) checkHireDate(_ context.Context, field string, value any) (string, error) {
	raw, _ := value.(string)
	date, err := time.Parse(domain.HireDateLayout, raw)
	if err != nil {
		return fmt.Sprintf("The value of property [%s] is not a valid ISO 8601 date (YYYY-MM-DD).", field), nil
	}
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if date.After(today) {
		return fmt.Sprintf("The value of property [%s] must not be a date in the future.", field), nil
	}
	return "", nil
}

func (s *EmployeeService) checkSingleCEO(ctx context.Context, _ string, value any) (string, error) {
	role, _ := value.(string)
	if domain.NormalizeRole(role) != domain.RoleCEO {
		return "", nil
	}

	employees, err := s.repo.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list employees: %w", err)
	}
	target := replaceTargetFromContext(ctx)
	for _, emp := range employees {
		if emp.ID == target {
			continue
		}
		if domain.NormalizeRole(emp.Role) == domain.RoleCEO {
			return fmt.Sprintf("There can be only one employee with role [%s].", domain.RoleCEO), nil
		}
	}
	return "", nil
}
