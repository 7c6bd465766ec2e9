package sqlite

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/atvirokodosprendimai/employees/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/employees/internal/core/domain"
)

type employeeModel struct {
	Seq       int64  `gorm:"column:seq;primaryKey;autoIncrement"`
	ID        string `gorm:"column:id;not null;uniqueIndex"`
	FirstName string `gorm:"column:first_name;not null"`
	LastName  string `gorm:"column:last_name;not null"`
	HireDate  string `gorm:"column:hire_date;not null"`
	Role      string `gorm:"column:role;not null"`
	Quote     string `gorm:"column:quote;not null"`
	Joke      string `gorm:"column:joke;not null"`
}

func (employeeModel) TableName() string {
	return "employees"
}

// Repository stores employees in the employees table. Insertion order is the
// autoincrement seq column.
type Repository struct {
	db *gormsqlite.DB
}

func NewRepository(db *gormsqlite.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]domain.Employee, error) {
	var models []employeeModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Order("seq ASC").Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}

	out := make([]domain.Employee, 0, len(models))
	for _, m := range models {
		out = append(out, toDomain(m))
	}
	return out, nil
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Employee, error) {
	var model employeeModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("id = ?", id).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Employee{}, domain.ErrNotFound
		}
		return domain.Employee{}, fmt.Errorf("get employee: %w", err)
	}
	return toDomain(model), nil
}

func (r *Repository) Insert(ctx context.Context, emp domain.Employee) error {
	model := toModel(emp)
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).Create(&model)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrIDConflict
		}
		return nil
	})
	if err != nil && !errors.Is(err, domain.ErrIDConflict) {
		return fmt.Errorf("insert employee: %w", err)
	}
	return err
}

// Replace overwrites every mutable column. The existence check runs in the
// same transaction so an update that changes nothing still succeeds.
func (r *Repository) Replace(ctx context.Context, emp domain.Employee) error {
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		var existing employeeModel
		if err := tx.Select("seq").Where("id = ?", emp.ID).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		return tx.Model(&employeeModel{}).
			Where("seq = ?", existing.Seq).
			Updates(map[string]any{
				"first_name": emp.FirstName,
				"last_name":  emp.LastName,
				"hire_date":  emp.HireDate,
				"role":       emp.Role,
				"quote":      emp.Quote,
				"joke":       emp.Joke,
			}).Error
	})
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("replace employee: %w", err)
	}
	return err
}

func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Where("id = ?", id).Delete(&employeeModel{})
		deleted = res.RowsAffected > 0
		return res.Error
	})
	if err != nil {
		return false, fmt.Errorf("delete employee: %w", err)
	}
	return deleted, nil
}

func toModel(emp domain.Employee) employeeModel {
	return employeeModel{
		ID:        emp.ID,
		FirstName: emp.FirstName,
		LastName:  emp.LastName,
		HireDate:  emp.HireDate,
		Role:      emp.Role,
		Quote:     emp.Quote,
		Joke:      emp.Joke,
	}
}

func toDomain(m employeeModel) domain.Employee {
	return domain.Employee{
		ID:        m.ID,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		HireDate:  m.HireDate,
		Role:      m.Role,
		Quote:     m.Quote,
		Joke:      m.Joke,
	}
}
