package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"daily-report/internal/model"
)

// LookupRepository reads and seeds the reference tables behind the form
// dropdowns.
type LookupRepository struct {
	db *gorm.DB
}

func NewLookupRepository(db *gorm.DB) *LookupRepository {
	return &LookupRepository{db: db}
}

// Employees returns employee names in table order.
func (r *LookupRepository) Employees(ctx context.Context) ([]string, error) {
	var names []string
	if err := r.db.WithContext(ctx).Model(&model.Employee{}).
		Where("employee IS NOT NULL").
		Pluck("employee", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

// Categories returns task categories ordered by group, then category.
func (r *LookupRepository) Categories(ctx context.Context) ([]model.TaskCategory, error) {
	var categories []model.TaskCategory
	if err := r.db.WithContext(ctx).
		Select("task_category", "task_category_group").
		Order("task_category_group, task_category").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// AddEmployees appends employees that are not present yet, creating the
// table when it is missing. It returns the number of inserted rows.
func (r *LookupRepository) AddEmployees(ctx context.Context, names []string) (int, error) {
	db := r.db.WithContext(ctx)
	if err := db.AutoMigrate(&model.Employee{}); err != nil {
		return 0, fmt.Errorf("migrate employees: %w", err)
	}

	existing, err := r.Employees(ctx)
	if err != nil {
		return 0, fmt.Errorf("list employees: %w", err)
	}
	seen := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		seen[name] = struct{}{}
	}

	var rows []model.Employee
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		rows = append(rows, model.Employee{Name: name})
	}
	if len(rows) == 0 {
		return 0, nil
	}
	if err := db.Create(&rows).Error; err != nil {
		return 0, fmt.Errorf("create employees: %w", err)
	}
	return len(rows), nil
}

// AddCategories appends (category, group) pairs that are not present yet,
// creating the table when it is missing. It returns the number of inserted
// rows.
func (r *LookupRepository) AddCategories(ctx context.Context, categories []model.TaskCategory) (int, error) {
	db := r.db.WithContext(ctx)
	if err := db.AutoMigrate(&model.TaskCategory{}); err != nil {
		return 0, fmt.Errorf("migrate task_master: %w", err)
	}

	existing, err := r.Categories(ctx)
	if err != nil {
		return 0, fmt.Errorf("list categories: %w", err)
	}
	seen := make(map[model.TaskCategory]struct{}, len(existing))
	for _, c := range existing {
		seen[c] = struct{}{}
	}

	var rows []model.TaskCategory
	for _, c := range categories {
		if c.Category == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		rows = append(rows, c)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	if err := db.Create(&rows).Error; err != nil {
		return 0, fmt.Errorf("create categories: %w", err)
	}
	return len(rows), nil
}
