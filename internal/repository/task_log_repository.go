package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"daily-report/internal/model"
)

// LatestLimit is the number of entries shown under the report form.
const LatestLimit = 5

// entryColumns reads minutes through CAST so rows whose minutes column holds
// text or NULL (older clients stored it unchecked) come back as their leading
// integer, or 0, instead of failing the scan.
const entryColumns = "log_date, employee, department, task_category, task_name, " +
	"COALESCE(CAST(minutes AS INTEGER), 0) AS minutes, channel, priority, status, note"

// TaskLogRepository appends to and reads from task_log.
type TaskLogRepository struct {
	db *gorm.DB
}

func NewTaskLogRepository(db *gorm.DB) *TaskLogRepository {
	return &TaskLogRepository{db: db}
}

// Create inserts a single entry. Columns named in omit are left NULL.
func (r *TaskLogRepository) Create(ctx context.Context, entry *model.TaskLogEntry, omit ...string) error {
	db := r.db.WithContext(ctx)
	if len(omit) > 0 {
		db = db.Omit(omit...)
	}
	if err := db.Create(entry).Error; err != nil {
		return fmt.Errorf("create task log entry: %w", err)
	}
	return nil
}

// Latest returns up to LatestLimit entries, newest log_date first. Dates are
// compared as stored strings; equal dates fall back to insertion order.
func (r *TaskLogRepository) Latest(ctx context.Context) ([]model.TaskLogEntry, error) {
	var entries []model.TaskLogEntry
	if err := r.db.WithContext(ctx).
		Select(entryColumns).
		Order("log_date DESC").
		Order("rowid DESC").
		Limit(LatestLimit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Range returns entries with from <= log_date <= to in ascending order. An
// empty bound is open.
func (r *TaskLogRepository) Range(ctx context.Context, from, to string) ([]model.TaskLogEntry, error) {
	db := r.db.WithContext(ctx)
	if from != "" {
		db = db.Where("log_date >= ?", from)
	}
	if to != "" {
		db = db.Where("log_date <= ?", to)
	}
	var entries []model.TaskLogEntry
	if err := db.Select(entryColumns).Order("log_date ASC").Order("rowid ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// MinutesByEmployee sums the minutes logged on date per employee.
func (r *TaskLogRepository) MinutesByEmployee(ctx context.Context, date string) ([]model.EmployeeMinutes, error) {
	var rows []model.EmployeeMinutes
	if err := r.db.WithContext(ctx).Model(&model.TaskLogEntry{}).
		Select("employee, COUNT(*) AS entries, COALESCE(SUM(CAST(minutes AS INTEGER)), 0) AS minutes").
		Where("log_date = ?", date).
		Group("employee").
		Order("employee").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
