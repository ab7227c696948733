package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"daily-report/internal/model"
	"daily-report/internal/repository"
)

const (
	FixedDepartment = "Admin"
	FixedPriority   = "Med"
)

// ReportInput holds the raw form values of one submission.
type ReportInput struct {
	LogDate      string
	Employee     string
	Department   string
	TaskCategory string
	TaskName     string
	Minutes      string
	Channel      string
	Priority     string
	Status       string
	Note         string
}

// Lookups is the dropdown data for the report form.
type Lookups struct {
	Employees  []string
	Categories []model.TaskCategory
}

// ReportService wraps the report form's data access.
type ReportService struct {
	lookups     *repository.LookupRepository
	logs        *repository.TaskLogRepository
	fixedFields bool
}

// NewReportService builds the service. With fixedFields set, submissions only
// carry date, employee, category, task, minutes and status; department and
// priority are pinned to FixedDepartment and FixedPriority.
func NewReportService(lookups *repository.LookupRepository, logs *repository.TaskLogRepository, fixedFields bool) *ReportService {
	return &ReportService{lookups: lookups, logs: logs, fixedFields: fixedFields}
}

func (s *ReportService) FixedFields() bool {
	return s.fixedFields
}

func (s *ReportService) Lookups(ctx context.Context) (Lookups, error) {
	employees, err := s.lookups.Employees(ctx)
	if err != nil {
		return Lookups{}, &DataAccessError{Op: "load employees", Err: err}
	}
	categories, err := s.lookups.Categories(ctx)
	if err != nil {
		return Lookups{}, &DataAccessError{Op: "load task categories", Err: err}
	}
	return Lookups{Employees: employees, Categories: categories}, nil
}

func (s *ReportService) Latest(ctx context.Context) ([]model.TaskLogEntry, error) {
	entries, err := s.logs.Latest(ctx)
	if err != nil {
		return nil, &DataAccessError{Op: "load latest reports", Err: err}
	}
	return entries, nil
}

// Submit validates input and appends one task_log row.
func (s *ReportService) Submit(ctx context.Context, input ReportInput) (*model.TaskLogEntry, error) {
	entry, err := s.buildEntry(input)
	if err != nil {
		return nil, err
	}

	var omit []string
	if s.fixedFields {
		omit = []string{"channel", "note"}
	}
	if err := s.logs.Create(ctx, entry, omit...); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return entry, nil
}

func (s *ReportService) buildEntry(input ReportInput) (*model.TaskLogEntry, error) {
	var problems []string
	require := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			problems = append(problems, name+" is required")
		}
	}

	require("log_date", input.LogDate)
	require("employee", input.Employee)
	require("task_category", input.TaskCategory)
	require("task_name", input.TaskName)
	require("status", input.Status)
	if !s.fixedFields {
		require("department", input.Department)
		require("channel", input.Channel)
		require("priority", input.Priority)
	}

	minutes, err := parseMinutes(input.Minutes)
	if err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	entry := &model.TaskLogEntry{
		LogDate:      input.LogDate,
		Employee:     input.Employee,
		TaskCategory: input.TaskCategory,
		TaskName:     input.TaskName,
		Minutes:      minutes,
		Status:       input.Status,
	}
	if s.fixedFields {
		entry.Department = FixedDepartment
		entry.Priority = FixedPriority
		return entry, nil
	}

	entry.Department = input.Department
	entry.Channel = input.Channel
	entry.Priority = input.Priority
	entry.Note = input.Note
	return entry, nil
}

func parseMinutes(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("minutes is required")
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("minutes must be a whole number")
	}
	if minutes < 0 {
		return 0, fmt.Errorf("minutes must not be negative")
	}
	return minutes, nil
}
